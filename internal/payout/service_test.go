package payout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/rashedq/marketpay/internal/business"
	"github.com/rashedq/marketpay/internal/earnings"
	"github.com/rashedq/marketpay/internal/earnings/fees"
	"github.com/rashedq/marketpay/internal/notification"
)

type fakePayoutStore struct {
	existing     *Payout
	createdCalls int
}

func (f *fakePayoutStore) CreateTx(ctx context.Context, tx *sql.Tx, p *Payout) (*Payout, error) {
	f.createdCalls++
	return nil, errors.New("unexpected payout insert")
}

func (f *fakePayoutStore) GetByID(ctx context.Context, id int64) (*Payout, error) {
	return nil, nil
}

func (f *fakePayoutStore) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*Payout, error) {
	if f.existing != nil && f.existing.BusinessID == businessID &&
		f.existing.IdempotencyKey != nil && *f.existing.IdempotencyKey == key {
		return f.existing, nil
	}
	return nil, nil
}

func (f *fakePayoutStore) ListByBusinessID(ctx context.Context, businessID int64, limit, offset int) ([]*Payout, int, error) {
	return nil, 0, nil
}

func (f *fakePayoutStore) MarkProcessing(ctx context.Context, id int64) (*Payout, error) {
	return nil, nil
}

func (f *fakePayoutStore) CompleteTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) (*Payout, error) {
	return nil, nil
}

func (f *fakePayoutStore) Fail(ctx context.Context, id int64, reason string) (*Payout, error) {
	return nil, nil
}

func (f *fakePayoutStore) CancelTx(ctx context.Context, tx *sql.Tx, id int64) (*Payout, error) {
	return nil, nil
}

type fakeLedgerStore struct {
	entryIDs         []int64
	markPaidOutCalls int
}

func (f *fakeLedgerStore) ListAvailableForUpdate(ctx context.Context, tx *sql.Tx, businessID int64) ([]*earnings.EarningEntry, error) {
	return nil, nil
}

func (f *fakeLedgerStore) GetByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int64) ([]*earnings.EarningEntry, error) {
	return nil, nil
}

func (f *fakeLedgerStore) ApplySplit(ctx context.Context, tx *sql.Tx, original *earnings.EarningEntry, result fees.SplitResult) (*earnings.EarningEntry, error) {
	return nil, nil
}

func (f *fakeLedgerStore) MarkPaidOut(ctx context.Context, tx *sql.Tx, ids []int64, payoutID int64) error {
	f.markPaidOutCalls++
	return nil
}

func (f *fakeLedgerStore) ReleaseByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error) {
	return 0, nil
}

func (f *fakeLedgerStore) MarkPaidByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error) {
	return 0, nil
}

func (f *fakeLedgerStore) ListEntryIDsByPayoutID(ctx context.Context, payoutID int64) ([]int64, error) {
	return f.entryIDs, nil
}

type fakePayeeStore struct{}

func (fakePayeeStore) GetByID(ctx context.Context, id int64) (*business.Business, error) {
	account := "acct_123"
	return &business.Business{ID: id, CurrencyCode: "USD", DestinationAccount: &account}, nil
}

type fakeNotifier struct{}

func (fakeNotifier) NotifyPayoutCreated(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*notification.Notification, error) {
	return nil, nil
}

func (fakeNotifier) NotifyPayoutCompleted(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*notification.Notification, error) {
	return nil, nil
}

func (fakeNotifier) NotifyPayoutFailed(ctx context.Context, businessID int64, payoutID int64, reason string) (*notification.Notification, error) {
	return nil, nil
}

func TestCreatePayout_SameIdempotencyKeyReturnsExistingPayout(t *testing.T) {
	key := "req-2026-01"
	existing := &Payout{ID: 42, BusinessID: 10, Status: PayoutStatusPending, IdempotencyKey: &key}
	payouts := &fakePayoutStore{existing: existing}
	ledger := &fakeLedgerStore{entryIDs: []int64{5, 6}}

	svc := NewService(nil, payouts, ledger, fakePayeeStore{}, fakeNotifier{})

	got, err := svc.CreatePayout(context.Background(), 10, &CreatePayoutRequest{
		Method:         "ACH",
		IdempotencyKey: &key,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != 42 {
		t.Errorf("expected the existing payout 42, got %d", got.ID)
	}
	if payouts.createdCalls != 0 {
		t.Errorf("expected no new payout row, got %d inserts", payouts.createdCalls)
	}
	if ledger.markPaidOutCalls != 0 {
		t.Errorf("earnings must not be locked a second time, got %d locking calls", ledger.markPaidOutCalls)
	}
	if len(got.EarningEntryIDs) != 2 {
		t.Errorf("expected the existing payout's 2 entry ids attached, got %d", len(got.EarningEntryIDs))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !IsUniqueViolation(dup) {
		t.Error("unique violation not detected")
	}
	if !IsUniqueViolation(fmt.Errorf("failed to create payout: %w", dup)) {
		t.Error("wrapped unique violation not detected")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign key violation must not be treated as idempotency conflict")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain error must not be treated as idempotency conflict")
	}
}
