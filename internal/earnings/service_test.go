package earnings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rashedq/marketpay/internal/business"
	"github.com/rashedq/marketpay/internal/earnings/fees"
	"github.com/rashedq/marketpay/internal/notification"
)

type fakeEntryStore struct {
	batches  [][]*EarningEntry
	batchErr error
	nextID   int64
}

func (f *fakeEntryStore) CreateBatch(ctx context.Context, entries []*EarningEntry) ([]*EarningEntry, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	created := make([]*EarningEntry, len(entries))
	for i, e := range entries {
		f.nextID++
		copied := *e
		copied.ID = f.nextID
		created[i] = &copied
	}
	f.batches = append(f.batches, created)
	return created, nil
}

func (f *fakeEntryStore) HasEntriesForOrder(ctx context.Context, orderID string) (bool, error) {
	for _, batch := range f.batches {
		for _, e := range batch {
			if e.OrderID != nil && *e.OrderID == orderID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeEntryStore) HasEntriesForConsultation(ctx context.Context, consultationID string) (bool, error) {
	for _, batch := range f.batches {
		for _, e := range batch {
			if e.ConsultationID != nil && *e.ConsultationID == consultationID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeEntryStore) GetByID(ctx context.Context, id int64, includeDeleted bool) (*EarningEntry, error) {
	return nil, nil
}

func (f *fakeEntryStore) List(ctx context.Context, c ListCriteria) ([]*EarningEntry, int, error) {
	return nil, 0, nil
}

func (f *fakeEntryStore) ListByOrderID(ctx context.Context, orderID string) ([]*EarningEntry, error) {
	return nil, nil
}

func (f *fakeEntryStore) MakeAvailableByOrderID(ctx context.Context, orderID string) (int64, error) {
	return 0, nil
}

func (f *fakeEntryStore) MakeAvailableByConsultationID(ctx context.Context, consultationID string) (int64, error) {
	return 0, nil
}

func (f *fakeEntryStore) ReverseByOrderID(ctx context.Context, orderID string) (int64, error) {
	return 0, nil
}

func (f *fakeEntryStore) SoftDelete(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (f *fakeEntryStore) BalanceSummary(ctx context.Context, businessID int64, eligibleBefore time.Time) (*BalanceSummary, error) {
	return &BalanceSummary{BusinessID: businessID}, nil
}

type fakePayeeStore struct{}

func (fakePayeeStore) GetByID(ctx context.Context, id int64) (*business.Business, error) {
	return &business.Business{ID: id, CurrencyCode: "USD"}, nil
}

type fakeNotifier struct{}

func (fakeNotifier) NotifyEarningsAvailable(ctx context.Context, businessID int64, count int64, orderID string) (*notification.Notification, error) {
	return nil, nil
}

func (fakeNotifier) NotifyEarningsReversed(ctx context.Context, businessID int64, count int64, orderID string) (*notification.Notification, error) {
	return nil, nil
}

func TestRecordOrderEarnings_BooksOrderInOneBatch(t *testing.T) {
	store := &fakeEntryStore{}
	svc := NewService(store, fakePayeeStore{}, fakeNotifier{})

	entries, err := svc.RecordOrderEarnings(context.Background(), 10, &RecordOrderRequest{
		OrderID:       "ord_1",
		Items:         []fees.OrderItem{{ID: "a", Total: 10000}, {ID: "b", Total: 5000}},
		ShippingTotal: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.batches) != 1 {
		t.Fatalf("expected the order booked in a single batch, got %d batches", len(store.batches))
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (2 items + shipping), got %d", len(entries))
	}
	for _, e := range entries {
		if e.Status != EntryStatusPending {
			t.Errorf("expected entry %d pending, got %s", e.ID, e.Status)
		}
	}
	if entries[2].Type != EntryTypeShippingFee {
		t.Errorf("expected shipping entry last, got %s", entries[2].Type)
	}
}

func TestRecordOrderEarnings_FailedBookingLeavesOrderRebookable(t *testing.T) {
	store := &fakeEntryStore{batchErr: errors.New("connection reset")}
	svc := NewService(store, fakePayeeStore{}, fakeNotifier{})

	req := &RecordOrderRequest{
		OrderID: "ord_2",
		Items:   []fees.OrderItem{{ID: "a", Total: 10000}, {ID: "b", Total: 5000}},
	}

	if _, err := svc.RecordOrderEarnings(context.Background(), 10, req); err == nil {
		t.Fatal("expected the failed booking to surface an error")
	}
	if len(store.batches) != 0 {
		t.Fatalf("a failed booking must leave no entries, found %d batches", len(store.batches))
	}

	// The duplicate guard must not fire for an order that never landed
	store.batchErr = nil
	entries, err := svc.RecordOrderEarnings(context.Background(), 10, req)
	if err != nil {
		t.Fatalf("rebooking after a failed attempt should succeed, got %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries on rebooking, got %d", len(entries))
	}
}

func TestRecordConsultationEarnings_BooksBothSlicesTogether(t *testing.T) {
	store := &fakeEntryStore{}
	svc := NewService(store, fakePayeeStore{}, fakeNotifier{})

	clinicianID := int64(7)
	req := &RecordConsultationRequest{
		ConsultationID: "cons_1",
		ClinicianID:    &clinicianID,
		Fee:            decimal.NewFromInt(50),
	}

	entries, err := svc.RecordConsultationEarnings(context.Background(), 10, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.batches) != 1 {
		t.Fatalf("expected both slices booked in a single batch, got %d batches", len(store.batches))
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	clinician := entries[0]
	if clinician.BusinessID != 7 || clinician.GrossAmount != 3150 {
		t.Errorf("expected clinician slice of 3150 against payee 7, got %d against %d",
			clinician.GrossAmount, clinician.BusinessID)
	}
	biz := entries[1]
	if biz.GrossAmount != 1350 || biz.PlatformFee != 500 {
		t.Errorf("expected business slice 1350 with platform fee 500, got %d / %d",
			biz.GrossAmount, biz.PlatformFee)
	}
	if biz.ClinicianFee == nil || *biz.ClinicianFee != 3150 {
		t.Errorf("expected clinician fee 3150 recorded on the business slice")
	}

	// Replayed consultation webhooks must not double-book
	if _, err := svc.RecordConsultationEarnings(context.Background(), 10, req); !errors.Is(err, ErrConsultationAlreadyRecorded) {
		t.Errorf("expected ErrConsultationAlreadyRecorded, got %v", err)
	}
}

func TestListEarnings_ClampsPerPageInMeta(t *testing.T) {
	store := &fakeEntryStore{}
	svc := NewService(store, fakePayeeStore{}, fakeNotifier{})
	handler := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/?per_page=500", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var body struct {
		Meta struct {
			Page    int `json:"page"`
			PerPage int `json:"per_page"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Meta.PerPage != 20 {
		t.Errorf("expected per_page clamped to 20 in meta, got %d", body.Meta.PerPage)
	}
}
