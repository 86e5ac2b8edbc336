package payout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/rashedq/marketpay/internal/business"
	"github.com/rashedq/marketpay/internal/earnings"
	"github.com/rashedq/marketpay/internal/earnings/fees"
	"github.com/rashedq/marketpay/internal/notification"
)

// Common errors
var (
	ErrPayoutNotFound       = errors.New("payout not found")
	ErrNotPayoutOwner       = errors.New("payout belongs to another business")
	ErrBusinessNotFound     = errors.New("business not found")
	ErrInvalidMethod        = errors.New("invalid payout method")
	ErrNoDestinationAccount = errors.New("no destination account for this payout")
	ErrInvalidTransition    = errors.New("payout status does not allow this transition")
)

// payoutStore is the persistence contract the service needs for payouts
type payoutStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, p *Payout) (*Payout, error)
	GetByID(ctx context.Context, id int64) (*Payout, error)
	GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*Payout, error)
	ListByBusinessID(ctx context.Context, businessID int64, limit, offset int) ([]*Payout, int, error)
	MarkProcessing(ctx context.Context, id int64) (*Payout, error)
	CompleteTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) (*Payout, error)
	Fail(ctx context.Context, id int64, reason string) (*Payout, error)
	CancelTx(ctx context.Context, tx *sql.Tx, id int64) (*Payout, error)
}

// ledgerStore is the slice of the earnings repository the allocator drives
type ledgerStore interface {
	ListAvailableForUpdate(ctx context.Context, tx *sql.Tx, businessID int64) ([]*earnings.EarningEntry, error)
	GetByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int64) ([]*earnings.EarningEntry, error)
	ApplySplit(ctx context.Context, tx *sql.Tx, original *earnings.EarningEntry, result fees.SplitResult) (*earnings.EarningEntry, error)
	MarkPaidOut(ctx context.Context, tx *sql.Tx, ids []int64, payoutID int64) error
	ReleaseByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error)
	MarkPaidByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error)
	ListEntryIDsByPayoutID(ctx context.Context, payoutID int64) ([]int64, error)
}

type payeeStore interface {
	GetByID(ctx context.Context, id int64) (*business.Business, error)
}

type notifier interface {
	NotifyPayoutCreated(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*notification.Notification, error)
	NotifyPayoutCompleted(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*notification.Notification, error)
	NotifyPayoutFailed(ctx context.Context, businessID int64, payoutID int64, reason string) (*notification.Notification, error)
}

// Service handles payout business logic
type Service struct {
	db            *sql.DB
	repo          payoutStore
	earningsRepo  ledgerStore
	businessRepo  payeeStore
	notifications notifier
}

// NewService creates a new payout service
func NewService(db *sql.DB, repo payoutStore, earningsRepo ledgerStore, businessRepo payeeStore, notifications notifier) *Service {
	return &Service{
		db:            db,
		repo:          repo,
		earningsRepo:  earningsRepo,
		businessRepo:  businessRepo,
		notifications: notifications,
	}
}

// CreatePayout allocates available earnings into a new payout. Selection,
// optional split and locking all happen inside one transaction with the
// candidate rows held FOR UPDATE, so two concurrent requests can never pay
// out the same earning twice.
func (s *Service) CreatePayout(ctx context.Context, businessID int64, req *CreatePayoutRequest) (*Payout, error) {
	method := PayoutMethod(req.Method)
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}

	biz, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		return nil, ErrBusinessNotFound
	}

	destination := req.DestinationAccount
	if destination == nil {
		destination = biz.DestinationAccount
	}
	if destination == nil && method != PayoutMethodCheck {
		return nil, ErrNoDestinationAccount
	}

	if req.IdempotencyKey != nil {
		existing, err := s.repo.GetByIdempotencyKey(ctx, businessID, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.withEntryIDs(ctx, existing)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin payout transaction: %w", err)
	}
	defer tx.Rollback()

	var selection *Selection
	if len(req.EarningEntryIDs) > 0 {
		entries, err := s.earningsRepo.GetByIDsForUpdate(ctx, tx, req.EarningEntryIDs)
		if err != nil {
			return nil, err
		}
		selection, err = SelectExplicit(entries, req.EarningEntryIDs, businessID, req.Amount)
		if err != nil {
			return nil, err
		}
	} else {
		available, err := s.earningsRepo.ListAvailableForUpdate(ctx, tx, businessID)
		if err != nil {
			return nil, err
		}
		selection, err = SelectByAmount(available, req.Amount)
		if err != nil {
			return nil, err
		}
	}

	entryIDs := make([]int64, 0, len(selection.Entries)+1)
	for _, entry := range selection.Entries {
		entryIDs = append(entryIDs, entry.ID)
	}

	if selection.Split != nil {
		part, err := s.earningsRepo.ApplySplit(ctx, tx, selection.Split.Entry, selection.Split.Result)
		if err != nil {
			return nil, err
		}
		entryIDs = append(entryIDs, part.ID)
	}

	payout, err := s.repo.CreateTx(ctx, tx, &Payout{
		BusinessID:         businessID,
		TotalAmount:        selection.TotalAmount,
		FeeAmount:          selection.FeeAmount,
		NetAmount:          selection.NetAmount,
		CurrencyCode:       biz.CurrencyCode,
		Status:             PayoutStatusPending,
		Method:             method,
		DestinationAccount: destination,
		Reference:          uuid.NewString(),
		IdempotencyKey:     req.IdempotencyKey,
	})
	if err != nil {
		if IsUniqueViolation(err) && req.IdempotencyKey != nil {
			// A concurrent request with the same key won the race
			tx.Rollback()
			existing, getErr := s.repo.GetByIdempotencyKey(ctx, businessID, *req.IdempotencyKey)
			if getErr != nil {
				return nil, getErr
			}
			if existing != nil {
				return s.withEntryIDs(ctx, existing)
			}
		}
		return nil, err
	}

	if err := s.earningsRepo.MarkPaidOut(ctx, tx, entryIDs, payout.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payout transaction: %w", err)
	}

	payout.EarningEntryIDs = entryIDs

	if _, err := s.notifications.NotifyPayoutCreated(ctx, businessID, payout.NetAmount, payout.ID); err != nil {
		log.Printf("failed to create payout notification: %v", err)
	}

	return payout, nil
}

// GetByID retrieves a payout with its linked earning entry ids
func (s *Service) GetByID(ctx context.Context, id, businessID int64) (*Payout, error) {
	payout, err := s.getOwned(ctx, id, businessID)
	if err != nil {
		return nil, err
	}
	return s.withEntryIDs(ctx, payout)
}

// List retrieves a business's payouts, newest first
func (s *Service) List(ctx context.Context, businessID int64, page, perPage int) ([]*Payout, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByBusinessID(ctx, businessID, perPage, offset)
}

// MarkProcessing moves a pending payout to processing, marking the handoff
// to the downstream transfer rail
func (s *Service) MarkProcessing(ctx context.Context, id, businessID int64) (*Payout, error) {
	if _, err := s.getOwned(ctx, id, businessID); err != nil {
		return nil, err
	}

	payout, err := s.repo.MarkProcessing(ctx, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrInvalidTransition
	}

	return s.withEntryIDs(ctx, payout)
}

// Complete confirms the transfer settled. The payout and every linked earning
// flip to their terminal paid states in one transaction.
func (s *Service) Complete(ctx context.Context, id, businessID int64, transactionID string) (*Payout, error) {
	if _, err := s.getOwned(ctx, id, businessID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin completion transaction: %w", err)
	}
	defer tx.Rollback()

	payout, err := s.repo.CompleteTx(ctx, tx, id, transactionID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrInvalidTransition
	}

	if _, err := s.earningsRepo.MarkPaidByPayoutID(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit completion transaction: %w", err)
	}

	if _, err := s.notifications.NotifyPayoutCompleted(ctx, businessID, payout.NetAmount, payout.ID); err != nil {
		log.Printf("failed to create payout notification: %v", err)
	}

	return s.withEntryIDs(ctx, payout)
}

// Fail records a downstream transfer failure. The earnings stay locked to the
// payout so the business can cancel it to release them, or retry out of band.
func (s *Service) Fail(ctx context.Context, id, businessID int64, reason string) (*Payout, error) {
	if _, err := s.getOwned(ctx, id, businessID); err != nil {
		return nil, err
	}

	payout, err := s.repo.Fail(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrInvalidTransition
	}

	if _, err := s.notifications.NotifyPayoutFailed(ctx, businessID, payout.ID, reason); err != nil {
		log.Printf("failed to create payout notification: %v", err)
	}

	return s.withEntryIDs(ctx, payout)
}

// Cancel abandons a pending or failed payout and returns its earnings to the
// available pool, both in one transaction
func (s *Service) Cancel(ctx context.Context, id, businessID int64) (*Payout, error) {
	if _, err := s.getOwned(ctx, id, businessID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancellation transaction: %w", err)
	}
	defer tx.Rollback()

	payout, err := s.repo.CancelTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrInvalidTransition
	}

	if _, err := s.earningsRepo.ReleaseByPayoutID(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation transaction: %w", err)
	}

	return payout, nil
}

func (s *Service) getOwned(ctx context.Context, id, businessID int64) (*Payout, error) {
	payout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}
	if payout.BusinessID != businessID {
		return nil, ErrNotPayoutOwner
	}
	return payout, nil
}

func (s *Service) withEntryIDs(ctx context.Context, payout *Payout) (*Payout, error) {
	ids, err := s.earningsRepo.ListEntryIDsByPayoutID(ctx, payout.ID)
	if err != nil {
		return nil, err
	}
	payout.EarningEntryIDs = ids
	return payout, nil
}
