package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rashedq/marketpay/internal/business"
	"github.com/rashedq/marketpay/internal/earnings/fees"
	"github.com/rashedq/marketpay/internal/notification"
)

// Common errors
var (
	ErrInvalidOrder                = errors.New("order id and at least one line item are required")
	ErrInvalidConsultation         = errors.New("consultation id is required")
	ErrBusinessNotFound            = errors.New("business not found")
	ErrClinicianNotFound           = errors.New("clinician not found")
	ErrOrderAlreadyRecorded        = errors.New("earnings already recorded for this order")
	ErrConsultationAlreadyRecorded = errors.New("earnings already recorded for this consultation")
	ErrNoEarningsForOrder          = errors.New("no earnings found for this order")
	ErrNoEarningsForConsultation   = errors.New("no pending earnings found for this consultation")
	ErrEntryNotFound               = errors.New("earning entry not found")
	ErrEntryLocked                 = errors.New("earning entry is locked to a payout")
)

// entryStore is the persistence contract the service needs from the repository
type entryStore interface {
	CreateBatch(ctx context.Context, entries []*EarningEntry) ([]*EarningEntry, error)
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*EarningEntry, error)
	List(ctx context.Context, c ListCriteria) ([]*EarningEntry, int, error)
	HasEntriesForOrder(ctx context.Context, orderID string) (bool, error)
	HasEntriesForConsultation(ctx context.Context, consultationID string) (bool, error)
	ListByOrderID(ctx context.Context, orderID string) ([]*EarningEntry, error)
	MakeAvailableByOrderID(ctx context.Context, orderID string) (int64, error)
	MakeAvailableByConsultationID(ctx context.Context, consultationID string) (int64, error)
	ReverseByOrderID(ctx context.Context, orderID string) (int64, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	BalanceSummary(ctx context.Context, businessID int64, eligibleBefore time.Time) (*BalanceSummary, error)
}

type payeeStore interface {
	GetByID(ctx context.Context, id int64) (*business.Business, error)
}

type notifier interface {
	NotifyEarningsAvailable(ctx context.Context, businessID int64, count int64, orderID string) (*notification.Notification, error)
	NotifyEarningsReversed(ctx context.Context, businessID int64, count int64, orderID string) (*notification.Notification, error)
}

// Service handles earnings business logic
type Service struct {
	repo          entryStore
	businessRepo  payeeStore
	notifications notifier
}

// NewService creates a new earnings service with dependencies injected
func NewService(repo entryStore, businessRepo payeeStore, notifications notifier) *Service {
	return &Service{
		repo:          repo,
		businessRepo:  businessRepo,
		notifications: notifications,
	}
}

// RecordOrderEarnings fans an order into pending earning entries: one per line
// item plus one for shipping when present. The whole booking is persisted in
// one batch so an order is never left partially recorded.
func (s *Service) RecordOrderEarnings(ctx context.Context, businessID int64, req *RecordOrderRequest) ([]*EarningEntry, error) {
	if req.OrderID == "" || len(req.Items) == 0 {
		return nil, ErrInvalidOrder
	}

	owner, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrBusinessNotFound
	}

	exists, err := s.repo.HasEntriesForOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrOrderAlreadyRecorded
	}

	lines, orderFees, err := fees.BuildOrderEarnings(req.Items, req.ShippingTotal)
	if err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = owner.CurrencyCode
	}

	orderID := req.OrderID
	entries := make([]*EarningEntry, 0, len(lines))
	for _, line := range lines {
		entry := &EarningEntry{
			BusinessID:           businessID,
			OrderID:              &orderID,
			LineItemID:           line.LineItemID,
			Type:                 EntryTypeProductSale,
			Description:          fmt.Sprintf("Product sale for order %s", orderID),
			GrossAmount:          line.Gross,
			PlatformFee:          line.PlatformFee,
			PaymentProcessingFee: line.ProcessingFee,
			NetAmount:            line.Net,
			CurrencyCode:         currency,
			Status:               EntryStatusPending,
			Metadata: Metadata{
				"ratio":               line.Ratio,
				"percentage_fee_part": line.PercentageFeePart,
				"fixed_fee_part":      line.FixedFeePart,
				"order_total":         orderFees.OrderTotal,
				"order_processor_fee": orderFees.TotalProcessorFee,
			},
		}
		if line.Kind == fees.LineKindShippingFee {
			entry.Type = EntryTypeShippingFee
			entry.Description = fmt.Sprintf("Shipping for order %s", orderID)
		}
		entries = append(entries, entry)
	}

	return s.repo.CreateBatch(ctx, entries)
}

// RecordConsultationEarnings splits a consultation fee between clinician and
// business after the platform fee and books both slices as pending entries,
// in one batch
func (s *Service) RecordConsultationEarnings(ctx context.Context, businessID int64, req *RecordConsultationRequest) ([]*EarningEntry, error) {
	if req.ConsultationID == "" {
		return nil, ErrInvalidConsultation
	}

	owner, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrBusinessNotFound
	}
	if req.ClinicianID != nil {
		clinician, err := s.businessRepo.GetByID(ctx, *req.ClinicianID)
		if err != nil {
			return nil, err
		}
		if clinician == nil {
			return nil, ErrClinicianNotFound
		}
	}

	exists, err := s.repo.HasEntriesForConsultation(ctx, req.ConsultationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConsultationAlreadyRecorded
	}

	split, err := fees.SplitConsultationFee(req.Fee, req.ClinicianID != nil)
	if err != nil {
		return nil, err
	}

	currency := req.CurrencyCode
	if currency == "" {
		currency = owner.CurrencyCode
	}

	consultationID := req.ConsultationID
	var entries []*EarningEntry

	if req.ClinicianID != nil {
		// Clinicians are paid directly: the share is booked against the
		// clinician's own payee account, with no further fees
		entries = append(entries, &EarningEntry{
			BusinessID:     *req.ClinicianID,
			ConsultationID: &consultationID,
			Type:           EntryTypeClinicianFee,
			Description:    fmt.Sprintf("Clinician fee for consultation %s", consultationID),
			GrossAmount:    split.ClinicianShare,
			NetAmount:      split.ClinicianShare,
			CurrencyCode:   currency,
			Status:         EntryStatusPending,
			Metadata: Metadata{
				"total_fee_cents": split.TotalCents,
				"business_id":     businessID,
			},
		})
	}

	businessEntry := &EarningEntry{
		BusinessID:     businessID,
		ConsultationID: &consultationID,
		Type:           EntryTypeConsultationFee,
		Description:    fmt.Sprintf("Consultation fee for consultation %s", consultationID),
		GrossAmount:    split.BusinessShare,
		PlatformFee:    split.PlatformFee,
		NetAmount:      split.BusinessShare,
		CurrencyCode:   currency,
		Status:         EntryStatusPending,
		Metadata: Metadata{
			"total_fee_cents": split.TotalCents,
			"remaining":       split.Remaining,
		},
	}
	if req.ClinicianID != nil {
		clinicianShare := split.ClinicianShare
		businessEntry.ClinicianFee = &clinicianShare
	}
	entries = append(entries, businessEntry)

	return s.repo.CreateBatch(ctx, entries)
}

// MakeAvailableForOrder moves an order's pending earnings to available,
// triggered by the delivery event
func (s *Service) MakeAvailableForOrder(ctx context.Context, orderID string) (int64, error) {
	count, err := s.repo.MakeAvailableByOrderID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		exists, err := s.repo.HasEntriesForOrder(ctx, orderID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNoEarningsForOrder
		}
		return 0, nil
	}

	// Notification failure must not fail the transition
	if entries, err := s.repo.ListByOrderID(ctx, orderID); err == nil {
		for _, businessID := range distinctBusinessIDs(entries) {
			s.notifications.NotifyEarningsAvailable(ctx, businessID, count, orderID)
		}
	}

	return count, nil
}

// CancelForOrder reverses an order's pending/available earnings after a
// cancellation or refund. Entries already paid out are left untouched.
func (s *Service) CancelForOrder(ctx context.Context, orderID string) (int64, error) {
	count, err := s.repo.ReverseByOrderID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		exists, err := s.repo.HasEntriesForOrder(ctx, orderID)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNoEarningsForOrder
		}
		return 0, nil
	}

	if entries, err := s.repo.ListByOrderID(ctx, orderID); err == nil {
		for _, businessID := range distinctBusinessIDs(entries) {
			s.notifications.NotifyEarningsReversed(ctx, businessID, count, orderID)
		}
	}

	return count, nil
}

// ApproveConsultation moves a consultation's pending earnings to available
func (s *Service) ApproveConsultation(ctx context.Context, consultationID string) (int64, error) {
	count, err := s.repo.MakeAvailableByConsultationID(ctx, consultationID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNoEarningsForConsultation
	}
	return count, nil
}

// GetByID retrieves an earning entry
func (s *Service) GetByID(ctx context.Context, id int64, includeDeleted bool) (*EarningEntry, error) {
	entry, err := s.repo.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// List retrieves earning entries for a business by explicit criteria
func (s *Service) List(ctx context.Context, c ListCriteria) ([]*EarningEntry, int, error) {
	if c.Limit < 1 || c.Limit > 100 {
		c.Limit = 20
	}
	if c.Offset < 0 {
		c.Offset = 0
	}

	return s.repo.List(ctx, c)
}

// Delete soft-deletes an earning entry. Entries locked to a payout cannot be
// deleted.
func (s *Service) Delete(ctx context.Context, id, businessID int64) error {
	entry, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return err
	}
	if entry == nil || entry.BusinessID != businessID {
		return ErrEntryNotFound
	}
	if entry.Locked() {
		return ErrEntryLocked
	}

	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEntryNotFound
	}

	return nil
}

// Balance returns the business's earnings position. The eligible total counts
// available earnings whose configured hold period has elapsed.
func (s *Service) Balance(ctx context.Context, businessID int64) (*BalanceSummary, error) {
	owner, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrBusinessNotFound
	}

	eligibleBefore := time.Now().Add(-time.Duration(owner.PayoutHoldHours) * time.Hour)
	return s.repo.BalanceSummary(ctx, businessID, eligibleBefore)
}

func distinctBusinessIDs(entries []*EarningEntry) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, e := range entries {
		if !seen[e.BusinessID] {
			seen[e.BusinessID] = true
			ids = append(ids, e.BusinessID)
		}
	}
	return ids
}
