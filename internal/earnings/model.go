package earnings

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rashedq/marketpay/internal/earnings/fees"
)

// EntryStatus represents the lifecycle state of an earning entry
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusAvailable EntryStatus = "AVAILABLE"
	EntryStatusPaidOut   EntryStatus = "PAID_OUT"
	EntryStatusPaid      EntryStatus = "PAID"
	EntryStatusReversed  EntryStatus = "REVERSED"
)

// CanTransitionTo reports whether the ledger allows moving from s to next.
// PAID and REVERSED are terminal; a paid-out entry may only complete or be
// released by a payout cancellation. Reversal is never allowed once an entry
// has been paid out - a paid earning cannot be clawed back here.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case EntryStatusPending:
		return next == EntryStatusAvailable || next == EntryStatusReversed
	case EntryStatusAvailable:
		return next == EntryStatusPaidOut || next == EntryStatusReversed
	case EntryStatusPaidOut:
		return next == EntryStatusPaid || next == EntryStatusAvailable
	default:
		return false
	}
}

// EntryType classifies what an earning entry pays for
type EntryType string

const (
	EntryTypeProductSale     EntryType = "PRODUCT_SALE"
	EntryTypeConsultationFee EntryType = "CONSULTATION_FEE"
	EntryTypeShippingFee     EntryType = "SHIPPING_FEE"
	EntryTypePlatformFee     EntryType = "PLATFORM_FEE"
	EntryTypeClinicianFee    EntryType = "CLINICIAN_FEE"
)

// Metadata is a free-form JSONB column used for audit breadcrumbs
// (proration ratios, fee parts, split lineage)
type Metadata map[string]any

// Value implements driver.Valuer for JSONB storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	return json.Unmarshal(b, m)
}

// EarningEntry is one ledger line: money owed to a business (or clinician)
// from one cause. All amounts are integer minor currency units.
type EarningEntry struct {
	ID                   int64       `json:"id"`
	BusinessID           int64       `json:"business_id"`
	OrderID              *string     `json:"order_id,omitempty"`
	LineItemID           *string     `json:"line_item_id,omitempty"`
	ConsultationID       *string     `json:"consultation_id,omitempty"`
	Type                 EntryType   `json:"type"`
	Description          string      `json:"description"`
	GrossAmount          int64       `json:"gross_amount"`
	PlatformFee          int64       `json:"platform_fee"`
	PaymentProcessingFee int64       `json:"payment_processing_fee"`
	NetAmount            int64       `json:"net_amount"`
	ClinicianFee         *int64      `json:"clinician_fee,omitempty"`
	CurrencyCode         string      `json:"currency_code"`
	Status               EntryStatus `json:"status"`
	AvailableAt          *time.Time  `json:"available_at,omitempty"`
	PaidAt               *time.Time  `json:"paid_at,omitempty"`
	PayoutID             *int64      `json:"payout_id,omitempty"`
	Metadata             Metadata    `json:"metadata,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
	DeletedAt            *time.Time  `json:"deleted_at,omitempty"`
}

// Locked reports whether the entry is already linked to a payout
func (e *EarningEntry) Locked() bool {
	return e.PayoutID != nil
}

// Amounts returns the entry's monetary breakdown for fee math
func (e *EarningEntry) Amounts() fees.Amounts {
	return fees.Amounts{
		Gross:         e.GrossAmount,
		PlatformFee:   e.PlatformFee,
		ProcessingFee: e.PaymentProcessingFee,
		Net:           e.NetAmount,
		ClinicianFee:  e.ClinicianFee,
	}
}

// BalanceSummary aggregates a business's earnings position
type BalanceSummary struct {
	BusinessID     int64 `json:"business_id"`
	PendingTotal   int64 `json:"pending_total"`
	AvailableTotal int64 `json:"available_total"`
	// EligibleTotal counts only earnings whose hold period has elapsed
	EligibleTotal  int64 `json:"eligible_total"`
	AvailableCount int   `json:"available_count"`
}
