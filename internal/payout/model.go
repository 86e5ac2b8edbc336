package payout

import "time"

// PayoutStatus represents the lifecycle state of a payout
type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusCompleted  PayoutStatus = "COMPLETED"
	PayoutStatusFailed     PayoutStatus = "FAILED"
	PayoutStatusCancelled  PayoutStatus = "CANCELLED"
)

// PayoutMethod represents how the money leaves the platform
type PayoutMethod string

const (
	PayoutMethodACH           PayoutMethod = "ACH"
	PayoutMethodWire          PayoutMethod = "WIRE"
	PayoutMethodCheck         PayoutMethod = "CHECK"
	PayoutMethodStripeConnect PayoutMethod = "STRIPE_CONNECT"
)

// IsValid reports whether the method is one of the supported payout rails
func (m PayoutMethod) IsValid() bool {
	switch m {
	case PayoutMethodACH, PayoutMethodWire, PayoutMethodCheck, PayoutMethodStripeConnect:
		return true
	default:
		return false
	}
}

// Payout is a batched transfer request to one business over a set of earning
// entries. Totals are fixed at creation: total is the summed gross, fee the
// summed platform+processing fees and net the amount actually transferred.
type Payout struct {
	ID                 int64        `json:"id"`
	BusinessID         int64        `json:"business_id"`
	TotalAmount        int64        `json:"total_amount"`
	FeeAmount          int64        `json:"fee_amount"`
	NetAmount          int64        `json:"net_amount"`
	CurrencyCode       string       `json:"currency_code"`
	Status             PayoutStatus `json:"status"`
	Method             PayoutMethod `json:"method"`
	DestinationAccount *string      `json:"destination_account,omitempty"`
	Reference          string       `json:"reference"`
	IdempotencyKey     *string      `json:"idempotency_key,omitempty"`
	RequestedAt        time.Time    `json:"requested_at"`
	ProcessedAt        *time.Time   `json:"processed_at,omitempty"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
	TransactionID      *string      `json:"transaction_id,omitempty"`
	FailureReason      *string      `json:"failure_reason,omitempty"`
	EarningEntryIDs    []int64      `json:"earning_entry_ids,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}
