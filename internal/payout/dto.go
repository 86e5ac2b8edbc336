package payout

import "time"

// CreatePayoutRequest represents the request to create a payout.
// Either EarningEntryIDs (explicit selection) or Amount (greedy allocation)
// drives the selection; omitting both pays out everything available.
type CreatePayoutRequest struct {
	Amount             *int64  `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Method             string  `json:"method" validate:"required,oneof=ACH WIRE CHECK STRIPE_CONNECT"`
	DestinationAccount *string `json:"destination_account,omitempty"`
	EarningEntryIDs    []int64 `json:"earning_entry_ids,omitempty"`
	IdempotencyKey     *string `json:"idempotency_key,omitempty"`
}

// CompletePayoutRequest carries the processor confirmation
type CompletePayoutRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// FailPayoutRequest carries the downstream failure reason
type FailPayoutRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// PayoutResponse represents the response for a payout
type PayoutResponse struct {
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
	RequestedAt        string       `json:"requested_at"`
	ProcessedAt        *string      `json:"processed_at,omitempty"`
	CompletedAt        *string      `json:"completed_at,omitempty"`
	TransactionID      *string      `json:"transaction_id,omitempty"`
	FailureReason      *string      `json:"failure_reason,omitempty"`
	EarningEntryIDs    []int64      `json:"earning_entry_ids,omitempty"`
}

// ToResponse converts a Payout model to a PayoutResponse DTO
func (p *Payout) ToResponse() *PayoutResponse {
	return &PayoutResponse{
		ID:                 p.ID,
		BusinessID:         p.BusinessID,
		TotalAmount:        p.TotalAmount,
		FeeAmount:          p.FeeAmount,
		NetAmount:          p.NetAmount,
		CurrencyCode:       p.CurrencyCode,
		Status:             p.Status,
		Method:             p.Method,
		DestinationAccount: p.DestinationAccount,
		Reference:          p.Reference,
		RequestedAt:        p.RequestedAt.Format(time.RFC3339),
		ProcessedAt:        formatTime(p.ProcessedAt),
		CompletedAt:        formatTime(p.CompletedAt),
		TransactionID:      p.TransactionID,
		FailureReason:      p.FailureReason,
		EarningEntryIDs:    p.EarningEntryIDs,
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
