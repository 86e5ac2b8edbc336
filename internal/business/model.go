package business

import "time"

// Business represents a payee account: a tenant business or a directly-paid
// clinician. Earning entries and payouts are booked against these ids.
type Business struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	CurrencyCode       string    `json:"currency_code"`
	PayoutHoldHours    int       `json:"payout_hold_hours"`
	DestinationAccount *string   `json:"destination_account,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}
