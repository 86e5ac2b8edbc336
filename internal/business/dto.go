package business

// CreateBusinessRequest represents the request to create a business
type CreateBusinessRequest struct {
	Name               string  `json:"name" validate:"required,min=1,max=255"`
	Email              string  `json:"email" validate:"required,email"`
	CurrencyCode       string  `json:"currency_code"`
	PayoutHoldHours    *int    `json:"payout_hold_hours,omitempty" validate:"omitempty,gte=0"`
	DestinationAccount *string `json:"destination_account,omitempty"`
}

// UpdateBusinessRequest represents the request to update a business
type UpdateBusinessRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	PayoutHoldHours    *int    `json:"payout_hold_hours,omitempty" validate:"omitempty,gte=0"`
	DestinationAccount *string `json:"destination_account,omitempty"`
}

// BusinessResponse represents the response for a business
type BusinessResponse struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	CurrencyCode       string  `json:"currency_code"`
	PayoutHoldHours    int     `json:"payout_hold_hours"`
	DestinationAccount *string `json:"destination_account,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// ToResponse converts a Business model to a BusinessResponse DTO
func (b *Business) ToResponse() *BusinessResponse {
	return &BusinessResponse{
		ID:                 b.ID,
		Name:               b.Name,
		Email:              b.Email,
		CurrencyCode:       b.CurrencyCode,
		PayoutHoldHours:    b.PayoutHoldHours,
		DestinationAccount: b.DestinationAccount,
		CreatedAt:          b.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
