package earnings

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rashedq/marketpay/internal/earnings/fees"
)

// RecordOrderRequest is the payload the order source sends when an order is placed
type RecordOrderRequest struct {
	OrderID       string           `json:"order_id" validate:"required"`
	Items         []fees.OrderItem `json:"items" validate:"required,min=1"`
	ShippingTotal int64            `json:"shipping_total"`
	CurrencyCode  string           `json:"currency_code"`
}

// RecordConsultationRequest is the payload the consultation source sends.
// The fee arrives in decimal dollars and is converted to integer cents.
type RecordConsultationRequest struct {
	ConsultationID string          `json:"consultation_id" validate:"required"`
	ClinicianID    *int64          `json:"clinician_id,omitempty"`
	Fee            decimal.Decimal `json:"fee" validate:"required"`
	CurrencyCode   string          `json:"currency_code"`
}

// EarningResponse represents the response for an earning entry
type EarningResponse struct {
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
	AvailableAt          *string     `json:"available_at,omitempty"`
	PaidAt               *string     `json:"paid_at,omitempty"`
	PayoutID             *int64      `json:"payout_id,omitempty"`
	Metadata             Metadata    `json:"metadata,omitempty"`
	CreatedAt            string      `json:"created_at"`
	DeletedAt            *string     `json:"deleted_at,omitempty"`
}

// ToResponse converts an EarningEntry model to an EarningResponse DTO
func (e *EarningEntry) ToResponse() *EarningResponse {
	return &EarningResponse{
		ID:                   e.ID,
		BusinessID:           e.BusinessID,
		OrderID:              e.OrderID,
		LineItemID:           e.LineItemID,
		ConsultationID:       e.ConsultationID,
		Type:                 e.Type,
		Description:          e.Description,
		GrossAmount:          e.GrossAmount,
		PlatformFee:          e.PlatformFee,
		PaymentProcessingFee: e.PaymentProcessingFee,
		NetAmount:            e.NetAmount,
		ClinicianFee:         e.ClinicianFee,
		CurrencyCode:         e.CurrencyCode,
		Status:               e.Status,
		AvailableAt:          formatTime(e.AvailableAt),
		PaidAt:               formatTime(e.PaidAt),
		PayoutID:             e.PayoutID,
		Metadata:             e.Metadata,
		CreatedAt:            e.CreatedAt.Format(time.RFC3339),
		DeletedAt:            formatTime(e.DeletedAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
