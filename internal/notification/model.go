package notification

import "time"

// Notification represents an in-app notification for a business
type Notification struct {
	ID                int64     `json:"id"`
	BusinessID        int64     `json:"business_id"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // e.g., "PAYOUT", "ORDER"
	RelatedEntityID   *string   `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeEarningsAvailable NotificationType = "EARNINGS_AVAILABLE"
	NotificationTypeEarningsReversed  NotificationType = "EARNINGS_REVERSED"
	NotificationTypePayoutCreated     NotificationType = "PAYOUT_CREATED"
	NotificationTypePayoutCompleted   NotificationType = "PAYOUT_COMPLETED"
	NotificationTypePayoutFailed      NotificationType = "PAYOUT_FAILED"
)
