package notification

import (
	"context"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new notification
func (s *Service) Create(ctx context.Context, businessID int64, message string, entityType *string, entityID *string) (*Notification, error) {
	return s.repo.Create(ctx, businessID, message, entityType, entityID)
}

// ListByBusinessID retrieves notifications for a business
func (s *Service) ListByBusinessID(ctx context.Context, businessID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByBusinessID(ctx, businessID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, businessID int64) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.BusinessID != businessID {
		return ErrNotRecipient
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a business
func (s *Service) MarkAllAsRead(ctx context.Context, businessID int64) error {
	return s.repo.MarkAllAsRead(ctx, businessID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, businessID int64) (int, error) {
	return s.repo.GetUnreadCount(ctx, businessID)
}

// Helper methods for creating specific notification types

// NotifyEarningsAvailable records that an order's earnings became payable
func (s *Service) NotifyEarningsAvailable(ctx context.Context, businessID int64, count int64, orderID string) (*Notification, error) {
	message := fmt.Sprintf("%d earning entries from order %s are now available for payout", count, orderID)
	entityType := "ORDER"
	return s.repo.Create(ctx, businessID, message, &entityType, &orderID)
}

// NotifyEarningsReversed records that an order's earnings were reversed
func (s *Service) NotifyEarningsReversed(ctx context.Context, businessID int64, count int64, orderID string) (*Notification, error) {
	message := fmt.Sprintf("%d earning entries from order %s were reversed", count, orderID)
	entityType := "ORDER"
	return s.repo.Create(ctx, businessID, message, &entityType, &orderID)
}

// NotifyPayoutCreated records that a payout request was accepted
func (s *Service) NotifyPayoutCreated(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*Notification, error) {
	message := fmt.Sprintf("Payout of %d cents requested", netAmount)
	entityType := "PAYOUT"
	entityID := fmt.Sprintf("%d", payoutID)
	return s.repo.Create(ctx, businessID, message, &entityType, &entityID)
}

// NotifyPayoutCompleted records that a payout was paid
func (s *Service) NotifyPayoutCompleted(ctx context.Context, businessID int64, netAmount int64, payoutID int64) (*Notification, error) {
	message := fmt.Sprintf("Payout of %d cents completed", netAmount)
	entityType := "PAYOUT"
	entityID := fmt.Sprintf("%d", payoutID)
	return s.repo.Create(ctx, businessID, message, &entityType, &entityID)
}

// NotifyPayoutFailed records that a payout failed downstream
func (s *Service) NotifyPayoutFailed(ctx context.Context, businessID int64, payoutID int64, reason string) (*Notification, error) {
	message := "Payout failed: " + reason
	entityType := "PAYOUT"
	entityID := fmt.Sprintf("%d", payoutID)
	return s.repo.Create(ctx, businessID, message, &entityType, &entityID)
}
