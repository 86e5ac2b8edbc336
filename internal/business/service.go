package business

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrBusinessNotFound  = errors.New("business not found")
	ErrEmailAlreadyInUse = errors.New("email already in use")
)

// Service handles business logic for payee accounts
type Service struct {
	repo *Repository
}

// NewService creates a new business service with repository dependency injected
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new business
func (s *Service) Create(ctx context.Context, req *CreateBusinessRequest) (*Business, error) {
	// Check if email is already in use
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyInUse
	}

	return s.repo.Create(ctx, req)
}

// GetByID retrieves a business by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Business, error) {
	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}

// List retrieves all businesses with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Business, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update modifies an existing business
func (s *Service) Update(ctx context.Context, id int64, req *UpdateBusinessRequest) (*Business, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrBusinessNotFound
	}

	return s.repo.Update(ctx, id, req)
}
