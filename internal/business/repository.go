package business

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles business data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new business repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new business into the database
func (r *Repository) Create(ctx context.Context, req *CreateBusinessRequest) (*Business, error) {
	currency := req.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	holdHours := 0
	if req.PayoutHoldHours != nil {
		holdHours = *req.PayoutHoldHours
	}

	query := `
		INSERT INTO businesses (name, email, currency_code, payout_hold_hours, destination_account)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, currency_code, payout_hold_hours, destination_account, created_at
	`

	business := &Business{}
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Email, currency, holdHours, req.DestinationAccount).Scan(
		&business.ID,
		&business.Name,
		&business.Email,
		&business.CurrencyCode,
		&business.PayoutHoldHours,
		&business.DestinationAccount,
		&business.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create business: %w", err)
	}

	return business, nil
}

// GetByID retrieves a business by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Business, error) {
	query := `
		SELECT id, name, email, currency_code, payout_hold_hours, destination_account, created_at
		FROM businesses
		WHERE id = $1
	`

	business := &Business{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&business.ID,
		&business.Name,
		&business.Email,
		&business.CurrencyCode,
		&business.PayoutHoldHours,
		&business.DestinationAccount,
		&business.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business: %w", err)
	}

	return business, nil
}

// GetByEmail retrieves a business by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Business, error) {
	query := `
		SELECT id, name, email, currency_code, payout_hold_hours, destination_account, created_at
		FROM businesses
		WHERE email = $1
	`

	business := &Business{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&business.ID,
		&business.Name,
		&business.Email,
		&business.CurrencyCode,
		&business.PayoutHoldHours,
		&business.DestinationAccount,
		&business.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get business by email: %w", err)
	}

	return business, nil
}

// List retrieves businesses with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Business, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count businesses: %w", err)
	}

	query := `
		SELECT id, name, email, currency_code, payout_hold_hours, destination_account, created_at
		FROM businesses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	var businesses []*Business
	for rows.Next() {
		business := &Business{}
		if err := rows.Scan(
			&business.ID,
			&business.Name,
			&business.Email,
			&business.CurrencyCode,
			&business.PayoutHoldHours,
			&business.DestinationAccount,
			&business.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, business)
	}

	return businesses, total, nil
}

// Update modifies an existing business
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateBusinessRequest) (*Business, error) {
	query := `
		UPDATE businesses
		SET name = COALESCE($2, name),
			payout_hold_hours = COALESCE($3, payout_hold_hours),
			destination_account = COALESCE($4, destination_account)
		WHERE id = $1
		RETURNING id, name, email, currency_code, payout_hold_hours, destination_account, created_at
	`

	business := &Business{}
	err := r.db.QueryRowContext(ctx, query, id, req.Name, req.PayoutHoldHours, req.DestinationAccount).Scan(
		&business.ID,
		&business.Name,
		&business.Email,
		&business.CurrencyCode,
		&business.PayoutHoldHours,
		&business.DestinationAccount,
		&business.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update business: %w", err)
	}

	return business, nil
}
