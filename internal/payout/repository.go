package payout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const payoutColumns = `id, business_id, total_amount, fee_amount, net_amount, currency_code, status,
	method, destination_account, reference, idempotency_key, requested_at, processed_at,
	completed_at, transaction_id, failure_reason, created_at`

// Repository handles payout data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new payout repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayout(row rowScanner) (*Payout, error) {
	payout := &Payout{}
	err := row.Scan(
		&payout.ID,
		&payout.BusinessID,
		&payout.TotalAmount,
		&payout.FeeAmount,
		&payout.NetAmount,
		&payout.CurrencyCode,
		&payout.Status,
		&payout.Method,
		&payout.DestinationAccount,
		&payout.Reference,
		&payout.IdempotencyKey,
		&payout.RequestedAt,
		&payout.ProcessedAt,
		&payout.CompletedAt,
		&payout.TransactionID,
		&payout.FailureReason,
		&payout.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return payout, nil
}

// IsUniqueViolation reports whether the error is a Postgres unique constraint
// violation (used to detect concurrent idempotent requests)
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateTx inserts a new payout within the allocation transaction
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, p *Payout) (*Payout, error) {
	query := `
		INSERT INTO payouts (business_id, total_amount, fee_amount, net_amount, currency_code,
			status, method, destination_account, reference, idempotency_key, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING ` + payoutColumns

	payout, err := scanPayout(tx.QueryRowContext(ctx, query,
		p.BusinessID,
		p.TotalAmount,
		p.FeeAmount,
		p.NetAmount,
		p.CurrencyCode,
		p.Status,
		p.Method,
		p.DestinationAccount,
		p.Reference,
		p.IdempotencyKey,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create payout: %w", err)
	}

	return payout, nil
}

// GetByID retrieves a payout by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`

	payout, err := scanPayout(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	return payout, nil
}

// GetByIdempotencyKey retrieves a payout by its business and idempotency key
func (r *Repository) GetByIdempotencyKey(ctx context.Context, businessID int64, key string) (*Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts
		WHERE business_id = $1 AND idempotency_key = $2`

	payout, err := scanPayout(r.db.QueryRowContext(ctx, query, businessID, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payout by idempotency key: %w", err)
	}

	return payout, nil
}

// ListByBusinessID retrieves payouts for a business, newest first
func (r *Repository) ListByBusinessID(ctx context.Context, businessID int64, limit, offset int) ([]*Payout, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM payouts WHERE business_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, businessID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	query := `SELECT ` + payoutColumns + ` FROM payouts
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, businessID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []*Payout
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, payout)
	}

	return payouts, total, nil
}

// MarkProcessing moves a pending payout to processing
func (r *Repository) MarkProcessing(ctx context.Context, id int64) (*Payout, error) {
	query := `
		UPDATE payouts
		SET status = $2, processed_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING ` + payoutColumns

	payout, err := scanPayout(r.db.QueryRowContext(ctx, query, id, PayoutStatusProcessing, PayoutStatusPending))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to mark payout processing: %w", err)
	}

	return payout, nil
}

// CompleteTx moves a processing payout to completed within the completion
// transaction that also flips its earnings to paid
func (r *Repository) CompleteTx(ctx context.Context, tx *sql.Tx, id int64, transactionID string) (*Payout, error) {
	query := `
		UPDATE payouts
		SET status = $2, completed_at = NOW(), transaction_id = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + payoutColumns

	payout, err := scanPayout(tx.QueryRowContext(ctx, query, id, PayoutStatusCompleted, transactionID, PayoutStatusProcessing))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to complete payout: %w", err)
	}

	return payout, nil
}

// Fail moves a processing payout to failed with the downstream reason.
// The linked earnings stay locked so the caller can retry or cancel.
func (r *Repository) Fail(ctx context.Context, id int64, reason string) (*Payout, error) {
	query := `
		UPDATE payouts
		SET status = $2, failure_reason = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + payoutColumns

	payout, err := scanPayout(r.db.QueryRowContext(ctx, query, id, PayoutStatusFailed, reason, PayoutStatusProcessing))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fail payout: %w", err)
	}

	return payout, nil
}

// CancelTx moves a pending or failed payout to cancelled within the
// cancellation transaction that also releases its earnings
func (r *Repository) CancelTx(ctx context.Context, tx *sql.Tx, id int64) (*Payout, error) {
	query := `
		UPDATE payouts
		SET status = $2
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + payoutColumns

	payout, err := scanPayout(tx.QueryRowContext(ctx, query, id, PayoutStatusCancelled,
		pq.Array([]string{string(PayoutStatusPending), string(PayoutStatusFailed)})))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to cancel payout: %w", err)
	}

	return payout, nil
}
