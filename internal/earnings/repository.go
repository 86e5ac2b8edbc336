package earnings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/rashedq/marketpay/internal/earnings/fees"
)

// ListCriteria is the explicit query contract for listing earning entries.
// Soft-deleted rows are excluded unless IncludeDeleted is set.
type ListCriteria struct {
	BusinessID     int64
	Statuses       []EntryStatus
	OrderID        *string
	ConsultationID *string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

const entryColumns = `id, business_id, order_id, line_item_id, consultation_id, type, description,
	gross_amount, platform_fee, payment_processing_fee, net_amount, clinician_fee, currency_code,
	status, available_at, paid_at, payout_id, metadata, created_at, updated_at, deleted_at`

// Repository handles earning entry persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new earnings repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*EarningEntry, error) {
	entry := &EarningEntry{}
	err := row.Scan(
		&entry.ID,
		&entry.BusinessID,
		&entry.OrderID,
		&entry.LineItemID,
		&entry.ConsultationID,
		&entry.Type,
		&entry.Description,
		&entry.GrossAmount,
		&entry.PlatformFee,
		&entry.PaymentProcessingFee,
		&entry.NetAmount,
		&entry.ClinicianFee,
		&entry.CurrencyCode,
		&entry.Status,
		&entry.AvailableAt,
		&entry.PaidAt,
		&entry.PayoutID,
		&entry.Metadata,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreateBatch inserts a set of earning entries in one transaction. A booking
// (order or consultation) lands fully or not at all; a failed insert must not
// leave part of its revenue on the ledger.
func (r *Repository) CreateBatch(ctx context.Context, entries []*EarningEntry) ([]*EarningEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO earning_entries (business_id, order_id, line_item_id, consultation_id, type,
			description, gross_amount, platform_fee, payment_processing_fee, net_amount,
			clinician_fee, currency_code, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + entryColumns

	created := make([]*EarningEntry, 0, len(entries))
	for _, e := range entries {
		entry, err := scanEntry(tx.QueryRowContext(ctx, query,
			e.BusinessID,
			e.OrderID,
			e.LineItemID,
			e.ConsultationID,
			e.Type,
			e.Description,
			e.GrossAmount,
			e.PlatformFee,
			e.PaymentProcessingFee,
			e.NetAmount,
			e.ClinicianFee,
			e.CurrencyCode,
			e.Status,
			e.Metadata,
		))
		if err != nil {
			return nil, fmt.Errorf("failed to create earning entry: %w", err)
		}
		created = append(created, entry)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return created, nil
}

// GetByID retrieves an earning entry by its ID
func (r *Repository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*EarningEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM earning_entries WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get earning entry: %w", err)
	}

	return entry, nil
}

// List retrieves earning entries matching the criteria, oldest first
func (r *Repository) List(ctx context.Context, c ListCriteria) ([]*EarningEntry, int, error) {
	conditions := []string{"business_id = $1"}
	args := []any{c.BusinessID}

	if len(c.Statuses) > 0 {
		statuses := make([]string, len(c.Statuses))
		for i, s := range c.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if c.OrderID != nil {
		args = append(args, *c.OrderID)
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if c.ConsultationID != nil {
		args = append(args, *c.ConsultationID)
		conditions = append(conditions, fmt.Sprintf("consultation_id = $%d", len(args)))
	}
	if !c.IncludeDeleted {
		conditions = append(conditions, "deleted_at IS NULL")
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM earning_entries WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count earning entries: %w", err)
	}

	args = append(args, c.Limit, c.Offset)
	query := fmt.Sprintf(`SELECT %s FROM earning_entries WHERE %s ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`,
		entryColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list earning entries: %w", err)
	}
	defer rows.Close()

	var entries []*EarningEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan earning entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

// HasEntriesForOrder reports whether non-reversed entries already exist for an order
func (r *Repository) HasEntriesForOrder(ctx context.Context, orderID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM earning_entries
			WHERE order_id = $1 AND status != $2 AND deleted_at IS NULL
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, orderID, EntryStatusReversed).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check order entries: %w", err)
	}

	return exists, nil
}

// HasEntriesForConsultation reports whether non-reversed entries already exist
// for a consultation
func (r *Repository) HasEntriesForConsultation(ctx context.Context, consultationID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM earning_entries
			WHERE consultation_id = $1 AND status != $2 AND deleted_at IS NULL
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, consultationID, EntryStatusReversed).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check consultation entries: %w", err)
	}

	return exists, nil
}

// ListByOrderID retrieves all non-deleted entries for an order
func (r *Repository) ListByOrderID(ctx context.Context, orderID string) ([]*EarningEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM earning_entries
		WHERE order_id = $1 AND deleted_at IS NULL ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order entries: %w", err)
	}
	defer rows.Close()

	var entries []*EarningEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// MakeAvailableByOrderID moves an order's pending entries to available
func (r *Repository) MakeAvailableByOrderID(ctx context.Context, orderID string) (int64, error) {
	query := `
		UPDATE earning_entries
		SET status = $2, available_at = NOW(), updated_at = NOW()
		WHERE order_id = $1 AND status = $3 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, orderID, EntryStatusAvailable, EntryStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to make earnings available: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// MakeAvailableByConsultationID moves a consultation's pending entries to available
func (r *Repository) MakeAvailableByConsultationID(ctx context.Context, consultationID string) (int64, error) {
	query := `
		UPDATE earning_entries
		SET status = $2, available_at = NOW(), updated_at = NOW()
		WHERE consultation_id = $1 AND status = $3 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, consultationID, EntryStatusAvailable, EntryStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to approve consultation earnings: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// ReverseByOrderID reverses an order's pending/available entries.
// Entries already paid out or paid are skipped - no clawback through this path.
func (r *Repository) ReverseByOrderID(ctx context.Context, orderID string) (int64, error) {
	query := `
		UPDATE earning_entries
		SET status = $2, updated_at = NOW()
		WHERE order_id = $1 AND status = ANY($3) AND payout_id IS NULL AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, orderID, EntryStatusReversed,
		pq.Array([]string{string(EntryStatusPending), string(EntryStatusAvailable)}))
	if err != nil {
		return 0, fmt.Errorf("failed to reverse earnings: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// SoftDelete marks an entry deleted without removing the row
func (r *Repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE earning_entries SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete earning entry: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// BalanceSummary aggregates the business's pending, available and hold-eligible totals.
// An available entry is eligible once its available_at is at or before eligibleBefore.
func (r *Repository) BalanceSummary(ctx context.Context, businessID int64, eligibleBefore time.Time) (*BalanceSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(net_amount) FILTER (WHERE status = $2), 0) AS pending_total,
			COALESCE(SUM(net_amount) FILTER (WHERE status = $3), 0) AS available_total,
			COALESCE(SUM(net_amount) FILTER (WHERE status = $3 AND available_at <= $4), 0) AS eligible_total,
			COUNT(*) FILTER (WHERE status = $3) AS available_count
		FROM earning_entries
		WHERE business_id = $1 AND payout_id IS NULL AND deleted_at IS NULL
	`

	summary := &BalanceSummary{BusinessID: businessID}
	err := r.db.QueryRowContext(ctx, query, businessID, EntryStatusPending, EntryStatusAvailable, eligibleBefore).Scan(
		&summary.PendingTotal,
		&summary.AvailableTotal,
		&summary.EligibleTotal,
		&summary.AvailableCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance summary: %w", err)
	}

	return summary, nil
}

// ListAvailableForUpdate fetches a business's available, unlocked entries oldest
// first, row-locked for the duration of the payout transaction
func (r *Repository) ListAvailableForUpdate(ctx context.Context, tx *sql.Tx, businessID int64) ([]*EarningEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM earning_entries
		WHERE business_id = $1 AND status = $2 AND payout_id IS NULL AND deleted_at IS NULL
		ORDER BY created_at ASC, id ASC
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, businessID, EntryStatusAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to lock available earnings: %w", err)
	}
	defer rows.Close()

	var entries []*EarningEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// GetByIDsForUpdate fetches entries by id regardless of status, row-locked
func (r *Repository) GetByIDsForUpdate(ctx context.Context, tx *sql.Tx, ids []int64) ([]*EarningEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM earning_entries
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to lock earnings by id: %w", err)
	}
	defer rows.Close()

	var entries []*EarningEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earning entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ApplySplit replaces the original entry's amounts with the remainder and
// inserts a new entry holding the part, tagged with its lineage. Both rows
// stay available; the caller locks the part into the payout afterwards.
func (r *Repository) ApplySplit(ctx context.Context, tx *sql.Tx, original *EarningEntry, result fees.SplitResult) (*EarningEntry, error) {
	updateQuery := `
		UPDATE earning_entries
		SET gross_amount = $2, platform_fee = $3, payment_processing_fee = $4,
			net_amount = $5, clinician_fee = $6, updated_at = NOW()
		WHERE id = $1
	`

	_, err := tx.ExecContext(ctx, updateQuery, original.ID,
		result.Remainder.Gross,
		result.Remainder.PlatformFee,
		result.Remainder.ProcessingFee,
		result.Remainder.Net,
		result.Remainder.ClinicianFee,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to apply split remainder: %w", err)
	}

	metadata := Metadata{"split_from": original.ID}
	for k, v := range original.Metadata {
		if _, exists := metadata[k]; !exists {
			metadata[k] = v
		}
	}

	insertQuery := `
		INSERT INTO earning_entries (business_id, order_id, line_item_id, consultation_id, type,
			description, gross_amount, platform_fee, payment_processing_fee, net_amount,
			clinician_fee, currency_code, status, available_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + entryColumns

	part, err := scanEntry(tx.QueryRowContext(ctx, insertQuery,
		original.BusinessID,
		original.OrderID,
		original.LineItemID,
		original.ConsultationID,
		original.Type,
		original.Description,
		result.Part.Gross,
		result.Part.PlatformFee,
		result.Part.ProcessingFee,
		result.Part.Net,
		result.Part.ClinicianFee,
		original.CurrencyCode,
		EntryStatusAvailable,
		original.AvailableAt,
		metadata,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert split part: %w", err)
	}

	return part, nil
}

// MarkPaidOut locks the given entries into a payout
func (r *Repository) MarkPaidOut(ctx context.Context, tx *sql.Tx, ids []int64, payoutID int64) error {
	query := `
		UPDATE earning_entries
		SET status = $2, payout_id = $3, updated_at = NOW()
		WHERE id = ANY($1)
	`

	_, err := tx.ExecContext(ctx, query, pq.Array(ids), EntryStatusPaidOut, payoutID)
	if err != nil {
		return fmt.Errorf("failed to mark earnings paid out: %w", err)
	}

	return nil
}

// ReleaseByPayoutID returns a cancelled payout's entries to available
func (r *Repository) ReleaseByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error) {
	query := `
		UPDATE earning_entries
		SET status = $2, payout_id = NULL, updated_at = NOW()
		WHERE payout_id = $1 AND status = $3
	`

	result, err := tx.ExecContext(ctx, query, payoutID, EntryStatusAvailable, EntryStatusPaidOut)
	if err != nil {
		return 0, fmt.Errorf("failed to release earnings: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// MarkPaidByPayoutID flips a completed payout's entries to paid, all together
func (r *Repository) MarkPaidByPayoutID(ctx context.Context, tx *sql.Tx, payoutID int64) (int64, error) {
	query := `
		UPDATE earning_entries
		SET status = $2, paid_at = NOW(), updated_at = NOW()
		WHERE payout_id = $1 AND status = $3
	`

	result, err := tx.ExecContext(ctx, query, payoutID, EntryStatusPaid, EntryStatusPaidOut)
	if err != nil {
		return 0, fmt.Errorf("failed to mark earnings paid: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}

// ListEntryIDsByPayoutID returns the ids of entries linked to a payout
func (r *Repository) ListEntryIDsByPayoutID(ctx context.Context, payoutID int64) ([]int64, error) {
	query := `SELECT id FROM earning_entries WHERE payout_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, payoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payout entries: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
