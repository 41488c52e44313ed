package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/altuhealth/claims-api/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const batchCols = `id, batch_reference, payment_date, total_amount, status,
	description, created_at, updated_at`

func scanBatch(row pgx.Row) (*Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.BatchReference, &b.PaymentDate, &b.TotalAmount,
		&b.Status, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{}
		}
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) Create(ctx context.Context, b *Batch) error {
	query := `
		INSERT INTO payment_batches (batch_reference, payment_date, total_amount, status, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		b.BatchReference, b.PaymentDate, b.TotalAmount, b.Status, b.Description,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Batch, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_batches WHERE id = $1`, batchCols)
	return scanBatch(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payment_batches WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM payment_batches WHERE batch_reference = $1)`, reference,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, b *Batch) error {
	query := `
		UPDATE payment_batches SET
			payment_date = $2, total_amount = $3, status = $4, description = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.conn(ctx).QueryRow(ctx, query,
		b.ID, b.PaymentDate, b.TotalAmount, b.Status, b.Description,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{}
	}
	return err
}

func (r *repoPG) List(ctx context.Context, status Status, limit, offset int) ([]*Batch, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_batches`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM payment_batches%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		batchCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repoPG) TotalPaid(ctx context.Context, id uuid.UUID) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_processed), 0) FROM claims WHERE payment_batch_id = $1`, id,
	).Scan(&total)
	return total, err
}
