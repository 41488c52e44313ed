package authcode

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

const codeCols = `id, code, enrollee_id, provider_id, diagnosis_id, valid_from,
	valid_to, amount_authorized, status, is_used, used_amount, used_at, notes,
	created_at, updated_at`

func scanCode(row pgx.Row) (*AuthorizationCode, error) {
	var ac AuthorizationCode
	err := row.Scan(&ac.ID, &ac.Code, &ac.EnrolleeID, &ac.ProviderID, &ac.DiagnosisID,
		&ac.ValidFrom, &ac.ValidTo, &ac.AmountAuthorized, &ac.Status, &ac.IsUsed,
		&ac.UsedAmount, &ac.UsedAt, &ac.Notes, &ac.CreatedAt, &ac.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{}
		}
		return nil, err
	}
	return &ac, nil
}

func (r *repoPG) Create(ctx context.Context, ac *AuthorizationCode) error {
	query := `
		INSERT INTO authorization_codes (code, enrollee_id, provider_id, diagnosis_id,
			valid_from, valid_to, amount_authorized, status, is_used, used_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	return r.conn(ctx).QueryRow(ctx, query,
		ac.Code, ac.EnrolleeID, ac.ProviderID, ac.DiagnosisID,
		ac.ValidFrom, ac.ValidTo, ac.AmountAuthorized, ac.Status, ac.IsUsed,
		ac.UsedAmount, ac.Notes,
	).Scan(&ac.ID, &ac.CreatedAt, &ac.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorization_codes WHERE id = $1`, codeCols)
	return scanCode(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*AuthorizationCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorization_codes WHERE id = $1 FOR UPDATE`, codeCols)
	return scanCode(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*AuthorizationCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorization_codes WHERE code = $1`, codeCols)
	return scanCode(r.conn(ctx).QueryRow(ctx, query, code))
}

func (r *repoPG) GetByCodeForUpdate(ctx context.Context, code string) (*AuthorizationCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM authorization_codes WHERE code = $1 FOR UPDATE`, codeCols)
	return scanCode(r.conn(ctx).QueryRow(ctx, query, code))
}

func (r *repoPG) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM authorization_codes WHERE code = $1)`, code,
	).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, ac *AuthorizationCode) error {
	query := `
		UPDATE authorization_codes SET
			valid_from = $2, valid_to = $3, amount_authorized = $4, status = $5,
			is_used = $6, used_amount = $7, used_at = $8, notes = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.conn(ctx).QueryRow(ctx, query,
		ac.ID, ac.ValidFrom, ac.ValidTo, ac.AmountAuthorized, ac.Status,
		ac.IsUsed, ac.UsedAmount, ac.UsedAt, ac.Notes,
	).Scan(&ac.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &NotFoundError{}
	}
	return err
}

func (r *repoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationCode, int, error) {
	where := ""
	args := []interface{}{}
	add := func(clause string, value interface{}) {
		args = append(args, value)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, len(args))
	}
	if filter.EnrolleeID != nil {
		add("enrollee_id = $%d", *filter.EnrolleeID)
	}
	if filter.ProviderID != nil {
		add("provider_id = $%d", *filter.ProviderID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM authorization_codes`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM authorization_codes%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		codeCols, where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*AuthorizationCode
	for rows.Next() {
		ac, err := scanCode(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ac)
	}
	return items, total, rows.Err()
}

type enrolleeCheckerPG struct{ pool *pgxpool.Pool }

func NewEnrolleeCheckerPG(pool *pgxpool.Pool) EnrolleeChecker { return &enrolleeCheckerPG{pool: pool} }

func (r *enrolleeCheckerPG) EnrolleeExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM enrollees WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
