package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

// =========== Claim Repository ===========

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) ClaimRepository { return &claimRepoPG{pool: pool} }

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `id, claim_reference, provider_id, number_of_encounters,
	amount_submitted, amount_processed, difference, year, month, status,
	submitted_by_type, submitted_by_id, bank_used_for_payment, bank_account_number,
	account_name, payment_batch_id, vetter_notes, rejection_reason, date_paid,
	description, attachment_url, created_at, updated_at`

func scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.ClaimReference, &c.ProviderID, &c.NumberOfEncounters,
		&c.AmountSubmitted, &c.AmountProcessed, &c.Difference, &c.Year, &c.Month, &c.Status,
		&c.SubmittedByType, &c.SubmittedByID, &c.BankUsedForPayment, &c.BankAccountNumber,
		&c.AccountName, &c.PaymentBatchID, &c.VetterNotes, &c.RejectionReason, &c.DatePaid,
		&c.Description, &c.AttachmentURL, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "claim"}
	}
	return &c, err
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claims (id, claim_reference, provider_id, number_of_encounters,
			amount_submitted, amount_processed, difference, year, month, status,
			submitted_by_type, submitted_by_id, bank_used_for_payment, bank_account_number,
			account_name, description, attachment_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		c.ID, c.ClaimReference, c.ProviderID, c.NumberOfEncounters,
		c.AmountSubmitted, c.AmountProcessed, c.Difference, c.Year, c.Month, c.Status,
		c.SubmittedByType, c.SubmittedByID, c.BankUsedForPayment, c.BankAccountNumber,
		c.AccountName, c.Description, c.AttachmentURL)
	return err
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id))
}

func (r *claimRepoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1 FOR UPDATE`, id))
}

func (r *claimRepoPG) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM claims WHERE claim_reference = $1)`, reference).Scan(&exists)
	return exists, err
}

func (r *claimRepoPG) Update(ctx context.Context, c *Claim) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET number_of_encounters=$2, amount_submitted=$3, amount_processed=$4,
			difference=$5, year=$6, month=$7, status=$8,
			bank_used_for_payment=$9, bank_account_number=$10, account_name=$11,
			payment_batch_id=$12, vetter_notes=$13, rejection_reason=$14, date_paid=$15,
			description=$16, attachment_url=$17, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.NumberOfEncounters, c.AmountSubmitted, c.AmountProcessed,
		c.Difference, c.Year, c.Month, c.Status,
		c.BankUsedForPayment, c.BankAccountNumber, c.AccountName,
		c.PaymentBatchID, c.VetterNotes, c.RejectionReason, c.DatePaid,
		c.Description, c.AttachmentURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "claim"}
	}
	return nil
}

func (r *claimRepoPG) UpdateAggregates(ctx context.Context, id uuid.UUID, encounters int, submitted, processed, difference float64) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET number_of_encounters=$2, amount_submitted=$3,
			amount_processed=$4, difference=$5, updated_at=NOW()
		WHERE id = $1`,
		id, encounters, submitted, processed, difference)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "claim"}
	}
	return nil
}

func (r *claimRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "claim"}
	}
	return nil
}

func (r *claimRepoPG) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.ProviderID != nil {
		add("provider_id = $%d", *filter.ProviderID)
	}
	if filter.SubmittedByID != "" {
		add("submitted_by_id = $%d", filter.SubmittedByID)
	}
	if filter.Year != 0 {
		add("year = $%d", filter.Year)
	}
	if filter.Month != 0 {
		add("month = $%d", filter.Month)
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM claims WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
			claimCols, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *claimRepoPG) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(number_of_encounters), 0),
			COALESCE(SUM(amount_submitted), 0),
			COALESCE(SUM(amount_processed), 0),
			COALESCE(SUM(difference), 0)
		FROM claims`).
		Scan(&s.TotalClaims, &s.TotalEncounters, &s.AmountSubmitted, &s.AmountProcessed, &s.Difference)
	return &s, err
}

func (r *claimRepoPG) CountByStatus(ctx context.Context) ([]*StatusCount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(amount_submitted), 0)
		FROM claims GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count, &sc.Amount); err != nil {
			return nil, err
		}
		out = append(out, &sc)
	}
	return out, rows.Err()
}

func (r *claimRepoPG) SummaryByProvider(ctx context.Context) ([]*ProviderSummary, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT provider_id, COUNT(*),
			COALESCE(SUM(amount_submitted), 0), COALESCE(SUM(amount_processed), 0)
		FROM claims GROUP BY provider_id ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProviderSummary
	for rows.Next() {
		var ps ProviderSummary
		if err := rows.Scan(&ps.ProviderID, &ps.Count, &ps.AmountSubmitted, &ps.AmountProcessed); err != nil {
			return nil, err
		}
		out = append(out, &ps)
	}
	return out, rows.Err()
}

func (r *claimRepoPG) PaymentStats(ctx context.Context) (*PaymentStats, error) {
	var s PaymentStats
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'awaiting_payment'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'partially_paid'),
			COALESCE(SUM(amount_processed) FILTER (WHERE status = 'awaiting_payment'), 0),
			COALESCE(SUM(amount_processed) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount_processed) FILTER (WHERE status = 'partially_paid'), 0)
		FROM claims`).
		Scan(&s.AwaitingPayment, &s.Paid, &s.PartiallyPaid,
			&s.AmountAwaiting, &s.AmountPaid, &s.AmountPartiallyPaid)
	return &s, err
}

// =========== Claim Detail Repository ===========

type detailRepoPG struct{ pool *pgxpool.Pool }

func NewDetailRepoPG(pool *pgxpool.Pool) DetailRepository { return &detailRepoPG{pool: pool} }

func (r *detailRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const detailCols = `id, claim_id, enrollee_id, retail_enrollee_id, provider_id,
	diagnosis_id, company_id, service_date, discharge_date, amount_claimed,
	amount_approved, service_type, description, notes, referral_number,
	authorization_code, created_at, updated_at`

func scanDetail(row pgx.Row) (*Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.ClaimID, &d.EnrolleeID, &d.RetailEnrolleeID, &d.ProviderID,
		&d.DiagnosisID, &d.CompanyID, &d.ServiceDate, &d.DischargeDate, &d.AmountClaimed,
		&d.AmountApproved, &d.ServiceType, &d.Description, &d.Notes, &d.ReferralNumber,
		&d.AuthorizationCode, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Entity: "claim detail"}
	}
	return &d, err
}

func (r *detailRepoPG) Create(ctx context.Context, d *Detail) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claim_details (id, claim_id, enrollee_id, retail_enrollee_id, provider_id,
			diagnosis_id, company_id, service_date, discharge_date, amount_claimed,
			amount_approved, service_type, description, notes, referral_number, authorization_code)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		d.ID, d.ClaimID, d.EnrolleeID, d.RetailEnrolleeID, d.ProviderID,
		d.DiagnosisID, d.CompanyID, d.ServiceDate, d.DischargeDate, d.AmountClaimed,
		d.AmountApproved, d.ServiceType, d.Description, d.Notes, d.ReferralNumber, d.AuthorizationCode)
	return err
}

func (r *detailRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	return scanDetail(r.conn(ctx).QueryRow(ctx, `SELECT `+detailCols+` FROM claim_details WHERE id = $1`, id))
}

func (r *detailRepoPG) Update(ctx context.Context, d *Detail) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE claim_details SET enrollee_id=$2, retail_enrollee_id=$3, diagnosis_id=$4,
			company_id=$5, service_date=$6, discharge_date=$7, amount_claimed=$8,
			amount_approved=$9, service_type=$10, description=$11, notes=$12,
			referral_number=$13, authorization_code=$14, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.EnrolleeID, d.RetailEnrolleeID, d.DiagnosisID,
		d.CompanyID, d.ServiceDate, d.DischargeDate, d.AmountClaimed,
		d.AmountApproved, d.ServiceType, d.Description, d.Notes,
		d.ReferralNumber, d.AuthorizationCode)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "claim detail"}
	}
	return nil
}

func (r *detailRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM claim_details WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "claim detail"}
	}
	return nil
}

func (r *detailRepoPG) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Detail, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+detailCols+` FROM claim_details WHERE claim_id = $1 ORDER BY service_date, created_at`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *detailRepoPG) Aggregate(ctx context.Context, claimID uuid.UUID) (*Aggregates, error) {
	var a Aggregates
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(amount_claimed), 0),
			COALESCE(SUM(amount_approved), 0)
		FROM claim_details WHERE claim_id = $1`, claimID).
		Scan(&a.NumberOfEncounters, &a.AmountSubmitted, &a.AmountProcessed)
	return &a, err
}

// =========== Provider existence check ===========

type providerCheckerPG struct{ pool *pgxpool.Pool }

func NewProviderCheckerPG(pool *pgxpool.Pool) ProviderChecker { return &providerCheckerPG{pool: pool} }

func (r *providerCheckerPG) ProviderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM providers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
