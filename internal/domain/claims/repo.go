package claims

import (
	"context"

	"github.com/google/uuid"
)

type ClaimRepository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	// GetByIDForUpdate locks the claim row for the duration of the
	// transaction carried in ctx, serializing concurrent mutations.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	Update(ctx context.Context, c *Claim) error
	UpdateAggregates(ctx context.Context, id uuid.UUID, encounters int, submitted, processed, difference float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error)

	Summary(ctx context.Context) (*Summary, error)
	CountByStatus(ctx context.Context) ([]*StatusCount, error)
	SummaryByProvider(ctx context.Context) ([]*ProviderSummary, error)
	PaymentStats(ctx context.Context) (*PaymentStats, error)
}

type DetailRepository interface {
	Create(ctx context.Context, d *Detail) error
	GetByID(ctx context.Context, id uuid.UUID) (*Detail, error)
	Update(ctx context.Context, d *Detail) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Detail, error)
	// Aggregate recomputes the derived claim totals from the current details.
	Aggregate(ctx context.Context, claimID uuid.UUID) (*Aggregates, error)
}

// ProviderChecker verifies that a referenced provider exists.
type ProviderChecker interface {
	ProviderExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// PaymentBatchChecker verifies that a referenced payment batch exists. The
// payment domain supplies the implementation.
type PaymentBatchChecker interface {
	BatchExists(ctx context.Context, id uuid.UUID) (bool, error)
}
