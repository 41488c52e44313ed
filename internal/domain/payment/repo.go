package payment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*Batch, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	Update(ctx context.Context, b *Batch) error
	List(ctx context.Context, status Status, limit, offset int) ([]*Batch, int, error)
	// TotalPaid sums the processed amounts of claims attached to the batch.
	TotalPaid(ctx context.Context, id uuid.UUID) (float64, error)
}
