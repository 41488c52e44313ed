package authcode

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, ac *AuthorizationCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*AuthorizationCode, error)
	// GetByIDForUpdate locks the row for the transaction carried in ctx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*AuthorizationCode, error)
	GetByCode(ctx context.Context, code string) (*AuthorizationCode, error)
	// GetByCodeForUpdate locks the row for the transaction carried in ctx.
	GetByCodeForUpdate(ctx context.Context, code string) (*AuthorizationCode, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Update(ctx context.Context, ac *AuthorizationCode) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationCode, int, error)
}

// EnrolleeChecker verifies that a referenced enrollee exists.
type EnrolleeChecker interface {
	EnrolleeExists(ctx context.Context, id uuid.UUID) (bool, error)
}
