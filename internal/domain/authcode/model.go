package authcode

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an authorization code.
type Status string

const (
	StatusActive    Status = "active"
	StatusUsed      Status = "used"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusUsed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// AuthorizationCode grants an enrollee pre-approval for a service up to
// amountAuthorized, within a validity window. Once used the record is
// immutable apart from bookkeeping timestamps.
type AuthorizationCode struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Code             string     `db:"code" json:"authorizationCode"`
	EnrolleeID       uuid.UUID  `db:"enrollee_id" json:"enrolleeId"`
	ProviderID       *uuid.UUID `db:"provider_id" json:"providerId,omitempty"`
	DiagnosisID      *uuid.UUID `db:"diagnosis_id" json:"diagnosisId,omitempty"`
	ValidFrom        time.Time  `db:"valid_from" json:"validFrom"`
	ValidTo          time.Time  `db:"valid_to" json:"validTo"`
	AmountAuthorized float64    `db:"amount_authorized" json:"amountAuthorized"`
	Status           Status     `db:"status" json:"status"`
	IsUsed           bool       `db:"is_used" json:"isUsed"`
	UsedAmount       float64    `db:"used_amount" json:"usedAmount"`
	UsedAt           *time.Time `db:"used_at" json:"usedAt,omitempty"`
	Notes            *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}

// ListFilter narrows a code listing.
type ListFilter struct {
	EnrolleeID *uuid.UUID
	ProviderID *uuid.UUID
	Status     Status
}
