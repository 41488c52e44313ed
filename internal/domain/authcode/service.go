package authcode

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/altuhealth/claims-api/internal/platform/auth"
	"github.com/altuhealth/claims-api/internal/platform/events"
)

// TxRunner runs a function inside a database transaction carried through the
// context.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo      Repository
	enrollees EnrolleeChecker
	tx        TxRunner
	emitter   events.Emitter
	now       func() time.Time
}

func NewService(repo Repository, en EnrolleeChecker, tx TxRunner, em events.Emitter) *Service {
	return &Service{repo: repo, enrollees: en, tx: tx, emitter: em, now: time.Now}
}

const codeAttempts = 5

func (s *Service) emit(ctx context.Context, action string, id uuid.UUID, message string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, events.Event{
		Action:     action,
		EntityType: "authorization_code",
		EntityID:   id.String(),
		ActorID:    auth.UserIDFromContext(ctx),
		ActorType:  auth.UserTypeFromContext(ctx),
		Message:    message,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *Service) Create(ctx context.Context, ac *AuthorizationCode) error {
	if ac.EnrolleeID == uuid.Nil {
		return validationf("%q is required", "enrolleeId")
	}
	if ac.AmountAuthorized <= 0 {
		return validationf("%q must be greater than 0", "amountAuthorized")
	}
	if ac.ValidFrom.IsZero() {
		ac.ValidFrom = s.now().UTC()
	}
	if ac.ValidTo.IsZero() {
		return validationf("%q is required", "validTo")
	}
	if !ac.ValidTo.After(ac.ValidFrom) {
		return validationf("%q must be after %q", "validTo", "validFrom")
	}

	if s.enrollees != nil {
		ok, err := s.enrollees.EnrolleeExists(ctx, ac.EnrolleeID)
		if err != nil {
			return err
		}
		if !ok {
			return validationf("enrollee not found")
		}
	}

	ac.Status = StatusActive
	ac.IsUsed = false
	ac.UsedAmount = 0

	for attempt := 0; ; attempt++ {
		ac.Code = NewCode()
		exists, err := s.repo.ExistsByCode(ctx, ac.Code)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		if attempt == codeAttempts-1 {
			return statef("could not generate a unique authorization code")
		}
	}

	if err := s.repo.Create(ctx, ac); err != nil {
		return err
	}
	s.emit(ctx, "created", ac.ID, "authorization code issued")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*AuthorizationCode, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*AuthorizationCode, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*AuthorizationCode, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, validationf("invalid status %q", string(filter.Status))
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Use consumes an active code for the given amount. An active code past its
// validity window is flipped to expired here, on the use attempt, and the use
// is refused.
func (s *Service) Use(ctx context.Context, code string, amount float64) (*AuthorizationCode, error) {
	if amount <= 0 {
		return nil, validationf("%q must be greater than 0", "amount")
	}

	var out *AuthorizationCode
	var expired uuid.UUID
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ac, err := s.repo.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if ac.Status == StatusActive && now.After(ac.ValidTo) {
			// The flip must commit even though the use is refused. A
			// non-nil return here would roll it back, so the refusal
			// is surfaced after the transaction instead.
			ac.Status = StatusExpired
			if err := s.repo.Update(ctx, ac); err != nil {
				return err
			}
			expired = ac.ID
			return nil
		}
		if ac.Status != StatusActive {
			return statef("authorization code is %s and cannot be used", ac.Status)
		}
		if now.Before(ac.ValidFrom) {
			return statef("authorization code is not yet valid")
		}
		if amount > ac.AmountAuthorized {
			return validationf("%q cannot exceed the authorized amount of %.2f", "amount", ac.AmountAuthorized)
		}

		ac.Status = StatusUsed
		ac.IsUsed = true
		ac.UsedAmount = amount
		ac.UsedAt = &now
		if err := s.repo.Update(ctx, ac); err != nil {
			return err
		}
		out = ac
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired != uuid.Nil {
		s.emit(ctx, "expired", expired, "authorization code expired")
		return nil, statef("authorization code has expired")
	}
	s.emit(ctx, "used", out.ID, "authorization code used")
	return out, nil
}

// Cancel withdraws an unused code. Used codes are immutable and cannot be
// cancelled.
func (s *Service) Cancel(ctx context.Context, code string) (*AuthorizationCode, error) {
	var out *AuthorizationCode
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ac, err := s.repo.GetByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if ac.IsUsed {
			return statef("a used authorization code cannot be cancelled")
		}
		if ac.Status == StatusCancelled {
			return statef("authorization code is already cancelled")
		}

		ac.Status = StatusCancelled
		if err := s.repo.Update(ctx, ac); err != nil {
			return err
		}
		out = ac
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "cancelled", out.ID, "authorization code cancelled")
	return out, nil
}

// VerifyResult reports whether a code is currently usable.
type VerifyResult struct {
	Valid  bool               `json:"valid"`
	Reason string             `json:"reason,omitempty"`
	Code   *AuthorizationCode `json:"authorizationCode"`
}

// Verify is a read-only check. It reports an expired window without
// persisting the status flip; only a use attempt does that.
func (s *Service) Verify(ctx context.Context, code string) (*VerifyResult, error) {
	ac, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	res := &VerifyResult{Code: ac}
	now := s.now().UTC()
	switch {
	case ac.Status == StatusUsed:
		res.Reason = "already used"
	case ac.Status == StatusCancelled:
		res.Reason = "cancelled"
	case ac.Status == StatusExpired || now.After(ac.ValidTo):
		res.Reason = "expired"
	case now.Before(ac.ValidFrom):
		res.Reason = "not yet valid"
	default:
		res.Valid = true
	}
	return res, nil
}

// UpdateValidity extends or shortens an unused code's window or adjusts the
// authorized amount.
func (s *Service) UpdateValidity(ctx context.Context, id uuid.UUID, validTo *time.Time, amountAuthorized *float64, notes *string) (*AuthorizationCode, error) {
	var out *AuthorizationCode
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		ac, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ac.IsUsed {
			return statef("a used authorization code cannot be modified")
		}

		if validTo != nil {
			if !validTo.After(ac.ValidFrom) {
				return validationf("%q must be after %q", "validTo", "validFrom")
			}
			ac.ValidTo = *validTo
			// Re-extending an expired window reactivates the code.
			if ac.Status == StatusExpired && validTo.After(s.now().UTC()) {
				ac.Status = StatusActive
			}
		}
		if amountAuthorized != nil {
			if *amountAuthorized <= 0 {
				return validationf("%q must be greater than 0", "amountAuthorized")
			}
			ac.AmountAuthorized = *amountAuthorized
		}
		if notes != nil {
			ac.Notes = notes
		}

		if err := s.repo.Update(ctx, ac); err != nil {
			return err
		}
		out = ac
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "updated", id, "authorization code updated")
	return out, nil
}
