package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/altuhealth/claims-api/internal/platform/auth"
	"github.com/altuhealth/claims-api/internal/platform/events"
)

type Service struct {
	repo    Repository
	emitter events.Emitter
}

func NewService(repo Repository, em events.Emitter) *Service {
	return &Service{repo: repo, emitter: em}
}

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const referenceAttempts = 5

// NewBatchReference generates a reference of the form
// PB-<base36 timestamp>-<4 random base36 chars>.
func NewBatchReference() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	suffix := make([]byte, 4)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceAlphabet))))
		if err != nil {
			panic(fmt.Sprintf("payment: reference generation: %v", err))
		}
		suffix[i] = referenceAlphabet[n.Int64()]
	}
	return fmt.Sprintf("PB-%s-%s", ts, string(suffix))
}

func (s *Service) emit(ctx context.Context, action string, id uuid.UUID, message string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, events.Event{
		Action:     action,
		EntityType: "payment_batch",
		EntityID:   id.String(),
		ActorID:    auth.UserIDFromContext(ctx),
		ActorType:  auth.UserTypeFromContext(ctx),
		Message:    message,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *Service) Create(ctx context.Context, b *Batch) error {
	if b.TotalAmount < 0 {
		return validationf("%q cannot be negative", "totalAmount")
	}

	b.Status = StatusOpen

	for attempt := 0; ; attempt++ {
		b.BatchReference = NewBatchReference()
		exists, err := s.repo.ExistsByReference(ctx, b.BatchReference)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		if attempt == referenceAttempts-1 {
			return &StateError{Msg: "could not generate a unique batch reference"}
		}
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return err
	}
	s.emit(ctx, "created", b.ID, "payment batch opened")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Batch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]*Batch, int, error) {
	if status != "" && status != StatusOpen && status != StatusClosed {
		return nil, 0, validationf("invalid status %q", string(status))
	}
	return s.repo.List(ctx, status, limit, offset)
}

// Close finalizes a batch. The total amount is snapshotted from the claims
// attached to it and the payment date is stamped if not already set.
func (s *Service) Close(ctx context.Context, id uuid.UUID) (*Batch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusClosed {
		return nil, &StateError{Msg: "payment batch is already closed"}
	}

	total, err := s.repo.TotalPaid(ctx, id)
	if err != nil {
		return nil, err
	}
	b.TotalAmount = total
	b.Status = StatusClosed
	if b.PaymentDate == nil {
		now := time.Now().UTC()
		b.PaymentDate = &now
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.emit(ctx, "closed", id, "payment batch closed")
	return b, nil
}

// BatchExists satisfies the exists-check the claims service performs before
// attaching a claim to a batch.
func (s *Service) BatchExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}
