package claims

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/altuhealth/claims-api/internal/platform/auth"
	"github.com/altuhealth/claims-api/internal/platform/events"
)

// TxRunner runs a function inside a database transaction carried through the
// context. Repositories joining the same context share the transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	claims    ClaimRepository
	details   DetailRepository
	providers ProviderChecker
	batches   PaymentBatchChecker
	tx        TxRunner
	emitter   events.Emitter
}

func NewService(cl ClaimRepository, dt DetailRepository, pv ProviderChecker, pb PaymentBatchChecker, tx TxRunner, em events.Emitter) *Service {
	return &Service{claims: cl, details: dt, providers: pv, batches: pb, tx: tx, emitter: em}
}

const referenceAttempts = 5

// emit publishes an audit event, best-effort. The primary mutation has
// already committed by the time this runs.
func (s *Service) emit(ctx context.Context, action string, entityID uuid.UUID, message string, detail map[string]string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, events.Event{
		Action:     action,
		EntityType: "claim",
		EntityID:   entityID.String(),
		ActorID:    auth.UserIDFromContext(ctx),
		ActorType:  auth.UserTypeFromContext(ctx),
		Message:    message,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	})
}

// -- Claim CRUD --

func (s *Service) CreateClaim(ctx context.Context, c *Claim) error {
	if c.ProviderID == uuid.Nil {
		return validationf("%q is required", "providerId")
	}
	if c.Year < 2000 {
		return validationf("%q is required and must be a valid year", "year")
	}
	if c.Month < 1 || c.Month > 12 {
		return validationf("%q must be between 1 and 12", "month")
	}
	if c.AmountSubmitted < 0 {
		return validationf("%q cannot be negative", "amountSubmitted")
	}
	if c.NumberOfEncounters < 0 {
		return validationf("%q cannot be negative", "numberOfEncounters")
	}

	if s.providers != nil {
		ok, err := s.providers.ProviderExists(ctx, c.ProviderID)
		if err != nil {
			return err
		}
		if !ok {
			return &NotFoundError{Entity: "provider"}
		}
	}

	c.Status = StatusDraft
	c.AmountProcessed = 0
	c.Difference = c.AmountSubmitted

	// The reference format is only probabilistically unique, so check the
	// table and retry on collision.
	for attempt := 0; ; attempt++ {
		c.ClaimReference = NewClaimReference()
		exists, err := s.claims.ExistsByReference(ctx, c.ClaimReference)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		if attempt == referenceAttempts-1 {
			return statef("could not generate a unique claim reference")
		}
	}

	if err := s.claims.Create(ctx, c); err != nil {
		return err
	}
	s.emit(ctx, "created", c.ID, "claim created", map[string]string{"claimReference": c.ClaimReference})
	return nil
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	details, err := s.details.ListByClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Details = details
	return c, nil
}

func (s *Service) ListClaims(ctx context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, validationf("invalid status %q", string(filter.Status))
	}
	return s.claims.List(ctx, filter, limit, offset)
}

// UpdateClaim applies client-editable header fields. Status, submitter, and
// the derived aggregate fields cannot be changed this way.
func (s *Service) UpdateClaim(ctx context.Context, id uuid.UUID, upd *Claim) (*Claim, error) {
	if upd.Month != 0 && (upd.Month < 1 || upd.Month > 12) {
		return nil, validationf("%q must be between 1 and 12", "month")
	}

	var out *Claim
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if upd.Year != 0 {
			c.Year = upd.Year
		}
		if upd.Month != 0 {
			c.Month = upd.Month
		}
		if upd.BankUsedForPayment != nil {
			c.BankUsedForPayment = upd.BankUsedForPayment
		}
		if upd.BankAccountNumber != nil {
			c.BankAccountNumber = upd.BankAccountNumber
		}
		if upd.AccountName != nil {
			c.AccountName = upd.AccountName
		}
		if upd.Description != nil {
			c.Description = upd.Description
		}
		if upd.AttachmentURL != nil {
			c.AttachmentURL = upd.AttachmentURL
		}

		if err := s.claims.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "updated", id, "claim updated", nil)
	return out, nil
}

func (s *Service) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.Status != StatusDraft {
			return statef("only draft claims can be deleted (current status: %s)", c.Status)
		}
		return s.claims.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, "deleted", id, "claim deleted", nil)
	return nil
}

// -- Status transitions --

var guardMessages = map[Operation]string{
	OpSubmit:            "Only draft claims can be submitted",
	OpVet:               "Only submitted claims can be vetted",
	OpApprove:           "Only claims pending vetting, under review, or queried can be approved",
	OpReject:            "Only submitted, pending vetting, or under review claims can be rejected",
	OpQuery:             "Only submitted, pending vetting, or under review claims can be queried",
	OpMarkPaid:          "Only claims awaiting payment can be marked as paid",
	OpMarkPartiallyPaid: "Only claims awaiting payment or partially paid can be marked as partially paid",
}

// transition locks the claim row, re-checks the guard against the locked
// state, applies the operation-specific field changes, and persists, all in
// one transaction. A concurrent transition cannot invalidate the guard.
func (s *Service) transition(ctx context.Context, id uuid.UUID, op Operation, apply func(c *Claim) error) (*Claim, error) {
	var out *Claim
	var from Status

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		target, ok := CanTransition(c.Status, op)
		if !ok {
			return statef("%s (current status: %s)", guardMessages[op], c.Status)
		}

		from = c.Status
		c.Status = target
		if apply != nil {
			if err := apply(c); err != nil {
				return err
			}
		}

		if err := s.claims.Update(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, string(op), id, "claim "+string(out.Status), map[string]string{
		"from_status": string(from),
		"to_status":   string(out.Status),
	})
	return out, nil
}

// Submit moves a draft claim into the vetting pipeline and records who
// submitted it. An approval request is raised for the vetting team as a
// side-channel event.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, vetterNotes string) (*Claim, error) {
	c, err := s.transition(ctx, id, OpSubmit, func(c *Claim) error {
		if vetterNotes != "" {
			c.VetterNotes = &vetterNotes
		}
		if uid := auth.UserIDFromContext(ctx); uid != "" {
			c.SubmittedByID = &uid
		}
		if ut := auth.UserTypeFromContext(ctx); ut != "" {
			c.SubmittedByType = &ut
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.emitter != nil {
		s.emitter.Emit(ctx, events.Event{
			Action:     "requested",
			EntityType: "approval_request",
			EntityID:   id.String(),
			ActorID:    auth.UserIDFromContext(ctx),
			Message:    "claim approval requested",
			OccurredAt: time.Now().UTC(),
		})
	}
	return c, nil
}

func (s *Service) Vet(ctx context.Context, id uuid.UUID, vetterNotes string) (*Claim, error) {
	return s.transition(ctx, id, OpVet, func(c *Claim) error {
		if vetterNotes != "" {
			c.VetterNotes = &vetterNotes
		}
		return nil
	})
}

// Approve moves the claim to awaiting_payment. amountProcessed defaults to
// amountSubmitted when the vetter does not supply an override.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, amountProcessed *float64) (*Claim, error) {
	return s.transition(ctx, id, OpApprove, func(c *Claim) error {
		amt := c.AmountSubmitted
		if amountProcessed != nil {
			if *amountProcessed < 0 {
				return validationf("%q cannot be negative", "amountProcessed")
			}
			amt = *amountProcessed
		}
		c.AmountProcessed = amt
		c.Difference = c.AmountSubmitted - amt
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Claim, error) {
	if reason == "" {
		return nil, validationf("%q is required", "rejectionReason")
	}
	return s.transition(ctx, id, OpReject, func(c *Claim) error {
		c.RejectionReason = &reason
		return nil
	})
}

func (s *Service) Query(ctx context.Context, id uuid.UUID, vetterNotes string) (*Claim, error) {
	if vetterNotes == "" {
		return nil, validationf("%q is required", "vetterNotes")
	}
	return s.transition(ctx, id, OpQuery, func(c *Claim) error {
		c.VetterNotes = &vetterNotes
		return nil
	})
}

func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, paymentBatchID *uuid.UUID) (*Claim, error) {
	if err := s.checkBatch(ctx, paymentBatchID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, OpMarkPaid, func(c *Claim) error {
		now := time.Now().UTC()
		c.DatePaid = &now
		if paymentBatchID != nil {
			c.PaymentBatchID = paymentBatchID
		}
		return nil
	})
}

func (s *Service) MarkPartiallyPaid(ctx context.Context, id uuid.UUID, partialAmount float64, paymentBatchID *uuid.UUID) (*Claim, error) {
	if partialAmount <= 0 {
		return nil, validationf("%q must be greater than 0", "partialAmount")
	}
	if err := s.checkBatch(ctx, paymentBatchID); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, OpMarkPartiallyPaid, func(c *Claim) error {
		if partialAmount > c.AmountProcessed {
			return validationf("%q cannot exceed the processed amount of %.2f", "partialAmount", c.AmountProcessed)
		}
		if paymentBatchID != nil {
			c.PaymentBatchID = paymentBatchID
		}
		return nil
	})
}

func (s *Service) checkBatch(ctx context.Context, batchID *uuid.UUID) error {
	if batchID == nil || s.batches == nil {
		return nil
	}
	ok, err := s.batches.BatchExists(ctx, *batchID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Entity: "payment batch"}
	}
	return nil
}

// -- Claim details --

func validateBeneficiary(d *Detail) error {
	if d.EnrolleeID == nil && d.RetailEnrolleeID == nil {
		return validationf("one of %q or %q is required", "enrolleeId", "retailEnrolleeId")
	}
	if d.EnrolleeID != nil && d.RetailEnrolleeID != nil {
		return validationf("%q and %q are mutually exclusive", "enrolleeId", "retailEnrolleeId")
	}
	return nil
}

// AddDetail attaches an encounter line to a claim and recalculates the
// claim's encounter count and submitted amount. The processed amount and
// difference are deliberately untouched on this path: processed amounts only
// become meaningful once vetting assigns approved amounts.
func (s *Service) AddDetail(ctx context.Context, claimID uuid.UUID, d *Detail) error {
	if err := validateBeneficiary(d); err != nil {
		return err
	}
	if d.AmountClaimed <= 0 {
		return validationf("%q must be greater than 0", "amountClaimed")
	}
	if d.ServiceDate.IsZero() {
		return validationf("%q is required", "serviceDate")
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByIDForUpdate(ctx, claimID)
		if err != nil {
			return err
		}

		d.ClaimID = claimID
		d.ProviderID = c.ProviderID
		if err := s.details.Create(ctx, d); err != nil {
			return err
		}

		agg, err := s.details.Aggregate(ctx, claimID)
		if err != nil {
			return err
		}
		return s.claims.UpdateAggregates(ctx, claimID,
			agg.NumberOfEncounters, agg.AmountSubmitted, c.AmountProcessed, c.Difference)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, "detail_added", claimID, "claim detail added", map[string]string{"detailId": d.ID.String()})
	return nil
}

func (s *Service) GetDetail(ctx context.Context, claimID, detailID uuid.UUID) (*Detail, error) {
	d, err := s.details.GetByID(ctx, detailID)
	if err != nil {
		return nil, err
	}
	if d.ClaimID != claimID {
		return nil, &NotFoundError{Entity: "claim detail"}
	}
	return d, nil
}

func (s *Service) ListDetails(ctx context.Context, claimID uuid.UUID) ([]*Detail, error) {
	if _, err := s.claims.GetByID(ctx, claimID); err != nil {
		return nil, err
	}
	return s.details.ListByClaim(ctx, claimID)
}

// UpdateDetail edits an encounter line and recalculates all derived claim
// totals, including the processed amount and difference.
func (s *Service) UpdateDetail(ctx context.Context, claimID, detailID uuid.UUID, upd *Detail) (*Detail, error) {
	var out *Detail
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.claims.GetByIDForUpdate(ctx, claimID); err != nil {
			return err
		}

		d, err := s.details.GetByID(ctx, detailID)
		if err != nil {
			return err
		}
		if d.ClaimID != claimID {
			return &NotFoundError{Entity: "claim detail"}
		}

		if upd.EnrolleeID != nil || upd.RetailEnrolleeID != nil {
			d.EnrolleeID = upd.EnrolleeID
			d.RetailEnrolleeID = upd.RetailEnrolleeID
			if err := validateBeneficiary(d); err != nil {
				return err
			}
		}
		if upd.AmountClaimed != 0 {
			if upd.AmountClaimed < 0 {
				return validationf("%q must be greater than 0", "amountClaimed")
			}
			d.AmountClaimed = upd.AmountClaimed
		}
		if upd.AmountApproved != 0 {
			if upd.AmountApproved < 0 {
				return validationf("%q cannot be negative", "amountApproved")
			}
			d.AmountApproved = upd.AmountApproved
		}
		if !upd.ServiceDate.IsZero() {
			d.ServiceDate = upd.ServiceDate
		}
		if upd.DischargeDate != nil {
			d.DischargeDate = upd.DischargeDate
		}
		if upd.DiagnosisID != nil {
			d.DiagnosisID = upd.DiagnosisID
		}
		if upd.CompanyID != nil {
			d.CompanyID = upd.CompanyID
		}
		if upd.ServiceType != nil {
			d.ServiceType = upd.ServiceType
		}
		if upd.Description != nil {
			d.Description = upd.Description
		}
		if upd.Notes != nil {
			d.Notes = upd.Notes
		}
		if upd.ReferralNumber != nil {
			d.ReferralNumber = upd.ReferralNumber
		}
		if upd.AuthorizationCode != nil {
			d.AuthorizationCode = upd.AuthorizationCode
		}

		if err := s.details.Update(ctx, d); err != nil {
			return err
		}

		agg, err := s.details.Aggregate(ctx, claimID)
		if err != nil {
			return err
		}
		if err := s.claims.UpdateAggregates(ctx, claimID,
			agg.NumberOfEncounters, agg.AmountSubmitted, agg.AmountProcessed,
			agg.AmountSubmitted-agg.AmountProcessed); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, "detail_updated", claimID, "claim detail updated", map[string]string{"detailId": detailID.String()})
	return out, nil
}

// DeleteDetail removes an encounter line. Only legal while the parent claim
// is still a draft.
func (s *Service) DeleteDetail(ctx context.Context, claimID, detailID uuid.UUID) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		c, err := s.claims.GetByIDForUpdate(ctx, claimID)
		if err != nil {
			return err
		}
		if c.Status != StatusDraft {
			return statef("claim details can only be deleted while the claim is in draft (current status: %s)", c.Status)
		}

		d, err := s.details.GetByID(ctx, detailID)
		if err != nil {
			return err
		}
		if d.ClaimID != claimID {
			return &NotFoundError{Entity: "claim detail"}
		}

		if err := s.details.Delete(ctx, detailID); err != nil {
			return err
		}

		agg, err := s.details.Aggregate(ctx, claimID)
		if err != nil {
			return err
		}
		return s.claims.UpdateAggregates(ctx, claimID,
			agg.NumberOfEncounters, agg.AmountSubmitted, agg.AmountProcessed,
			agg.AmountSubmitted-agg.AmountProcessed)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, "detail_deleted", claimID, "claim detail deleted", map[string]string{"detailId": detailID.String()})
	return nil
}

// -- Analytics --

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.claims.Summary(ctx)
}

func (s *Service) CountByStatus(ctx context.Context) ([]*StatusCount, error) {
	return s.claims.CountByStatus(ctx)
}

func (s *Service) SummaryByProvider(ctx context.Context) ([]*ProviderSummary, error) {
	return s.claims.SummaryByProvider(ctx)
}

func (s *Service) PaymentStats(ctx context.Context) (*PaymentStats, error) {
	return s.claims.PaymentStats(ctx)
}
