package claims

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repositories --

type mockClaimRepo struct {
	items       map[uuid.UUID]*Claim
	existsAll   bool // force every reference lookup to report a collision
	updateCalls int
}

func newMockClaimRepo() *mockClaimRepo {
	return &mockClaimRepo{items: make(map[uuid.UUID]*Claim)}
}

func (m *mockClaimRepo) Create(_ context.Context, c *Claim) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = time.Now()
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockClaimRepo) GetByID(_ context.Context, id uuid.UUID) (*Claim, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Entity: "claim"}
	}
	cp := *c
	return &cp, nil
}

func (m *mockClaimRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return m.GetByID(ctx, id)
}

func (m *mockClaimRepo) ExistsByReference(_ context.Context, ref string) (bool, error) {
	if m.existsAll {
		return true, nil
	}
	for _, c := range m.items {
		if c.ClaimReference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClaimRepo) Update(_ context.Context, c *Claim) error {
	if _, ok := m.items[c.ID]; !ok {
		return &NotFoundError{Entity: "claim"}
	}
	m.updateCalls++
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *mockClaimRepo) UpdateAggregates(_ context.Context, id uuid.UUID, encounters int, submitted, processed, difference float64) error {
	c, ok := m.items[id]
	if !ok {
		return &NotFoundError{Entity: "claim"}
	}
	c.NumberOfEncounters = encounters
	c.AmountSubmitted = submitted
	c.AmountProcessed = processed
	c.Difference = difference
	return nil
}

func (m *mockClaimRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return &NotFoundError{Entity: "claim"}
	}
	delete(m.items, id)
	return nil
}

func (m *mockClaimRepo) List(_ context.Context, filter ListFilter, limit, offset int) ([]*Claim, int, error) {
	var result []*Claim
	for _, c := range m.items {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ProviderID != nil && c.ProviderID != *filter.ProviderID {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

func (m *mockClaimRepo) Summary(_ context.Context) (*Summary, error) { return &Summary{}, nil }
func (m *mockClaimRepo) CountByStatus(_ context.Context) ([]*StatusCount, error) {
	return nil, nil
}
func (m *mockClaimRepo) SummaryByProvider(_ context.Context) ([]*ProviderSummary, error) {
	return nil, nil
}
func (m *mockClaimRepo) PaymentStats(_ context.Context) (*PaymentStats, error) {
	return &PaymentStats{}, nil
}

type mockDetailRepo struct {
	items map[uuid.UUID]*Detail
}

func newMockDetailRepo() *mockDetailRepo {
	return &mockDetailRepo{items: make(map[uuid.UUID]*Detail)}
}

func (m *mockDetailRepo) Create(_ context.Context, d *Detail) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	d.UpdatedAt = time.Now()
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDetailRepo) GetByID(_ context.Context, id uuid.UUID) (*Detail, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Entity: "claim detail"}
	}
	cp := *d
	return &cp, nil
}

func (m *mockDetailRepo) Update(_ context.Context, d *Detail) error {
	if _, ok := m.items[d.ID]; !ok {
		return &NotFoundError{Entity: "claim detail"}
	}
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDetailRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockDetailRepo) ListByClaim(_ context.Context, claimID uuid.UUID) ([]*Detail, error) {
	var result []*Detail
	for _, d := range m.items {
		if d.ClaimID == claimID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (m *mockDetailRepo) Aggregate(_ context.Context, claimID uuid.UUID) (*Aggregates, error) {
	agg := &Aggregates{}
	for _, d := range m.items {
		if d.ClaimID != claimID {
			continue
		}
		agg.NumberOfEncounters++
		agg.AmountSubmitted += d.AmountClaimed
		agg.AmountProcessed += d.AmountApproved
	}
	return agg, nil
}

type mockProviderChecker struct {
	known map[uuid.UUID]bool
}

func (m *mockProviderChecker) ProviderExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

type mockBatchChecker struct {
	known map[uuid.UUID]bool
}

func (m *mockBatchChecker) BatchExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.known[id], nil
}

// mockTxRunner executes the function directly; the mock repositories are not
// transactional.
type mockTxRunner struct{}

func (mockTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testEnv struct {
	svc       *Service
	claims    *mockClaimRepo
	details   *mockDetailRepo
	providers *mockProviderChecker
	batches   *mockBatchChecker
}

func newTestEnv() *testEnv {
	env := &testEnv{
		claims:    newMockClaimRepo(),
		details:   newMockDetailRepo(),
		providers: &mockProviderChecker{known: make(map[uuid.UUID]bool)},
		batches:   &mockBatchChecker{known: make(map[uuid.UUID]bool)},
	}
	env.svc = NewService(env.claims, env.details, env.providers, env.batches, mockTxRunner{}, nil)
	return env
}

func (env *testEnv) newProvider() uuid.UUID {
	id := uuid.New()
	env.providers.known[id] = true
	return id
}

func (env *testEnv) newBatch() uuid.UUID {
	id := uuid.New()
	env.batches.known[id] = true
	return id
}

func (env *testEnv) seedClaim(t *testing.T, status Status, submitted, processed float64) *Claim {
	t.Helper()
	c := &Claim{
		ProviderID:      env.newProvider(),
		Year:            2026,
		Month:           3,
		AmountSubmitted: submitted,
	}
	if err := env.svc.CreateClaim(context.Background(), c); err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	stored := env.claims.items[c.ID]
	stored.Status = status
	stored.AmountProcessed = processed
	stored.Difference = submitted - processed
	return stored
}

// -- Claim lifecycle --

func TestCreateClaimDefaults(t *testing.T) {
	env := newTestEnv()
	c := &Claim{
		ProviderID:      env.newProvider(),
		Year:            2026,
		Month:           3,
		AmountSubmitted: 500,
	}
	if err := env.svc.CreateClaim(context.Background(), c); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if c.Status != StatusDraft {
		t.Errorf("status = %s, want draft", c.Status)
	}
	if c.AmountProcessed != 0 {
		t.Errorf("amountProcessed = %v, want 0", c.AmountProcessed)
	}
	if c.Difference != 500 {
		t.Errorf("difference = %v, want 500", c.Difference)
	}
	if !strings.HasPrefix(c.ClaimReference, "CLM-") {
		t.Errorf("claimReference = %q, want CLM- prefix", c.ClaimReference)
	}
}

func TestCreateClaimUnknownProvider(t *testing.T) {
	env := newTestEnv()
	c := &Claim{ProviderID: uuid.New(), Year: 2026, Month: 1}
	err := env.svc.CreateClaim(context.Background(), c)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestCreateClaimInvalidMonth(t *testing.T) {
	env := newTestEnv()
	c := &Claim{ProviderID: env.newProvider(), Year: 2026, Month: 13}
	err := env.svc.CreateClaim(context.Background(), c)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestCreateClaimReferenceExhaustion(t *testing.T) {
	env := newTestEnv()
	env.claims.existsAll = true
	c := &Claim{ProviderID: env.newProvider(), Year: 2026, Month: 1}
	err := env.svc.CreateClaim(context.Background(), c)
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateError after retries", err)
	}
}

func TestSubmitDraft(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 150, 0)
	out, err := env.svc.Submit(context.Background(), c.ID, "initial notes")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if out.Status != StatusSubmitted {
		t.Errorf("status = %s, want submitted", out.Status)
	}
	if out.VetterNotes == nil || *out.VetterNotes != "initial notes" {
		t.Errorf("vetterNotes = %v, want initial notes", out.VetterNotes)
	}
}

func TestSubmitNonDraftFails(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusSubmitted, 150, 0)
	_, err := env.svc.Submit(context.Background(), c.ID, "")
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateError", err)
	}
	if !strings.Contains(se.Error(), "current status: submitted") {
		t.Errorf("error %q should name the current status", se.Error())
	}
	if env.claims.items[c.ID].Status != StatusSubmitted {
		t.Error("status should be unchanged after a rejected transition")
	}
}

func TestVetThenApproveWithOverride(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 150, 0)
	ctx := context.Background()

	if _, err := env.svc.Submit(ctx, c.ID, ""); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := env.svc.Vet(ctx, c.ID, "looks plausible"); err != nil {
		t.Fatalf("Vet: %v", err)
	}

	amt := 140.0
	out, err := env.svc.Approve(ctx, c.ID, &amt)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if out.Status != StatusAwaitingPay {
		t.Errorf("status = %s, want awaiting_payment", out.Status)
	}
	if out.AmountProcessed != 140 {
		t.Errorf("amountProcessed = %v, want 140", out.AmountProcessed)
	}
	if out.Difference != 10 {
		t.Errorf("difference = %v, want 10", out.Difference)
	}
}

func TestApproveDefaultsToSubmittedAmount(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusPendingVetting, 200, 0)
	out, err := env.svc.Approve(context.Background(), c.ID, nil)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if out.AmountProcessed != 200 {
		t.Errorf("amountProcessed = %v, want 200", out.AmountProcessed)
	}
	if out.Difference != 0 {
		t.Errorf("difference = %v, want 0", out.Difference)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusSubmitted, 150, 0)
	_, err := env.svc.Reject(context.Background(), c.ID, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if env.claims.items[c.ID].Status != StatusSubmitted {
		t.Error("status should be unchanged when rejection reason is missing")
	}
}

func TestRejectWithReason(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusPendingVetting, 150, 0)
	out, err := env.svc.Reject(context.Background(), c.ID, "duplicate encounter lines")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if out.Status != StatusRejected {
		t.Errorf("status = %s, want rejected", out.Status)
	}
	if out.RejectionReason == nil || *out.RejectionReason != "duplicate encounter lines" {
		t.Errorf("rejectionReason = %v", out.RejectionReason)
	}
}

func TestQueryRequiresNotes(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusSubmitted, 150, 0)
	_, err := env.svc.Query(context.Background(), c.ID, "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestMarkPaidFromDraftFails(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 150, 0)
	_, err := env.svc.MarkPaid(context.Background(), c.ID, nil)
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateError", err)
	}
	if !strings.Contains(se.Error(), "Only claims awaiting payment can be marked as paid") {
		t.Errorf("unexpected guard message %q", se.Error())
	}
}

func TestMarkPaidSetsDatePaidAndBatch(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusAwaitingPay, 150, 140)
	batch := env.newBatch()
	out, err := env.svc.MarkPaid(context.Background(), c.ID, &batch)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if out.Status != StatusPaid {
		t.Errorf("status = %s, want paid", out.Status)
	}
	if out.DatePaid == nil {
		t.Error("datePaid should be set")
	}
	if out.PaymentBatchID == nil || *out.PaymentBatchID != batch {
		t.Errorf("paymentBatchId = %v, want %s", out.PaymentBatchID, batch)
	}
}

func TestMarkPaidUnknownBatch(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusAwaitingPay, 150, 140)
	unknown := uuid.New()
	_, err := env.svc.MarkPaid(context.Background(), c.ID, &unknown)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if env.claims.items[c.ID].Status != StatusAwaitingPay {
		t.Error("status should be unchanged when batch is unknown")
	}
}

func TestMarkPartiallyPaidBounds(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusAwaitingPay, 150, 140)

	if _, err := env.svc.MarkPartiallyPaid(context.Background(), c.ID, 0, nil); err == nil {
		t.Error("zero partial amount should fail")
	}
	if _, err := env.svc.MarkPartiallyPaid(context.Background(), c.ID, 141, nil); err == nil {
		t.Error("partial amount above the processed amount should fail")
	}

	out, err := env.svc.MarkPartiallyPaid(context.Background(), c.ID, 100, nil)
	if err != nil {
		t.Fatalf("MarkPartiallyPaid: %v", err)
	}
	if out.Status != StatusPartiallyPaid {
		t.Errorf("status = %s, want partially_paid", out.Status)
	}
	if out.DatePaid != nil {
		t.Error("datePaid should stay unset for a partial payment")
	}

	// Additional partial payments are allowed from partially_paid.
	if _, err := env.svc.MarkPartiallyPaid(context.Background(), c.ID, 40, nil); err != nil {
		t.Fatalf("re-entrant partial payment: %v", err)
	}
}

func TestDeleteClaimOnlyDraft(t *testing.T) {
	env := newTestEnv()
	draft := env.seedClaim(t, StatusDraft, 100, 0)
	submitted := env.seedClaim(t, StatusSubmitted, 100, 0)

	if err := env.svc.DeleteClaim(context.Background(), draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, ok := env.claims.items[draft.ID]; ok {
		t.Error("draft claim should be gone")
	}

	err := env.svc.DeleteClaim(context.Background(), submitted.ID)
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateError", err)
	}
	if !strings.Contains(se.Error(), "only draft claims can be deleted") {
		t.Errorf("unexpected guard message %q", se.Error())
	}
}

func TestUpdateClaimIgnoresStatusAndAggregates(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusSubmitted, 150, 0)
	desc := "march claims run"
	out, err := env.svc.UpdateClaim(context.Background(), c.ID, &Claim{
		Status:          StatusPaid,
		AmountSubmitted: 9999,
		Description:     &desc,
		Month:           4,
	})
	if err != nil {
		t.Fatalf("UpdateClaim: %v", err)
	}
	if out.Status != StatusSubmitted {
		t.Errorf("status = %s, update must not change status", out.Status)
	}
	if out.AmountSubmitted != 150 {
		t.Errorf("amountSubmitted = %v, update must not change aggregates", out.AmountSubmitted)
	}
	if out.Description == nil || *out.Description != desc {
		t.Errorf("description = %v, want %q", out.Description, desc)
	}
	if out.Month != 4 {
		t.Errorf("month = %d, want 4", out.Month)
	}
}

// -- Claim details and recalculation --

func newDetail(amountClaimed float64) *Detail {
	enrollee := uuid.New()
	return &Detail{
		EnrolleeID:    &enrollee,
		ServiceDate:   time.Now(),
		AmountClaimed: amountClaimed,
	}
}

func TestAddDetailRecalculatesSubmittedOnly(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	ctx := context.Background()

	if err := env.svc.AddDetail(ctx, c.ID, newDetail(150)); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}

	got := env.claims.items[c.ID]
	if got.NumberOfEncounters != 1 {
		t.Errorf("numberOfEncounters = %d, want 1", got.NumberOfEncounters)
	}
	if got.AmountSubmitted != 150 {
		t.Errorf("amountSubmitted = %v, want 150", got.AmountSubmitted)
	}
	// The create path never touches the processed amount or difference.
	if got.AmountProcessed != 0 {
		t.Errorf("amountProcessed = %v, want 0", got.AmountProcessed)
	}
	if got.Difference != 0 {
		t.Errorf("difference = %v, want 0 (untouched)", got.Difference)
	}

	if err := env.svc.AddDetail(ctx, c.ID, newDetail(50)); err != nil {
		t.Fatalf("AddDetail second: %v", err)
	}
	got = env.claims.items[c.ID]
	if got.NumberOfEncounters != 2 || got.AmountSubmitted != 200 {
		t.Errorf("aggregates = (%d, %v), want (2, 200)", got.NumberOfEncounters, got.AmountSubmitted)
	}
}

func TestAddDetailBeneficiaryValidation(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	ctx := context.Background()

	d := newDetail(100)
	d.EnrolleeID = nil
	if err := env.svc.AddDetail(ctx, c.ID, d); err == nil {
		t.Error("detail without any beneficiary should fail")
	}

	d = newDetail(100)
	retail := uuid.New()
	d.RetailEnrolleeID = &retail
	if err := env.svc.AddDetail(ctx, c.ID, d); err == nil {
		t.Error("detail with both beneficiary kinds should fail")
	}

	d = newDetail(0)
	if err := env.svc.AddDetail(ctx, c.ID, d); err == nil {
		t.Error("detail with zero amount should fail")
	}
}

func TestAddDetailInheritsProvider(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	d := newDetail(75)
	if err := env.svc.AddDetail(context.Background(), c.ID, d); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}
	if d.ProviderID != c.ProviderID {
		t.Errorf("detail providerId = %s, want claim's %s", d.ProviderID, c.ProviderID)
	}
}

func TestUpdateDetailRecalculatesEverything(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	ctx := context.Background()

	d := newDetail(150)
	if err := env.svc.AddDetail(ctx, c.ID, d); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}

	_, err := env.svc.UpdateDetail(ctx, c.ID, d.ID, &Detail{
		AmountClaimed:  120,
		AmountApproved: 110,
	})
	if err != nil {
		t.Fatalf("UpdateDetail: %v", err)
	}

	got := env.claims.items[c.ID]
	if got.AmountSubmitted != 120 {
		t.Errorf("amountSubmitted = %v, want 120", got.AmountSubmitted)
	}
	if got.AmountProcessed != 110 {
		t.Errorf("amountProcessed = %v, want 110", got.AmountProcessed)
	}
	if got.Difference != 10 {
		t.Errorf("difference = %v, want 10", got.Difference)
	}
}

func TestUpdateDetailWrongClaim(t *testing.T) {
	env := newTestEnv()
	a := env.seedClaim(t, StatusDraft, 0, 0)
	b := env.seedClaim(t, StatusDraft, 0, 0)

	d := newDetail(100)
	if err := env.svc.AddDetail(context.Background(), a.ID, d); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}

	_, err := env.svc.UpdateDetail(context.Background(), b.ID, d.ID, &Detail{AmountClaimed: 1})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError for cross-claim detail access", err)
	}
}

func TestDeleteDetailOnlyWhileDraft(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	ctx := context.Background()

	d1 := newDetail(150)
	d2 := newDetail(50)
	if err := env.svc.AddDetail(ctx, c.ID, d1); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}
	if err := env.svc.AddDetail(ctx, c.ID, d2); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}

	if err := env.svc.DeleteDetail(ctx, c.ID, d2.ID); err != nil {
		t.Fatalf("DeleteDetail: %v", err)
	}
	got := env.claims.items[c.ID]
	if got.NumberOfEncounters != 1 || got.AmountSubmitted != 150 {
		t.Errorf("aggregates = (%d, %v), want (1, 150)", got.NumberOfEncounters, got.AmountSubmitted)
	}

	env.claims.items[c.ID].Status = StatusSubmitted
	err := env.svc.DeleteDetail(ctx, c.ID, d1.ID)
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StateError for non-draft delete", err)
	}
	if _, ok := env.details.items[d1.ID]; !ok {
		t.Error("detail should still exist after failed delete")
	}
}

func TestGetClaimIncludesDetails(t *testing.T) {
	env := newTestEnv()
	c := env.seedClaim(t, StatusDraft, 0, 0)
	if err := env.svc.AddDetail(context.Background(), c.ID, newDetail(100)); err != nil {
		t.Fatalf("AddDetail: %v", err)
	}
	got, err := env.svc.GetClaim(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if len(got.Details) != 1 {
		t.Errorf("details = %d, want 1", len(got.Details))
	}
}

func TestListClaimsInvalidStatus(t *testing.T) {
	env := newTestEnv()
	_, _, err := env.svc.ListClaims(context.Background(), ListFilter{Status: "bogus"}, 20, 0)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestTransitionUnknownClaim(t *testing.T) {
	env := newTestEnv()
	_, err := env.svc.Submit(context.Background(), uuid.New(), "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestGuardMessagesCoverAllOperations(t *testing.T) {
	for op := range transitions {
		if _, ok := guardMessages[op]; !ok {
			t.Errorf("missing guard message for operation %s", op)
		}
	}
}
