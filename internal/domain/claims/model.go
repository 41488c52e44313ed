package claims

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a claim.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusSubmitted      Status = "submitted"
	StatusPendingVetting Status = "pending_vetting"
	StatusUnderReview    Status = "under_review"
	StatusAwaitingPay    Status = "awaiting_payment"
	StatusPaid           Status = "paid"
	StatusPartiallyPaid  Status = "partially_paid"
	StatusRejected       Status = "rejected"
	StatusQueried        Status = "queried"
)

var validStatuses = map[Status]bool{
	StatusDraft: true, StatusSubmitted: true, StatusPendingVetting: true,
	StatusUnderReview: true, StatusAwaitingPay: true, StatusPaid: true,
	StatusPartiallyPaid: true, StatusRejected: true, StatusQueried: true,
}

// Valid reports whether s is a known claim status.
func (s Status) Valid() bool { return validStatuses[s] }

// Claim is a provider's billing submission for a period, aggregating one or
// more ClaimDetails. numberOfEncounters, amountSubmitted, amountProcessed and
// difference are derived from the details and recalculated on every detail
// mutation.
type Claim struct {
	ID                 uuid.UUID   `db:"id" json:"id"`
	ClaimReference     string      `db:"claim_reference" json:"claimReference"`
	ProviderID         uuid.UUID   `db:"provider_id" json:"providerId"`
	NumberOfEncounters int         `db:"number_of_encounters" json:"numberOfEncounters"`
	AmountSubmitted    float64     `db:"amount_submitted" json:"amountSubmitted"`
	AmountProcessed    float64     `db:"amount_processed" json:"amountProcessed"`
	Difference         float64     `db:"difference" json:"difference"`
	Year               int         `db:"year" json:"year"`
	Month              int         `db:"month" json:"month"`
	Status             Status      `db:"status" json:"status"`
	SubmittedByType    *string     `db:"submitted_by_type" json:"submittedByType,omitempty"`
	SubmittedByID      *string     `db:"submitted_by_id" json:"submittedById,omitempty"`
	BankUsedForPayment *string     `db:"bank_used_for_payment" json:"bankUsedForPayment,omitempty"`
	BankAccountNumber  *string     `db:"bank_account_number" json:"bankAccountNumber,omitempty"`
	AccountName        *string     `db:"account_name" json:"accountName,omitempty"`
	PaymentBatchID     *uuid.UUID  `db:"payment_batch_id" json:"paymentBatchId,omitempty"`
	VetterNotes        *string     `db:"vetter_notes" json:"vetterNotes,omitempty"`
	RejectionReason    *string     `db:"rejection_reason" json:"rejectionReason,omitempty"`
	DatePaid           *time.Time  `db:"date_paid" json:"datePaid,omitempty"`
	Description        *string     `db:"description" json:"description,omitempty"`
	AttachmentURL      *string     `db:"attachment_url" json:"attachmentUrl,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updatedAt"`
	Details            []*Detail   `db:"-" json:"claimDetails,omitempty"`
}

// Detail is one billable service line (encounter) tied to a single
// beneficiary within a claim. Exactly one of EnrolleeID or RetailEnrolleeID
// is set; ProviderID is copied from the parent claim at creation and never
// changes afterwards.
type Detail struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	ClaimID           uuid.UUID  `db:"claim_id" json:"claimId"`
	EnrolleeID        *uuid.UUID `db:"enrollee_id" json:"enrolleeId,omitempty"`
	RetailEnrolleeID  *uuid.UUID `db:"retail_enrollee_id" json:"retailEnrolleeId,omitempty"`
	ProviderID        uuid.UUID  `db:"provider_id" json:"providerId"`
	DiagnosisID       *uuid.UUID `db:"diagnosis_id" json:"diagnosisId,omitempty"`
	CompanyID         *uuid.UUID `db:"company_id" json:"companyId,omitempty"`
	ServiceDate       time.Time  `db:"service_date" json:"serviceDate"`
	DischargeDate     *time.Time `db:"discharge_date" json:"dischargeDate,omitempty"`
	AmountClaimed     float64    `db:"amount_claimed" json:"amountClaimed"`
	AmountApproved    float64    `db:"amount_approved" json:"amountApproved"`
	ServiceType       *string    `db:"service_type" json:"serviceType,omitempty"`
	Description       *string    `db:"description" json:"description,omitempty"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	ReferralNumber    *string    `db:"referral_number" json:"referralNumber,omitempty"`
	AuthorizationCode *string    `db:"authorization_code" json:"authorizationCode,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// Aggregates holds the derived totals recomputed from a claim's details.
type Aggregates struct {
	NumberOfEncounters int
	AmountSubmitted    float64
	AmountProcessed    float64
}

// ListFilter narrows claim listings.
type ListFilter struct {
	Status        Status
	ProviderID    *uuid.UUID
	SubmittedByID string
	Year          int
	Month         int
}

// StatusCount is one row of the by-status analytics breakdown.
type StatusCount struct {
	Status Status  `json:"status"`
	Count  int     `json:"count"`
	Amount float64 `json:"amountSubmitted"`
}

// ProviderSummary is one row of the by-provider analytics breakdown.
type ProviderSummary struct {
	ProviderID      uuid.UUID `json:"providerId"`
	Count           int       `json:"count"`
	AmountSubmitted float64   `json:"amountSubmitted"`
	AmountProcessed float64   `json:"amountProcessed"`
}

// Summary is the top-level claims analytics rollup.
type Summary struct {
	TotalClaims     int     `json:"totalClaims"`
	TotalEncounters int     `json:"totalEncounters"`
	AmountSubmitted float64 `json:"amountSubmitted"`
	AmountProcessed float64 `json:"amountProcessed"`
	Difference      float64 `json:"difference"`
}

// PaymentStats summarizes claims that have reached the payment stages.
type PaymentStats struct {
	AwaitingPayment      int     `json:"awaitingPayment"`
	Paid                 int     `json:"paid"`
	PartiallyPaid        int     `json:"partiallyPaid"`
	AmountAwaiting       float64 `json:"amountAwaiting"`
	AmountPaid           float64 `json:"amountPaid"`
	AmountPartiallyPaid  float64 `json:"amountPartiallyPaid"`
}
