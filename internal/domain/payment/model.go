package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a payment batch. Claims can only be
// attached while the batch is open.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Batch groups claim payouts executed together against a funding account.
type Batch struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	BatchReference string     `db:"batch_reference" json:"batchReference"`
	PaymentDate    *time.Time `db:"payment_date" json:"paymentDate,omitempty"`
	TotalAmount    float64    `db:"total_amount" json:"totalAmount"`
	Status         Status     `db:"status" json:"status"`
	Description    *string    `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
