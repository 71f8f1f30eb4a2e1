package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is one row of the payment ledger. Rows are created at checkout
// initiation and only ever mutated by the reconciliation handlers; nothing
// in this subsystem deletes them.
type Payment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"index;not null" json:"userId"`
	PlanID uuid.UUID `gorm:"type:uuid" json:"planId"`

	Price      float64  `json:"price"`
	AmountPaid *float64 `json:"amountPaid"` // set only on transition into success
	Currency   string   `gorm:"default:usd" json:"currency"`

	Status        PaymentStatus `gorm:"type:varchar(20);default:pending;index" json:"status"`
	PaymentMethod *string       `json:"paymentMethod"`

	StripeSessionID       *string `gorm:"uniqueIndex:idx_payments_stripe_session_id" json:"stripeSessionId"`
	StripeCustomerID      *string `json:"stripeCustomerId"`
	StripePaymentIntentID *string `gorm:"index" json:"stripePaymentIntentId"`
	StripeChargeID        *string `json:"stripeChargeId"`

	TransactionID *string `json:"transactionId"`
	FailureReason *string `json:"failureReason"`

	PaidAt    *time.Time `json:"paidAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
