package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription is the access-granting half of the ledger. It is created
// incomplete alongside its Payment and shares the checkout session id with
// it until Stripe assigns the subscription its own id.
type Subscription struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string    `gorm:"index;not null" json:"userId"`
	PlanID uuid.UUID `gorm:"type:uuid" json:"planId"`

	StripeSessionID      *string `gorm:"index" json:"stripeSessionId"`
	StripeCustomerID     *string `json:"stripeCustomerId"`
	StripeSubscriptionID *string `gorm:"uniqueIndex:idx_subscriptions_stripe_subscription_id" json:"stripeSubscriptionId"`

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`

	Status SubscriptionStatus `gorm:"type:varchar(20);default:incomplete;index" json:"status"`

	PaymentID uuid.UUID `gorm:"type:uuid;index" json:"paymentId"`
	AutoRenew bool      `gorm:"default:true" json:"autoRenew"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the subscription's paid period has lapsed,
// regardless of what status the reconciliation handlers last wrote.
func (s *Subscription) IsExpired(now time.Time) bool {
	return now.After(s.EndDate)
}
