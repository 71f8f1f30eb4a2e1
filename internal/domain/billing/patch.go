package billing

import "time"

// PaymentPatch carries the non-status fields a reconciliation write may set.
// Nil fields are left untouched, which is what makes partial, per-field
// gating possible: each handler states exactly what it learned from its
// event and nothing more.
type PaymentPatch struct {
	StripeSessionID       *string
	StripeCustomerID      *string
	StripePaymentIntentID *string
	StripeChargeID        *string
	PaymentMethod         *string
	AmountPaid            *float64
	Currency              *string
	TransactionID         *string
	FailureReason         *string
	PaidAt                *time.Time
}

// Apply copies the set fields onto p. The in-memory test fakes use this;
// the GORM store translates the same patch into a column update instead.
func (pp PaymentPatch) Apply(p *Payment) {
	if pp.StripeSessionID != nil {
		p.StripeSessionID = pp.StripeSessionID
	}
	if pp.StripeCustomerID != nil {
		p.StripeCustomerID = pp.StripeCustomerID
	}
	if pp.StripePaymentIntentID != nil {
		p.StripePaymentIntentID = pp.StripePaymentIntentID
	}
	if pp.StripeChargeID != nil {
		p.StripeChargeID = pp.StripeChargeID
	}
	if pp.PaymentMethod != nil {
		p.PaymentMethod = pp.PaymentMethod
	}
	if pp.AmountPaid != nil {
		p.AmountPaid = pp.AmountPaid
	}
	if pp.Currency != nil {
		p.Currency = *pp.Currency
	}
	if pp.TransactionID != nil {
		p.TransactionID = pp.TransactionID
	}
	if pp.FailureReason != nil {
		p.FailureReason = pp.FailureReason
	}
	if pp.PaidAt != nil {
		p.PaidAt = pp.PaidAt
	}
}

func (pp PaymentPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if pp.StripeSessionID != nil {
		cols["stripe_session_id"] = *pp.StripeSessionID
	}
	if pp.StripeCustomerID != nil {
		cols["stripe_customer_id"] = *pp.StripeCustomerID
	}
	if pp.StripePaymentIntentID != nil {
		cols["stripe_payment_intent_id"] = *pp.StripePaymentIntentID
	}
	if pp.StripeChargeID != nil {
		cols["stripe_charge_id"] = *pp.StripeChargeID
	}
	if pp.PaymentMethod != nil {
		cols["payment_method"] = *pp.PaymentMethod
	}
	if pp.AmountPaid != nil {
		cols["amount_paid"] = *pp.AmountPaid
	}
	if pp.Currency != nil {
		cols["currency"] = *pp.Currency
	}
	if pp.TransactionID != nil {
		cols["transaction_id"] = *pp.TransactionID
	}
	if pp.FailureReason != nil {
		cols["failure_reason"] = *pp.FailureReason
	}
	if pp.PaidAt != nil {
		cols["paid_at"] = *pp.PaidAt
	}
	return cols
}

// SubscriptionPatch is the subscription-side counterpart of PaymentPatch.
type SubscriptionPatch struct {
	StripeSessionID      *string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	StartDate            *time.Time
	EndDate              *time.Time
	AutoRenew            *bool
}

func (sp SubscriptionPatch) Apply(s *Subscription) {
	if sp.StripeSessionID != nil {
		s.StripeSessionID = sp.StripeSessionID
	}
	if sp.StripeCustomerID != nil {
		s.StripeCustomerID = sp.StripeCustomerID
	}
	if sp.StripeSubscriptionID != nil {
		s.StripeSubscriptionID = sp.StripeSubscriptionID
	}
	if sp.StartDate != nil {
		s.StartDate = *sp.StartDate
	}
	if sp.EndDate != nil {
		s.EndDate = *sp.EndDate
	}
	if sp.AutoRenew != nil {
		s.AutoRenew = *sp.AutoRenew
	}
}

func (sp SubscriptionPatch) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if sp.StripeSessionID != nil {
		cols["stripe_session_id"] = *sp.StripeSessionID
	}
	if sp.StripeCustomerID != nil {
		cols["stripe_customer_id"] = *sp.StripeCustomerID
	}
	if sp.StripeSubscriptionID != nil {
		cols["stripe_subscription_id"] = *sp.StripeSubscriptionID
	}
	if sp.StartDate != nil {
		cols["start_date"] = *sp.StartDate
	}
	if sp.EndDate != nil {
		cols["end_date"] = *sp.EndDate
	}
	if sp.AutoRenew != nil {
		cols["auto_renew"] = *sp.AutoRenew
	}
	return cols
}

// IsZero reports whether the patch would write nothing.
func (sp SubscriptionPatch) IsZero() bool {
	return len(sp.columns()) == 0
}
