package stripewebhooks

import (
	"log"
	"time"

	"streaming-app/internal/domain/billing"
	"streaming-app/internal/domain/plans"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutCompleted updates the Payment from the reported payment
// status and, when paid, activates the Subscription with an authoritative
// plan-duration re-lookup. The Payment write happens before the
// Subscription write: if we crash between them, Stripe's redelivery
// completes the missing half without re-applying the first.
func (h *Handler) handleCheckoutCompleted(session *stripe.CheckoutSession) error {
	res := sessionResolution(session)
	paid := session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	patch := billing.PaymentPatch{StripeSessionID: &session.ID}
	if res.customerID != "" {
		patch.StripeCustomerID = &res.customerID
	}
	if res.paymentIntentID != "" {
		patch.StripePaymentIntentID = &res.paymentIntentID
		h.enrichFromIntent(&patch, res.paymentIntentID)
	}

	payment, err := res.findPayment(h.ledger)
	if err != nil {
		return err
	}
	switch {
	case payment == nil:
		log.Printf("checkout.session.completed: no payment resolved for session %s", session.ID)
	case paid:
		now := time.Now()
		patch.PaidAt = &now
		if session.AmountTotal > 0 {
			amount := float64(session.AmountTotal) / 100
			patch.AmountPaid = &amount
		}
		if session.Currency != "" {
			currency := string(session.Currency)
			patch.Currency = &currency
		}
		applied, err := h.ledger.TransitionPayment(payment.ID, billing.PaymentSuccess, patch)
		if err != nil {
			return err
		}
		if !applied {
			log.Printf("payment %s already %s; checkout success not re-applied", payment.ID, payment.Status)
		}
	default:
		// Not paid yet: record what the session told us, leave status alone.
		if err := h.ledger.UpdatePayment(payment.ID, patch); err != nil {
			return err
		}
	}

	if !paid {
		return nil
	}

	sub, err := res.findSubscription(h.ledger)
	if err != nil {
		return err
	}
	if sub == nil {
		log.Printf("checkout.session.completed: no subscription resolved for session %s", session.ID)
		return nil
	}

	planID := res.planID
	if planID == uuid.Nil {
		planID = sub.PlanID
	}
	days := plans.DefaultDurationDays
	if planID != uuid.Nil {
		if d, err := h.plans.DurationDays(planID); err != nil {
			log.Printf("plan %s duration lookup failed, using %d-day default: %v", planID, days, err)
		} else {
			days = d
		}
	}

	now := time.Now()
	end := now.AddDate(0, 0, days)
	subPatch := billing.SubscriptionPatch{
		StripeSessionID: &session.ID,
		StartDate:       &now,
		EndDate:         &end,
	}
	if res.stripeSubID != "" {
		subPatch.StripeSubscriptionID = &res.stripeSubID
	}
	if res.customerID != "" {
		subPatch.StripeCustomerID = &res.customerID
	}

	applied, err := h.ledger.TransitionSubscription(sub.ID, billing.SubscriptionActive, subPatch)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("subscription %s already %s; checkout activation not re-applied", sub.ID, sub.Status)
	}
	return nil
}

// enrichFromIntent fills payment method and charge id from the payment
// intent. The intent is a secondary dependency: a failed fetch is logged
// and the ledger write proceeds without it.
func (h *Handler) enrichFromIntent(patch *billing.PaymentPatch, intentID string) {
	pi, err := h.provider.GetPaymentIntent(intentID)
	if err != nil {
		log.Printf("payment intent %s lookup failed: %v", intentID, err)
		return
	}
	if len(pi.PaymentMethodTypes) > 0 {
		patch.PaymentMethod = &pi.PaymentMethodTypes[0]
	}
	if pi.LatestCharge != nil {
		patch.StripeChargeID = &pi.LatestCharge.ID
	}
}
