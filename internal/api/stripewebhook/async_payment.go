package stripewebhooks

import (
	"log"
	"time"

	"streaming-app/internal/domain/billing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// Async events resolve by metadata only: they describe a checkout this
// system initiated, so the ids we embedded are always present when the
// event is genuine.

func (h *Handler) handleAsyncPaymentSucceeded(session *stripe.CheckoutSession) error {
	res := sessionResolution(session)

	if res.paymentID != uuid.Nil {
		now := time.Now()
		patch := billing.PaymentPatch{PaidAt: &now}
		if res.paymentIntentID != "" {
			patch.StripePaymentIntentID = &res.paymentIntentID
			h.enrichFromIntent(&patch, res.paymentIntentID)
		}
		if session.AmountTotal > 0 {
			amount := float64(session.AmountTotal) / 100
			patch.AmountPaid = &amount
		}
		if _, err := h.ledger.TransitionPayment(res.paymentID, billing.PaymentSuccess, patch); err != nil {
			return err
		}
	} else {
		log.Printf("async_payment_succeeded: session %s carries no payment metadata", session.ID)
	}

	// No duration recompute here: the end date was fixed when the
	// subscription was activated or initiated.
	if res.subscriptionID != uuid.Nil {
		if _, err := h.ledger.TransitionSubscription(res.subscriptionID, billing.SubscriptionActive, billing.SubscriptionPatch{}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) handleAsyncPaymentFailed(session *stripe.CheckoutSession) error {
	res := sessionResolution(session)
	if res.paymentID == uuid.Nil {
		log.Printf("async_payment_failed: session %s carries no payment metadata", session.ID)
		return nil
	}

	reason := "Async payment failed"
	_, err := h.ledger.TransitionPayment(res.paymentID, billing.PaymentFailed, billing.PaymentPatch{FailureReason: &reason})
	// The subscription is deliberately untouched: a failed delayed payment
	// must never regress a subscription that a concurrent success already
	// activated.
	return err
}
