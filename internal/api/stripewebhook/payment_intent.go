package stripewebhooks

import (
	"log"
	"time"

	"streaming-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

// Intent events mirror success/failure onto the Payment only. They are
// supplementary: checkout and invoice events own subscription state.

func (h *Handler) handlePaymentIntentSucceeded(pi *stripe.PaymentIntent) error {
	res := intentResolution(pi)
	payment, err := res.findPayment(h.ledger)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("payment_intent.succeeded: no payment resolved for intent %s", pi.ID)
		return nil
	}

	now := time.Now()
	amount := payment.Price
	if pi.Amount > 0 {
		amount = float64(pi.Amount) / 100
	}
	currency := payment.Currency
	if pi.Currency != "" {
		currency = string(pi.Currency)
	}

	patch := billing.PaymentPatch{
		StripePaymentIntentID: &pi.ID,
		AmountPaid:            &amount,
		Currency:              &currency,
		PaidAt:                &now,
	}
	if len(pi.PaymentMethodTypes) > 0 {
		patch.PaymentMethod = &pi.PaymentMethodTypes[0]
	}
	if pi.LatestCharge != nil {
		patch.StripeChargeID = &pi.LatestCharge.ID
	}

	_, err = h.ledger.TransitionPayment(payment.ID, billing.PaymentSuccess, patch)
	return err
}

func (h *Handler) handlePaymentIntentFailed(pi *stripe.PaymentIntent) error {
	res := intentResolution(pi)
	payment, err := res.findPayment(h.ledger)
	if err != nil {
		return err
	}
	if payment == nil {
		log.Printf("payment_intent.payment_failed: no payment resolved for intent %s", pi.ID)
		return nil
	}

	reason := "Payment failed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		reason = pi.LastPaymentError.Msg
	}
	patch := billing.PaymentPatch{
		StripePaymentIntentID: &pi.ID,
		FailureReason:         &reason,
	}

	_, err = h.ledger.TransitionPayment(payment.ID, billing.PaymentFailed, patch)
	return err
}
