package stripewebhooks

import (
	"log"
	"time"

	"streaming-app/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
)

// Invoice events originate from Stripe's own billing records and carry no
// local metadata, so resolution is purely by previously persisted external
// ids.

func (h *Handler) handleInvoicePaymentFailed(inv *stripe.Invoice) error {
	res := invoiceResolution(inv)

	if res.stripeSubID != "" {
		sub, err := h.ledger.SubscriptionByStripeID(res.stripeSubID)
		if err != nil {
			return err
		}
		if sub != nil {
			if _, err := h.ledger.TransitionSubscription(sub.ID, billing.SubscriptionPastDue, billing.SubscriptionPatch{}); err != nil {
				return err
			}
		} else {
			log.Printf("invoice.payment_failed: no subscription for stripe id %s", res.stripeSubID)
		}
	}

	if res.paymentIntentID != "" {
		payment, err := h.ledger.PaymentByIntentID(res.paymentIntentID)
		if err != nil {
			return err
		}
		if payment != nil {
			reason := "Invoice payment failed"
			if _, err := h.ledger.TransitionPayment(payment.ID, billing.PaymentFailed, billing.PaymentPatch{FailureReason: &reason}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) handleInvoicePaymentSucceeded(inv *stripe.Invoice) error {
	res := invoiceResolution(inv)

	if res.stripeSubID != "" {
		sub, err := h.ledger.SubscriptionByStripeID(res.stripeSubID)
		if err != nil {
			return err
		}
		if sub != nil && sub.Status != billing.SubscriptionActive {
			if _, err := h.ledger.TransitionSubscription(sub.ID, billing.SubscriptionActive, billing.SubscriptionPatch{}); err != nil {
				return err
			}
		}
	}

	if res.paymentIntentID != "" {
		payment, err := h.ledger.PaymentByIntentID(res.paymentIntentID)
		if err != nil {
			return err
		}
		if payment != nil && payment.Status != billing.PaymentSuccess {
			now := time.Now()
			amount := payment.Price
			if inv.AmountPaid > 0 {
				amount = float64(inv.AmountPaid) / 100
			}
			currency := payment.Currency
			if inv.Currency != "" {
				currency = string(inv.Currency)
			}
			patch := billing.PaymentPatch{
				AmountPaid: &amount,
				Currency:   &currency,
				PaidAt:     &now,
			}
			if _, err := h.ledger.TransitionPayment(payment.ID, billing.PaymentSuccess, patch); err != nil {
				return err
			}
		}
	}
	return nil
}
