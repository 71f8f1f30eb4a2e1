package stripewebhooks

import (
	"streaming-app/internal/domain/billing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// resolution carries every identifier an event offers for locating the local
// ledger rows: ids this system embedded as metadata at session creation
// (primary, collision-free) and ids the provider assigned and we persisted
// earlier (secondary). All handlers resolve through this one type.
type resolution struct {
	paymentID      uuid.UUID
	subscriptionID uuid.UUID
	planID         uuid.UUID
	userID         string

	sessionID       string
	customerID      string
	paymentIntentID string
	stripeSubID     string
}

// metadataUUID treats absent and malformed ids the same: uuid.Nil, which
// drops the primary tier and lets secondary resolution take over.
func metadataUUID(md map[string]string, key string) uuid.UUID {
	if md == nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(md[key])
	if err != nil {
		return uuid.Nil
	}
	return id
}

func sessionResolution(s *stripe.CheckoutSession) resolution {
	r := resolution{
		paymentID:      metadataUUID(s.Metadata, "paymentId"),
		subscriptionID: metadataUUID(s.Metadata, "subscriptionId"),
		planID:         metadataUUID(s.Metadata, "planId"),
		sessionID:      s.ID,
	}
	if s.Metadata != nil {
		r.userID = s.Metadata["userId"]
	}
	if s.Customer != nil {
		r.customerID = s.Customer.ID
	}
	if s.Subscription != nil {
		r.stripeSubID = s.Subscription.ID
	}
	if s.PaymentIntent != nil {
		r.paymentIntentID = s.PaymentIntent.ID
	}
	return r
}

func intentResolution(pi *stripe.PaymentIntent) resolution {
	r := resolution{
		paymentID:       metadataUUID(pi.Metadata, "paymentId"),
		paymentIntentID: pi.ID,
	}
	if pi.Metadata != nil {
		r.sessionID = pi.Metadata["session_id"]
	}
	return r
}

// invoiceResolution carries only external ids: invoices originate from
// Stripe's own records and never hold our metadata.
func invoiceResolution(inv *stripe.Invoice) resolution {
	r := resolution{}
	if inv.Subscription != nil {
		r.stripeSubID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		r.customerID = inv.Customer.ID
	}
	if inv.PaymentIntent != nil {
		r.paymentIntentID = inv.PaymentIntent.ID
	}
	return r
}

// findPayment applies the two-tier policy: metadata id, then persisted
// session id, then persisted intent id.
func (r resolution) findPayment(l Ledger) (*billing.Payment, error) {
	if r.paymentID != uuid.Nil {
		p, err := l.PaymentByID(r.paymentID)
		if err != nil || p != nil {
			return p, err
		}
	}
	if r.sessionID != "" {
		p, err := l.PaymentBySessionID(r.sessionID)
		if err != nil || p != nil {
			return p, err
		}
	}
	if r.paymentIntentID != "" {
		return l.PaymentByIntentID(r.paymentIntentID)
	}
	return nil, nil
}

func (r resolution) findSubscription(l Ledger) (*billing.Subscription, error) {
	if r.subscriptionID != uuid.Nil {
		s, err := l.SubscriptionByID(r.subscriptionID)
		if err != nil || s != nil {
			return s, err
		}
	}
	if r.sessionID != "" {
		s, err := l.SubscriptionBySessionID(r.sessionID)
		if err != nil || s != nil {
			return s, err
		}
	}
	if r.stripeSubID != "" {
		return l.SubscriptionByStripeID(r.stripeSubID)
	}
	return nil, nil
}
