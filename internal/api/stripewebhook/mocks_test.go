package stripewebhooks

import (
	"errors"

	"streaming-app/internal/domain/billing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// fakeLedger is an in-memory Ledger with the same conditional-transition
// semantics as the GORM store.
type fakeLedger struct {
	payments      map[uuid.UUID]*billing.Payment
	subscriptions map[uuid.UUID]*billing.Subscription

	failWrites bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		payments:      map[uuid.UUID]*billing.Payment{},
		subscriptions: map[uuid.UUID]*billing.Subscription{},
	}
}

var errWriteFailed = errors.New("write failed")

func (f *fakeLedger) PaymentByID(id uuid.UUID) (*billing.Payment, error) {
	return f.payments[id], nil
}

func (f *fakeLedger) PaymentBySessionID(sessionID string) (*billing.Payment, error) {
	for _, p := range f.payments {
		if p.StripeSessionID != nil && *p.StripeSessionID == sessionID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) PaymentByIntentID(intentID string) (*billing.Payment, error) {
	for _, p := range f.payments {
		if p.StripePaymentIntentID != nil && *p.StripePaymentIntentID == intentID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) TransitionPayment(id uuid.UUID, target billing.PaymentStatus, patch billing.PaymentPatch) (bool, error) {
	if f.failWrites {
		return false, errWriteFailed
	}
	p := f.payments[id]
	if p == nil || !p.Status.CanTransitionTo(target) {
		return false, nil
	}
	patch.Apply(p)
	p.Status = target
	return true, nil
}

func (f *fakeLedger) UpdatePayment(id uuid.UUID, patch billing.PaymentPatch) error {
	if f.failWrites {
		return errWriteFailed
	}
	if p := f.payments[id]; p != nil {
		patch.Apply(p)
	}
	return nil
}

func (f *fakeLedger) SubscriptionByID(id uuid.UUID) (*billing.Subscription, error) {
	return f.subscriptions[id], nil
}

func (f *fakeLedger) SubscriptionBySessionID(sessionID string) (*billing.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.StripeSessionID != nil && *s.StripeSessionID == sessionID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) SubscriptionByStripeID(subscriptionID string) (*billing.Subscription, error) {
	for _, s := range f.subscriptions {
		if s.StripeSubscriptionID != nil && *s.StripeSubscriptionID == subscriptionID {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeLedger) TransitionSubscription(id uuid.UUID, target billing.SubscriptionStatus, patch billing.SubscriptionPatch) (bool, error) {
	if f.failWrites {
		return false, errWriteFailed
	}
	s := f.subscriptions[id]
	if s == nil || !s.Status.CanTransitionTo(target) {
		return false, nil
	}
	patch.Apply(s)
	s.Status = target
	return true, nil
}

func (f *fakeLedger) UpdateSubscription(id uuid.UUID, patch billing.SubscriptionPatch) error {
	if f.failWrites {
		return errWriteFailed
	}
	if s := f.subscriptions[id]; s != nil {
		patch.Apply(s)
	}
	return nil
}

// fakePlans resolves durations from a fixed map; anything else errors so
// callers exercise their default path.
type fakePlans struct {
	durations map[uuid.UUID]int
}

var errPlanNotFound = errors.New("plan not found")

func (f *fakePlans) DurationDays(id uuid.UUID) (int, error) {
	d, ok := f.durations[id]
	if !ok {
		return 0, errPlanNotFound
	}
	return d, nil
}

// fakeProvider substitutes the Stripe client.
type fakeProvider struct {
	event     stripe.Event
	verifyErr error

	intent    *stripe.PaymentIntent
	intentErr error

	session    *stripe.CheckoutSession
	sessionErr error
}

func (f *fakeProvider) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) GetPaymentIntent(id string) (*stripe.PaymentIntent, error) {
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	if f.intent != nil {
		return f.intent, nil
	}
	return nil, errors.New("no such intent")
}

func (f *fakeProvider) VerifySignature(payload []byte, sigHeader string) (stripe.Event, error) {
	return f.event, f.verifyErr
}
