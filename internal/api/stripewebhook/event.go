package stripewebhooks

// eventKind is the closed set of webhook kinds this subsystem reconciles.
// Anything Stripe sends outside this set classifies as kindIgnored and is
// acknowledged without touching the ledger, so newly introduced provider
// events can never trigger retry storms or silent mis-handling.
type eventKind int

const (
	kindIgnored eventKind = iota
	kindCheckoutCompleted
	kindAsyncPaymentSucceeded
	kindAsyncPaymentFailed
	kindPaymentIntentSucceeded
	kindPaymentIntentFailed
	kindInvoicePaymentSucceeded
	kindInvoicePaymentFailed
	kindSubscriptionUpdated
	kindSubscriptionDeleted
)

// classify is the single place the provider's event type strings are
// interpreted; past this point dispatch is over the closed union above.
func classify(eventType string) eventKind {
	switch eventType {
	case "checkout.session.completed":
		return kindCheckoutCompleted
	case "checkout.session.async_payment_succeeded":
		return kindAsyncPaymentSucceeded
	case "checkout.session.async_payment_failed":
		return kindAsyncPaymentFailed
	case "payment_intent.succeeded":
		return kindPaymentIntentSucceeded
	case "payment_intent.payment_failed":
		return kindPaymentIntentFailed
	case "invoice.payment_succeeded":
		return kindInvoicePaymentSucceeded
	case "invoice.payment_failed":
		return kindInvoicePaymentFailed
	case "customer.subscription.updated":
		return kindSubscriptionUpdated
	case "customer.subscription.deleted":
		return kindSubscriptionDeleted
	default:
		return kindIgnored
	}
}
