package billing

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
	PaymentRefunded  PaymentStatus = "refunded"
)

type SubscriptionStatus string

const (
	SubscriptionIncomplete SubscriptionStatus = "incomplete"
	SubscriptionActive     SubscriptionStatus = "active"
	SubscriptionPastDue    SubscriptionStatus = "past_due"
	SubscriptionCancelled  SubscriptionStatus = "cancelled"
	SubscriptionExpired    SubscriptionStatus = "expired"
)

// paymentSources holds, per target status, the set of statuses a payment is
// allowed to move from. Webhook deliveries are at-least-once and unordered,
// so every status write is gated by this graph instead of blindly
// overwriting: a late failure can never undo a recorded success.
var paymentSources = map[PaymentStatus][]PaymentStatus{
	PaymentSuccess:   {PaymentPending, PaymentFailed},
	PaymentFailed:    {PaymentPending},
	PaymentCancelled: {PaymentPending, PaymentFailed},
	PaymentRefunded:  {PaymentSuccess},
}

var subscriptionSources = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionActive:    {SubscriptionIncomplete, SubscriptionPastDue},
	SubscriptionPastDue:   {SubscriptionIncomplete, SubscriptionActive},
	SubscriptionCancelled: {SubscriptionIncomplete, SubscriptionActive, SubscriptionPastDue},
	SubscriptionExpired:   {SubscriptionIncomplete, SubscriptionActive, SubscriptionPastDue},
}

// PaymentTransitionSources returns the statuses from which a payment may
// enter target. An empty slice means target is never a valid destination.
func PaymentTransitionSources(target PaymentStatus) []PaymentStatus {
	return paymentSources[target]
}

func SubscriptionTransitionSources(target SubscriptionStatus) []SubscriptionStatus {
	return subscriptionSources[target]
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, from := range paymentSources[target] {
		if from == s {
			return true
		}
	}
	return false
}

func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	for _, from := range subscriptionSources[target] {
		if from == s {
			return true
		}
	}
	return false
}
