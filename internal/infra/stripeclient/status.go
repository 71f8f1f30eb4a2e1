package stripeclient

import (
	"strings"

	"streaming-app/internal/domain/billing"
)

// NormalizeSubscriptionStatus maps a Stripe subscription status onto the
// local lifecycle. The second return is false for statuses that have no
// local meaning; callers skip the write rather than guessing.
func NormalizeSubscriptionStatus(s string) (billing.SubscriptionStatus, bool) {
	switch strings.TrimSpace(s) {
	case "active", "trialing":
		return billing.SubscriptionActive, true
	case "past_due", "unpaid":
		return billing.SubscriptionPastDue, true
	case "canceled":
		return billing.SubscriptionCancelled, true
	case "incomplete":
		return billing.SubscriptionIncomplete, true
	case "incomplete_expired":
		return billing.SubscriptionExpired, true
	default:
		return "", false
	}
}
