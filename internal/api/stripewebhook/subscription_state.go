package stripewebhooks

import (
	"log"
	"time"

	"streaming-app/internal/domain/billing"
	"streaming-app/internal/infra/stripeclient"

	"github.com/stripe/stripe-go/v75"
)

// applySubscriptionState serves both customer.subscription.updated and
// .deleted: the reported status is taken verbatim (normalized onto the
// local lifecycle) and the end date is recomputed from the reported period
// end. Resolution is by the external subscription id only.
func (h *Handler) applySubscriptionState(remote *stripe.Subscription) error {
	if remote.ID == "" {
		return nil
	}

	local, err := h.ledger.SubscriptionByStripeID(remote.ID)
	if err != nil {
		return err
	}
	if local == nil {
		log.Printf("subscription event: no local record for stripe id %s", remote.ID)
		return nil
	}

	patch := billing.SubscriptionPatch{}
	if remote.CurrentPeriodEnd > 0 {
		end := time.Unix(remote.CurrentPeriodEnd, 0)
		patch.EndDate = &end
	}

	target, ok := stripeclient.NormalizeSubscriptionStatus(string(remote.Status))
	if !ok || target == local.Status {
		// Renewal or unmappable status: the period end still applies.
		if patch.EndDate != nil {
			return h.ledger.UpdateSubscription(local.ID, patch)
		}
		return nil
	}

	applied, err := h.ledger.TransitionSubscription(local.ID, target, patch)
	if err != nil {
		return err
	}
	if !applied {
		// Disallowed transition is logged, never raised: there is no
		// synchronous caller to surface a conflict to.
		log.Printf("subscription %s: transition %s -> %s not allowed, status kept", local.ID, local.Status, target)
		if patch.EndDate != nil {
			return h.ledger.UpdateSubscription(local.ID, patch)
		}
	}
	return nil
}
