package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SubscriptionExpirer is the slice of the billing store the sweep needs.
type SubscriptionExpirer interface {
	ExpireOverdue(now time.Time) (int64, error)
}

// StartExpirySweep runs an hourly pass flipping lapsed active/past_due
// subscriptions to expired. Incomplete records are left alone.
func StartExpirySweep(store SubscriptionExpirer) *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		n, err := store.ExpireOverdue(time.Now())
		if err != nil {
			log.Printf("subscription expiry sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("expired %d lapsed subscriptions", n)
		}
	}); err != nil {
		log.Fatal("Failed to schedule expiry sweep:", err)
	}
	c.Start()
	return c
}
