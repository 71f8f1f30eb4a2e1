package stripewebhooks

import (
	"encoding/json"
	"testing"
	"time"

	"streaming-app/internal/domain/billing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

func newTestHandler() (*Handler, *fakeLedger, *fakePlans, *fakeProvider) {
	ledger := newFakeLedger()
	planDB := &fakePlans{durations: map[uuid.UUID]int{}}
	provider := &fakeProvider{}
	return NewHandler(ledger, planDB, provider), ledger, planDB, provider
}

// seedPair mirrors what checkout initiation leaves behind: a pending
// payment and an incomplete subscription cross-linked and sharing a
// session id.
func seedPair(ledger *fakeLedger, planID uuid.UUID, sessionID string) (*billing.Payment, *billing.Subscription) {
	now := time.Now()
	payment := &billing.Payment{
		ID:       uuid.New(),
		UserID:   "user-1",
		PlanID:   planID,
		Price:    9.99,
		Currency: "usd",
		Status:   billing.PaymentPending,
	}
	sub := &billing.Subscription{
		ID:        uuid.New(),
		UserID:    "user-1",
		PlanID:    planID,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, 30),
		Status:    billing.SubscriptionIncomplete,
		PaymentID: payment.ID,
	}
	if sessionID != "" {
		payment.StripeSessionID = &sessionID
		sub.StripeSessionID = &sessionID
	}
	ledger.payments[payment.ID] = payment
	ledger.subscriptions[sub.ID] = sub
	return payment, sub
}

func rawEvent(t *testing.T, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	if err != nil {
		t.Fatalf("marshal event object: %v", err)
	}
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func paidSession(payment *billing.Payment, sub *billing.Subscription, planID uuid.UUID) *stripe.CheckoutSession {
	return &stripe.CheckoutSession{
		ID:            "cs_test_1",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		AmountTotal:   999,
		Currency:      "usd",
		Metadata: map[string]string{
			"paymentId":      payment.ID.String(),
			"subscriptionId": sub.ID.String(),
			"planId":         planID.String(),
			"userId":         "user-1",
		},
		Subscription: &stripe.Subscription{ID: "sub_stripe_1"},
		Customer:     &stripe.Customer{ID: "cus_1"},
	}
}

func TestCheckoutCompleted(t *testing.T) {
	t.Run("paid session activates subscription with plan duration", func(t *testing.T) {
		h, ledger, planDB, _ := newTestHandler()
		planID := uuid.New()
		planDB.durations[planID] = 45
		payment, sub := seedPair(ledger, planID, "")

		event := rawEvent(t, "checkout.session.completed", paidSession(payment, sub, planID))
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		if payment.Status != billing.PaymentSuccess {
			t.Errorf("payment status = %s, want success", payment.Status)
		}
		if payment.AmountPaid == nil || *payment.AmountPaid != 9.99 {
			t.Errorf("amountPaid = %v, want 9.99", payment.AmountPaid)
		}
		if payment.PaidAt == nil {
			t.Error("paidAt not set")
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active", sub.Status)
		}
		if want := sub.StartDate.AddDate(0, 0, 45); !sub.EndDate.Equal(want) {
			t.Errorf("endDate = %v, want startDate+45d = %v", sub.EndDate, want)
		}
		if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID != "sub_stripe_1" {
			t.Errorf("stripe subscription id not persisted: %v", sub.StripeSubscriptionID)
		}
	})

	t.Run("re-delivery does not re-apply", func(t *testing.T) {
		h, ledger, planDB, _ := newTestHandler()
		planID := uuid.New()
		planDB.durations[planID] = 45
		payment, sub := seedPair(ledger, planID, "")

		event := rawEvent(t, "checkout.session.completed", paidSession(payment, sub, planID))
		if err := h.dispatch(event); err != nil {
			t.Fatalf("first dispatch failed: %v", err)
		}

		paymentBefore := *payment
		subBefore := *sub

		if err := h.dispatch(event); err != nil {
			t.Fatalf("second dispatch failed: %v", err)
		}
		if payment.Status != paymentBefore.Status || *payment.AmountPaid != *paymentBefore.AmountPaid ||
			!payment.PaidAt.Equal(*paymentBefore.PaidAt) {
			t.Error("payment changed on re-delivery")
		}
		if sub.Status != subBefore.Status || !sub.StartDate.Equal(subBefore.StartDate) ||
			!sub.EndDate.Equal(subBefore.EndDate) {
			t.Error("subscription changed on re-delivery")
		}
	})

	t.Run("plan lookup failure falls back to 30 days", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, sub := seedPair(ledger, planID, "")

		event := rawEvent(t, "checkout.session.completed", paidSession(payment, sub, planID))
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Fatalf("subscription status = %s, want active", sub.Status)
		}
		if want := sub.StartDate.AddDate(0, 0, 30); !sub.EndDate.Equal(want) {
			t.Errorf("endDate = %v, want startDate+30d = %v", sub.EndDate, want)
		}
	})

	t.Run("metadata resolves without any persisted session id", func(t *testing.T) {
		h, ledger, planDB, _ := newTestHandler()
		planID := uuid.New()
		planDB.durations[planID] = 30
		payment, sub := seedPair(ledger, planID, "") // no session id stored

		event := rawEvent(t, "checkout.session.completed", paidSession(payment, sub, planID))
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentSuccess || sub.Status != billing.SubscriptionActive {
			t.Errorf("pair not reconciled: payment=%s subscription=%s", payment.Status, sub.Status)
		}
	})

	t.Run("falls back to session id when metadata is absent", func(t *testing.T) {
		h, ledger, planDB, _ := newTestHandler()
		planID := uuid.New()
		planDB.durations[planID] = 30
		payment, sub := seedPair(ledger, planID, "cs_test_1")

		session := &stripe.CheckoutSession{
			ID:            "cs_test_1",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			AmountTotal:   999,
			Currency:      "usd",
		}
		event := rawEvent(t, "checkout.session.completed", session)
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentSuccess || sub.Status != billing.SubscriptionActive {
			t.Errorf("pair not reconciled: payment=%s subscription=%s", payment.Status, sub.Status)
		}
	})

	t.Run("unpaid session records ids but keeps payment pending", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, sub := seedPair(ledger, planID, "")

		session := paidSession(payment, sub, planID)
		session.PaymentStatus = stripe.CheckoutSessionPaymentStatusUnpaid
		event := rawEvent(t, "checkout.session.completed", session)
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentPending {
			t.Errorf("payment status = %s, want pending", payment.Status)
		}
		if payment.StripeSessionID == nil || *payment.StripeSessionID != "cs_test_1" {
			t.Error("session id not recorded on unpaid completion")
		}
		if sub.Status != billing.SubscriptionIncomplete {
			t.Errorf("subscription status = %s, want incomplete", sub.Status)
		}
	})

	t.Run("unresolvable event is acknowledged as a no-op", func(t *testing.T) {
		h, _, _, _ := newTestHandler()
		session := &stripe.CheckoutSession{
			ID:            "cs_unknown",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
		}
		if err := h.dispatch(rawEvent(t, "checkout.session.completed", session)); err != nil {
			t.Fatalf("expected acknowledged no-op, got %v", err)
		}
	})
}

func TestAsyncPaymentEvents(t *testing.T) {
	t.Run("succeeded promotes payment and subscription", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, sub := seedPair(ledger, planID, "cs_test_1")
		endBefore := sub.EndDate

		session := paidSession(payment, sub, planID)
		session.AmountTotal = 999
		event := rawEvent(t, "checkout.session.async_payment_succeeded", session)
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentSuccess {
			t.Errorf("payment status = %s, want success", payment.Status)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active", sub.Status)
		}
		// No duration recompute on the async path.
		if !sub.EndDate.Equal(endBefore) {
			t.Errorf("endDate changed: %v -> %v", endBefore, sub.EndDate)
		}
	})

	t.Run("failure after paid checkout never regresses the pair", func(t *testing.T) {
		h, ledger, planDB, _ := newTestHandler()
		planID := uuid.New()
		planDB.durations[planID] = 30
		payment, sub := seedPair(ledger, planID, "")

		paid := rawEvent(t, "checkout.session.completed", paidSession(payment, sub, planID))
		if err := h.dispatch(paid); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}

		failed := rawEvent(t, "checkout.session.async_payment_failed", paidSession(payment, sub, planID))
		if err := h.dispatch(failed); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentSuccess {
			t.Errorf("payment status = %s, want success preserved", payment.Status)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active preserved", sub.Status)
		}
	})

	t.Run("failure marks a pending payment failed and leaves subscription alone", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, sub := seedPair(ledger, planID, "")

		event := rawEvent(t, "checkout.session.async_payment_failed", paidSession(payment, sub, planID))
		if err := h.dispatch(event); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentFailed {
			t.Errorf("payment status = %s, want failed", payment.Status)
		}
		if payment.FailureReason == nil || *payment.FailureReason == "" {
			t.Error("failure reason not recorded")
		}
		if sub.Status != billing.SubscriptionIncomplete {
			t.Errorf("subscription status = %s, want incomplete untouched", sub.Status)
		}
	})
}

func TestPaymentIntentEvents(t *testing.T) {
	t.Run("succeeded mirrors success onto payment only", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, sub := seedPair(ledger, planID, "cs_test_1")

		pi := &stripe.PaymentIntent{
			ID:                 "pi_1",
			Amount:             999,
			Currency:           "usd",
			PaymentMethodTypes: []string{"card"},
			LatestCharge:       &stripe.Charge{ID: "ch_1"},
			Metadata:           map[string]string{"paymentId": payment.ID.String()},
		}
		if err := h.dispatch(rawEvent(t, "payment_intent.succeeded", pi)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentSuccess {
			t.Errorf("payment status = %s, want success", payment.Status)
		}
		if payment.StripeChargeID == nil || *payment.StripeChargeID != "ch_1" {
			t.Error("charge id not recorded")
		}
		if sub.Status != billing.SubscriptionIncomplete {
			t.Errorf("subscription status = %s; intent events must not touch it", sub.Status)
		}
	})

	t.Run("failed records the provider's error message", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		planID := uuid.New()
		payment, _ := seedPair(ledger, planID, "cs_test_1")

		pi := &stripe.PaymentIntent{
			ID:               "pi_1",
			Metadata:         map[string]string{"session_id": "cs_test_1"},
			LastPaymentError: &stripe.Error{Msg: "card declined"},
		}
		if err := h.dispatch(rawEvent(t, "payment_intent.payment_failed", pi)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if payment.Status != billing.PaymentFailed {
			t.Errorf("payment status = %s, want failed", payment.Status)
		}
		if payment.FailureReason == nil || *payment.FailureReason != "card declined" {
			t.Errorf("failure reason = %v, want card declined", payment.FailureReason)
		}
	})
}

func TestInvoiceEvents(t *testing.T) {
	stripeSubID := "sub_stripe_1"
	intentID := "pi_1"

	seedActive := func(ledger *fakeLedger) (*billing.Payment, *billing.Subscription) {
		payment, sub := seedPair(ledger, uuid.New(), "cs_test_1")
		payment.Status = billing.PaymentSuccess
		payment.StripePaymentIntentID = &intentID
		sub.Status = billing.SubscriptionActive
		sub.StripeSubscriptionID = &stripeSubID
		return payment, sub
	}

	t.Run("payment failure moves subscription to past_due", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		_, sub := seedActive(ledger)

		inv := &stripe.Invoice{
			Subscription:  &stripe.Subscription{ID: stripeSubID},
			PaymentIntent: &stripe.PaymentIntent{ID: intentID},
		}
		if err := h.dispatch(rawEvent(t, "invoice.payment_failed", inv)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionPastDue {
			t.Errorf("subscription status = %s, want past_due", sub.Status)
		}
	})

	t.Run("payment success promotes a past_due pair and backfills totals", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		payment, sub := seedActive(ledger)
		payment.Status = billing.PaymentFailed
		sub.Status = billing.SubscriptionPastDue

		inv := &stripe.Invoice{
			Subscription:  &stripe.Subscription{ID: stripeSubID},
			PaymentIntent: &stripe.PaymentIntent{ID: intentID},
			AmountPaid:    1299,
			Currency:      "usd",
		}
		if err := h.dispatch(rawEvent(t, "invoice.payment_succeeded", inv)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active", sub.Status)
		}
		if payment.Status != billing.PaymentSuccess {
			t.Errorf("payment status = %s, want success", payment.Status)
		}
		if payment.AmountPaid == nil || *payment.AmountPaid != 12.99 {
			t.Errorf("amountPaid = %v, want 12.99 from invoice totals", payment.AmountPaid)
		}
	})

	t.Run("success for an already-settled pair changes nothing", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		payment, sub := seedActive(ledger)
		amount := 9.99
		payment.AmountPaid = &amount

		inv := &stripe.Invoice{
			Subscription:  &stripe.Subscription{ID: stripeSubID},
			PaymentIntent: &stripe.PaymentIntent{ID: intentID},
			AmountPaid:    1299,
		}
		if err := h.dispatch(rawEvent(t, "invoice.payment_succeeded", inv)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if *payment.AmountPaid != 9.99 {
			t.Errorf("amountPaid overwritten to %v on duplicate success", *payment.AmountPaid)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active", sub.Status)
		}
	})
}

func TestSubscriptionStateEvents(t *testing.T) {
	stripeSubID := "sub_stripe_1"

	t.Run("updated applies reported status and period end", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		_, sub := seedPair(ledger, uuid.New(), "cs_test_1")
		sub.Status = billing.SubscriptionActive
		sub.StripeSubscriptionID = &stripeSubID

		periodEnd := time.Now().AddDate(0, 1, 0).Unix()
		remote := &stripe.Subscription{
			ID:               stripeSubID,
			Status:           stripe.SubscriptionStatusPastDue,
			CurrentPeriodEnd: periodEnd,
		}
		if err := h.dispatch(rawEvent(t, "customer.subscription.updated", remote)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionPastDue {
			t.Errorf("subscription status = %s, want past_due", sub.Status)
		}
		if !sub.EndDate.Equal(time.Unix(periodEnd, 0)) {
			t.Errorf("endDate = %v, want reported period end", sub.EndDate)
		}
	})

	t.Run("renewal with unchanged status still moves the period end", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		_, sub := seedPair(ledger, uuid.New(), "cs_test_1")
		sub.Status = billing.SubscriptionActive
		sub.StripeSubscriptionID = &stripeSubID

		periodEnd := time.Now().AddDate(0, 2, 0).Unix()
		remote := &stripe.Subscription{
			ID:               stripeSubID,
			Status:           stripe.SubscriptionStatusActive,
			CurrentPeriodEnd: periodEnd,
		}
		if err := h.dispatch(rawEvent(t, "customer.subscription.updated", remote)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionActive {
			t.Errorf("subscription status = %s, want active", sub.Status)
		}
		if !sub.EndDate.Equal(time.Unix(periodEnd, 0)) {
			t.Errorf("endDate = %v, want reported period end", sub.EndDate)
		}
	})

	t.Run("deleted cancels the subscription", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		_, sub := seedPair(ledger, uuid.New(), "cs_test_1")
		sub.Status = billing.SubscriptionActive
		sub.StripeSubscriptionID = &stripeSubID

		remote := &stripe.Subscription{
			ID:     stripeSubID,
			Status: stripe.SubscriptionStatusCanceled,
		}
		if err := h.dispatch(rawEvent(t, "customer.subscription.deleted", remote)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionCancelled {
			t.Errorf("subscription status = %s, want cancelled", sub.Status)
		}
	})

	t.Run("cancelled never reactivates from a late update", func(t *testing.T) {
		h, ledger, _, _ := newTestHandler()
		_, sub := seedPair(ledger, uuid.New(), "cs_test_1")
		sub.Status = billing.SubscriptionCancelled
		sub.StripeSubscriptionID = &stripeSubID

		remote := &stripe.Subscription{
			ID:     stripeSubID,
			Status: stripe.SubscriptionStatusActive,
		}
		if err := h.dispatch(rawEvent(t, "customer.subscription.updated", remote)); err != nil {
			t.Fatalf("dispatch failed: %v", err)
		}
		if sub.Status != billing.SubscriptionCancelled {
			t.Errorf("subscription status = %s, want cancelled preserved", sub.Status)
		}
	})
}

func TestUnknownEventKind(t *testing.T) {
	h, ledger, _, _ := newTestHandler()
	payment, sub := seedPair(ledger, uuid.New(), "cs_test_1")

	event := stripe.Event{
		ID:   "evt_unknown",
		Type: "charge.refunded",
		Data: &stripe.EventData{Raw: json.RawMessage(`{"id":"ch_1"}`)},
	}
	if err := h.dispatch(event); err != nil {
		t.Fatalf("unknown kind must be acknowledged, got %v", err)
	}
	if payment.Status != billing.PaymentPending || sub.Status != billing.SubscriptionIncomplete {
		t.Error("unknown event mutated the ledger")
	}
}
