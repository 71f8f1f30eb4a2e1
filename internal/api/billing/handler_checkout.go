package billing

import (
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"streaming-app/config"
	"streaming-app/internal/domain/billing"
	"streaming-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// CreateCheckoutSession seeds the ledger pair and asks Stripe for a hosted
// checkout session. The pending Payment and incomplete Subscription are
// created before the external call and survive its failure: a retry simply
// produces an independent pair.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PlanID string   `json:"planId"`
		Price  *float64 `json:"price"`
		UserID string   `json:"userId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanID == "" || body.Price == nil || body.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters: planId, price or userId"})
		return
	}

	planID, err := uuid.Parse(body.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid planId"})
		return
	}

	// Optimistic lookup: an absent or failing catalog means defaults, not
	// a hard error.
	plan, err := h.catalog.Lookup(planID)
	if err != nil {
		log.Printf("plan %s lookup failed, using defaults: %v", planID, err)
		plan = nil
	}

	payment := &billing.Payment{
		ID:       uuid.New(),
		UserID:   body.UserID,
		PlanID:   planID,
		Price:    *body.Price,
		Currency: "usd",
		Status:   billing.PaymentPending,
	}
	if err := h.ledger.CreatePayment(payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment record"})
		return
	}

	days := plans.DefaultDurationDays
	if plan != nil && plan.DurationInDays > 0 {
		days = plan.DurationInDays
	}
	now := time.Now()

	subscription := &billing.Subscription{
		ID:        uuid.New(),
		UserID:    body.UserID,
		PlanID:    planID,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, days),
		Status:    billing.SubscriptionIncomplete,
		PaymentID: payment.ID,
		AutoRenew: true,
	}
	if err := h.ledger.CreateSubscription(subscription); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription record"})
		return
	}

	// This metadata is the primary resolution key for every later webhook,
	// independent of any id Stripe assigns.
	metadata := map[string]string{
		"paymentId":      payment.ID.String(),
		"subscriptionId": subscription.ID.String(),
		"planId":         body.PlanID,
		"userId":         body.UserID,
	}

	productName := fmt.Sprintf("Subscription Plan %s", body.PlanID)
	productDescription := ""
	if plan != nil {
		productName = plan.Name
		productDescription = plan.Description
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(productName),
	}
	if productDescription != "" {
		productData.Description = stripe.String(productDescription)
	}

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{
			Metadata: metadata,
		},
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String("usd"),
					UnitAmount: stripe.Int64(int64(math.Round(*body.Price * 100))),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
					ProductData: productData,
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(config.FRONTEND_URL + "/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(config.FRONTEND_URL + "/payment-failed"),
	}

	session, err := h.provider.CreateCheckoutSession(params)
	if err != nil {
		// The pending/incomplete pair stays in place; the caller may retry.
		log.Printf("checkout session creation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		return
	}

	// The session id enables secondary resolution for event kinds that
	// carry no metadata.
	if err := h.ledger.UpdatePayment(payment.ID, billing.PaymentPatch{StripeSessionID: &session.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session id"})
		return
	}
	if err := h.ledger.UpdateSubscription(subscription.ID, billing.SubscriptionPatch{StripeSessionID: &session.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session id"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}
