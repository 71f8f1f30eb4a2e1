package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"streaming-app/internal/domain/billing"
	"streaming-app/internal/infra/stripeclient"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
)

// Ledger is the slice of the billing store the reconciliation handlers
// need. Lookup methods return (nil, nil) for "no such row"; an event whose
// entities cannot be resolved at all is acknowledged as a no-op, since there
// is no synchronous caller to report to.
type Ledger interface {
	PaymentByID(id uuid.UUID) (*billing.Payment, error)
	PaymentBySessionID(sessionID string) (*billing.Payment, error)
	PaymentByIntentID(intentID string) (*billing.Payment, error)
	TransitionPayment(id uuid.UUID, target billing.PaymentStatus, patch billing.PaymentPatch) (bool, error)
	UpdatePayment(id uuid.UUID, patch billing.PaymentPatch) error

	SubscriptionByID(id uuid.UUID) (*billing.Subscription, error)
	SubscriptionBySessionID(sessionID string) (*billing.Subscription, error)
	SubscriptionByStripeID(subscriptionID string) (*billing.Subscription, error)
	TransitionSubscription(id uuid.UUID, target billing.SubscriptionStatus, patch billing.SubscriptionPatch) (bool, error)
	UpdateSubscription(id uuid.UUID, patch billing.SubscriptionPatch) error
}

// PlanResolver is the plan catalog collaborator. A failed or missing lookup
// degrades to the 30-day default, never aborts a ledger write.
type PlanResolver interface {
	DurationDays(id uuid.UUID) (int, error)
}

type Handler struct {
	ledger   Ledger
	plans    PlanResolver
	provider stripeclient.Provider
}

func NewHandler(ledger Ledger, plans PlanResolver, provider stripeclient.Provider) *Handler {
	return &Handler{ledger: ledger, plans: plans, provider: provider}
}

// HandleWebhook authenticates the delivery and dispatches it. 400 means the
// signature failed and Stripe must not retry; any handler error surfaces as
// 500 so Stripe redelivers, which is safe because every handler is
// idempotent.
func (h *Handler) HandleWebhook(c *gin.Context) {
	payload, err := readRawBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.provider.VerifySignature(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	if err := h.dispatch(event); err != nil {
		log.Printf("webhook %s (%s): %v", event.ID, event.Type, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) dispatch(event stripe.Event) error {
	switch classify(string(event.Type)) {
	case kindCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return h.handleCheckoutCompleted(&session)

	case kindAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return h.handleAsyncPaymentSucceeded(&session)

	case kindAsyncPaymentFailed:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return h.handleAsyncPaymentFailed(&session)

	case kindPaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return h.handlePaymentIntentSucceeded(&pi)

	case kindPaymentIntentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("failed to parse payment intent: %w", err)
		}
		return h.handlePaymentIntentFailed(&pi)

	case kindInvoicePaymentSucceeded:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		return h.handleInvoicePaymentSucceeded(&inv)

	case kindInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		return h.handleInvoicePaymentFailed(&inv)

	case kindSubscriptionUpdated, kindSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		return h.applySubscriptionState(&sub)

	case kindIgnored:
		log.Printf("ignoring webhook event type %s", event.Type)
		return nil
	}
	return nil
}

func readRawBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
