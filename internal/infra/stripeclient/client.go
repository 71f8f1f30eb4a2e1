package stripeclient

import (
	"fmt"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Provider is the injected Stripe capability. Handlers depend on this
// interface rather than the SDK's package-level key so they can run against
// a substitute in tests.
type Provider interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(id string) (*stripe.CheckoutSession, error)
	GetPaymentIntent(id string) (*stripe.PaymentIntent, error)
	VerifySignature(payload []byte, sigHeader string) (stripe.Event, error)
}

// Client is the real Provider backed by the Stripe API.
type Client struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, webhookSecret: webhookSecret}
}

func (c *Client) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return s, nil
}

func (c *Client) GetCheckoutSession(id string) (*stripe.CheckoutSession, error) {
	s, err := c.api.CheckoutSessions.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout session %s: %w", id, err)
	}
	return s, nil
}

func (c *Client) GetPaymentIntent(id string) (*stripe.PaymentIntent, error) {
	pi, err := c.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent %s: %w", id, err)
	}
	return pi, nil
}

// VerifySignature checks the Stripe-Signature header against the untouched
// raw payload. The body must never be re-serialized before this point.
func (c *Client) VerifySignature(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
