package billing

import (
	"streaming-app/internal/domain/billing"
	"streaming-app/internal/domain/plans"
	"streaming-app/internal/infra/stripeclient"

	"github.com/google/uuid"
)

// Ledger is the slice of the billing store the synchronous endpoints use.
type Ledger interface {
	CreatePayment(p *billing.Payment) error
	CreateSubscription(s *billing.Subscription) error
	UpdatePayment(id uuid.UUID, patch billing.PaymentPatch) error
	UpdateSubscription(id uuid.UUID, patch billing.SubscriptionPatch) error
	PaymentByID(id uuid.UUID) (*billing.Payment, error)
	PaymentBySessionID(sessionID string) (*billing.Payment, error)
	SubscriptionBySessionID(sessionID string) (*billing.Subscription, error)
	SubscriptionByPaymentID(paymentID uuid.UUID) (*billing.Subscription, error)
	ListPayments(f billing.PaymentFilter) ([]billing.Payment, int64, error)
}

// Catalog resolves plans; Lookup returns (nil, nil) for an unknown plan so
// checkout can fall back to defaults instead of failing.
type Catalog interface {
	Lookup(id uuid.UUID) (*plans.Plan, error)
}

type Handler struct {
	ledger   Ledger
	catalog  Catalog
	provider stripeclient.Provider
}

func NewHandler(ledger Ledger, catalog Catalog, provider stripeclient.Provider) *Handler {
	return &Handler{ledger: ledger, catalog: catalog, provider: provider}
}
