package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the GORM-backed ledger. Lookup methods return (nil, nil) when no
// row matches so callers can distinguish "not found" (acknowledged no-op on
// the webhook path) from a real storage failure.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreatePayment(p *Payment) error {
	if err := s.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *Store) CreateSubscription(sub *Subscription) error {
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (s *Store) PaymentByID(id uuid.UUID) (*Payment, error) {
	var p Payment
	if err := s.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) PaymentBySessionID(sessionID string) (*Payment, error) {
	var p Payment
	if err := s.db.Where("stripe_session_id = ?", sessionID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) PaymentByIntentID(intentID string) (*Payment, error) {
	var p Payment
	if err := s.db.Where("stripe_payment_intent_id = ?", intentID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) SubscriptionByID(id uuid.UUID) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Where("id = ?", id).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Store) SubscriptionBySessionID(sessionID string) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Where("stripe_session_id = ?", sessionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Store) SubscriptionByStripeID(subscriptionID string) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Where("stripe_subscription_id = ?", subscriptionID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *Store) SubscriptionByPaymentID(paymentID uuid.UUID) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Where("payment_id = ?", paymentID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// UpdatePayment writes patch fields without touching the status column.
func (s *Store) UpdatePayment(id uuid.UUID, patch PaymentPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return nil
	}
	if err := s.db.Model(&Payment{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fmt.Errorf("failed to update payment %s: %w", id, err)
	}
	return nil
}

func (s *Store) UpdateSubscription(id uuid.UUID, patch SubscriptionPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return nil
	}
	if err := s.db.Model(&Subscription{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fmt.Errorf("failed to update subscription %s: %w", id, err)
	}
	return nil
}

// TransitionPayment moves the payment into target if and only if its current
// status is an allowed source for target. The status predicate rides in the
// WHERE clause, so two concurrent deliveries racing toward the same target
// cannot both apply: exactly one sees rows-affected > 0.
func (s *Store) TransitionPayment(id uuid.UUID, target PaymentStatus, patch PaymentPatch) (bool, error) {
	sources := PaymentTransitionSources(target)
	if len(sources) == 0 {
		return false, nil
	}
	cols := patch.columns()
	cols["status"] = target

	res := s.db.Model(&Payment{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(cols)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition payment %s to %s: %w", id, target, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) TransitionSubscription(id uuid.UUID, target SubscriptionStatus, patch SubscriptionPatch) (bool, error) {
	sources := SubscriptionTransitionSources(target)
	if len(sources) == 0 {
		return false, nil
	}
	cols := patch.columns()
	cols["status"] = target

	res := s.db.Model(&Subscription{}).
		Where("id = ? AND status IN ?", id, sources).
		Updates(cols)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition subscription %s to %s: %w", id, target, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// PaymentFilter narrows the admin payment listing.
type PaymentFilter struct {
	Status string
	UserID string
	Search string
	Page   int
	Limit  int
}

func (s *Store) ListPayments(f PaymentFilter) ([]Payment, int64, error) {
	q := s.db.Model(&Payment{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where(
			"stripe_session_id ILIKE ? OR stripe_customer_id ILIKE ? OR stripe_payment_intent_id ILIKE ? OR transaction_id ILIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 10
	}

	var payments []Payment
	if err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ExpireOverdue sweeps subscriptions whose paid period has lapsed into
// expired. Incomplete records are deliberately left alone.
func (s *Store) ExpireOverdue(now time.Time) (int64, error) {
	res := s.db.Model(&Subscription{}).
		Where("status IN ? AND end_date < ?", []SubscriptionStatus{SubscriptionActive, SubscriptionPastDue}, now).
		Update("status", SubscriptionExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire overdue subscriptions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
