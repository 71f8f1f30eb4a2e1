package billing

import (
	"fmt"
	"time"
)

// DashboardStats summarizes the ledger for the admin dashboard. Counts are
// point-in-time; revenue and cancellations are scoped to the requested
// period.
type DashboardStats struct {
	ActiveSubscriptions int64   `json:"activeSubscriptions"`
	CancelledInPeriod   int64   `json:"cancelledInPeriod"`
	RevenueInPeriod     float64 `json:"revenueInPeriod"`
	PaymentsInPeriod    int64   `json:"paymentsInPeriod"`
}

// DailySale is one day of settled revenue.
type DailySale struct {
	Day   time.Time `json:"day" gorm:"column:day"`
	Total float64   `json:"total" gorm:"column:total"`
	Count int64     `json:"count" gorm:"column:count"`
}

func (s *Store) DashboardStats(since time.Time) (DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.Model(&Subscription{}).
		Where("status = ?", SubscriptionActive).
		Count(&stats.ActiveSubscriptions).Error; err != nil {
		return stats, fmt.Errorf("failed to count active subscriptions: %w", err)
	}

	if err := s.db.Model(&Subscription{}).
		Where("status = ? AND updated_at >= ?", SubscriptionCancelled, since).
		Count(&stats.CancelledInPeriod).Error; err != nil {
		return stats, fmt.Errorf("failed to count cancelled subscriptions: %w", err)
	}

	row := s.db.Model(&Payment{}).
		Where("status = ? AND paid_at >= ?", PaymentSuccess, since).
		Select("COALESCE(SUM(amount_paid), 0), COUNT(*)").
		Row()
	if err := row.Scan(&stats.RevenueInPeriod, &stats.PaymentsInPeriod); err != nil {
		return stats, fmt.Errorf("failed to sum period revenue: %w", err)
	}

	return stats, nil
}

// DailySales buckets settled payments by calendar day of their paid_at.
func (s *Store) DailySales(since time.Time) ([]DailySale, error) {
	var sales []DailySale
	err := s.db.Model(&Payment{}).
		Where("status = ? AND paid_at >= ?", PaymentSuccess, since).
		Select("DATE(paid_at) AS day, COALESCE(SUM(amount_paid), 0) AS total, COUNT(*) AS count").
		Group("DATE(paid_at)").
		Order("day ASC").
		Scan(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}
	return sales, nil
}
