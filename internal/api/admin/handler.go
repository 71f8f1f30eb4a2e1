package admin

import (
	"net/http"
	"time"

	"streaming-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// Ledger is the aggregate slice of the billing store the dashboard reads.
type Ledger interface {
	DashboardStats(since time.Time) (billing.DashboardStats, error)
	DailySales(since time.Time) ([]billing.DailySale, error)
}

type Handler struct {
	ledger Ledger
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger}
}

// GetDashboardStats reports active subscription count, churn, and settled
// revenue for the requested period ("month" by default, or "week").
func (h *Handler) GetDashboardStats(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	now := time.Now()
	var since time.Time
	switch period {
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period, expected month or week"})
		return
	}

	stats, err := h.ledger.DashboardStats(since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
		return
	}

	sales, err := h.ledger.DailySales(since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sales data"})
		return
	}

	churnRate := 0.0
	if stats.ActiveSubscriptions > 0 {
		churnRate = float64(stats.CancelledInPeriod) / float64(stats.ActiveSubscriptions) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"stats": gin.H{
			"activeSubscriptions":    stats.ActiveSubscriptions,
			"cancelledSubscriptions": stats.CancelledInPeriod,
			"churnRate":              churnRate,
			"totalRevenue":           stats.RevenueInPeriod,
			"totalPayments":          stats.PaymentsInPeriod,
		},
		"salesData": sales,
	})
}
