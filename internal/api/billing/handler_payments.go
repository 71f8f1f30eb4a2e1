package billing

import (
	"net/http"
	"strconv"

	"streaming-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListPayments is the admin view over the payment ledger with status/user
// filters, free-text search across the external ids, and pagination.
func (h *Handler) ListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := billing.PaymentFilter{
		Status: c.Query("status"),
		UserID: c.Query("userId"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}

	payments, total, err := h.ledger.ListPayments(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"pagination": gin.H{
			"currentPage":   page,
			"totalPages":    totalPages,
			"totalPayments": total,
			"limit":         limit,
			"hasNextPage":   int64(page) < totalPages,
			"hasPrevPage":   page > 1,
		},
	})
}

func (h *Handler) GetPaymentDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment ID format"})
		return
	}

	payment, err := h.ledger.PaymentByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	subscription, err := h.ledger.SubscriptionByPaymentID(payment.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":      payment,
		"subscription": subscription,
	})
}
