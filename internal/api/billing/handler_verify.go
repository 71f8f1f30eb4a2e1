package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VerifyPayment merges local ledger state with a live re-query of the
// checkout session, so a client polling right after redirect sees current
// state even before the webhook lands.
func (h *Handler) VerifyPayment(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	session, err := h.provider.GetCheckoutSession(sessionID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error verifying payment"})
		return
	}

	payment, err := h.ledger.PaymentBySessionID(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment record not found"})
		return
	}

	amountPaid := payment.Price
	if payment.AmountPaid != nil {
		amountPaid = *payment.AmountPaid
	}

	response := gin.H{
		"payment": gin.H{
			"id":            payment.ID,
			"status":        payment.Status,
			"amountPaid":    amountPaid,
			"currency":      payment.Currency,
			"paymentMethod": payment.PaymentMethod,
			"paidAt":        payment.PaidAt,
			"createdAt":     payment.CreatedAt,
		},
		"stripeSession": gin.H{
			"id":            session.ID,
			"paymentStatus": session.PaymentStatus,
			"status":        session.Status,
		},
	}

	subscription, err := h.ledger.SubscriptionBySessionID(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}
	if subscription != nil {
		response["subscription"] = gin.H{
			"id":        subscription.ID,
			"status":    subscription.Status,
			"startDate": subscription.StartDate,
			"endDate":   subscription.EndDate,
		}
	} else {
		response["subscription"] = nil
	}

	c.JSON(http.StatusOK, response)
}
