package plans

import (
	"errors"
	"net/http"

	"streaming-app/database"
	"streaming-app/internal/domain/billing"
	"streaming-app/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func validBillingPeriod(p string) bool {
	return p == "monthly" || p == "yearly"
}

// planView decorates a plan with its derived display tier.
type planView struct {
	plans.Plan
	Tier string `json:"tier"`
}

func viewOf(p plans.Plan) planView {
	return planView{Plan: p, Tier: plans.PlanTier(&p)}
}

func ListPlans(c *gin.Context) {
	q := database.DB.Model(&plans.Plan{})

	if status := c.Query("status"); status != "" {
		q = q.Where("is_active = ?", status == "active" || status == "true" || status == "1")
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("billing_period ILIKE ?", "%"+search+"%")
	}

	var list []plans.Plan
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plans"})
		return
	}

	views := make([]planView, 0, len(list))
	for _, p := range list {
		views = append(views, viewOf(p))
	}
	c.JSON(http.StatusOK, views)
}

func GetPlanDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID format"})
		return
	}

	var plan plans.Plan
	if err := database.DB.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plan"})
		return
	}
	c.JSON(http.StatusOK, viewOf(plan))
}

type planBody struct {
	Name               string   `json:"name"`
	BillingPeriod      string   `json:"billingPeriod"`
	Description        string   `json:"description"`
	Price              *float64 `json:"price"`
	DurationInDays     *int     `json:"durationInDays"`
	DiscountPercentage *float64 `json:"discountPercentage"`
	VideoQuality       string   `json:"videoQuality"`
	Screens            *int     `json:"screens"`
	IsActive           *bool    `json:"isActive"`
}

func CreatePlan(c *gin.Context) {
	var body planBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.Name == "" || body.BillingPeriod == "" || body.Price == nil || body.DurationInDays == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, billingPeriod, price, and durationInDays are required"})
		return
	}
	if !validBillingPeriod(body.BillingPeriod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "billingPeriod must be monthly or yearly"})
		return
	}

	var count int64
	if err := database.DB.Model(&plans.Plan{}).
		Where("name = ? AND billing_period = ?", body.Name, body.BillingPeriod).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription plan"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A subscription plan with the same name and billing period already exists"})
		return
	}

	plan := plans.Plan{
		Name:           body.Name,
		BillingPeriod:  body.BillingPeriod,
		Description:    body.Description,
		Price:          *body.Price,
		DurationInDays: *body.DurationInDays,
		VideoQuality:   "1080p",
		Screens:        1,
		IsActive:       true,
	}
	if body.DiscountPercentage != nil {
		plan.DiscountPercentage = *body.DiscountPercentage
	}
	if body.VideoQuality != "" {
		plan.VideoQuality = body.VideoQuality
	}
	if body.Screens != nil {
		plan.Screens = *body.Screens
	}
	if creator := c.GetString("user_id"); creator != "" {
		plan.CreatedBy = &creator
	}

	if err := database.DB.Create(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription plan"})
		return
	}
	c.JSON(http.StatusCreated, viewOf(plan))
}

func UpdatePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID format"})
		return
	}

	var body planBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if body.BillingPeriod != "" && !validBillingPeriod(body.BillingPeriod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "billingPeriod must be monthly or yearly"})
		return
	}

	var plan plans.Plan
	if err := database.DB.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plan"})
		return
	}

	if body.Name != "" {
		plan.Name = body.Name
	}
	if body.BillingPeriod != "" {
		plan.BillingPeriod = body.BillingPeriod
	}
	if body.Description != "" {
		plan.Description = body.Description
	}
	if body.Price != nil {
		plan.Price = *body.Price
	}
	if body.DurationInDays != nil {
		plan.DurationInDays = *body.DurationInDays
	}
	if body.DiscountPercentage != nil {
		plan.DiscountPercentage = *body.DiscountPercentage
	}
	if body.VideoQuality != "" {
		plan.VideoQuality = body.VideoQuality
	}
	if body.Screens != nil {
		plan.Screens = *body.Screens
	}
	if body.IsActive != nil {
		plan.IsActive = *body.IsActive
	}

	if err := database.DB.Save(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription plan"})
		return
	}
	c.JSON(http.StatusOK, viewOf(plan))
}

func DeletePlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan ID format"})
		return
	}

	var plan plans.Plan
	if err := database.DB.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription plan"})
		return
	}

	var active int64
	if err := database.DB.Model(&billing.Subscription{}).
		Where("plan_id = ? AND status = ?", id, billing.SubscriptionActive).
		Count(&active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription plan"})
		return
	}
	if active > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete a plan with active subscriptions"})
		return
	}

	if err := database.DB.Delete(&plan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subscription plan"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription plan deleted successfully"})
}
