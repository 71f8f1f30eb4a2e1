package plans

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_plans_name_billing_period" json:"name"`
	Description string    `json:"description"`

	BillingPeriod string  `gorm:"type:varchar(10);not null;uniqueIndex:idx_plans_name_billing_period" json:"billingPeriod"` // "monthly" | "yearly"
	Price         float64 `gorm:"not null" json:"price"`

	DurationInDays     int     `gorm:"not null;default:30" json:"durationInDays"`
	DiscountPercentage float64 `json:"discountPercentage"`

	VideoQuality string `gorm:"type:varchar(10);default:1080p" json:"videoQuality"` // "480p" | "720p" | "1080p" | "4K"
	Screens      int    `gorm:"default:1" json:"screens"`

	IsActive  bool    `gorm:"default:true" json:"isActive"`
	CreatedBy *string `json:"createdBy"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Plan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
