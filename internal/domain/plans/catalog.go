package plans

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultDurationDays is used whenever a plan cannot be resolved. Checkout
// and reconciliation both fall back to it instead of failing.
const DefaultDurationDays = 30

// Catalog is the read side of the plan table consumed by checkout and by
// the webhook handlers. Lookup returns (nil, nil) when the plan is absent.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Lookup(id uuid.UUID) (*Plan, error) {
	var plan Plan
	if err := c.db.Where("id = ?", id).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// DurationDays resolves the plan's duration, reporting an error for both a
// missing plan and a storage failure so callers apply their default.
func (c *Catalog) DurationDays(id uuid.UUID) (int, error) {
	plan, err := c.Lookup(id)
	if err != nil {
		return 0, err
	}
	if plan == nil || plan.DurationInDays <= 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return plan.DurationInDays, nil
}
