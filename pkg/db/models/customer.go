package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is a loyalty/contact profile. Completed sales only ever add to the
// cumulative fields.
type Customer struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Phone         string          `gorm:"column:phone;index"`
	LoyaltyPoints int64           `gorm:"column:loyalty_points;not null;default:0"`
	TotalSpent    decimal.Decimal `gorm:"column:total_spent;type:decimal(14,2);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
