package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Article is one sellable product style. The ID is the human-assigned SKU and
// never changes after creation.
type Article struct {
	ID          string          `gorm:"column:id;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Category    string          `gorm:"column:category;not null"`
	Brand       string          `gorm:"column:brand"`
	BasePrice   decimal.Decimal `gorm:"column:base_price;type:decimal(12,2);not null"`
	Description string          `gorm:"column:description"`
	Material    string          `gorm:"column:material"`
	Color       string          `gorm:"column:color"`
	Tags        pq.StringArray  `gorm:"column:tags;type:text[]"`
	Variants    []Variant       `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
