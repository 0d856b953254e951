package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is one size of an Article and the true unit of stock. Identity is
// the (ArticleID, SizeCode) pair; every lookup keys on it.
type Variant struct {
	ArticleID     string           `gorm:"column:article_id;primaryKey"`
	SizeCode      string           `gorm:"column:size_code;primaryKey"`
	SizeLabel     string           `gorm:"column:size_label;not null"`
	StoreQty      int              `gorm:"column:store_qty;not null;default:0"`
	WarehouseQty  int              `gorm:"column:warehouse_qty;not null;default:0"`
	PriceOverride *decimal.Decimal `gorm:"column:price_override;type:decimal(12,2)"`
	Barcode       *string          `gorm:"column:barcode"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// CanonicalCode is the identity string that doubles as the barcode when no
// explicit barcode was assigned.
func (v Variant) CanonicalCode() string {
	return v.ArticleID + "-" + v.SizeCode
}

// ScanCode returns the code a scanner is expected to produce for this variant.
func (v Variant) ScanCode() string {
	if v.Barcode != nil && *v.Barcode != "" {
		return *v.Barcode
	}
	return v.CanonicalCode()
}
