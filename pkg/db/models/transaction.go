package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
)

// Transaction is an immutable commercial record of one completed exchange. It
// is created only after the stock movements it correlates with are durably
// written; the recorder never touches balances itself.
type Transaction struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Channel          enums.Channel       `gorm:"column:channel;not null;index"`
	Lines            []TransactionLine   `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:decimal(12,2);not null"`
	OrderDiscountPct decimal.Decimal     `gorm:"column:order_discount_pct;type:decimal(5,2);not null"`
	Total            decimal.Decimal     `gorm:"column:total;type:decimal(12,2);not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;not null"`
	AmountPaid       decimal.Decimal     `gorm:"column:amount_paid;type:decimal(12,2);not null"`
	Balance          decimal.Decimal     `gorm:"column:balance;type:decimal(12,2);not null"`
	IsPartial        bool                `gorm:"column:is_partial;not null;default:false"`
	CustomerID       *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	ShiftSlot        enums.ShiftSlot     `gorm:"column:shift_slot;not null"`
	BusinessDate     time.Time           `gorm:"column:business_date;not null;index"`
	Cashier          string              `gorm:"column:cashier;not null"`
	ExternalRef      string              `gorm:"column:external_ref"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

// TransactionLine snapshots one item at the moment of the exchange. Prices are
// frozen here and never re-derived from the live catalog.
type TransactionLine struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	TransactionID   uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;index"`
	ArticleID       string          `gorm:"column:article_id;not null"`
	ArticleName     string          `gorm:"column:article_name;not null"`
	SizeCode        string          `gorm:"column:size_code;not null"`
	SizeLabel       string          `gorm:"column:size_label;not null"`
	Qty             int             `gorm:"column:qty;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	LineDiscountPct decimal.Decimal `gorm:"column:line_discount_pct;type:decimal(5,2);not null"`
}

// BeforeCreate assigns ids in-process so sqlite test databases work unchanged.
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (l *TransactionLine) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the unit price after the per-line discount.
func (l TransactionLine) EffectivePrice() decimal.Decimal {
	if l.LineDiscountPct.IsZero() {
		return l.UnitPrice
	}
	factor := decimal.NewFromInt(100).Sub(l.LineDiscountPct).Div(decimal.NewFromInt(100))
	return l.UnitPrice.Mul(factor).Round(2)
}
