package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
)

// ShiftSession is a cashier's live work window. It is destroyed on end-shift
// once its transactions have been snapshotted into a ShiftRecord.
type ShiftSession struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Cashier      string          `gorm:"column:cashier;not null;uniqueIndex"`
	Slot         enums.ShiftSlot `gorm:"column:slot;not null"`
	BusinessDate time.Time       `gorm:"column:business_date;not null"`
	StartedAt    time.Time       `gorm:"column:started_at;not null"`
}

// ShiftRecord is the immutable end-of-shift settlement snapshot.
type ShiftRecord struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Cashier          string          `gorm:"column:cashier;not null;index"`
	Slot             enums.ShiftSlot `gorm:"column:slot;not null"`
	BusinessDate     time.Time       `gorm:"column:business_date;not null;index"`
	StartedAt        time.Time       `gorm:"column:started_at;not null"`
	EndedAt          time.Time       `gorm:"column:ended_at;not null"`
	TotalSales       decimal.Decimal `gorm:"column:total_sales;type:decimal(14,2);not null"`
	CashSales        decimal.Decimal `gorm:"column:cash_sales;type:decimal(14,2);not null"`
	CardSales        decimal.Decimal `gorm:"column:card_sales;type:decimal(14,2);not null"`
	TransactionCount int             `gorm:"column:transaction_count;not null"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (s *ShiftSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (r *ShiftRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
