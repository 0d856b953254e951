package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
)

// StockMovement is an append-only audit record of one balance change. The
// article name is denormalized at write time so history survives article
// deletion or rename, and the post-mutation balances make the log replayable.
//
// Seq is a per-variant sequence assigned while the variant row is locked; it
// gives each variant's trail a total order independent of timestamp ties.
type StockMovement struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ArticleID        string              `gorm:"column:article_id;not null;index:idx_movements_variant;uniqueIndex:idx_movements_variant_seq"`
	ArticleName      string              `gorm:"column:article_name;not null"`
	SizeCode         string              `gorm:"column:size_code;not null;index:idx_movements_variant;uniqueIndex:idx_movements_variant_seq"`
	Seq              int64               `gorm:"column:seq;not null;uniqueIndex:idx_movements_variant_seq"`
	Kind             enums.MovementKind  `gorm:"column:kind;not null"`
	Location         enums.StockLocation `gorm:"column:location;not null"`
	Qty              int                 `gorm:"column:qty;not null"`
	PostStoreQty     int                 `gorm:"column:post_store_qty;not null"`
	PostWarehouseQty int                 `gorm:"column:post_warehouse_qty;not null"`
	Channel          *enums.Channel      `gorm:"column:channel"`
	Actor            string              `gorm:"column:actor;not null"`
	Note             string              `gorm:"column:note"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime;index"`
}

// BeforeCreate assigns the id in-process so sqlite test databases do not need
// a server-side uuid function.
func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
