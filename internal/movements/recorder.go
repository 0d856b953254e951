// Package movements appends and queries the immutable stock audit trail.
// Every ledger mutation is followed by exactly one Record call inside the
// same transaction; nothing here is ever updated or deleted.
package movements

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
)

// RecordInput captures one balance change and the balances it produced.
type RecordInput struct {
	Kind             enums.MovementKind
	Location         enums.StockLocation
	ArticleID        string
	ArticleName      string
	SizeCode         string
	Qty              int
	PostStoreQty     int
	PostWarehouseQty int
	Channel          *enums.Channel
	Actor            string
	Note             string
}

// Record appends one movement within the caller's transaction. The per-variant
// sequence number is computed here; callers are expected to hold the variant
// row lock, which serializes the computation per variant.
func Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.StockMovement, error) {
	if input.ArticleID == "" || input.SizeCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement requires article id and size code")
	}
	if input.ArticleName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement requires the article name snapshot")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement kind").
			WithDetails(map[string]string{"kind": string(input.Kind)})
	}
	if !input.Location.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock location").
			WithDetails(map[string]string{"location": string(input.Location)})
	}
	if input.Location == enums.StockLocationBoth && input.Kind != enums.MovementKindTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location both is reserved for transfers")
	}
	if input.Actor == "" {
		input.Actor = "unknown"
	}

	seq, err := nextSeq(ctx, tx, input.ArticleID, input.SizeCode)
	if err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ArticleID:        input.ArticleID,
		ArticleName:      input.ArticleName,
		SizeCode:         input.SizeCode,
		Seq:              seq,
		Kind:             input.Kind,
		Location:         input.Location,
		Qty:              input.Qty,
		PostStoreQty:     input.PostStoreQty,
		PostWarehouseQty: input.PostWarehouseQty,
		Channel:          input.Channel,
		Actor:            input.Actor,
		Note:             input.Note,
		CreatedAt:        time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending stock movement")
	}
	return movement, nil
}

func nextSeq(ctx context.Context, tx *gorm.DB, articleID, sizeCode string) (int64, error) {
	var current int64
	err := tx.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("article_id = ? AND size_code = ?", articleID, sizeCode).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading movement sequence")
	}
	return current + 1, nil
}
