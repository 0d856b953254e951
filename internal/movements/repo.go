package movements

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

// Filter narrows movement queries. Zero values mean "no constraint".
type Filter struct {
	ArticleID string
	SizeCode  string
	Kind      enums.MovementKind
	Channel   enums.Channel
	From      time.Time
	To        time.Time
}

// Repository reads the movement trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// List returns movements newest-first.
	List(ctx context.Context, filter Filter, params pagination.Params) ([]models.StockMovement, error)
	// Trail returns one variant's movements newest-first by sequence.
	Trail(ctx context.Context, articleID, sizeCode string) ([]models.StockMovement, error)
	// Replay folds one variant's movements oldest-first into the balances
	// they should have produced.
	Replay(ctx context.Context, articleID, sizeCode string) (ReplayResult, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.StockMovement, error) {
	q := r.db.WithContext(ctx).Model(&models.StockMovement{})
	if filter.ArticleID != "" {
		q = q.Where("article_id = ?", filter.ArticleID)
	}
	if filter.SizeCode != "" {
		q = q.Where("size_code = ?", filter.SizeCode)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.StockMovement
	err := q.Order("created_at DESC").Order("seq DESC").
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Trail(ctx context.Context, articleID, sizeCode string) ([]models.StockMovement, error) {
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND size_code = ?", articleID, sizeCode).
		Order("seq DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplayResult is the outcome of folding a variant's full trail.
type ReplayResult struct {
	Store     int
	Warehouse int
	Movements int
}

func (r *repository) Replay(ctx context.Context, articleID, sizeCode string) (ReplayResult, error) {
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("article_id = ? AND size_code = ?", articleID, sizeCode).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return ReplayResult{}, err
	}

	var result ReplayResult
	for _, m := range rows {
		switch m.Location {
		case enums.StockLocationStore:
			result.Store = clampAtZero(result.Store + m.Qty)
		case enums.StockLocationWarehouse:
			result.Warehouse = clampAtZero(result.Warehouse + m.Qty)
		case enums.StockLocationBoth:
			// Transfers floor the warehouse exactly as the ledger did, so a
			// replay reproduces even the legacy raw-increment transfers.
			moved := m.Qty
			if moved < 0 {
				moved = -moved
			}
			result.Warehouse = clampAtZero(result.Warehouse - moved)
			result.Store += moved
		}
		result.Movements++
	}
	return result, nil
}

func clampAtZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
