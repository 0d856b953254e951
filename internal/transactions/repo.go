package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

// Filter narrows transaction queries. Zero values mean "no constraint".
type Filter struct {
	Channel      enums.Channel
	CustomerID   *uuid.UUID
	BusinessDate time.Time
	From         time.Time
	To           time.Time
	// Since keeps transactions at or after the given instant; end-of-shift
	// settlement uses it as the session window.
	Since time.Time
}

// Repository reads the commercial record.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var record models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&record, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).Preload("Lines")
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if !filter.BusinessDate.IsZero() {
		q = q.Where("business_date = ?", filter.BusinessDate)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Transaction
	err := q.Order("created_at DESC, id DESC").
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
