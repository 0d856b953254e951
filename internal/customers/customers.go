// Package customers keeps the boutique's lightweight customer book: contact
// details, loyalty points, and lifetime spend.
package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, params pagination.Params) ([]models.Customer, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
			WithDetails(map[string]string{"customer_id": id.String()})
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var customers []models.Customer
	err := q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// AccrueSale adds loyalty points and spend to the customer inside the caller's
// transaction, so a rolled-back checkout never leaves a partial accrual.
func AccrueSale(ctx context.Context, tx *gorm.DB, id uuid.UUID, points int64, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"loyalty_points": gorm.Expr("loyalty_points + ?", points),
			"total_spent":    gorm.Expr("total_spent + ?", amount),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "accruing loyalty")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found").
			WithDetails(map[string]string{"customer_id": id.String()})
	}
	return nil
}
