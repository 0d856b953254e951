package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

// Filter narrows article listings.
type Filter struct {
	Search   string
	Category string
	Tag      string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, article *models.Article) error
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindVariant(ctx context.Context, articleID, sizeCode string) (*models.Variant, error)
	// FindByScanCode resolves a scanner read against explicit barcodes first,
	// then the article-size canonical code.
	FindByScanCode(ctx context.Context, code string) (*models.Variant, error)
	List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Article, error)
	Save(ctx context.Context, article *models.Article) error
	SaveVariant(ctx context.Context, variant *models.Variant) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&article, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	return &article, nil
}

func (r *repository) FindVariant(ctx context.Context, articleID, sizeCode string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		First(&variant, "article_id = ? AND size_code = ?", articleID, sizeCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}
	return &variant, nil
}

func (r *repository) FindByScanCode(ctx context.Context, code string) (*models.Variant, error) {
	var variant models.Variant
	err := r.db.WithContext(ctx).
		Where("barcode = ?", code).
		Or("(barcode IS NULL OR barcode = '') AND (article_id || '-' || size_code) = ?", code).
		First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by scan code: %w", err)
	}
	return &variant, nil
}

func (r *repository) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Article, error) {
	q := r.db.WithContext(ctx).Model(&models.Article{}).Preload("Variants")

	if filter.Search != "" {
		needle := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(id) LIKE ? OR LOWER(name) LIKE ?", needle, needle)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Tag != "" {
		q = q.Where("? = ANY(tags)", filter.Tag)
	}
	if cursor, err := pagination.ParseCursor(params.Cursor); err == nil && cursor != nil {
		q = q.Where("created_at < ?", cursor.CreatedAt)
	}

	var articles []models.Article
	err := q.Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func (r *repository) Save(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Save(article).Error; err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	return nil
}

func (r *repository) SaveVariant(ctx context.Context, variant *models.Variant) error {
	if err := r.db.WithContext(ctx).Save(variant).Error; err != nil {
		return fmt.Errorf("save variant: %w", err)
	}
	return nil
}

// Delete removes the article and its variants. Movement history keeps the
// denormalized article name, so audit trails survive the delete.
func (r *repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("article_id = ?", id).
		Delete(&models.Variant{}).Error
	if err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}
	err = r.db.WithContext(ctx).Delete(&models.Article{}, "id = ?", id).Error
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
