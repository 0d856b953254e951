package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
	"github.com/hninyuwai/boutiquepos-backend/pkg/metrics"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

// VariantInput declares one size at article creation time. Nonzero quantities
// become Inward movements so stock never appears without a ledger entry.
type VariantInput struct {
	SizeCode      string
	SizeLabel     string
	StoreQty      int
	WarehouseQty  int
	PriceOverride *decimal.Decimal
	Barcode       *string
}

type CreateInput struct {
	ID          string
	Name        string
	Category    string
	Brand       string
	BasePrice   decimal.Decimal
	Description string
	Material    string
	Color       string
	Tags        []string
	Variants    []VariantInput
	Actor       string
}

// VariantUpdate edits one size. Nil fields are left untouched; quantity
// changes are written to the movement log as Adjustments.
type VariantUpdate struct {
	SizeCode      string
	SizeLabel     *string
	StoreQty      *int
	WarehouseQty  *int
	PriceOverride *decimal.Decimal
	Barcode       *string
}

type UpdateInput struct {
	Name        *string
	Category    *string
	Brand       *string
	BasePrice   *decimal.Decimal
	Description *string
	Material    *string
	Color       *string
	Tags        []string
	Variants    []VariantUpdate
	Actor       string
}

// ScanResult pairs a resolved variant with its article and the price the
// register should charge.
type ScanResult struct {
	Article        models.Article
	Variant        models.Variant
	EffectivePrice decimal.Decimal
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Article, error)
	Update(ctx context.Context, id string, input UpdateInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*models.Article, error)
	Scan(ctx context.Context, code string) (*ScanResult, error)
	List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Article, error)
}

type service struct {
	client *db.Client
	repo   Repository
	logg   *logger.Logger
	met    *metrics.LedgerMetrics
}

func NewService(client *db.Client, repo Repository, logg *logger.Logger, met *metrics.LedgerMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{client: client, repo: repo, logg: logg, met: met}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Article, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" || strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article id and name are required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}
	if len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one size is required")
	}
	seen := map[string]bool{}
	for _, v := range input.Variants {
		if strings.TrimSpace(v.SizeCode) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "size code is required")
		}
		if seen[v.SizeCode] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate size code "+v.SizeCode)
		}
		seen[v.SizeCode] = true
		if v.StoreQty < 0 || v.WarehouseQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantities must not be negative")
		}
	}

	existing, err := s.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "article "+input.ID+" already exists")
	}

	article := &models.Article{
		ID:          input.ID,
		Name:        input.Name,
		Category:    input.Category,
		Brand:       input.Brand,
		BasePrice:   input.BasePrice,
		Description: input.Description,
		Material:    input.Material,
		Color:       input.Color,
		Tags:        input.Tags,
	}
	for _, v := range input.Variants {
		article.Variants = append(article.Variants, models.Variant{
			ArticleID:     input.ID,
			SizeCode:      v.SizeCode,
			SizeLabel:     v.SizeLabel,
			StoreQty:      v.StoreQty,
			WarehouseQty:  v.WarehouseQty,
			PriceOverride: v.PriceOverride,
			Barcode:       v.Barcode,
		})
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, article); err != nil {
			return err
		}
		for _, v := range article.Variants {
			if v.StoreQty > 0 {
				if err := s.recordInitial(ctx, tx, article, v, enums.StockLocationStore, v.StoreQty, v.StoreQty, 0, input.Actor); err != nil {
					return err
				}
			}
			if v.WarehouseQty > 0 {
				if err := s.recordInitial(ctx, tx, article, v, enums.StockLocationWarehouse, v.WarehouseQty, v.StoreQty, v.WarehouseQty, input.Actor); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "article_id", article.ID), "article created")
	return article, nil
}

func (s *service) recordInitial(ctx context.Context, tx *gorm.DB, article *models.Article, v models.Variant, location enums.StockLocation, qty, postStore, postWarehouse int, actor string) error {
	_, err := movements.Record(ctx, tx, movements.RecordInput{
		Kind:             enums.MovementKindInward,
		Location:         location,
		ArticleID:        article.ID,
		ArticleName:      article.Name,
		SizeCode:         v.SizeCode,
		Qty:              qty,
		PostStoreQty:     postStore,
		PostWarehouseQty: postWarehouse,
		Actor:            actor,
		Note:             "initial stock",
	})
	if err != nil {
		return err
	}
	s.met.IncMovement(enums.MovementKindInward.String())
	return nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article "+id+" not found")
	}
	if input.BasePrice != nil && input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}

	applyArticleEdits(article, input)

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Save(ctx, article); err != nil {
			return err
		}
		for _, edit := range input.Variants {
			if err := s.applyVariantEdit(ctx, tx, repo, article, edit, input.Actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, id)
}

func applyArticleEdits(article *models.Article, input UpdateInput) {
	if input.Name != nil {
		article.Name = *input.Name
	}
	if input.Category != nil {
		article.Category = *input.Category
	}
	if input.Brand != nil {
		article.Brand = *input.Brand
	}
	if input.BasePrice != nil {
		article.BasePrice = *input.BasePrice
	}
	if input.Description != nil {
		article.Description = *input.Description
	}
	if input.Material != nil {
		article.Material = *input.Material
	}
	if input.Color != nil {
		article.Color = *input.Color
	}
	if input.Tags != nil {
		article.Tags = input.Tags
	}
}

func (s *service) applyVariantEdit(ctx context.Context, tx *gorm.DB, repo Repository, article *models.Article, edit VariantUpdate, actor string) error {
	if strings.TrimSpace(edit.SizeCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "size code is required")
	}
	if edit.StoreQty != nil && *edit.StoreQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "store quantity must not be negative")
	}
	if edit.WarehouseQty != nil && *edit.WarehouseQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "warehouse quantity must not be negative")
	}

	variant, err := repo.FindVariant(ctx, article.ID, edit.SizeCode)
	if err != nil {
		return err
	}
	if variant == nil {
		variant = &models.Variant{ArticleID: article.ID, SizeCode: edit.SizeCode, SizeLabel: edit.SizeCode}
	}

	storeDelta, warehouseDelta := 0, 0
	if edit.StoreQty != nil {
		storeDelta = *edit.StoreQty - variant.StoreQty
		variant.StoreQty = *edit.StoreQty
	}
	if edit.WarehouseQty != nil {
		warehouseDelta = *edit.WarehouseQty - variant.WarehouseQty
		variant.WarehouseQty = *edit.WarehouseQty
	}
	if edit.SizeLabel != nil {
		variant.SizeLabel = *edit.SizeLabel
	}
	if edit.PriceOverride != nil {
		variant.PriceOverride = edit.PriceOverride
	}
	if edit.Barcode != nil {
		variant.Barcode = edit.Barcode
	}

	if err := repo.SaveVariant(ctx, variant); err != nil {
		return err
	}

	if storeDelta != 0 {
		if err := s.recordAdjustment(ctx, tx, article, variant, enums.StockLocationStore, storeDelta, actor); err != nil {
			return err
		}
	}
	if warehouseDelta != 0 {
		if err := s.recordAdjustment(ctx, tx, article, variant, enums.StockLocationWarehouse, warehouseDelta, actor); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) recordAdjustment(ctx context.Context, tx *gorm.DB, article *models.Article, v *models.Variant, location enums.StockLocation, delta int, actor string) error {
	_, err := movements.Record(ctx, tx, movements.RecordInput{
		Kind:             enums.MovementKindAdjustment,
		Location:         location,
		ArticleID:        article.ID,
		ArticleName:      article.Name,
		SizeCode:         v.SizeCode,
		Qty:              delta,
		PostStoreQty:     v.StoreQty,
		PostWarehouseQty: v.WarehouseQty,
		Actor:            actor,
		Note:             "manual quantity edit",
	})
	if err != nil {
		return err
	}
	s.met.IncMovement(enums.MovementKindAdjustment.String())
	return nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if article == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "article "+id+" not found")
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithField(ctx, "article_id", id), "article deleted")
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article "+id+" not found")
	}
	return article, nil
}

func (s *service) Scan(ctx context.Context, code string) (*ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code is required")
	}
	variant, err := s.repo.FindByScanCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no variant matches code "+code)
	}
	article, err := s.repo.FindByID(ctx, variant.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article "+variant.ArticleID+" not found")
	}

	price := article.BasePrice
	if variant.PriceOverride != nil {
		price = *variant.PriceOverride
	}
	return &ScanResult{Article: *article, Variant: *variant, EffectivePrice: price}, nil
}

func (s *service) List(ctx context.Context, filter Filter, params pagination.Params) ([]models.Article, error) {
	return s.repo.List(ctx, filter, params)
}
