// Package pos is the store-floor checkout: validate the cart against what the
// floor can actually sell, then commit stock decrement, sale movements, and
// the sale transaction as one unit.
package pos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/internal/customers"
	"github.com/hninyuwai/boutiquepos-backend/internal/ledger"
	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	"github.com/hninyuwai/boutiquepos-backend/internal/transactions"
	"github.com/hninyuwai/boutiquepos-backend/pkg/config"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
	"github.com/hninyuwai/boutiquepos-backend/pkg/metrics"
)

// CartLine is one register entry before pricing.
type CartLine struct {
	ArticleID       string
	SizeCode        string
	Qty             int
	LineDiscountPct decimal.Decimal
}

type CheckoutInput struct {
	Lines            []CartLine
	OrderDiscountPct decimal.Decimal
	PaymentMethod    enums.PaymentMethod
	AmountPaid       decimal.Decimal
	CustomerID       *uuid.UUID
	Cashier          string
}

type CheckoutResult struct {
	Transaction   *models.Transaction
	Movements     []models.StockMovement
	LoyaltyPoints int64
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	client  *db.Client
	catalog catalog.Repository
	avail   ledger.Service
	loyalty config.LoyaltyConfig
	logg    *logger.Logger
	met     *metrics.LedgerMetrics
}

func NewService(client *db.Client, catalogRepo catalog.Repository, avail ledger.Service, loyalty config.LoyaltyConfig, logg *logger.Logger, met *metrics.LedgerMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if avail == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		client:  client,
		catalog: catalogRepo,
		avail:   avail,
		loyalty: loyalty,
		logg:    logg,
		met:     met,
	}, nil
}

// priced is a cart line resolved against the catalog.
type priced struct {
	line      CartLine
	name      string
	sizeLabel string
	unitPrice decimal.Decimal
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	resolved := make([]priced, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		p, err := s.resolve(ctx, line)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, *p)
	}

	result := &CheckoutResult{}
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		channel := enums.ChannelSale
		for _, p := range resolved {
			balances, err := ledger.AdjustStore(ctx, tx, p.line.ArticleID, p.line.SizeCode, -p.line.Qty)
			if err != nil {
				return err
			}
			movement, err := movements.Record(ctx, tx, movements.RecordInput{
				Kind:             enums.MovementKindSale,
				Location:         enums.StockLocationStore,
				ArticleID:        p.line.ArticleID,
				ArticleName:      p.name,
				SizeCode:         p.line.SizeCode,
				Qty:              -p.line.Qty,
				PostStoreQty:     balances.Store,
				PostWarehouseQty: balances.Warehouse,
				Channel:          &channel,
				Actor:            input.Cashier,
			})
			if err != nil {
				return err
			}
			result.Movements = append(result.Movements, *movement)
		}

		lines := make([]transactions.LineInput, 0, len(resolved))
		for _, p := range resolved {
			lines = append(lines, transactions.LineInput{
				ArticleID:       p.line.ArticleID,
				ArticleName:     p.name,
				SizeCode:        p.line.SizeCode,
				SizeLabel:       p.sizeLabel,
				Qty:             p.line.Qty,
				UnitPrice:       p.unitPrice,
				LineDiscountPct: p.line.LineDiscountPct,
			})
		}
		record, err := transactions.Commit(ctx, tx, transactions.CommitInput{
			Channel:          enums.ChannelSale,
			Lines:            lines,
			OrderDiscountPct: input.OrderDiscountPct,
			PaymentMethod:    input.PaymentMethod,
			AmountPaid:       input.AmountPaid,
			CustomerID:       input.CustomerID,
			Cashier:          input.Cashier,
		})
		if err != nil {
			return err
		}
		result.Transaction = record

		if s.loyalty.Enabled && input.CustomerID != nil && s.loyalty.PointsPerUnit > 0 {
			points := record.Total.Div(decimal.NewFromInt(int64(s.loyalty.PointsPerUnit))).IntPart()
			if points > 0 {
				if err := customers.AccrueSale(ctx, tx, *input.CustomerID, points, record.Total); err != nil {
					return err
				}
			}
			result.LoyaltyPoints = points
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for range result.Movements {
		s.met.IncMovement(enums.MovementKindSale.String())
	}
	s.met.IncTransaction(enums.ChannelSale.String())

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"transaction_id": result.Transaction.ID.String(),
		"lines":          len(result.Transaction.Lines),
		"total":          result.Transaction.Total.String(),
		"partial":        result.Transaction.IsPartial,
	}), "checkout committed")
	return result, nil
}

// resolve looks the line up and verifies the floor can supply it. The check
// runs against availability (store balance minus open holds) so a queued cart
// elsewhere cannot be sold twice.
func (s *service) resolve(ctx context.Context, line CartLine) (*priced, error) {
	variant, err := s.catalog.FindVariant(ctx, line.ArticleID, line.SizeCode)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
			WithDetails(map[string]string{"article_id": line.ArticleID, "size_code": line.SizeCode})
	}
	article, err := s.catalog.FindByID(ctx, line.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article "+line.ArticleID+" not found")
	}

	available, err := s.avail.AvailableToSell(ctx, line.ArticleID, line.SizeCode)
	if err != nil {
		return nil, err
	}
	if line.Qty > available {
		s.met.IncRejection("insufficient_stock")
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough store stock").
			WithDetails(map[string]any{
				"article_id": line.ArticleID,
				"size_code":  line.SizeCode,
				"requested":  line.Qty,
				"available":  available,
			})
	}

	price := article.BasePrice
	if variant.PriceOverride != nil {
		price = *variant.PriceOverride
	}
	return &priced{line: line, name: article.Name, sizeLabel: variant.SizeLabel, unitPrice: price}, nil
}
