// Package reports builds the read-only surfaces the boutique runs its day on:
// stock summaries, channel breakdowns, and the replay-based reconciliation
// check, with CSV and XLSX export. Nothing in here mutates state.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/hninyuwai/boutiquepos-backend/internal/holds"
	"github.com/hninyuwai/boutiquepos-backend/internal/movements"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

// StockRow is one variant's position across both locations.
type StockRow struct {
	ArticleID   string `json:"article_id"`
	ArticleName string `json:"article_name"`
	SizeCode    string `json:"size_code"`
	Store       int    `json:"store"`
	Warehouse   int    `json:"warehouse"`
	Held        int    `json:"held"`
	Available   int    `json:"available"`
}

// ChannelRow aggregates one channel over a date range.
type ChannelRow struct {
	Channel          enums.Channel   `json:"channel"`
	TransactionCount int             `json:"transaction_count"`
	UnitsSold        int             `json:"units_sold"`
	Revenue          decimal.Decimal `json:"revenue"`
}

// ReconRow compares live balances against a replay of the movement log.
type ReconRow struct {
	ArticleID       string `json:"article_id"`
	SizeCode        string `json:"size_code"`
	Store           int    `json:"store"`
	Warehouse       int    `json:"warehouse"`
	ReplayStore     int    `json:"replay_store"`
	ReplayWarehouse int    `json:"replay_warehouse"`
	Movements       int    `json:"movements"`
	Consistent      bool   `json:"consistent"`
}

type Service interface {
	StockSummary(ctx context.Context) ([]StockRow, error)
	MovementLedger(ctx context.Context, filter movements.Filter, params pagination.Params) ([]models.StockMovement, error)
	ChannelBreakdown(ctx context.Context, from, to time.Time) ([]ChannelRow, error)
	Reconciliation(ctx context.Context) ([]ReconRow, error)
}

type service struct {
	client    *db.Client
	movements movements.Repository
	holds     holds.Store
}

func NewService(client *db.Client, movementRepo movements.Repository, holdStore holds.Store) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if movementRepo == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if holdStore == nil {
		return nil, fmt.Errorf("hold store required")
	}
	return &service{client: client, movements: movementRepo, holds: holdStore}, nil
}

func (s *service) StockSummary(ctx context.Context) ([]StockRow, error) {
	type row struct {
		ArticleID    string
		Name         string
		SizeCode     string
		StoreQty     int
		WarehouseQty int
	}
	var variants []row
	err := s.client.DB().WithContext(ctx).
		Table("variants").
		Select("variants.article_id, articles.name, variants.size_code, variants.store_qty, variants.warehouse_qty").
		Joins("JOIN articles ON articles.id = variants.article_id").
		Order("variants.article_id, variants.size_code").
		Scan(&variants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stock summary")
	}

	rows := make([]StockRow, 0, len(variants))
	for _, v := range variants {
		code := models.Variant{ArticleID: v.ArticleID, SizeCode: v.SizeCode}.CanonicalCode()
		held, err := s.holds.Held(ctx, enums.StockLocationStore.String(), code)
		if err != nil {
			return nil, err
		}
		available := v.StoreQty - held
		if available < 0 {
			available = 0
		}
		rows = append(rows, StockRow{
			ArticleID:   v.ArticleID,
			ArticleName: v.Name,
			SizeCode:    v.SizeCode,
			Store:       v.StoreQty,
			Warehouse:   v.WarehouseQty,
			Held:        held,
			Available:   available,
		})
	}
	return rows, nil
}

func (s *service) MovementLedger(ctx context.Context, filter movements.Filter, params pagination.Params) ([]models.StockMovement, error) {
	return s.movements.List(ctx, filter, params)
}

func (s *service) ChannelBreakdown(ctx context.Context, from, to time.Time) ([]ChannelRow, error) {
	if !to.IsZero() && !from.IsZero() && to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end precedes range start")
	}

	q := s.client.DB().WithContext(ctx).Model(&models.Transaction{})
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}

	var txns []models.Transaction
	if err := q.Preload("Lines").Find(&txns).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading channel breakdown")
	}

	byChannel := map[enums.Channel]*ChannelRow{}
	order := []enums.Channel{}
	for _, txn := range txns {
		row, ok := byChannel[txn.Channel]
		if !ok {
			row = &ChannelRow{Channel: txn.Channel}
			byChannel[txn.Channel] = row
			order = append(order, txn.Channel)
		}
		row.TransactionCount++
		row.Revenue = row.Revenue.Add(txn.Total)
		for _, line := range txn.Lines {
			row.UnitsSold += line.Qty
		}
	}

	rows := make([]ChannelRow, 0, len(order))
	for _, channel := range order {
		rows = append(rows, *byChannel[channel])
	}
	return rows, nil
}

// Reconciliation replays every variant's movement log and flags any drift
// from the live balances. A clean ledger reports every row consistent.
func (s *service) Reconciliation(ctx context.Context) ([]ReconRow, error) {
	var variants []models.Variant
	err := s.client.DB().WithContext(ctx).
		Order("article_id, size_code").
		Find(&variants).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading variants")
	}

	// A variant whose replay fails does not abort the sweep; errors are
	// collected so the remaining rows still get checked.
	var errs []error
	rows := make([]ReconRow, 0, len(variants))
	for _, v := range variants {
		replay, err := s.movements.Replay(ctx, v.ArticleID, v.SizeCode)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s-%s: %w", v.ArticleID, v.SizeCode, err))
			continue
		}
		rows = append(rows, ReconRow{
			ArticleID:       v.ArticleID,
			SizeCode:        v.SizeCode,
			Store:           v.StoreQty,
			Warehouse:       v.WarehouseQty,
			ReplayStore:     replay.Store,
			ReplayWarehouse: replay.Warehouse,
			Movements:       replay.Movements,
			Consistent:      replay.Store == v.StoreQty && replay.Warehouse == v.WarehouseQty,
		})
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replaying movement logs")
	}
	return rows, nil
}
