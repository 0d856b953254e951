package distribution

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/internal/holds"
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

// CommitResult is everything a confirmed workflow produced.
type CommitResult struct {
	Workflow    *Workflow
	Movements   []models.StockMovement
	Transaction *models.Transaction
}

type Service interface {
	Create(ctx context.Context, channel enums.Channel, cashier string) (*Workflow, error)
	Get(ctx context.Context, id uuid.UUID) (*Workflow, error)
	Scan(ctx context.Context, id uuid.UUID, code string) (*Workflow, error)
	SetItemQty(ctx context.Context, id uuid.UUID, index, qty int) (*Workflow, error)
	Advance(ctx context.Context, id uuid.UUID) (*Workflow, error)
	Back(ctx context.Context, id uuid.UUID) (*Workflow, error)
	SetDetails(ctx context.Context, id uuid.UUID, recipient, reference string, discountPct decimal.Decimal) (*Workflow, error)
	Confirm(ctx context.Context, id uuid.UUID) (*CommitResult, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

type service struct {
	mu        sync.Mutex
	workflows map[uuid.UUID]*Workflow

	client  *db.Client
	catalog catalog.Repository
	avail   ledger.Service
	holds   holds.Store
	ledger  config.LedgerConfig
	logg    *logger.Logger
	met     *metrics.LedgerMetrics
}

func NewService(client *db.Client, catalogRepo catalog.Repository, avail ledger.Service, holdStore holds.Store, ledgerCfg config.LedgerConfig, logg *logger.Logger, met *metrics.LedgerMetrics) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if avail == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if holdStore == nil {
		return nil, fmt.Errorf("hold store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		workflows: map[uuid.UUID]*Workflow{},
		client:    client,
		catalog:   catalogRepo,
		avail:     avail,
		holds:     holdStore,
		ledger:    ledgerCfg,
		logg:      logg,
		met:       met,
	}, nil
}

func (s *service) Create(ctx context.Context, channel enums.Channel, cashier string) (*Workflow, error) {
	wf, err := NewWorkflow(channel, cashier)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.workflows[wf.ID] = wf
	s.mu.Unlock()

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"workflow_id": wf.ID.String(),
		"channel":     wf.Channel.String(),
	}), "workflow opened")
	return wf, nil
}

func (s *service) Get(_ context.Context, id uuid.UUID) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked(id)
}

func (s *service) Scan(ctx context.Context, id uuid.UUID, code string) (*Workflow, error) {
	variant, err := s.catalog.FindByScanCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		s.met.IncRejection("unknown_code")
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no variant matches code "+code)
	}
	article, err := s.catalog.FindByID(ctx, variant.ArticleID)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article "+variant.ArticleID+" not found")
	}

	available, err := s.avail.AvailableToDispatch(ctx, variant.ArticleID, variant.SizeCode)
	if err != nil {
		return nil, err
	}

	price := article.BasePrice
	if variant.PriceOverride != nil {
		price = *variant.PriceOverride
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}

	// Availability already subtracts this workflow's own holds, so its
	// capacity is the open quantity plus what it queued itself.
	err = wf.AddScan(ScanItem{
		ArticleID:   variant.ArticleID,
		ArticleName: article.Name,
		SizeCode:    variant.SizeCode,
		SizeLabel:   variant.SizeLabel,
		UnitPrice:   price,
		Capacity:    available + wf.QueuedQty(variant.ArticleID, variant.SizeCode),
	})
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
			s.met.IncRejection("insufficient_stock")
		}
		return nil, err
	}

	if err := s.holds.Add(ctx, enums.StockLocationWarehouse.String(), variant.CanonicalCode(), wf.ID.String(), 1); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *service) SetItemQty(ctx context.Context, id uuid.UUID, index, qty int) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(wf.Items) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no such line in the queue")
	}
	line := wf.Items[index]

	available, err := s.avail.AvailableToDispatch(ctx, line.ArticleID, line.SizeCode)
	if err != nil {
		return nil, err
	}

	if err := wf.SetItemQty(index, qty, available+line.Qty); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
			s.met.IncRejection("insufficient_stock")
		}
		return nil, err
	}

	code := models.Variant{ArticleID: line.ArticleID, SizeCode: line.SizeCode}.CanonicalCode()
	if err := s.holds.Add(ctx, enums.StockLocationWarehouse.String(), code, wf.ID.String(), qty-line.Qty); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *service) Advance(_ context.Context, id uuid.UUID) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}
	if err := wf.Advance(); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *service) Back(_ context.Context, id uuid.UUID) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}
	if err := wf.Back(); err != nil {
		return nil, err
	}
	return wf, nil
}

func (s *service) SetDetails(_ context.Context, id uuid.UUID, recipient, reference string, discountPct decimal.Decimal) (*Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}
	if err := wf.SetDetails(recipient, reference, discountPct); err != nil {
		return nil, err
	}
	return wf, nil
}

// Confirm commits the queue in one database transaction: every item mutates
// the ledger and appends its movement in queue order, then non-transfer
// channels record the commercial transaction. Nothing is visible until all of
// it commits.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, err := s.locked(id)
	if err != nil {
		return nil, err
	}
	if err := wf.readyToConfirm(); err != nil {
		return nil, err
	}

	result := &CommitResult{Workflow: wf}
	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range wf.Items {
			movement, err := s.commitItem(ctx, tx, wf, item)
			if err != nil {
				return err
			}
			result.Movements = append(result.Movements, *movement)
		}
		if wf.Channel == enums.ChannelTransfer {
			return nil
		}

		lines := make([]transactions.LineInput, 0, len(wf.Items))
		for _, item := range wf.Items {
			lines = append(lines, transactions.LineInput{
				ArticleID:   item.ArticleID,
				ArticleName: item.ArticleName,
				SizeCode:    item.SizeCode,
				SizeLabel:   item.SizeLabel,
				Qty:         item.Qty,
				UnitPrice:   item.UnitPrice,
			})
		}
		record, err := transactions.Commit(ctx, tx, transactions.CommitInput{
			Channel:          wf.Channel,
			Lines:            lines,
			OrderDiscountPct: wf.DiscountPct,
			Cashier:          wf.Cashier,
			ExternalRef:      wf.Reference,
		})
		if err != nil {
			return err
		}
		result.Transaction = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	wf.State = enums.WorkflowStateConfirmed
	delete(s.workflows, wf.ID)
	if err := s.holds.ReleaseOwner(ctx, wf.ID.String()); err != nil {
		s.logg.Warn(ctx, "releasing workflow holds: "+err.Error())
	}

	for range result.Movements {
		s.met.IncMovement(movementKindFor(wf.Channel).String())
	}
	if result.Transaction != nil {
		s.met.IncTransaction(wf.Channel.String())
	}

	fields := map[string]any{
		"workflow_id": wf.ID.String(),
		"channel":     wf.Channel.String(),
		"items":       len(wf.Items),
		"reference":   wf.Reference,
	}
	s.logg.Info(s.logg.WithFields(ctx, fields), "workflow confirmed")
	return result, nil
}

func (s *service) commitItem(ctx context.Context, tx *gorm.DB, wf *Workflow, item Item) (*models.StockMovement, error) {
	channel := wf.Channel

	if channel == enums.ChannelTransfer {
		transfer, err := ledger.Transfer(ctx, tx, item.ArticleID, item.SizeCode, item.Qty, s.ledger.LegacyTransfer)
		if err != nil {
			return nil, err
		}
		return movements.Record(ctx, tx, movements.RecordInput{
			Kind:             enums.MovementKindTransfer,
			Location:         enums.StockLocationBoth,
			ArticleID:        item.ArticleID,
			ArticleName:      item.ArticleName,
			SizeCode:         item.SizeCode,
			Qty:              transfer.StoreAdded,
			PostStoreQty:     transfer.Balances.Store,
			PostWarehouseQty: transfer.Balances.Warehouse,
			Channel:          &channel,
			Actor:            wf.Cashier,
			Note:             wf.Reference,
		})
	}

	balances, err := ledger.AdjustWarehouse(ctx, tx, item.ArticleID, item.SizeCode, -item.Qty)
	if err != nil {
		return nil, err
	}
	return movements.Record(ctx, tx, movements.RecordInput{
		Kind:             enums.MovementKindOutward,
		Location:         enums.StockLocationWarehouse,
		ArticleID:        item.ArticleID,
		ArticleName:      item.ArticleName,
		SizeCode:         item.SizeCode,
		Qty:              -item.Qty,
		PostStoreQty:     balances.Store,
		PostWarehouseQty: balances.Warehouse,
		Channel:          &channel,
		Actor:            wf.Cashier,
		Note:             wf.Recipient,
	})
}

// Cancel abandons an open workflow. Nothing was written, so there is nothing
// to undo beyond its holds.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	wf, err := s.locked(id)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if wf.State == enums.WorkflowStateConfirmed {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "confirmed workflows cannot be cancelled")
	}
	delete(s.workflows, id)
	s.mu.Unlock()

	return s.holds.ReleaseOwner(ctx, id.String())
}

func (s *service) locked(id uuid.UUID) (*Workflow, error) {
	wf, ok := s.workflows[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workflow not found").
			WithDetails(map[string]string{"workflow_id": id.String()})
	}
	return wf, nil
}

func movementKindFor(channel enums.Channel) enums.MovementKind {
	if channel == enums.ChannelTransfer {
		return enums.MovementKindTransfer
	}
	return enums.MovementKindOutward
}
