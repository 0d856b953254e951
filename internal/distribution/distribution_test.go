package distribution

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/internal/catalog"
	"github.com/hninyuwai/boutiquepos-backend/internal/holds"
	"github.com/hninyuwai/boutiquepos-backend/internal/ledger"
	"github.com/hninyuwai/boutiquepos-backend/pkg/config"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/logger"
)

func newTestService(t *testing.T, ledgerCfg config.LedgerConfig) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:distribution_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Article{}, &models.Variant{},
		&models.StockMovement{}, &models.Transaction{}, &models.TransactionLine{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	client := db.FromGorm(conn)
	holdStore := holds.NewMemoryStore()
	avail, err := ledger.NewService(client, holdStore)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "distribution-test", Output: io.Discard})
	svc, err := NewService(client, catalog.NewRepository(conn), avail, holdStore, ledgerCfg, logg, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedVariant(t *testing.T, conn *gorm.DB, storeQty, warehouseQty int) {
	t.Helper()
	article := models.Article{
		ID:        "LNS-01",
		Name:      "Linen Shirt",
		Category:  "tops",
		BasePrice: decimal.NewFromInt(6500),
		Variants: []models.Variant{
			{ArticleID: "LNS-01", SizeCode: "M", SizeLabel: "Medium", StoreQty: storeQty, WarehouseQty: warehouseQty},
		},
	}
	if err := conn.Create(&article).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func runToDetails(t *testing.T, svc Service, ctx context.Context, channel enums.Channel, scans int) *Workflow {
	t.Helper()
	wf, err := svc.Create(ctx, channel, "aye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < scans; i++ {
		if _, err := svc.Scan(ctx, wf.ID, "LNS-01-M"); err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
	}
	if _, err := svc.Advance(ctx, wf.ID); err != nil {
		t.Fatalf("advance to review: %v", err)
	}
	if _, err := svc.Advance(ctx, wf.ID); err != nil {
		t.Fatalf("advance to details: %v", err)
	}
	return wf
}

func TestShopifyDispatchCommits(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 3, 10)

	wf := runToDetails(t, svc, ctx, enums.ChannelShopify, 2)
	if _, err := svc.SetDetails(ctx, wf.ID, "Thiri", "SHOP-1042", decimal.Zero); err != nil {
		t.Fatalf("details: %v", err)
	}

	result, err := svc.Confirm(ctx, wf.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	var variant models.Variant
	if err := conn.First(&variant, "article_id = ? AND size_code = ?", "LNS-01", "M").Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if variant.WarehouseQty != 8 || variant.StoreQty != 3 {
		t.Fatalf("balances = %d/%d, want 3/8", variant.StoreQty, variant.WarehouseQty)
	}

	if len(result.Movements) != 1 {
		t.Fatalf("movements = %d", len(result.Movements))
	}
	move := result.Movements[0]
	if move.Kind != enums.MovementKindOutward || move.Location != enums.StockLocationWarehouse || move.Qty != -2 {
		t.Fatalf("movement = %+v", move)
	}
	if move.Channel == nil || *move.Channel != enums.ChannelShopify {
		t.Fatalf("movement channel = %v", move.Channel)
	}

	if result.Transaction == nil {
		t.Fatal("dispatch must record a transaction")
	}
	if result.Transaction.ExternalRef != "SHOP-1042" {
		t.Fatalf("external ref = %s", result.Transaction.ExternalRef)
	}
	if !result.Transaction.Total.Equal(decimal.NewFromInt(13000)) {
		t.Fatalf("total = %s", result.Transaction.Total)
	}

	// Confirmed workflows leave the registry.
	if _, err := svc.Get(ctx, wf.ID); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected workflow gone, got %v", err)
	}
}

func TestPRGiftCommitsAtZero(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 0, 4)

	wf := runToDetails(t, svc, ctx, enums.ChannelPR, 1)
	if _, err := svc.SetDetails(ctx, wf.ID, "Blogger Su", "IG-COLLAB", decimal.Zero); err != nil {
		t.Fatalf("details: %v", err)
	}

	result, err := svc.Confirm(ctx, wf.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !result.Transaction.Total.IsZero() {
		t.Fatalf("PR total = %s, want 0", result.Transaction.Total)
	}
	if !result.Transaction.Lines[0].UnitPrice.IsZero() {
		t.Fatalf("PR line price = %s, want 0", result.Transaction.Lines[0].UnitPrice)
	}
}

func TestTransferCommitsMovementOnly(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 1, 6)

	wf := runToDetails(t, svc, ctx, enums.ChannelTransfer, 4)
	if _, err := svc.SetDetails(ctx, wf.ID, "", "", decimal.Zero); err != nil {
		t.Fatalf("details: %v", err)
	}

	result, err := svc.Confirm(ctx, wf.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Transaction != nil {
		t.Fatal("transfers are movement-log only")
	}

	move := result.Movements[0]
	if move.Kind != enums.MovementKindTransfer || move.Location != enums.StockLocationBoth {
		t.Fatalf("movement = %+v", move)
	}
	if move.Qty != 4 || move.PostStoreQty != 5 || move.PostWarehouseQty != 2 {
		t.Fatalf("movement = %+v", move)
	}
	if move.Note == "" {
		t.Fatal("transfer reference must be auto-generated")
	}
}

// The warehouse can shrink between scan and confirm. The default rule moves
// only what the warehouse still has; the legacy flag reproduces the old
// raw-increment behavior that manufactures store stock.
func TestTransferOverdraw(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		legacy     bool
		wantStore  int
		wantWh     int
		wantMoveQty int
	}{
		{name: "symmetric", legacy: false, wantStore: 2, wantWh: 0, wantMoveQty: 2},
		{name: "legacy raw increment", legacy: true, wantStore: 5, wantWh: 0, wantMoveQty: 5},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, conn := newTestService(t, config.LedgerConfig{LegacyTransfer: tc.legacy})
			ctx := context.Background()
			seedVariant(t, conn, 0, 5)

			wf := runToDetails(t, svc, ctx, enums.ChannelTransfer, 5)
			if _, err := svc.SetDetails(ctx, wf.ID, "", "", decimal.Zero); err != nil {
				t.Fatalf("details: %v", err)
			}

			// Another commit drains the warehouse before this one lands.
			if _, err := ledger.AdjustWarehouse(ctx, conn, "LNS-01", "M", -3); err != nil {
				t.Fatalf("drain: %v", err)
			}

			result, err := svc.Confirm(ctx, wf.ID)
			if err != nil {
				t.Fatalf("confirm: %v", err)
			}

			var variant models.Variant
			if err := conn.First(&variant, "article_id = ? AND size_code = ?", "LNS-01", "M").Error; err != nil {
				t.Fatalf("load variant: %v", err)
			}
			if variant.StoreQty != tc.wantStore || variant.WarehouseQty != tc.wantWh {
				t.Fatalf("balances = %d/%d, want %d/%d", variant.StoreQty, variant.WarehouseQty, tc.wantStore, tc.wantWh)
			}
			if result.Movements[0].Qty != tc.wantMoveQty {
				t.Fatalf("movement qty = %d, want %d", result.Movements[0].Qty, tc.wantMoveQty)
			}
		})
	}
}

func TestCancelLeavesZeroWrites(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 2, 8)

	wf, err := svc.Create(ctx, enums.ChannelShopify, "aye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Scan(ctx, wf.ID, "LNS-01-M"); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}
	if err := svc.Cancel(ctx, wf.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var moves, txns int64
	conn.Model(&models.StockMovement{}).Count(&moves)
	conn.Model(&models.Transaction{}).Count(&txns)
	if moves != 0 || txns != 0 {
		t.Fatalf("cancel wrote %d movements, %d transactions", moves, txns)
	}

	var variant models.Variant
	if err := conn.First(&variant, "article_id = ?", "LNS-01").Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	if variant.StoreQty != 2 || variant.WarehouseQty != 8 {
		t.Fatalf("balances changed: %d/%d", variant.StoreQty, variant.WarehouseQty)
	}
}

func TestScanGuards(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 5, 2)

	wf, err := svc.Create(ctx, enums.ChannelShopify, "aye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Scan(ctx, wf.ID, "NO-SUCH"); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("unknown code: %v", err)
	}

	// Only two in the warehouse; the third scan must bounce even though the
	// store floor has plenty.
	for i := 0; i < 2; i++ {
		if _, err := svc.Scan(ctx, wf.ID, "LNS-01-M"); err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}
	}
	if _, err := svc.Scan(ctx, wf.ID, "LNS-01-M"); !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	current, err := svc.Get(ctx, wf.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(current.Items) != 1 || current.Items[0].Qty != 2 {
		t.Fatalf("queue = %+v", current.Items)
	}
}

func TestReviewAdjustRejectsOnlyThatLine(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, config.LedgerConfig{})
	ctx := context.Background()
	seedVariant(t, conn, 0, 3)

	wf, err := svc.Create(ctx, enums.ChannelFnF, "aye")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Scan(ctx, wf.ID, "LNS-01-M"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := svc.Advance(ctx, wf.ID); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if _, err := svc.SetItemQty(ctx, wf.ID, 0, 9); !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	current, _ := svc.Get(ctx, wf.ID)
	if current.Items[0].Qty != 1 {
		t.Fatalf("failed adjust must leave the line untouched, qty = %d", current.Items[0].Qty)
	}

	if _, err := svc.SetItemQty(ctx, wf.ID, 0, 3); err != nil {
		t.Fatalf("valid adjust: %v", err)
	}
	current, _ = svc.Get(ctx, wf.ID)
	if current.Items[0].Qty != 3 {
		t.Fatalf("qty = %d", current.Items[0].Qty)
	}
}

func TestWorkflowStateGuards(t *testing.T) {
	t.Parallel()

	wf, err := NewWorkflow(enums.ChannelShopify, "aye")
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}

	if err := wf.Advance(); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty advance: %v", err)
	}
	if err := wf.Back(); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("back at first step: %v", err)
	}
	if err := wf.SetDetails("x", "y", decimal.Zero); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("details while scanning: %v", err)
	}

	if err := wf.AddScan(ScanItem{ArticleID: "A", ArticleName: "A", SizeCode: "S", Capacity: 5}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := wf.Advance(); err != nil {
		t.Fatalf("to reviewing: %v", err)
	}
	if err := wf.AddScan(ScanItem{ArticleID: "A", ArticleName: "A", SizeCode: "S", Capacity: 5}); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("scan while reviewing: %v", err)
	}
	if err := wf.Advance(); err != nil {
		t.Fatalf("to details: %v", err)
	}
	if err := wf.Advance(); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("advance past details: %v", err)
	}
	if err := wf.Back(); err != nil {
		t.Fatalf("back to reviewing: %v", err)
	}
	if wf.State != enums.WorkflowStateReviewing {
		t.Fatalf("state = %s", wf.State)
	}

	if _, err := NewWorkflow(enums.ChannelSale, "aye"); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("sale channel must be rejected: %v", err)
	}
}

func TestDetailsGuards(t *testing.T) {
	t.Parallel()

	wf, _ := NewWorkflow(enums.ChannelShopify, "aye")
	wf.State = enums.WorkflowStateDetailsCapture

	if err := wf.SetDetails("", "REF", decimal.Zero); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing recipient: %v", err)
	}
	if err := wf.SetDetails("Thiri", "", decimal.Zero); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("missing reference: %v", err)
	}
	if err := wf.SetDetails("Thiri", "REF", decimal.NewFromInt(150)); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("discount out of range: %v", err)
	}
	if err := wf.SetDetails("Thiri", "REF", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("valid details: %v", err)
	}

	transfer, _ := NewWorkflow(enums.ChannelTransfer, "aye")
	transfer.State = enums.WorkflowStateDetailsCapture
	if err := transfer.SetDetails("", "", decimal.Zero); err != nil {
		t.Fatalf("transfer details: %v", err)
	}
	if transfer.Reference == "" || transfer.Recipient == "" {
		t.Fatalf("transfer must auto-fill details: %+v", transfer)
	}
}
