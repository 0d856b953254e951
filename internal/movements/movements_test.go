package movements

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:movements_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockMovement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func record(t *testing.T, conn *gorm.DB, input RecordInput) *models.StockMovement {
	t.Helper()
	m, err := Record(context.Background(), conn, input)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	return m
}

func TestRecordAssignsPerVariantSequence(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	base := RecordInput{
		Kind:        enums.MovementKindInward,
		Location:    enums.StockLocationWarehouse,
		ArticleID:   "SKU-1",
		ArticleName: "Linen Shirt",
		SizeCode:    "M",
		Qty:         10,
		Actor:       "aye",
	}

	first := record(t, conn, base)
	second := record(t, conn, base)

	other := base
	other.SizeCode = "L"
	third := record(t, conn, other)

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("sequence not incrementing: %d, %d", first.Seq, second.Seq)
	}
	if third.Seq != 1 {
		t.Fatalf("sequence should be per variant, got %d", third.Seq)
	}
}

func TestRecordValidatesInput(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ctx := context.Background()

	cases := []RecordInput{
		{Kind: enums.MovementKindSale, Location: enums.StockLocationStore, ArticleName: "X", SizeCode: "M"},
		{Kind: enums.MovementKindSale, Location: enums.StockLocationStore, ArticleID: "SKU-1", SizeCode: "M"},
		{Kind: "purchase", Location: enums.StockLocationStore, ArticleID: "SKU-1", ArticleName: "X", SizeCode: "M"},
		{Kind: enums.MovementKindSale, Location: "shelf", ArticleID: "SKU-1", ArticleName: "X", SizeCode: "M"},
		{Kind: enums.MovementKindSale, Location: enums.StockLocationBoth, ArticleID: "SKU-1", ArticleName: "X", SizeCode: "M"},
	}
	for i, input := range cases {
		if _, err := Record(ctx, conn, input); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	var count int64
	conn.Model(&models.StockMovement{}).Count(&count)
	if count != 0 {
		t.Fatalf("invalid input must not write, found %d rows", count)
	}
}

func TestTrailNewestFirst(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	base := RecordInput{
		Kind:        enums.MovementKindInward,
		Location:    enums.StockLocationWarehouse,
		ArticleID:   "SKU-1",
		ArticleName: "Linen Shirt",
		SizeCode:    "M",
		Qty:         5,
		Actor:       "aye",
	}
	record(t, conn, base)
	base.Kind = enums.MovementKindOutward
	base.Qty = -2
	record(t, conn, base)

	trail, err := NewRepository(conn).Trail(context.Background(), "SKU-1", "M")
	if err != nil {
		t.Fatalf("trail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("trail length = %d", len(trail))
	}
	if trail[0].Seq != 2 || trail[0].Kind != enums.MovementKindOutward {
		t.Fatalf("trail not newest-first: %+v", trail[0])
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	shopify := enums.ChannelShopify
	record(t, conn, RecordInput{
		Kind: enums.MovementKindInward, Location: enums.StockLocationWarehouse,
		ArticleID: "SKU-1", ArticleName: "Linen Shirt", SizeCode: "M", Qty: 10, Actor: "aye",
	})
	record(t, conn, RecordInput{
		Kind: enums.MovementKindOutward, Location: enums.StockLocationWarehouse,
		ArticleID: "SKU-1", ArticleName: "Linen Shirt", SizeCode: "M", Qty: -3,
		Channel: &shopify, Actor: "aye",
	})

	repo := NewRepository(conn)
	rows, err := repo.List(context.Background(), Filter{Channel: enums.ChannelShopify}, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Kind != enums.MovementKindOutward {
		t.Fatalf("channel filter failed: %+v", rows)
	}

	rows, err = repo.List(context.Background(), Filter{Kind: enums.MovementKindInward}, pagination.Params{})
	if err != nil || len(rows) != 1 {
		t.Fatalf("kind filter failed: %+v, %v", rows, err)
	}
}

func TestReplayReproducesBalances(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	steps := []RecordInput{
		{Kind: enums.MovementKindInward, Location: enums.StockLocationWarehouse, Qty: 40, PostWarehouseQty: 40},
		{Kind: enums.MovementKindInward, Location: enums.StockLocationStore, Qty: 10, PostStoreQty: 10, PostWarehouseQty: 40},
		{Kind: enums.MovementKindSale, Location: enums.StockLocationStore, Qty: -3, PostStoreQty: 7, PostWarehouseQty: 40},
		{Kind: enums.MovementKindOutward, Location: enums.StockLocationWarehouse, Qty: -5, PostStoreQty: 7, PostWarehouseQty: 35},
		{Kind: enums.MovementKindTransfer, Location: enums.StockLocationBoth, Qty: 4, PostStoreQty: 11, PostWarehouseQty: 31},
	}
	for i := range steps {
		steps[i].ArticleID = "SKU-1"
		steps[i].ArticleName = "Linen Shirt"
		steps[i].SizeCode = "M"
		steps[i].Actor = "aye"
		record(t, conn, steps[i])
	}

	result, err := NewRepository(conn).Replay(context.Background(), "SKU-1", "M")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Store != 11 || result.Warehouse != 31 {
		t.Fatalf("replay = %+v, want store 11 warehouse 31", result)
	}
	if result.Movements != 5 {
		t.Fatalf("movement count = %d", result.Movements)
	}
}

func TestReplayHandlesLegacyOverdrawnTransfer(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	steps := []RecordInput{
		{Kind: enums.MovementKindInward, Location: enums.StockLocationWarehouse, Qty: 5, PostWarehouseQty: 5},
		// legacy transfer of 10 from a warehouse of 5: warehouse floors to 0,
		// store gains the raw requested 10
		{Kind: enums.MovementKindTransfer, Location: enums.StockLocationBoth, Qty: 10, PostStoreQty: 10, PostWarehouseQty: 0},
	}
	for i := range steps {
		steps[i].ArticleID = "SKU-1"
		steps[i].ArticleName = "Linen Shirt"
		steps[i].SizeCode = "M"
		steps[i].Actor = "aye"
		record(t, conn, steps[i])
	}

	result, err := NewRepository(conn).Replay(context.Background(), "SKU-1", "M")
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if result.Store != 10 || result.Warehouse != 0 {
		t.Fatalf("replay = %+v, want store 10 warehouse 0", result)
	}
}
