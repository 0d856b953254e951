package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:transactions_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Transaction{}, &models.TransactionLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func line(qty int, price int64) LineInput {
	return LineInput{
		ArticleID:   "SKU-1",
		ArticleName: "Linen Shirt",
		SizeCode:    "M",
		SizeLabel:   "Medium",
		Qty:         qty,
		UnitPrice:   decimal.NewFromInt(price),
	}
}

func TestCommitComputesTotals(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	record, err := Commit(context.Background(), conn, CommitInput{
		Channel:          enums.ChannelSale,
		Lines:            []LineInput{line(3, 6500), line(1, 12000)},
		OrderDiscountPct: decimal.NewFromInt(10),
		PaymentMethod:    enums.PaymentMethodCash,
		AmountPaid:       decimal.NewFromInt(30000),
		Cashier:          "aye",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if !record.Subtotal.Equal(decimal.NewFromInt(31500)) {
		t.Fatalf("subtotal = %s", record.Subtotal)
	}
	if !record.Total.Equal(decimal.NewFromInt(28350)) {
		t.Fatalf("total = %s", record.Total)
	}
	if record.IsPartial {
		t.Fatal("paying above total is not partial")
	}
	if !record.Balance.IsZero() {
		t.Fatalf("balance = %s", record.Balance)
	}
	if len(record.Lines) != 2 {
		t.Fatalf("lines = %d", len(record.Lines))
	}
}

func TestCommitPartialPayment(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	record, err := Commit(context.Background(), conn, CommitInput{
		Channel:       enums.ChannelSale,
		Lines:         []LineInput{line(2, 5000)},
		PaymentMethod: enums.PaymentMethodCash,
		AmountPaid:    decimal.NewFromInt(6000),
		Cashier:       "aye",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !record.IsPartial {
		t.Fatal("tendering below total must be recorded as partial")
	}
	if !record.Balance.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("balance = %s", record.Balance)
	}
}

func TestCommitForcesZeroPriceForPRGifts(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	record, err := Commit(context.Background(), conn, CommitInput{
		Channel:     enums.ChannelPR,
		Lines:       []LineInput{line(2, 6500)},
		Cashier:     "aye",
		ExternalRef: "Blogger visit",
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !record.Lines[0].UnitPrice.IsZero() {
		t.Fatalf("PR line price = %s, want 0", record.Lines[0].UnitPrice)
	}
	if !record.Total.IsZero() {
		t.Fatalf("PR total = %s, want 0", record.Total)
	}
}

func TestCommitDerivesShiftAttribution(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	at := time.Date(2026, 8, 15, 2, 30, 0, 0, time.UTC)
	record, err := Commit(context.Background(), conn, CommitInput{
		Channel:       enums.ChannelSale,
		Lines:         []LineInput{line(1, 1000)},
		PaymentMethod: enums.PaymentMethodCard,
		AmountPaid:    decimal.NewFromInt(1000),
		Cashier:       "moe",
		OccurredAt:    at,
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if record.ShiftSlot != enums.ShiftSlotNight {
		t.Fatalf("slot = %s", record.ShiftSlot)
	}
	want := time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)
	if !record.BusinessDate.Equal(want) {
		t.Fatalf("business date = %s, want %s", record.BusinessDate, want)
	}
}

func TestCommitRejections(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ctx := context.Background()

	cases := []CommitInput{
		{Channel: enums.ChannelTransfer, Lines: []LineInput{line(1, 100)}},
		{Channel: enums.ChannelSale, PaymentMethod: enums.PaymentMethodCash},
		{Channel: "telegram", Lines: []LineInput{line(1, 100)}},
		{Channel: enums.ChannelSale, PaymentMethod: enums.PaymentMethodCash, Lines: []LineInput{line(0, 100)}},
		{Channel: enums.ChannelSale, PaymentMethod: enums.PaymentMethodCash, Lines: []LineInput{line(1, 100)}, OrderDiscountPct: decimal.NewFromInt(120)},
	}
	for i, input := range cases {
		if _, err := Commit(ctx, conn, input); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	var count int64
	conn.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected commits must not write, found %d", count)
	}
}

func TestListFilters(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	ctx := context.Background()
	customer := uuid.New()

	mustCommit := func(input CommitInput) *models.Transaction {
		t.Helper()
		record, err := Commit(ctx, conn, input)
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		return record
	}

	mustCommit(CommitInput{
		Channel: enums.ChannelSale, Lines: []LineInput{line(1, 100)},
		PaymentMethod: enums.PaymentMethodCash, AmountPaid: decimal.NewFromInt(100),
		CustomerID: &customer, Cashier: "aye",
		OccurredAt: time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC),
	})
	mustCommit(CommitInput{
		Channel: enums.ChannelShopify, Lines: []LineInput{line(1, 100)},
		Cashier: "aye", ExternalRef: "SHOP-100",
		OccurredAt: time.Date(2026, 8, 14, 22, 0, 0, 0, time.UTC),
	})

	repo := NewRepository(conn)

	rows, err := repo.List(ctx, Filter{Channel: enums.ChannelShopify}, pagination.Params{})
	if err != nil || len(rows) != 1 || rows[0].ExternalRef != "SHOP-100" {
		t.Fatalf("channel filter: %+v, %v", rows, err)
	}

	rows, err = repo.List(ctx, Filter{CustomerID: &customer}, pagination.Params{})
	if err != nil || len(rows) != 1 || rows[0].Channel != enums.ChannelSale {
		t.Fatalf("customer filter: %+v, %v", rows, err)
	}

	rows, err = repo.List(ctx, Filter{BusinessDate: time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)}, pagination.Params{})
	if err != nil || len(rows) != 2 {
		t.Fatalf("business date filter: %d rows, %v", len(rows), err)
	}

	rows, err = repo.List(ctx, Filter{Since: time.Date(2026, 8, 14, 12, 0, 0, 0, time.UTC)}, pagination.Params{})
	if err != nil || len(rows) != 1 {
		t.Fatalf("since filter: %d rows, %v", len(rows), err)
	}

	if len(rows[0].Lines) != 1 {
		t.Fatalf("lines not preloaded: %+v", rows[0])
	}
}
