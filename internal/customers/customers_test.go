package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
	"github.com/hninyuwai/boutiquepos-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:customers_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestCreateAndFind(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	customer := &models.Customer{Name: "Thiri", Phone: "09-420011223"}
	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("create: %v", err)
	}
	if customer.ID == uuid.Nil {
		t.Fatal("id not assigned")
	}

	found, err := repo.FindByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Name != "Thiri" || found.LoyaltyPoints != 0 {
		t.Fatalf("found = %+v", found)
	}

	if err := repo.Create(ctx, &models.Customer{Phone: "09-1"}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("nameless create: %v", err)
	}
	if _, err := repo.FindByID(ctx, uuid.New()); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("missing find: %v", err)
	}
}

func TestAccrueSale(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	customer := &models.Customer{Name: "Su"}
	if err := repo.Create(ctx, customer); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := AccrueSale(ctx, conn, customer.ID, 13, decimal.NewFromInt(13500)); err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if err := AccrueSale(ctx, conn, customer.ID, 7, decimal.NewFromInt(7000)); err != nil {
		t.Fatalf("accrue: %v", err)
	}

	found, err := repo.FindByID(ctx, customer.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.LoyaltyPoints != 20 {
		t.Fatalf("points = %d", found.LoyaltyPoints)
	}
	if !found.TotalSpent.Equal(decimal.NewFromInt(20500)) {
		t.Fatalf("spent = %s", found.TotalSpent)
	}

	if err := AccrueSale(ctx, conn, uuid.New(), 1, decimal.NewFromInt(1)); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("missing customer: %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()

	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if err := repo.Create(ctx, &models.Customer{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	rows, err := repo.List(ctx, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
}
