// Package ledger owns the authoritative (store, warehouse) quantity pair per
// variant. Every balance mutation in the system goes through these functions,
// inside the caller's transaction, so movements and commercial records can be
// written in the same atomic boundary.
package ledger

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	pkgerrors "github.com/hninyuwai/boutiquepos-backend/pkg/errors"
)

// Balances is the post-mutation quantity pair.
type Balances struct {
	Store     int
	Warehouse int
}

// TransferResult describes one warehouse-to-store transfer. Applied is the
// quantity the warehouse actually supplied after the floor at zero; StoreAdded
// equals Applied unless the legacy raw-increment mode was requested.
type TransferResult struct {
	Requested  int
	Applied    int
	StoreAdded int
	Balances   Balances
}

// AdjustStore shifts the store-floor balance by delta, flooring the result at
// zero, and returns both post balances.
func AdjustStore(ctx context.Context, tx *gorm.DB, articleID, sizeCode string, delta int) (Balances, error) {
	variant, err := lockVariant(ctx, tx, articleID, sizeCode)
	if err != nil {
		return Balances{}, err
	}

	next := clampAtZero(variant.StoreQty + delta)
	if err := saveQuantities(ctx, tx, articleID, sizeCode, next, variant.WarehouseQty); err != nil {
		return Balances{}, err
	}
	return Balances{Store: next, Warehouse: variant.WarehouseQty}, nil
}

// AdjustWarehouse shifts the back-stock balance by delta with the same
// floor-at-zero rule.
func AdjustWarehouse(ctx context.Context, tx *gorm.DB, articleID, sizeCode string, delta int) (Balances, error) {
	variant, err := lockVariant(ctx, tx, articleID, sizeCode)
	if err != nil {
		return Balances{}, err
	}

	next := clampAtZero(variant.WarehouseQty + delta)
	if err := saveQuantities(ctx, tx, articleID, sizeCode, variant.StoreQty, next); err != nil {
		return Balances{}, err
	}
	return Balances{Store: variant.StoreQty, Warehouse: next}, nil
}

// Transfer moves qty units from warehouse to store atomically. The warehouse
// side floors at zero. By default the store side gains exactly what the
// warehouse supplied; legacyRawIncrement reproduces the historical behavior of
// adding the full requested quantity even when the warehouse ran short, which
// manufactures phantom store inventory and exists only for compatibility.
func Transfer(ctx context.Context, tx *gorm.DB, articleID, sizeCode string, qty int, legacyRawIncrement bool) (TransferResult, error) {
	if qty <= 0 {
		return TransferResult{}, pkgerrors.New(pkgerrors.CodeValidation, "transfer quantity must be positive")
	}

	variant, err := lockVariant(ctx, tx, articleID, sizeCode)
	if err != nil {
		return TransferResult{}, err
	}

	applied := qty
	if applied > variant.WarehouseQty {
		applied = variant.WarehouseQty
	}
	storeAdded := applied
	if legacyRawIncrement {
		storeAdded = qty
	}

	nextStore := variant.StoreQty + storeAdded
	nextWarehouse := variant.WarehouseQty - applied
	if err := saveQuantities(ctx, tx, articleID, sizeCode, nextStore, nextWarehouse); err != nil {
		return TransferResult{}, err
	}

	return TransferResult{
		Requested:  qty,
		Applied:    applied,
		StoreAdded: storeAdded,
		Balances:   Balances{Store: nextStore, Warehouse: nextWarehouse},
	}, nil
}

// CurrentBalances reads the quantity pair without locking.
func CurrentBalances(ctx context.Context, tx *gorm.DB, articleID, sizeCode string) (Balances, error) {
	var variant models.Variant
	err := tx.WithContext(ctx).
		Where("article_id = ? AND size_code = ?", articleID, sizeCode).
		First(&variant).Error
	if err == gorm.ErrRecordNotFound {
		return Balances{}, variantNotFound(articleID, sizeCode)
	}
	if err != nil {
		return Balances{}, err
	}
	return Balances{Store: variant.StoreQty, Warehouse: variant.WarehouseQty}, nil
}

// lockVariant loads the variant row under a write lock so concurrent
// mutations of the same variant serialize. SQLite has no FOR UPDATE; its
// single-writer model gives the same guarantee.
func lockVariant(ctx context.Context, tx *gorm.DB, articleID, sizeCode string) (*models.Variant, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var variant models.Variant
	err := q.Where("article_id = ? AND size_code = ?", articleID, sizeCode).First(&variant).Error
	if err == gorm.ErrRecordNotFound {
		return nil, variantNotFound(articleID, sizeCode)
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func saveQuantities(ctx context.Context, tx *gorm.DB, articleID, sizeCode string, storeQty, warehouseQty int) error {
	return tx.WithContext(ctx).
		Model(&models.Variant{}).
		Where("article_id = ? AND size_code = ?", articleID, sizeCode).
		Updates(map[string]any{
			"store_qty":     storeQty,
			"warehouse_qty": warehouseQty,
		}).Error
}

func clampAtZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func variantNotFound(articleID, sizeCode string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found").
		WithDetails(map[string]string{"article_id": articleID, "size_code": sizeCode})
}
