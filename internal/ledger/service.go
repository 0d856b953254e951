package ledger

import (
	"context"
	"fmt"

	"github.com/hninyuwai/boutiquepos-backend/internal/holds"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db"
	"github.com/hninyuwai/boutiquepos-backend/pkg/db/models"
	"github.com/hninyuwai/boutiquepos-backend/pkg/enums"
)

// Service exposes the read-side availability checks used by carts and
// workflows to prevent overselling before anything commits.
type Service interface {
	// AvailableToSell is the store balance minus quantities held in open
	// carts or queues for that variant.
	AvailableToSell(ctx context.Context, articleID, sizeCode string) (int, error)
	// AvailableToDispatch is the warehouse balance minus open workflow holds.
	AvailableToDispatch(ctx context.Context, articleID, sizeCode string) (int, error)
	Balances(ctx context.Context, articleID, sizeCode string) (Balances, error)
}

type service struct {
	client *db.Client
	holds  holds.Store
}

// NewService wires the availability reader.
func NewService(client *db.Client, holdStore holds.Store) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if holdStore == nil {
		return nil, fmt.Errorf("hold store required")
	}
	return &service{client: client, holds: holdStore}, nil
}

func (s *service) AvailableToSell(ctx context.Context, articleID, sizeCode string) (int, error) {
	return s.available(ctx, articleID, sizeCode, enums.StockLocationStore)
}

func (s *service) AvailableToDispatch(ctx context.Context, articleID, sizeCode string) (int, error) {
	return s.available(ctx, articleID, sizeCode, enums.StockLocationWarehouse)
}

func (s *service) available(ctx context.Context, articleID, sizeCode string, location enums.StockLocation) (int, error) {
	balances, err := CurrentBalances(ctx, s.client.DB(), articleID, sizeCode)
	if err != nil {
		return 0, err
	}

	code := models.Variant{ArticleID: articleID, SizeCode: sizeCode}.CanonicalCode()
	held, err := s.holds.Held(ctx, location.String(), code)
	if err != nil {
		return 0, err
	}

	onHand := balances.Store
	if location == enums.StockLocationWarehouse {
		onHand = balances.Warehouse
	}
	available := onHand - held
	if available < 0 {
		return 0, nil
	}
	return available, nil
}

func (s *service) Balances(ctx context.Context, articleID, sizeCode string) (Balances, error) {
	return CurrentBalances(ctx, s.client.DB(), articleID, sizeCode)
}
