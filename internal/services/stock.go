package services

import (
	"context"
	"fmt"
	"log"

	"github.com/teacellar/apiserver/internal/events"
	"github.com/teacellar/apiserver/internal/token"
	"github.com/teacellar/apiserver/types"
)

// StockLogRepository defines the ledger operations.
type StockLogRepository interface {
	Adjust(ctx context.Context, ownerID, itemID, delta int, reason, note string) (types.Item, error)
	ListByItem(ctx context.Context, ownerID, itemID int) ([]types.StockLog, error)
}

// StockService encapsulates the inventory ledger use-cases. An optional
// events publisher announces committed movements; publishing never affects
// the outcome of an adjustment.
type StockService struct {
	repo      StockLogRepository
	publisher *events.Publisher
}

func NewStockService(repo StockLogRepository, publisher *events.Publisher) *StockService {
	return &StockService{repo: repo, publisher: publisher}
}

// Adjust records one stock movement against an item the identity owns and
// returns the item with its post-movement quantity and prices.
func (s *StockService) Adjust(ctx context.Context, identity token.Identity, itemID, delta int, reason, note string) (types.Item, error) {
	if !types.ValidReason(reason) {
		return types.Item{}, fmt.Errorf("%w: unknown reason %q", ErrInvalidInput, reason)
	}

	item, err := s.repo.Adjust(ctx, identity.AccountID, itemID, delta, reason, note)
	if err != nil {
		return types.Item{}, err
	}

	if s.publisher != nil {
		event := events.Movement{
			AccountID:      identity.AccountID,
			ItemID:         item.ID,
			ChangeAmount:   delta,
			CurrentBalance: item.Quantity,
			Reason:         reason,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("stock: failed to publish movement event for item %d: %v", item.ID, err)
		}
	}

	return item, nil
}

// ListLogs returns the item's ledger newest first. Logs of an item the
// identity does not own come back as an empty list.
func (s *StockService) ListLogs(ctx context.Context, identity token.Identity, itemID int) ([]types.StockLog, error) {
	return s.repo.ListByItem(ctx, identity.AccountID, itemID)
}
