package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/teacellar/apiserver/internal/token"
	"github.com/teacellar/apiserver/types"
)

// ItemRepository defines persistence operations for items.
type ItemRepository interface {
	List(ctx context.Context, ownerID int) ([]types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	Update(ctx context.Context, item types.Item) (types.Item, error)
	Delete(ctx context.Context, ownerID, id int) error
}

// ItemFields is the caller-supplied portion of an item. The owner is never
// taken from the payload; it always comes from the resolved identity.
type ItemFields struct {
	Name        string
	Kind        string
	Category    string
	Year        *int
	Origin      string
	Description string
	ImageKey    string
	Quantity    int
	Price       decimal.Decimal
}

// ItemService encapsulates ownership-scoped item use-cases.
type ItemService struct {
	repo ItemRepository
}

func NewItemService(repo ItemRepository) *ItemService {
	return &ItemService{repo: repo}
}

func (s *ItemService) List(ctx context.Context, identity token.Identity) ([]types.Item, error) {
	return s.repo.List(ctx, identity.AccountID)
}

// Create persists a new item for the identity. A positive starting quantity
// gets its INITIAL ledger entry in the same transaction as the insert.
func (s *ItemService) Create(ctx context.Context, identity token.Identity, fields ItemFields) (types.Item, error) {
	item, err := buildItem(identity.AccountID, fields)
	if err != nil {
		return types.Item{}, err
	}
	return s.repo.Create(ctx, item)
}

// Update rewrites an item's fields, recomputing the unit price. A miss and
// a foreign item surface identically as store.ErrNotFound.
func (s *ItemService) Update(ctx context.Context, identity token.Identity, itemID int, fields ItemFields) (types.Item, error) {
	item, err := buildItem(identity.AccountID, fields)
	if err != nil {
		return types.Item{}, err
	}
	item.ID = itemID
	return s.repo.Update(ctx, item)
}

func (s *ItemService) Delete(ctx context.Context, identity token.Identity, itemID int) error {
	return s.repo.Delete(ctx, identity.AccountID, itemID)
}

func buildItem(ownerID int, fields ItemFields) (types.Item, error) {
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		return types.Item{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if fields.Kind != types.KindTea && fields.Kind != types.KindTeaware {
		return types.Item{}, fmt.Errorf("%w: kind must be %s or %s", ErrInvalidInput, types.KindTea, types.KindTeaware)
	}
	if fields.Quantity < 0 {
		return types.Item{}, fmt.Errorf("%w: quantity must not be negative", ErrInvalidInput)
	}
	if fields.Price.IsNegative() {
		return types.Item{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	return types.Item{
		OwnerID:     ownerID,
		Name:        name,
		Kind:        fields.Kind,
		Category:    strings.TrimSpace(fields.Category),
		Year:        fields.Year,
		Origin:      strings.TrimSpace(fields.Origin),
		Description: strings.TrimSpace(fields.Description),
		ImageKey:    strings.TrimSpace(fields.ImageKey),
		Quantity:    fields.Quantity,
		Price:       fields.Price,
		UnitPrice:   types.ComputeUnitPrice(fields.Price, fields.Quantity),
	}, nil
}
