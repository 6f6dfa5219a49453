package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item kinds.
const (
	KindTea     = "TEA"
	KindTeaware = "TEAWARE"
)

// Item represents one entry in an account's collection: a tea or a piece
// of teaware, with its current stock and monetary value.
type Item struct {
	// ID is the unique identifier of the item.
	ID int `json:"id" db:"id"`

	// OwnerID is the account that owns this item. Ownership is permanent;
	// items are never transferred between accounts.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// Name is the display name of the item.
	Name string `json:"name" db:"name"`

	// Kind is either "TEA" or "TEAWARE".
	Kind string `json:"kind" db:"kind"`

	// Category is a free-form grouping within the kind
	// (e.g. "puerh", "gaiwan").
	Category string `json:"category" db:"category"`

	// Year is the optional production year.
	Year *int `json:"year,omitempty" db:"year"`

	// Origin is the optional place of origin.
	Origin string `json:"origin,omitempty" db:"origin"`

	// Description holds free-form notes about the item.
	Description string `json:"description,omitempty" db:"description"`

	// ImageKey references an uploaded image in object storage.
	ImageKey string `json:"image_key,omitempty" db:"image_key"`

	// Quantity is the current stock count. It always equals the
	// current_balance of the item's most recent stock log.
	Quantity int `json:"quantity" db:"quantity"`

	// Price is the total monetary value of the current holdings.
	Price decimal.Decimal `json:"price" db:"price"`

	// UnitPrice is Price/Quantity while Quantity > 0, and zero otherwise.
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`

	// CreatedAt is the timestamp at which the item was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ComputeUnitPrice derives the per-unit price from a total price and a
// quantity. A non-positive quantity yields zero.
func ComputeUnitPrice(price decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return price.DivRound(decimal.NewFromInt(int64(quantity)), 2)
}
