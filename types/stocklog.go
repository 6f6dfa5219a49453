package types

import "time"

// Stock movement reasons.
const (
	ReasonPurchase = "PURCHASE"
	ReasonConsume  = "CONSUME"
	ReasonGift     = "GIFT"
	ReasonDamage   = "DAMAGE"
	ReasonAdjust   = "ADJUST"
	ReasonInitial  = "INITIAL"
)

// ValidReason reports whether reason is one of the movement reasons a
// caller may record. INITIAL is reserved for item creation.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonPurchase, ReasonConsume, ReasonGift, ReasonDamage, ReasonAdjust:
		return true
	}
	return false
}

// StockLog is one immutable entry in an item's movement ledger.
// Entries are append-only; the sequence for an item forms a running balance
// where each CurrentBalance equals the previous balance plus ChangeAmount.
type StockLog struct {
	// ID is the unique identifier of the entry.
	ID int `json:"id" db:"id"`

	// ItemID is the item this entry belongs to.
	ItemID int `json:"item_id" db:"item_id"`

	// ChangeAmount is the signed stock delta. Positive is an increase,
	// negative a decrease.
	ChangeAmount int `json:"change_amount" db:"change_amount"`

	// CurrentBalance is the item quantity immediately after applying
	// this entry.
	CurrentBalance int `json:"current_balance" db:"current_balance"`

	// Reason is one of the movement reason constants.
	Reason string `json:"reason" db:"reason"`

	// Note is an optional free-text annotation.
	Note string `json:"note,omitempty" db:"note"`

	// CreatedAt is the timestamp at which the entry was recorded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
