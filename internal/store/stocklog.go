package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/teacellar/apiserver/types"
)

// StockLogRepository handles the append-only movement ledger and the
// transactional protocol that keeps an item's quantity and price fields
// consistent with it.
type StockLogRepository struct {
	db *sql.DB
}

func NewStockLogRepository(db *sql.DB) *StockLogRepository {
	return &StockLogRepository{db: db}
}

// Adjust applies a signed stock delta to an item owned by ownerID.
// The item row is locked for the duration of the transaction, so concurrent
// adjustments to the same item serialize instead of losing updates. The
// ledger insert and the item update commit together or not at all.
//
// A delta that drives the balance negative is permitted: corrections may be
// recorded after the fact or pass through zero.
func (r *StockLogRepository) Adjust(ctx context.Context, ownerID, itemID, delta int, reason, note string) (types.Item, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Item{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const selectItem = `
		SELECT id, owner_id, name, kind, category, year, origin, description, image_key,
			quantity, price, unit_price, created_at
		FROM items
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE`
	item, err := scanItem(tx.QueryRowContext(ctx, selectItem, itemID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}

	newQuantity, newPrice, newUnitPrice := applyAdjustment(item, delta)

	const insertLog = `
		INSERT INTO stock_logs (item_id, change_amount, current_balance, reason, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertLog, item.ID, delta, newQuantity, reason, note, time.Now()); err != nil {
		return types.Item{}, err
	}

	const updateItem = `
		UPDATE items
		SET quantity = $1,
			price = $2,
			unit_price = $3
		WHERE id = $4`
	if _, err := tx.ExecContext(ctx, updateItem, newQuantity, newPrice, newUnitPrice, item.ID); err != nil {
		return types.Item{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Item{}, err
	}

	item.Quantity = newQuantity
	item.Price = newPrice
	item.UnitPrice = newUnitPrice
	return item, nil
}

// ListByItem returns an item's ledger newest first. Ownership is enforced by
// joining through the item: logs of a foreign item come back as an empty
// list, same as an item with no movements.
func (r *StockLogRepository) ListByItem(ctx context.Context, ownerID, itemID int) ([]types.StockLog, error) {
	const query = `
		SELECT l.id, l.item_id, l.change_amount, l.current_balance, l.reason, l.note, l.created_at
		FROM stock_logs l
		JOIN items i ON i.id = l.item_id
		WHERE l.item_id = $1 AND i.owner_id = $2
		ORDER BY l.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, itemID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]types.StockLog, 0)
	for rows.Next() {
		var entry types.StockLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ItemID,
			&entry.ChangeAmount,
			&entry.CurrentBalance,
			&entry.Reason,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}

// applyAdjustment computes the post-movement quantity and repriced totals.
// The effective unit price is the stored one when non-zero, otherwise it is
// re-derived from the stored totals.
func applyAdjustment(item types.Item, delta int) (newQuantity int, newPrice, newUnitPrice decimal.Decimal) {
	unitPrice := item.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = types.ComputeUnitPrice(item.Price, item.Quantity)
	}

	newQuantity = item.Quantity + delta
	newPrice = unitPrice.Mul(decimal.NewFromInt(int64(newQuantity)))
	return newQuantity, newPrice, unitPrice
}
