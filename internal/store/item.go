package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/teacellar/apiserver/types"
)

// ItemRepository handles persistence for collection items. Every query is
// filtered by the owner id; a miss and a foreign row are indistinguishable.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context, ownerID int) ([]types.Item, error) {
	const query = `
		SELECT id, owner_id, name, kind, category, year, origin, description, image_key,
			quantity, price, unit_price, created_at
		FROM items
		WHERE owner_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Create inserts the item and, when its starting quantity is positive, the
// INITIAL ledger entry, in one transaction. Either both rows commit or
// neither does.
func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	item.CreatedAt = time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Item{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertItem = `
		INSERT INTO items (owner_id, name, kind, category, year, origin, description, image_key,
			quantity, price, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertItem,
		item.OwnerID,
		item.Name,
		item.Kind,
		item.Category,
		item.Year,
		item.Origin,
		item.Description,
		item.ImageKey,
		item.Quantity,
		item.Price,
		item.UnitPrice,
		item.CreatedAt,
	).Scan(&item.ID); err != nil {
		return types.Item{}, err
	}

	if item.Quantity > 0 {
		const insertLog = `
			INSERT INTO stock_logs (item_id, change_amount, current_balance, reason, note, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := tx.ExecContext(
			ctx,
			insertLog,
			item.ID,
			item.Quantity,
			item.Quantity,
			types.ReasonInitial,
			"initial stock",
			item.CreatedAt,
		); err != nil {
			return types.Item{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return types.Item{}, err
	}

	return item, nil
}

func (r *ItemRepository) Update(ctx context.Context, item types.Item) (types.Item, error) {
	const query = `
		UPDATE items
		SET name = $1,
			kind = $2,
			category = $3,
			year = $4,
			origin = $5,
			description = $6,
			image_key = $7,
			quantity = $8,
			price = $9,
			unit_price = $10
		WHERE id = $11 AND owner_id = $12`
	result, err := r.db.ExecContext(
		ctx,
		query,
		item.Name,
		item.Kind,
		item.Category,
		item.Year,
		item.Origin,
		item.Description,
		item.ImageKey,
		item.Quantity,
		item.Price,
		item.UnitPrice,
		item.ID,
		item.OwnerID,
	)
	if err != nil {
		return types.Item{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Item{}, err
	}
	if affected == 0 {
		return types.Item{}, ErrNotFound
	}
	return item, nil
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID, id int) error {
	const query = `DELETE FROM items WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (types.Item, error) {
	var item types.Item
	err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Kind,
		&item.Category,
		&item.Year,
		&item.Origin,
		&item.Description,
		&item.ImageKey,
		&item.Quantity,
		&item.Price,
		&item.UnitPrice,
		&item.CreatedAt,
	)
	return item, err
}
