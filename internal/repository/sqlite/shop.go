package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/model"
	"github.com/sakif/item-shop/internal/repository"
)

var _ repository.ShopRepository = (*DB)(nil)

// InsertSnapshot appends a raw payload row. Snapshots are never updated or
// deleted; the freshness check only ever looks at the newest one, so two
// requests racing past a stale boundary at worst insert two rows.
func (db *DB) InsertSnapshot(ctx context.Context, snap *model.ShopSnapshot) error {
	snap.ID = xid.New().String()
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO shop_cache (id, fetched_at, raw_json) VALUES (?, ?, ?)`,
		snap.ID,
		snap.FetchedAt,
		string(snap.RawJSON),
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting shop snapshot: %w", err)
	}

	return nil
}

// LatestSnapshot returns the most recently fetched snapshot.
func (db *DB) LatestSnapshot(ctx context.Context) (*model.ShopSnapshot, error) {
	var (
		snap model.ShopSnapshot
		raw  string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, fetched_at, raw_json FROM shop_cache
		 ORDER BY fetched_at DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.FetchedAt, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("shop snapshot", "latest")
		}
		return nil, fmt.Errorf("sqlite: getting latest shop snapshot: %w", err)
	}

	snap.RawJSON = []byte(raw)
	return &snap, nil
}

// UpsertItems writes one rotation's rows inside a single transaction: for each
// item it looks the row up by (shop_date, offer_id) and INSERTs or UPDATEs.
// The explicit read-modify-write owns the same uniqueness invariant as the
// UNIQUE constraint, and the transaction keeps a rotation from being half
// visible to a concurrent page render.
func (db *DB) UpsertItems(ctx context.Context, shopDate string, items []model.ShopItem) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning shop items tx: %w", err)
	}
	defer tx.Rollback()

	for i := range items {
		item := &items[i]
		if item.OfferID == "" {
			continue
		}
		item.ShopDate = shopDate

		var existingID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM shop_items WHERE shop_date = ? AND offer_id = ?`,
			shopDate, item.OfferID,
		).Scan(&existingID)

		switch {
		case err == nil:
			item.ID = existingID
			_, err = tx.ExecContext(ctx,
				`UPDATE shop_items
				 SET section = ?, name = ?, price = ?, rarity = ?, type = ?, description = ?, image = ?
				 WHERE id = ?`,
				item.Section, item.Name, item.Price, item.Rarity, item.Type, item.Description, item.Image,
				existingID,
			)
			if err != nil {
				return fmt.Errorf("sqlite: updating shop item %s: %w", existingID, err)
			}

		case errors.Is(err, sql.ErrNoRows):
			item.ID = xid.New().String()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO shop_items (id, shop_date, offer_id, section, name, price, rarity, type, description, image)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ID, item.ShopDate, item.OfferID,
				item.Section, item.Name, item.Price, item.Rarity, item.Type, item.Description, item.Image,
			)
			if err != nil {
				return fmt.Errorf("sqlite: inserting shop item (%s, %s): %w", shopDate, item.OfferID, err)
			}

		default:
			return fmt.Errorf("sqlite: looking up shop item (%s, %s): %w", shopDate, item.OfferID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing shop items tx: %w", err)
	}

	return nil
}

// ListItems returns the rows for one shop date, grouped for display.
func (db *DB) ListItems(ctx context.Context, shopDate string) ([]model.ShopItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, shop_date, offer_id, section, name, price, rarity, type, description, image
		 FROM shop_items WHERE shop_date = ?
		 ORDER BY section, name`,
		shopDate,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing shop items for %s: %w", shopDate, err)
	}
	defer rows.Close()

	items := []model.ShopItem{}
	for rows.Next() {
		var it model.ShopItem
		if err := rows.Scan(
			&it.ID,
			&it.ShopDate,
			&it.OfferID,
			&it.Section,
			&it.Name,
			&it.Price,
			&it.Rarity,
			&it.Type,
			&it.Description,
			&it.Image,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning shop item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating shop item rows: %w", err)
	}

	return items, nil
}
