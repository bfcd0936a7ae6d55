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

var _ repository.WishlistRepository = (*DB)(nil)

// Get returns the wishlist entry for (userID, offerID), or ErrNotFound.
func (db *DB) Get(ctx context.Context, userID, offerID string) (*model.WishlistEntry, error) {
	var e model.WishlistEntry

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, offer_id, name, price, rarity, image, added_at
		 FROM wishlist_items WHERE user_id = ? AND offer_id = ?`,
		userID, offerID,
	).Scan(
		&e.ID,
		&e.UserID,
		&e.OfferID,
		&e.Name,
		&e.Price,
		&e.Rarity,
		&e.Image,
		&e.AddedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("wishlist entry", offerID)
		}
		return nil, fmt.Errorf("sqlite: getting wishlist entry (%s, %s): %w", userID, offerID, err)
	}

	return &e, nil
}

// Add inserts a wishlist entry. The UNIQUE(user_id, offer_id) constraint
// backs the toggle's invariant; a duplicate insert surfaces as ErrConflict.
func (db *DB) Add(ctx context.Context, entry *model.WishlistEntry) error {
	entry.ID = xid.New().String()
	entry.AddedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO wishlist_items (id, user_id, offer_id, name, price, rarity, image, added_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.OfferID,
		entry.Name,
		entry.Price,
		entry.Rarity,
		entry.Image,
		entry.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("offer_id", "offer already in wishlist")
		}
		return fmt.Errorf("sqlite: inserting wishlist entry (%s, %s): %w", entry.UserID, entry.OfferID, err)
	}

	return nil
}

// Remove deletes the entry for (userID, offerID). Deleting an absent entry
// returns ErrNotFound so the toggle can detect a lost race.
func (db *DB) Remove(ctx context.Context, userID, offerID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = ? AND offer_id = ?`,
		userID, offerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting wishlist entry (%s, %s): %w", userID, offerID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("wishlist entry", offerID)
	}

	return nil
}

// ListByUser returns the user's entries, newest first.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.WishlistEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, offer_id, name, price, rarity, image, added_at
		 FROM wishlist_items WHERE user_id = ?
		 ORDER BY added_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing wishlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := []model.WishlistEntry{}
	for rows.Next() {
		var e model.WishlistEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.OfferID,
			&e.Name,
			&e.Price,
			&e.Rarity,
			&e.Image,
			&e.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating wishlist rows: %w", err)
	}

	return entries, nil
}
