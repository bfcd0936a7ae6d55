// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage provides the only real implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/item-shop/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByUsername returns apperror.ErrNotFound when no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpsertGitHub inserts or updates a user keyed by their GitHub ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type WishlistRepository interface {
	// Get returns apperror.ErrNotFound when the (user, offer) pair is absent.
	Get(ctx context.Context, userID, offerID string) (*model.WishlistEntry, error)
	Add(ctx context.Context, entry *model.WishlistEntry) error
	Remove(ctx context.Context, userID, offerID string) error
	// ListByUser returns entries newest-first.
	ListByUser(ctx context.Context, userID string) ([]model.WishlistEntry, error)
}

type ShopRepository interface {
	// InsertSnapshot appends a raw payload row; snapshots are never updated.
	InsertSnapshot(ctx context.Context, snap *model.ShopSnapshot) error
	// LatestSnapshot returns the most recently fetched snapshot, or
	// apperror.ErrNotFound when the cache is empty.
	LatestSnapshot(ctx context.Context) (*model.ShopSnapshot, error)
	// UpsertItems inserts or updates one rotation's rows keyed by
	// (shop_date, offer_id), in a single transaction.
	UpsertItems(ctx context.Context, shopDate string, items []model.ShopItem) error
	// ListItems returns the rows for one shop date, ordered by section then name.
	ListItems(ctx context.Context, shopDate string) ([]model.ShopItem, error)
}
