package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	seq   int
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.Conflict("username", "that username is taken")
		}
	}

	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID {
			u.Username = user.Username
			user.ID = u.ID
			return nil
		}
	}

	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// mockWishlistRepo is an in-memory WishlistRepository keyed by (user, offer).
type mockWishlistRepo struct {
	seq     int
	entries map[string]*model.WishlistEntry

	addErr error // injected failure for Add
}

func newMockWishlistRepo() *mockWishlistRepo {
	return &mockWishlistRepo{entries: make(map[string]*model.WishlistEntry)}
}

func wishlistKey(userID, offerID string) string {
	return userID + "|" + offerID
}

func (m *mockWishlistRepo) Get(_ context.Context, userID, offerID string) (*model.WishlistEntry, error) {
	e, ok := m.entries[wishlistKey(userID, offerID)]
	if !ok {
		return nil, apperror.NotFound("wishlist entry", offerID)
	}
	cp := *e
	return &cp, nil
}

func (m *mockWishlistRepo) Add(_ context.Context, entry *model.WishlistEntry) error {
	if m.addErr != nil {
		return m.addErr
	}

	key := wishlistKey(entry.UserID, entry.OfferID)
	if _, ok := m.entries[key]; ok {
		return apperror.Conflict("offer_id", "offer already in wishlist")
	}

	m.seq++
	entry.ID = fmt.Sprintf("wl-%d", m.seq)
	entry.AddedAt = time.Now().UTC()

	cp := *entry
	m.entries[key] = &cp
	return nil
}

func (m *mockWishlistRepo) Remove(_ context.Context, userID, offerID string) error {
	key := wishlistKey(userID, offerID)
	if _, ok := m.entries[key]; !ok {
		return apperror.NotFound("wishlist entry", offerID)
	}
	delete(m.entries, key)
	return nil
}

func (m *mockWishlistRepo) ListByUser(_ context.Context, userID string) ([]model.WishlistEntry, error) {
	out := []model.WishlistEntry{}
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// mockShopRepo is an in-memory ShopRepository.
type mockShopRepo struct {
	seq       int
	snapshots []model.ShopSnapshot
	items     map[string][]model.ShopItem

	upsertCalls int
}

func newMockShopRepo() *mockShopRepo {
	return &mockShopRepo{items: make(map[string][]model.ShopItem)}
}

func (m *mockShopRepo) InsertSnapshot(_ context.Context, snap *model.ShopSnapshot) error {
	m.seq++
	snap.ID = fmt.Sprintf("snap-%d", m.seq)
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now().UTC()
	}
	m.snapshots = append(m.snapshots, *snap)
	return nil
}

func (m *mockShopRepo) LatestSnapshot(_ context.Context) (*model.ShopSnapshot, error) {
	if len(m.snapshots) == 0 {
		return nil, apperror.NotFound("shop snapshot", "latest")
	}

	latest := m.snapshots[0]
	for _, s := range m.snapshots[1:] {
		if s.FetchedAt.After(latest.FetchedAt) {
			latest = s
		}
	}
	return &latest, nil
}

func (m *mockShopRepo) UpsertItems(_ context.Context, shopDate string, items []model.ShopItem) error {
	m.upsertCalls++

	stored := m.items[shopDate]
	for _, it := range items {
		if it.OfferID == "" {
			continue
		}
		it.ShopDate = shopDate

		replaced := false
		for i := range stored {
			if stored[i].OfferID == it.OfferID {
				it.ID = stored[i].ID
				stored[i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			m.seq++
			it.ID = fmt.Sprintf("item-%d", m.seq)
			stored = append(stored, it)
		}
	}
	m.items[shopDate] = stored
	return nil
}

func (m *mockShopRepo) ListItems(_ context.Context, shopDate string) ([]model.ShopItem, error) {
	return append([]model.ShopItem{}, m.items[shopDate]...), nil
}

// mockFetcher counts upstream calls and serves a canned payload or error.
type mockFetcher struct {
	payload []byte
	err     error
	calls   int
}

func (f *mockFetcher) FetchShop(context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}
