package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/cache"
	"github.com/sakif/item-shop/internal/fortnite"
	"github.com/sakif/item-shop/internal/model"
	"github.com/sakif/item-shop/internal/repository"
	"github.com/sakif/item-shop/internal/rotation"
)

// Fetcher fetches the raw shop payload from the upstream API. Satisfied by
// *fortnite.Client; tests substitute a counting mock.
type Fetcher interface {
	FetchShop(ctx context.Context) ([]byte, error)
}

// ShopService owns the catalog: the snapshot cache, the refresh policy, the
// per-day item rows, and the parsed-catalog memo cache.
//
// Two requests racing past a stale boundary can both fetch upstream and both
// insert a snapshot. That is tolerated rather than deduplicated: the fetch is
// idempotent, happens at most once per rotation per instance in practice, and
// the freshness check only ever reads the newest row.
type ShopService struct {
	repo    repository.ShopRepository
	fetcher Fetcher
	memo    cache.Cache
	memoTTL time.Duration
	logger  *slog.Logger
}

func NewShopService(
	repo repository.ShopRepository,
	fetcher Fetcher,
	memo cache.Cache,
	memoTTL time.Duration,
	logger *slog.Logger,
) *ShopService {
	if memoTTL <= 0 {
		memoTTL = 10 * time.Minute
	}
	return &ShopService{
		repo:    repo,
		fetcher: fetcher,
		memo:    memo,
		memoTTL: memoTTL,
		logger:  logger,
	}
}

// Catalog is one rotation's worth of shop data, ready for rendering.
type Catalog struct {
	ShopDate    string
	Items       []model.ShopItem
	NextRefresh time.Time
	// Warning holds a non-fatal refresh problem (the page still renders the
	// stored rows); shown to the user as a flash message.
	Warning string
}

// CurrentPayload returns the raw upstream payload for the current rotation,
// fetching and persisting a new snapshot when the cached one predates the
// rotation boundary. Upstream failure propagates — no retry, no stale
// fallback.
func (s *ShopService) CurrentPayload(ctx context.Context) ([]byte, error) {
	now := time.Now()

	snap, err := s.repo.LatestSnapshot(ctx)
	if err == nil && rotation.Fresh(snap.FetchedAt, now) {
		return snap.RawJSON, nil
	}
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/shop: loading latest snapshot: %w", err)
	}

	raw, err := s.fetcher.FetchShop(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.repo.InsertSnapshot(ctx, &model.ShopSnapshot{
		FetchedAt: time.Now().UTC(),
		RawJSON:   raw,
	}); err != nil {
		return nil, fmt.Errorf("service/shop: persisting snapshot: %w", err)
	}

	s.logger.Info("shop snapshot refreshed", slog.Int("bytes", len(raw)))

	return raw, nil
}

// Catalog returns the items for the current rotation.
//
// Order of preference: the memo cache, then the persisted shop_items rows,
// then a full fetch+parse+upsert. When stored rows exist but more than a
// quarter of them lack an image (a schema drift symptom), a best-effort
// re-refresh runs; its failure downgrades to a warning since the page can
// still render what is stored.
func (s *ShopService) Catalog(ctx context.Context) (*Catalog, error) {
	now := time.Now()
	cat := &Catalog{
		ShopDate:    rotation.ShopDate(now),
		NextRefresh: rotation.NextBoundary(now),
	}
	memoKey := "catalog:" + cat.ShopDate

	if s.memo != nil {
		if b, err := s.memo.Get(ctx, memoKey); err == nil {
			if err := json.Unmarshal(b, &cat.Items); err == nil {
				return cat, nil
			}
			// Corrupt memo entry; drop it and rebuild from storage.
			_ = s.memo.Delete(ctx, memoKey)
		}
	}

	items, err := s.repo.ListItems(ctx, cat.ShopDate)
	if err != nil {
		return nil, fmt.Errorf("service/shop: listing items for %s: %w", cat.ShopDate, err)
	}

	if len(items) == 0 {
		items, err = s.refreshItems(ctx, cat.ShopDate)
		if err != nil {
			return nil, err
		}
	} else if missing := countMissingImages(items); missing*4 > len(items) {
		s.logger.Info("re-refreshing rotation with missing images",
			slog.String("shopDate", cat.ShopDate),
			slog.Int("missing", missing),
			slog.Int("total", len(items)),
		)
		healed, err := s.refreshItems(ctx, cat.ShopDate)
		if err != nil {
			s.logger.Warn("image refresh failed, keeping stored rows",
				slog.String("shopDate", cat.ShopDate),
				slog.String("error", err.Error()),
			)
			cat.Warning = "could not refresh item images"
		} else {
			items = healed
		}
	}

	cat.Items = items

	if s.memo != nil && cat.Warning == "" {
		if b, err := json.Marshal(items); err == nil {
			if err := s.memo.Set(ctx, memoKey, b, s.memoTTL); err != nil {
				s.logger.Warn("caching catalog failed", slog.String("error", err.Error()))
			}
		}
	}

	return cat, nil
}

// refreshItems runs the full pipeline for one rotation: current payload →
// parse → upsert → read back the canonical rows.
func (s *ShopService) refreshItems(ctx context.Context, shopDate string) ([]model.ShopItem, error) {
	raw, err := s.CurrentPayload(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := fortnite.ParseItems(raw)
	if err != nil {
		return nil, fmt.Errorf("service/shop: parsing payload: %w", err)
	}

	if err := s.repo.UpsertItems(ctx, shopDate, parsed); err != nil {
		return nil, fmt.Errorf("service/shop: saving items for %s: %w", shopDate, err)
	}

	s.logger.Info("shop items saved",
		slog.String("shopDate", shopDate),
		slog.Int("count", len(parsed)),
	)

	return s.repo.ListItems(ctx, shopDate)
}

func countMissingImages(items []model.ShopItem) int {
	n := 0
	for _, it := range items {
		if it.Image == "" {
			n++
		}
	}
	return n
}
