package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/model"
	"github.com/sakif/item-shop/internal/repository"
)

// WishlistService handles the per-user offer wishlist.
type WishlistService struct {
	repo   repository.WishlistRepository
	logger *slog.Logger
}

func NewWishlistService(repo repository.WishlistRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		repo:   repo,
		logger: logger,
	}
}

// ToggleInput carries the denormalized display fields saved alongside a new
// wishlist entry. Only OfferID is required.
type ToggleInput struct {
	OfferID string
	Name    string
	Price   int
	Rarity  string
	Image   string
}

// Toggle flips the presence of (userID, offer) and reports the resulting
// state: true when the entry now exists, false when it was removed. Toggling
// the same pair twice always returns to the original state.
//
// Races with a concurrent toggle of the same pair resolve to the state the
// other request produced instead of surfacing a constraint error.
func (s *WishlistService) Toggle(ctx context.Context, userID string, in ToggleInput) (bool, error) {
	offerID := strings.TrimSpace(in.OfferID)
	if offerID == "" {
		return false, apperror.ValidationFailed("offer_id", "missing offer_id")
	}

	_, err := s.repo.Get(ctx, userID, offerID)
	switch {
	case err == nil:
		if err := s.repo.Remove(ctx, userID, offerID); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return false, nil
			}
			return false, fmt.Errorf("service/wishlist: removing (%s, %s): %w", userID, offerID, err)
		}
		s.logger.Debug("wishlist entry removed",
			slog.String("userID", userID),
			slog.String("offerID", offerID),
		)
		return false, nil

	case errors.Is(err, apperror.ErrNotFound):
		name := in.Name
		if name == "" {
			name = "Unknown Item"
		}
		entry := &model.WishlistEntry{
			UserID:  userID,
			OfferID: offerID,
			Name:    name,
			Price:   in.Price,
			Rarity:  in.Rarity,
			Image:   in.Image,
		}
		if err := s.repo.Add(ctx, entry); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				return true, nil
			}
			return false, fmt.Errorf("service/wishlist: adding (%s, %s): %w", userID, offerID, err)
		}
		s.logger.Debug("wishlist entry added",
			slog.String("userID", userID),
			slog.String("offerID", offerID),
		)
		return true, nil

	default:
		return false, fmt.Errorf("service/wishlist: looking up (%s, %s): %w", userID, offerID, err)
	}
}

// List returns the user's wishlist entries, newest first.
func (s *WishlistService) List(ctx context.Context, userID string) ([]model.WishlistEntry, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/wishlist: listing for user %s: %w", userID, err)
	}
	return entries, nil
}

// OfferIDs returns the set of offer IDs on the user's wishlist, for marking
// catalog items on the shop page.
func (s *WishlistService) OfferIDs(ctx context.Context, userID string) (map[string]bool, error) {
	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/wishlist: listing for user %s: %w", userID, err)
	}

	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.OfferID] = true
	}
	return ids, nil
}
