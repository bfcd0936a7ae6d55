package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/item-shop/internal/apperror"
	"github.com/sakif/item-shop/internal/auth"
	"github.com/sakif/item-shop/internal/service"
)

// WishlistHandler serves the wishlist JSON API used by the shop page's toggle
// buttons.
type WishlistHandler struct {
	wishlist *service.WishlistService
	logger   *slog.Logger
}

func NewWishlistHandler(wishlist *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlist: wishlist,
		logger:   logger,
	}
}

// toggleRequest is the JSON body for the toggle endpoint. All fields except
// offer_id are optional display data copied onto a new entry.
type toggleRequest struct {
	OfferID string `json:"offer_id"`
	Name    string `json:"name"`
	Price   int    `json:"price"`
	Rarity  string `json:"rarity"`
	Image   string `json:"image"`
}

type toggleResponse struct {
	InWishlist bool `json:"in_wishlist"`
}

// HandleToggle flips the presence of an offer on the caller's wishlist.
//
// POST /api/wishlist/toggle (session required)
// Body:     {"offer_id": "...", "name": "...", "price": 1200, "rarity": "...", "image": "..."}
// Response: {"in_wishlist": true|false}, or {"error": "..."} with 400 when
// offer_id is missing.
func (h *WishlistHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	inWishlist, err := h.wishlist.Toggle(r.Context(), userID, service.ToggleInput{
		OfferID: req.OfferID,
		Name:    req.Name,
		Price:   req.Price,
		Rarity:  req.Rarity,
		Image:   req.Image,
	})
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			h.logger.Error("wishlist toggle failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{InWishlist: inWishlist})
}
