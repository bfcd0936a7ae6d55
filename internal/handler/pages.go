package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/item-shop/internal/auth"
	"github.com/sakif/item-shop/internal/model"
	"github.com/sakif/item-shop/internal/rotation"
	"github.com/sakif/item-shop/internal/service"
)

// PageHandler renders the server-side pages: the shop catalog, the wishlist,
// and the auth forms.
type PageHandler struct {
	renderer *Renderer
	shop     *service.ShopService
	wishlist *service.WishlistService
	auth     *service.AuthService
	logger   *slog.Logger
}

func NewPageHandler(
	renderer *Renderer,
	shop *service.ShopService,
	wishlist *service.WishlistService,
	authSvc *service.AuthService,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		renderer: renderer,
		shop:     shop,
		wishlist: wishlist,
		auth:     authSvc,
		logger:   logger,
	}
}

// baseData assembles the fields every page needs: title, the signed-in
// username (empty when anonymous), and any pending flash message.
func (h *PageHandler) baseData(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	data := map[string]interface{}{
		"Title":    "Item Shop",
		"Username": "",
	}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		if user, err := h.auth.GetUserByID(r.Context(), userID); err == nil {
			data["Username"] = user.Username
		}
	}

	if flash, ok := popFlash(w, r); ok {
		data["Flash"] = flash
	}

	return data
}

// HandleShop serves the catalog page.
//
// GET /
//
// An upstream failure is not fatal to the page: it renders with an empty
// catalog and an error flash, and the next request tries again.
func (h *PageHandler) HandleShop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := h.baseData(w, r)

	cat, err := h.shop.Catalog(ctx)
	if err != nil {
		h.logger.Error("loading catalog failed", slog.String("error", err.Error()))

		now := time.Now()
		data["Flash"] = Flash{Kind: "error", Message: "Could not load item shop: " + userMessage(err, "please try again later")}
		data["Items"] = []model.ShopItem{}
		data["ShopDate"] = rotation.ShopDate(now)
		data["NextRefresh"] = rotation.NextBoundary(now)
		data["WishlistOfferIDs"] = map[string]bool{}
		h.renderer.Render(w, "shop", data)
		return
	}

	if cat.Warning != "" {
		data["Flash"] = Flash{Kind: "error", Message: cat.Warning}
	}

	wishIDs := map[string]bool{}
	if userID, ok := auth.UserIDFromContext(ctx); ok {
		ids, err := h.wishlist.OfferIDs(ctx, userID)
		if err != nil {
			h.logger.Warn("loading wishlist ids failed", slog.String("error", err.Error()))
		} else {
			wishIDs = ids
		}
	}

	data["Items"] = cat.Items
	data["ShopDate"] = cat.ShopDate
	data["NextRefresh"] = cat.NextRefresh
	data["WishlistOfferIDs"] = wishIDs
	h.renderer.Render(w, "shop", data)
}

// HandleWishlist serves the signed-in user's saved offers.
//
// GET /wishlist (session required)
func (h *PageHandler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	entries, err := h.wishlist.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("loading wishlist failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		entries = []model.WishlistEntry{}
	}

	data := h.baseData(w, r)
	data["Entries"] = entries
	h.renderer.Render(w, "wishlist", data)
}

// HandleRegisterForm and HandleLoginForm serve the auth forms. Signed-in
// users are sent back to the shop.
func (h *PageHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "register", h.baseData(w, r))
}

func (h *PageHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, "login", h.baseData(w, r))
}
