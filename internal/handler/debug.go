package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/item-shop/internal/service"
)

// Migrator re-runs the schema migrations. Satisfied by the sqlite DB.
type Migrator interface {
	Migrate() error
}

// DebugHandler serves the storage-init route and the raw payload dump.
type DebugHandler struct {
	shop     *service.ShopService
	migrator Migrator
	logger   *slog.Logger
}

func NewDebugHandler(shop *service.ShopService, migrator Migrator, logger *slog.Logger) *DebugHandler {
	return &DebugHandler{
		shop:     shop,
		migrator: migrator,
		logger:   logger,
	}
}

// HandleInitDB creates the storage schema. Migrations are idempotent, so
// hitting this on an initialized database is harmless.
//
// GET /initdb
func (h *DebugHandler) HandleInitDB(w http.ResponseWriter, r *http.Request) {
	if err := h.migrator.Migrate(); err != nil {
		h.logger.Error("initdb failed", slog.String("error", err.Error()))
		http.Error(w, "DB initialization failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("DB initialized."))
}

// HandleShopJSON dumps the current raw upstream payload, fetching it first if
// the cache is stale.
//
// GET /debug/shopjson
func (h *DebugHandler) HandleShopJSON(w http.ResponseWriter, r *http.Request) {
	raw, err := h.shop.CurrentPayload(r.Context())
	if err != nil {
		h.logger.Error("shopjson failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		// Not valid JSON? Serve it as stored.
		indented.Reset()
		indented.Write(raw)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(indented.Bytes())
}
