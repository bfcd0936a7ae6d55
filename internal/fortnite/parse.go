package fortnite

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sakif/item-shop/internal/model"
)

// The upstream schema is not contractually stable, so parsing works over a
// loosely-typed document with absence-safe accessors instead of a strict
// struct decode. A struct would drop the unknown corners of the payload that
// the image scanner needs to see.

// node is a safe-navigation cursor over a decoded JSON document. Every
// accessor tolerates absence: missing keys, wrong types, and out-of-range
// indexes all yield the empty node, so chains never panic.
type node struct {
	v any
}

func (n node) key(k string) node {
	m, ok := n.v.(map[string]any)
	if !ok {
		return node{}
	}
	return node{v: m[k]}
}

func (n node) index(i int) node {
	s, ok := n.v.([]any)
	if !ok || i < 0 || i >= len(s) {
		return node{}
	}
	return node{v: s[i]}
}

func (n node) len() int {
	s, ok := n.v.([]any)
	if !ok {
		return 0
	}
	return len(s)
}

func (n node) str() (string, bool) {
	s, ok := n.v.(string)
	return s, ok && s != ""
}

// intVal handles JSON numbers, which decode as float64.
func (n node) intVal() (int, bool) {
	f, ok := n.v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// strOr returns the string value or a fallback.
func (n node) strOr(fallback string) string {
	if s, ok := n.str(); ok {
		return s
	}
	return fallback
}

// ParseItems extracts a flat list of display records from a raw shop payload.
// Entries without an offer identifier are skipped; every other field degrades
// to a sensible default rather than failing the whole payload.
func ParseItems(raw []byte) ([]model.ShopItem, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("fortnite: decoding shop payload: %w", err)
	}

	root := node{v: doc}
	entries := root.key("data").key("entries")

	items := []model.ShopItem{}
	for i := 0; i < entries.len(); i++ {
		e := entries.index(i)

		offerID := strings.TrimSpace(e.key("offerId").strOr(e.key("id").strOr("")))
		if offerID == "" {
			continue
		}

		price, _ := e.key("finalPrice").intVal()
		section := e.key("section").key("name").strOr("Shop")

		// The first bundled item carries the display fields. "brItems" is the
		// current field name; "items" appears on older payloads.
		first := e.key("brItems").index(0)
		if first.v == nil {
			first = e.key("items").index(0)
		}

		name := first.key("name").strOr(e.key("devName").strOr("Unknown Item"))
		rarity := first.key("rarity").key("value").strOr("")
		itemType := first.key("type").key("value").strOr("")
		description := first.key("description").strOr("")

		items = append(items, model.ShopItem{
			OfferID:     offerID,
			Section:     section,
			Name:        name,
			Price:       price,
			Rarity:      rarity,
			Type:        itemType,
			Description: description,
			Image:       bestImage(e),
		})
	}

	return items, nil
}

// Named image slots, in priority order.
var (
	assetImageSlots = []string{"OfferImage", "TileImage", "Background", "ItemShopTile"}
	itemImageSlots  = []string{"featured", "icon", "smallIcon"}
)

// bestImage picks a display image for an offer entry. Known locations are
// tried first; when the schema has drifted past all of them, the entire entry
// is scanned for anything that looks like an image URL and the best-scoring
// candidate wins. Returns "" when the entry has no usable image at all.
func bestImage(entry node) string {
	// 1. New display asset render images.
	if img, ok := entry.key("newDisplayAsset").key("renderImages").index(0).key("image").str(); ok && isHTTP(img) {
		return img
	}

	// 2. Material instance image slots.
	materials := entry.key("newDisplayAsset").key("materialInstances")
	for i := 0; i < materials.len(); i++ {
		images := materials.index(i).key("images")
		for _, slot := range assetImageSlots {
			if img, ok := images.key(slot).str(); ok && isHTTP(img) {
				return img
			}
		}
	}

	// 3. Legacy display asset slots.
	legacy := entry.key("displayAsset").key("images")
	for _, slot := range assetImageSlots {
		if img, ok := legacy.key(slot).str(); ok && isHTTP(img) {
			return img
		}
	}

	// 4. First bundled item's own images.
	for _, listKey := range []string{"brItems", "items"} {
		images := entry.key(listKey).index(0).key("images")
		for _, slot := range itemImageSlots {
			if img, ok := images.key(slot).str(); ok && isHTTP(img) {
				return img
			}
		}
	}

	// 5. Last resort: scan the whole entry.
	found := scanImageURLs(entry.v)
	if len(found) == 0 {
		return ""
	}
	best := found[0]
	bestScore := scoreImageURL(best)
	for _, u := range found[1:] {
		if s := scoreImageURL(u); s > bestScore {
			best, bestScore = u, s
		}
	}
	return best
}

// scanImageURLs walks the document collecting every string that starts with an
// HTTP scheme and mentions a known image extension. Map keys are visited in
// sorted order so the result is deterministic.
func scanImageURLs(v any) []string {
	var found []string

	var walk func(any)
	walk = func(x any) {
		switch t := x.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(t[k])
			}
		case []any:
			for _, e := range t {
				walk(e)
			}
		case string:
			if isHTTP(t) && hasImageExt(t) {
				found = append(found, t)
			}
		}
	}
	walk(v)

	return found
}

var imageKeywords = []string{"offer", "tile", "shop", "render", "background"}

var imageExts = []string{".png", ".webp", ".jpg", ".jpeg"}

// scoreImageURL ranks a candidate URL by keyword relevance: +10 per matching
// keyword, +5 for a recognized extension, -2 if it looks like a small icon.
func scoreImageURL(url string) int {
	u := strings.ToLower(url)
	score := 0
	for _, kw := range imageKeywords {
		if strings.Contains(u, kw) {
			score += 10
		}
	}
	if hasImageExt(u) {
		score += 5
	}
	if strings.Contains(u, "small") || strings.Contains(u, "icon") {
		score -= 2
	}
	return score
}

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http")
}

func hasImageExt(s string) bool {
	l := strings.ToLower(s)
	for _, ext := range imageExts {
		if strings.Contains(l, ext) {
			return true
		}
	}
	return false
}
