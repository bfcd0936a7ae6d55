package model

import "time"

// WishlistEntry is a saved reference from a user to an offer. Name, Price,
// Rarity and Image are denormalized copies of the catalog fields at save time
// so the wishlist page renders without touching the shop cache.
//
// (UserID, OfferID) is unique; toggling the same pair removes the row.
type WishlistEntry struct {
	ID      string    `json:"id"`
	UserID  string    `json:"userId"`
	OfferID string    `json:"offerId"`
	Name    string    `json:"name"`
	Price   int       `json:"price"`
	Rarity  string    `json:"rarity"`
	Image   string    `json:"image"`
	AddedAt time.Time `json:"addedAt"`
}
