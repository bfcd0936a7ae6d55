package model

import "time"

// ShopItem is one display-ready offer in a day's catalog rotation.
//
// ShopDate is the civil date (YYYY-MM-DD) of the rotation boundary the item
// belongs to, not the date it was fetched. (ShopDate, OfferID) is unique.
//
// Price is the final price in V-Bucks; zero means the upstream did not report
// one. The templates render 0 as a dash.
type ShopItem struct {
	ID          string `json:"id"`
	ShopDate    string `json:"shopDate"`
	OfferID     string `json:"offerId"`
	Section     string `json:"section"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	Rarity      string `json:"rarity"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ShopSnapshot is one raw upstream payload together with the instant it was
// fetched. Rows are append-only: a refresh inserts a new snapshot, it never
// updates an old one. The "current" snapshot is the one with the latest
// FetchedAt.
type ShopSnapshot struct {
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetchedAt"`
	RawJSON   []byte    `json:"-"`
}
