// Package inventory reads the item catalogue the register sells from: the
// paged item fragment, the item search endpoint and the local filter the
// POS applies on top of them.
package inventory

import "errors"

// Messages shown in place of a list that failed to load.
const (
	MsgItemsFailed = "Failed to load items."
	MsgNoItems     = "No items found."
)

// ErrNoFragment is returned when the items fragment has no recognisable cards
// and no empty-state marker either.
var ErrNoFragment = errors.New("inventory: unrecognised items fragment")

// Item is one card of the items fragment. PriceText and StockText keep the
// fragment's own rendering; the local filter matches against them.
type Item struct {
	ID        int64
	Name      string
	Price     float64
	PriceText string
	Stock     int
	StockText string
	Category  string
	Supplier  string
}

// Group is a category heading with the items under it.
type Group struct {
	Category string
	Items    []Item
}

// Page is one page of the items fragment. NextPage is zero on the last page.
type Page struct {
	Groups   []Group
	NextPage int
}

// Len counts the items over all groups.
func (p Page) Len() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Items)
	}
	return n
}

// Query selects a page of the items fragment. Zero ids mean "all".
type Query struct {
	BranchID   int64
	CategoryID int64
	Page       int
	Search     string
}

// SearchResult is one row of the item search endpoint. Nullable columns
// stay nil when the backend sends null.
type SearchResult struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Stock    int     `json:"stock"`
	Category *string `json:"category"`
	Branch   *string `json:"branch"`
	Supplier *string `json:"supplier"`
}

type searchResponse struct {
	Items []SearchResult `json:"items"`
}
