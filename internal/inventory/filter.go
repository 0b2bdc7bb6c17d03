package inventory

import "strings"

// FilterItems keeps the items whose name, category, supplier, price or stock
// contains q, ignoring case. Groups left without items are dropped. An empty
// q keeps everything.
func FilterItems(groups []Group, q string) []Group {
	q = strings.ToLower(q)
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		var kept []Item
		for _, it := range g.Items {
			if matches(it, q) {
				kept = append(kept, it)
			}
		}
		if len(kept) > 0 {
			out = append(out, Group{Category: g.Category, Items: kept})
		}
	}
	return out
}

func matches(it Item, q string) bool {
	for _, field := range []string{it.Name, it.Category, it.Supplier, it.PriceText, it.StockText} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
