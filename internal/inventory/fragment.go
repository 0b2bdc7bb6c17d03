package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParsePage reads the items fragment of page current: category titles
// followed by their item containers, and the paging buttons. NextPage is the
// nearest button target after current, so a Previous button never counts.
func ParsePage(html string, current int) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse items fragment: %w", err)
	}

	var page Page
	var parseErr error
	doc.Find(".category-items").EachWithBreak(func(_ int, container *goquery.Selection) bool {
		group := Group{Category: strings.TrimSpace(container.PrevFiltered(".category-title").Text())}
		container.Find(".item-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
			item, err := parseCard(card)
			if err != nil {
				parseErr = err
				return false
			}
			if group.Category == "" {
				group.Category = item.Category
			}
			group.Items = append(group.Items, item)
			return true
		})
		if parseErr != nil {
			return false
		}
		page.Groups = append(page.Groups, group)
		return true
	})
	if parseErr != nil {
		return Page{}, parseErr
	}

	doc.Find(".paginate-btn[data-page]").EachWithBreak(func(_ int, btn *goquery.Selection) bool {
		raw := btn.AttrOr("data-page", "")
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			parseErr = fmt.Errorf("items fragment: page button %q: %w", raw, err)
			return false
		}
		if n > current && (page.NextPage == 0 || n < page.NextPage) {
			page.NextPage = n
		}
		return true
	})
	if parseErr != nil {
		return Page{}, parseErr
	}
	if len(page.Groups) == 0 && !strings.Contains(doc.Text(), MsgNoItems) && strings.TrimSpace(doc.Text()) != "" {
		return Page{}, ErrNoFragment
	}
	return page, nil
}

func parseCard(card *goquery.Selection) (Item, error) {
	data := func(name string) string {
		return strings.TrimSpace(card.AttrOr("data-"+name, ""))
	}
	id, err := strconv.ParseInt(data("id"), 10, 64)
	if err != nil {
		return Item{}, fmt.Errorf("items fragment: item id %q: %w", data("id"), err)
	}
	item := Item{
		ID:        id,
		Name:      data("name"),
		PriceText: data("price"),
		StockText: data("stock"),
		Category:  data("category"),
		Supplier:  data("supplier"),
	}
	if item.PriceText != "" {
		if item.Price, err = strconv.ParseFloat(item.PriceText, 64); err != nil {
			return Item{}, fmt.Errorf("items fragment: price of %d: %w", id, err)
		}
	}
	if item.StockText != "" {
		if item.Stock, err = strconv.Atoi(item.StockText); err != nil {
			return Item{}, fmt.Errorf("items fragment: stock of %d: %w", id, err)
		}
	}
	return item, nil
}
