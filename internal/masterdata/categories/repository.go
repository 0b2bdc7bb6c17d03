package categories

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) (Page, error)
}

// HTTPRepository reads the `{html}` categories fragment.
type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

func (r *HTTPRepository) List(ctx context.Context, filters shared.ListFilters) (Page, error) {
	html, err := r.client.Fetch(ctx, "/inventory/categories/", filters.Query())
	if err != nil {
		return Page{}, fmt.Errorf("list categories: %w", err)
	}
	return ParsePage(html)
}

// ParsePage reads category rows (cells with classes name and branch) and
// the page number of the next-page link.
func ParsePage(html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse categories fragment: %w", err)
	}
	var page Page
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		name := row.Find("td.name")
		if name.Length() == 0 {
			return
		}
		page.Categories = append(page.Categories, Category{
			Name:   strings.TrimSpace(name.Text()),
			Branch: strings.TrimSpace(row.Find("td.branch").Text()),
		})
	})
	href, ok := doc.Find("a.ajax-page").Last().Attr("href")
	if !ok {
		return page, nil
	}
	link, err := url.Parse(href)
	if err != nil {
		return Page{}, fmt.Errorf("categories fragment: next link %q: %w", href, err)
	}
	if next := link.Query().Get("page"); next != "" {
		if page.NextPage, err = strconv.Atoi(next); err != nil {
			return Page{}, fmt.Errorf("categories fragment: next page %q: %w", next, err)
		}
	}
	return page, nil
}
