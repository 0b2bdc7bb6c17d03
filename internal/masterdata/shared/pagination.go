// Package shared holds what the master data lists have in common: the page
// and search filters of their fragments and the errors their forms raise.
package shared

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPage is the first page of paginated fragments.
const DefaultPage = 1

var (
	// ErrNotFound is a 404 from a master data endpoint.
	ErrNotFound = errors.New("masterdata: record not found")
	// ErrInvalidID rejects non-positive ids before any request is made.
	ErrInvalidID = errors.New("masterdata: id must be positive")
	// ErrRequiredField wraps the name of a blank required form field.
	ErrRequiredField = errors.New("required")
)

// ListFilters represents the page and search box of a paginated list.
type ListFilters struct {
	Page   int
	Search string
}

// Query encodes the filters the way the list pages send them: page is always
// present, q always present even when empty.
func (f ListFilters) Query() url.Values {
	page := f.Page
	if page < DefaultPage {
		page = DefaultPage
	}
	return url.Values{
		"page": {strconv.Itoa(page)},
		"q":    {strings.TrimSpace(f.Search)},
	}
}
