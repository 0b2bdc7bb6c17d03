package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
)

// ErrNoUsersFragment is returned when a branch users page lacks the
// #users-container element.
var ErrNoUsersFragment = errors.New("users container missing from page")

// Repository is the backend surface of the accounts screens.
type Repository interface {
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	ProfileHTML(ctx context.Context) (string, error)
	Me(ctx context.Context) (Profile, error)
	BranchUsers(ctx context.Context, branchID int64, page int, query string) (UsersPage, error)
}

type HTTPRepository struct {
	client *apiclient.Client
}

func NewHTTPRepository(client *apiclient.Client) *HTTPRepository {
	return &HTTPRepository{client: client}
}

// Login posts the login form. The backend rotates the CSRF token on success
// and the cookie jar picks the new one up.
func (r *HTTPRepository) Login(ctx context.Context, creds Credentials) error {
	if err := r.client.EnsureCSRF(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	form := url.Values{"username": {creds.Username}, "password": {creds.Password}}
	if err := r.client.PostForm(ctx, "/accounts/login/", form, nil); err != nil {
		if errors.Is(err, apiclient.ErrStatus) || errors.Is(err, apiclient.ErrApplication) {
			return fmt.Errorf("login: %w: %w", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (r *HTTPRepository) Logout(ctx context.Context) error {
	if _, _, err := r.client.Do(ctx, http.MethodPost, "/accounts/logout/", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (r *HTTPRepository) ProfileHTML(ctx context.Context) (string, error) {
	html, err := r.client.Fetch(ctx, "/accounts/profile/", nil)
	if err != nil {
		return "", fmt.Errorf("profile: %w", err)
	}
	return html, nil
}

func (r *HTTPRepository) Me(ctx context.Context) (Profile, error) {
	var out Profile
	if err := r.client.GetJSON(ctx, "/accounts/me/", nil, &out); err != nil {
		return Profile{}, fmt.Errorf("me: %w", err)
	}
	return out, nil
}

func (r *HTTPRepository) BranchUsers(ctx context.Context, branchID int64, page int, query string) (UsersPage, error) {
	q := url.Values{"page": {strconv.Itoa(page)}}
	if query != "" {
		q.Set("q", query)
	}
	path := fmt.Sprintf("/accounts/users/branch/%d/", branchID)
	html, err := r.client.Fetch(ctx, path, q)
	if err != nil {
		return UsersPage{}, fmt.Errorf("branch %d users: %w", branchID, err)
	}
	return ParseUsersPage(html)
}

// ParseUsersPage extracts the #users-container table of a full page.
func ParseUsersPage(html string) (UsersPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return UsersPage{}, fmt.Errorf("parse users page: %w", err)
	}
	container := doc.Find("#users-container").First()
	if container.Length() == 0 {
		return UsersPage{}, ErrNoUsersFragment
	}
	var page UsersPage
	container.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		switch cells.Length() {
		case 0:
		case 1:
			page.Empty = strings.TrimSpace(cells.Text())
		default:
			cell := func(i int) string { return strings.TrimSpace(cells.Eq(i).Text()) }
			page.Users = append(page.Users, User{Username: cell(0), Email: cell(1), Role: cell(2)})
		}
	})
	if raw, ok := container.Find(".pagination a[data-page]").Last().Attr("data-page"); ok {
		page.NextPage, _ = strconv.Atoi(raw)
	}
	return page, nil
}
