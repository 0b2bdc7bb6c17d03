package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/apiclient"
	"github.com/odyssey-erp/odyssey-pos/internal/view"
)

// ErrInvalidBranch rejects non-positive branch ids before any request.
var ErrInvalidBranch = errors.New("invalid branch ID")

// Sessions persists the cookie session between invocations.
// *apiclient.Client implements it.
type Sessions interface {
	PersistSession(ctx context.Context, kv apiclient.KV) error
	ForgetSession(ctx context.Context, kv apiclient.KV) error
}

// Service wraps the session rules.
type Service struct {
	repo     Repository
	sessions Sessions
	kv       apiclient.KV
	validate *validator.Validate
}

// NewService constructs a Service. With a nil kv the session lives only as
// long as the process.
func NewService(repo Repository, sessions Sessions, kv apiclient.KV) *Service {
	return &Service{repo: repo, sessions: sessions, kv: kv, validate: validator.New()}
}

// Login authenticates and saves the session cookies.
func (s *Service) Login(ctx context.Context, creds Credentials) error {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := s.validate.Struct(creds); err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := s.repo.Login(ctx, creds); err != nil {
		return err
	}
	if s.kv == nil || s.sessions == nil {
		return nil
	}
	return s.sessions.PersistSession(ctx, s.kv)
}

// Logout ends the backend session. The saved cookies are dropped only once
// the backend accepted the logout.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.repo.Logout(ctx); err != nil {
		return err
	}
	if s.kv == nil || s.sessions == nil {
		return nil
	}
	return s.sessions.ForgetSession(ctx, s.kv)
}

// Profile returns the profile card reduced to text.
func (s *Service) Profile(ctx context.Context) (string, error) {
	html, err := s.repo.ProfileHTML(ctx)
	if err != nil {
		return "", err
	}
	return view.PlainText(html), nil
}

func (s *Service) Me(ctx context.Context) (Profile, error) {
	return s.repo.Me(ctx)
}

// BranchUsers lists one page of a branch's users, filtered by query.
func (s *Service) BranchUsers(ctx context.Context, branchID int64, page int, query string) (UsersPage, error) {
	if branchID <= 0 {
		return UsersPage{}, ErrInvalidBranch
	}
	if page < 1 {
		page = 1
	}
	return s.repo.BranchUsers(ctx, branchID, page, strings.TrimSpace(query))
}
