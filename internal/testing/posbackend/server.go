// Package posbackend is an in-memory stand-in for the POS web backend. It
// speaks the same cookie session, CSRF and JSON contract so the client
// packages can be tested end to end over httptest.
package posbackend

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

const (
	csrfCookie    = "csrftoken"
	csrfHeader    = "X-CSRFToken"
	sessionCookie = "sessionid"
	pageSize      = 10
)

// Options configures the fake backend.
type Options struct {
	// RequireLogin rejects every call but the login page without a session.
	RequireLogin bool
	// RateLimit caps requests per minute per client; zero disables it.
	RateLimit int
	Secret    string
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Now       func() time.Time
}

// Server holds all backend state behind one mutex.
type Server struct {
	opts    Options
	logger  *slog.Logger
	csrf    *csrfManager
	handler http.Handler

	mu         sync.Mutex
	nextID     int64
	branches   map[int64]Branch
	customers  map[int64]Customer
	categories map[int64]Category
	items      map[int64]Item
	users      map[string]User
	passwords  map[string][]byte
	sessions   map[string]string
	sales      []Sale
	trends     map[string]Trend
	failures   map[string]failure
	calls      map[string]int
}

// New builds a server with no data. Seed it with the Add methods.
func New(opts Options) *Server {
	if opts.Secret == "" {
		opts.Secret = "posbackend-test-secret"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		opts:       opts,
		logger:     logger,
		csrf:       newCSRFManager(opts.Secret),
		nextID:     1,
		branches:   make(map[int64]Branch),
		customers:  make(map[int64]Customer),
		categories: make(map[int64]Category),
		items:      make(map[int64]Item),
		users:      make(map[string]User),
		passwords:  make(map[string][]byte),
		sessions:   make(map[string]string),
		trends:     make(map[string]Trend),
		failures:   make(map[string]failure),
		calls:      make(map[string]int),
	}
	s.handler = s.routes()
	return s
}

// Start serves a new backend on a loopback listener for the test's lifetime.
func Start(t testing.TB, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
		IsDevelopment:      true,
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(secureMiddleware.Handler)
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.Middleware)
	}
	if s.opts.RateLimit > 0 {
		r.Use(httprate.Limit(s.opts.RateLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.Error(w, http.StatusTooManyRequests, "Too many requests")
			}),
		))
	}
	r.Use(s.countCalls)
	r.Use(s.injectFailures)
	r.Use(s.csrfProtect)
	r.Use(s.loadSession)

	r.Get("/accounts/login/", s.handleLoginPage)
	r.Post("/accounts/login/", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin(s.opts.RequireLogin))
		s.mountCatalog(r)
		s.mountSales(r)
		s.mountReports(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin(true))
		r.Post("/accounts/logout/", s.handleLogout)
		r.Get("/accounts/profile/", s.handleProfile)
		r.Get("/accounts/me/", s.handleMe)
		r.Get("/accounts/users/branch/{id}/", s.handleBranchUsers)
	})
	return r
}

func (s *Server) mountCatalog(r chi.Router) {
	r.Route("/api/branches", func(r chi.Router) {
		r.Get("/", s.handleListBranches)
		r.Post("/", s.handleCreateBranch)
		r.Get("/{id}/", s.handleGetBranch)
		r.Put("/{id}/", s.handleUpdateBranch)
		r.Delete("/{id}/", s.handleDeleteBranch)
	})
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", s.handleListCustomers)
		r.Post("/", s.handleCreateCustomer)
		r.Get("/{id}/", s.handleGetCustomer)
		r.Put("/{id}/", s.handleUpdateCustomer)
		r.Delete("/{id}/", s.handleDeleteCustomer)
	})
	r.Post("/customers/new/", s.handleQuickCreateCustomer)
	r.Get("/customers/search/", s.handleSearchCustomers)
	r.Get("/inventory/items/partial/{branch}/{category}/", s.handleItemsPartial)
	r.Get("/inventory/items/search/", s.handleSearchItems)
	r.Get("/inventory/categories/", s.handleCategories)
}

func (s *Server) mountSales(r chi.Router) {
	r.Post("/sales/checkout/", s.handleCheckout)
	r.Get("/sales/customers/get_address/{id}/", s.handleCustomerAddress)
	r.Get("/sales/detail/{id}/", s.handleSaleDetail)
	r.Get("/sales/receipt/{id}/", s.handleReceipt)
}

func (s *Server) mountReports(r chi.Router) {
	r.Get("/reports/sales_trends/{period}/", s.handleTrends)
	r.Get("/reports/sales_trends_range/", s.handleTrendsRange)
	r.Get("/reports/top_items/", s.handleTopItems)
	r.Get("/reports/low_stock/", s.handleLowStock)
	r.Get("/reports/export/{format}/", s.handleExport)
}

// ---- middleware ----

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[callKey(r.Method, r.URL.Path)]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callKey(r.Method, r.URL.Path)
		s.mu.Lock()
		f, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(strings.TrimSpace(f.body), "{") {
			w.Header().Set("Content-Type", "application/json")
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	})
}

func (s *Server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(csrfCookie); err == nil {
			token = c.Value
		}
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if !s.csrf.valid(token) {
				s.setCSRFCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}
		if err := s.csrf.verify(token, r.Header.Get(csrfHeader)); err != nil {
			s.logger.Warn("csrf validation failed", slog.String("path", r.URL.Path), slog.Any("error", err))
			httpx.Error(w, http.StatusForbidden, "CSRF verification failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    s.csrf.issue(),
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

type userKey struct{}

func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		s.mu.Lock()
		username, ok := s.sessions[c.Value]
		s.mu.Unlock()
		if ok {
			r = r.WithContext(context.WithValue(r.Context(), userKey{}, username))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireLogin(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if required && currentUser(r) == "" {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) string {
	username, _ := r.Context().Value(userKey{}).(string)
	return username
}

func callKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// ---- seeding and inspection ----

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) AddBranch(name, address string) Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := Branch{ID: s.id(), Name: name, Address: address}
	s.branches[b.ID] = b
	return b
}

func (s *Server) AddCustomer(c Customer) Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	if c.Type == "" {
		c.Type = "regular"
	}
	s.customers[c.ID] = c
	return c
}

func (s *Server) AddCategory(name string, branchID int64) Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Category{ID: s.id(), Name: name, BranchID: branchID}
	s.categories[c.ID] = c
	return c
}

func (s *Server) AddItem(it Item) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.id()
	s.items[it.ID] = it
	return it
}

// AddUser registers a login. The password is stored as a bcrypt hash.
func (s *Server) AddUser(u User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
	s.passwords[u.Username] = hash
	return nil
}

// SetTrend sets the series answered for a period (daily, weekly, ...).
func (s *Server) SetTrend(period string, labels []string, totals []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trends[period] = Trend{Labels: labels, Totals: totals}
}

// Fail makes the next method+path call answer status with body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[callKey(method, path)] = failure{status: status, body: body}
}

// Calls counts requests received for method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

func (s *Server) Sales() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sale(nil), s.sales...)
}

func (s *Server) Item(id int64) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

func (s *Server) Branches() []Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedBranches()
}

func (s *Server) Customers() []Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedCustomers()
}

func (s *Server) sortedBranches() []Branch {
	out := make([]Branch, 0, len(s.branches))
	for _, b := range s.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) sortedCustomers() []Customer {
	out := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) sortedItems() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) sortedCategories() []Category {
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
