package posbackend

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
)

var (
	loginPage = template.Must(template.New("login").Parse(
		`<!doctype html><html><body><form method="post" action="/accounts/login/">` +
			`<input name="username"><input name="password" type="password"><button>Log in</button></form></body></html>`))

	profileFragment = template.Must(template.New("profile").Parse(
		`<div class="profile"><h3>{{.Username}}</h3><p>Email: {{.Email}}</p><p>Role: {{.Role}}</p><p>Branch: {{.Branch}}</p></div>`))

	usersPage = template.Must(template.New("users").Parse(
		`<!doctype html><html><body><h1>Branch users</h1><div id="users-container"><table>` +
			`<tr><th>Username</th><th>Email</th><th>Role</th></tr>` +
			`{{range .Users}}<tr><td>{{.Username}}</td><td>{{.Email}}</td><td>{{.Role}}</td></tr>{{else}}<tr><td colspan="3">No users found.</td></tr>{{end}}` +
			`</table>{{if .Next}}<ul class="pagination"><li><a href="#" data-page="{{.Next}}">Next</a></li></ul>{{end}}</div></body></html>`))
)

type profileView struct {
	User
	Branch string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = loginPage.Execute(w, nil)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid form")
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	s.mu.Lock()
	hash, ok := s.passwords[username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid username or password")
		return
	}

	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = username
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionID, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	// The token rotates on login.
	s.setCSRFCookie(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"username": username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	httpx.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	view := s.profile(currentUser(r))
	var b strings.Builder
	if err := profileFragment.Execute(&b, view); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Fragment(w, b.String())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	view := s.profile(currentUser(r))
	httpx.JSON(w, http.StatusOK, map[string]string{
		"username": view.Username,
		"email":    view.Email,
		"role":     view.Role,
		"branch":   view.Branch,
		"added_by": view.AddedBy,
	})
}

func (s *Server) profile(username string) profileView {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[username]
	return profileView{User: u, Branch: s.branches[u.BranchID].Name}
}

func (s *Server) handleBranchUsers(w http.ResponseWriter, r *http.Request) {
	branchID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	page := pageParam(r)

	s.mu.Lock()
	var users []User
	for _, u := range s.users {
		if u.BranchID != branchID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(u.Username), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			continue
		}
		users = append(users, u)
	}
	s.mu.Unlock()
	sortUsers(users)

	visible, next := paginate(users, page)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = usersPage.Execute(w, struct {
		Users []User
		Next  int
	}{visible, next})
}
