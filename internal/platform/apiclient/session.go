package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/odyssey-erp/odyssey-pos/internal/localstore"
)

// SessionKey is the local store key holding persisted cookies.
const SessionKey = "session"

// KV is the slice of localstore.Store the session helpers need.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Session is the persisted cookie state for one backend origin.
type Session struct {
	BaseURL string            `json:"base_url"`
	Cookies map[string]string `json:"cookies"`
}

var persistedCookies = []string{CSRFCookie, SessionCookie}

// ExportSession snapshots the session and CSRF cookies.
func (c *Client) ExportSession() Session {
	session := Session{BaseURL: c.baseURL.String(), Cookies: map[string]string{}}
	for _, name := range persistedCookies {
		if value := c.Cookie(name); value != "" {
			session.Cookies[name] = value
		}
	}
	return session
}

// ImportSession restores cookies captured by ExportSession. Sessions captured
// for another origin are ignored.
func (c *Client) ImportSession(session Session) bool {
	if session.BaseURL != c.baseURL.String() || len(session.Cookies) == 0 {
		return false
	}
	cookies := make([]*http.Cookie, 0, len(session.Cookies))
	for name, value := range session.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	c.jar.SetCookies(c.baseURL, cookies)
	return true
}

// RestoreSession loads persisted cookies from kv. A missing entry is not an error.
func (c *Client) RestoreSession(ctx context.Context, kv KV) error {
	raw, err := kv.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("apiclient: load session: %w", err)
	}
	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		c.logger.Warn("discarding unreadable session", "error", err)
		return nil
	}
	c.ImportSession(session)
	return nil
}

// PersistSession writes the current cookies to kv.
func (c *Client) PersistSession(ctx context.Context, kv KV) error {
	raw, err := json.Marshal(c.ExportSession())
	if err != nil {
		return fmt.Errorf("apiclient: encode session: %w", err)
	}
	if err := kv.Set(ctx, SessionKey, raw); err != nil {
		return fmt.Errorf("apiclient: save session: %w", err)
	}
	return nil
}

// ForgetSession drops persisted cookies, used after logout.
func (c *Client) ForgetSession(ctx context.Context, kv KV) error {
	expired := make([]*http.Cookie, 0, len(persistedCookies))
	for _, name := range persistedCookies {
		if name == CSRFCookie {
			continue
		}
		expired = append(expired, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(c.baseURL, expired)
	if err := kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("apiclient: forget session: %w", err)
	}
	return nil
}
