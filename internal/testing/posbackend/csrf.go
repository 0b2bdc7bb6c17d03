package posbackend

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrCSRFTokenMissing  = errors.New("csrf token missing")
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// csrfManager issues signed double-submit tokens: the cookie and the header
// must carry the same value and the value must carry our signature.
type csrfManager struct {
	secret []byte
}

func newCSRFManager(secret string) *csrfManager {
	return &csrfManager{secret: []byte(secret)}
}

func (m *csrfManager) issue() string {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return nonce + "." + m.sign(nonce)
}

func (m *csrfManager) verify(cookie, header string) error {
	if cookie == "" || header == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(cookie), []byte(header)) {
		return ErrCSRFTokenMismatch
	}
	if !m.valid(cookie) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *csrfManager) valid(token string) bool {
	nonce, sig, ok := strings.Cut(token, ".")
	if !ok || nonce == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(m.sign(nonce)))
}

func (m *csrfManager) sign(nonce string) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
