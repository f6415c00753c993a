// Package auth keeps the backend API token on behalf of the browser.
//
// The ERP backend verifies credentials and issues a bearer token; the portal
// only stores that token in an HMAC-signed cookie and forwards it on every
// report request.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/erp-reports/httpx"
)

type ctxKey string

const (
	sessionCookieName = "session"
	sessionCtxKey     = ctxKey("session")
	tokenCtxKey       = ctxKey("token")

	// SessionTTL bounds the cookie lifetime; the backend may expire the token sooner.
	SessionTTL = 12 * time.Hour
)

var (
	secretMu sync.RWMutex
	secret   string
)

// SetSecret configures the signing key. An empty value restores the default lookup.
func SetSecret(s string) {
	secretMu.Lock()
	secret = s
	secretMu.Unlock()
}

// Secret returns the configured key, SESSION_SECRET, or a dev value.
func Secret() string {
	secretMu.RLock()
	s := secret
	secretMu.RUnlock()
	if s != "" {
		return s
	}
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

// Session is what the portal remembers about a signed-in user.
type Session struct {
	Token   string    `json:"t"`
	Name    string    `json:"n,omitempty"`
	Expires time.Time `json:"e"`
}

func sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets the signed session cookie.
func CreateSession(w http.ResponseWriter, s Session) error {
	if s.Expires.IsZero() {
		s.Expires = time.Now().Add(SessionTTL)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    payload + "." + sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.Expires,
	})
	return nil
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the session it carries.
func ParseSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !hmac.Equal([]byte(sig), []byte(sign(payload))) {
		return Session{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Token == "" {
		return Session{}, false
	}
	if time.Now().After(s.Expires) {
		return Session{}, false
	}
	return s, true
}

// WithSession stores the session and its token in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey, s)
	return WithToken(ctx, s.Token)
}

// SessionFromContext extracts the session.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionCtxKey).(Session)
	return s, ok
}

// WithToken stores a bearer token for outgoing API calls.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenCtxKey, token)
}

// TokenFromContext returns the bearer token, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenCtxKey).(string)
	return t, ok && t != ""
}

// Middleware attaches the session to the request context if present.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s, ok := ParseSession(r); ok {
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login if not authenticated (HTML) or returns 401 JSON.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			Unauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Unauthorized clears the session and answers like RequireAuth does. Handlers
// call it when the backend rejects the stored token.
func Unauthorized(w http.ResponseWriter, r *http.Request) {
	ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
