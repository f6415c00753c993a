package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diewo77/erp-reports/auth"
	"github.com/diewo77/erp-reports/internal/api"
	"github.com/diewo77/erp-reports/validation"
)

// Authenticator exchanges credentials for a backend token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
}

type AuthHandler struct {
	api Authenticator
	log *slog.Logger
}

func NewAuthHandler(a Authenticator, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{api: a, log: log}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.FormValue("next"))
	if r.Method == http.MethodGet {
		render(w, r, http.StatusOK, "login.html", map[string]any{"Next": next, "Violations": validation.Violations{}})
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Required("password", password, v)
	if !v.Empty() {
		render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]any{"Next": next, "Email": email, "Violations": v})
		return
	}

	res, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, api.ErrUnauthorized) {
			status = http.StatusUnauthorized
		} else {
			h.log.Error("login", "err", err)
		}
		render(w, r, status, "login.html", map[string]any{"Next": next, "Email": email, "Error": "login_failed", "Violations": v})
		return
	}

	name := res.User.Name
	if name == "" {
		name = res.User.Email
	}
	if err := auth.CreateSession(w, auth.Session{Token: res.Token, Name: name}); err != nil {
		h.log.Error("create session", "err", err)
		renderError(w, r, http.StatusInternalServerError, "server_error")
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard"
	}
	return next
}

var _ Authenticator = (*api.Client)(nil)
