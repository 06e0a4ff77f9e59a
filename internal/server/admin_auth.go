package server

import (
	"errors"
	"net/http"
)

var errNoAdminSession = errors.New("no valid admin session")

const adminCookieName = "admin_session"

// adminFromRequest reads the admin_session cookie and resolves the
// authority identity. Privilege is always checked here, server-side;
// it is never inferred from a client-claimed role.
func adminFromRequest(r *http.Request, store Store) (adminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return adminSession{}, errNoAdminSession
	}
	return store.AdminFromSession(r.Context(), cookie.Value)
}
