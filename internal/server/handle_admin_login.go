package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// adminSessionTTL bounds how long a login cookie stays valid. Long
// enough to cover an event day with setup the evening before.
const adminSessionTTL = 7 * 24 * time.Hour

// AdminLoginRequest is the request body for POST /api/admin/login.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminMeResponse identifies the authenticated authority.
type AdminMeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// handleAdminLogin exchanges credentials for the authority cookie. A
// wrong password and an unknown email produce the same answer so the
// endpoint does not confirm which accounts exist.
func handleAdminLogin(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		email := strings.TrimSpace(strings.ToLower(req.Email))
		if email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "email and password are required")
			return
		}

		adminID, passwordHash, err := store.AdminByEmail(r.Context(), email)
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)) != nil {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		sessionID, err := store.CreateAdminSession(r.Context(), adminID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     adminCookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(adminSessionTTL / time.Second),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, AdminMeResponse{ID: adminID, Email: email})
	}
}

func handleAdminMe(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := adminFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		writeJSON(w, http.StatusOK, AdminMeResponse{ID: sess.AdminID, Email: sess.Email})
	}
}
