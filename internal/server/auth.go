package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// playerFromRequest authenticates the caller from its bearer token.
// The player identity is always the authenticated one, never an id
// supplied in a request body.
func playerFromRequest(r *http.Request, store Store) (Player, error) {
	token := bearerToken(r)
	if token == "" {
		return Player{}, errNoSession
	}
	p, err := store.PlayerFromToken(r.Context(), token)
	if errors.Is(err, ErrNotFound) {
		return Player{}, errNoSession
	}
	return p, err
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found {
		return ""
	}
	return token
}
