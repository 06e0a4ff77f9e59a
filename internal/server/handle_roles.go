package server

import (
	"errors"
	"net/http"

	"github.com/cluehunt/cluehunt/internal/game"
)

// RoleStatus is a catalog entry plus its claim state.
type RoleStatus struct {
	RoleName    string `json:"roleName"`
	DisplayName string `json:"displayName"`
	Taken       bool   `json:"taken"`
}

// ClaimRequest is the request body for POST /api/roles/claim.
type ClaimRequest struct {
	RoleName string `json:"roleName"`
}

// ClaimResponse carries the freshly issued identity. The token
// authenticates every later call by this player.
type ClaimResponse struct {
	Token  string `json:"token"`
	Player Player `json:"player"`
}

// ReadyRequest is the request body for POST /api/player/ready.
type ReadyRequest struct {
	Ready bool `json:"ready"`
}

func handleListRoles(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := store.ListPlayers(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		taken := make(map[string]bool, len(players))
		for _, p := range players {
			taken[p.RoleName] = true
		}

		roles := make([]RoleStatus, 0, len(game.Roles))
		for _, role := range game.Roles {
			roles = append(roles, RoleStatus{
				RoleName:    role.Name,
				DisplayName: role.DisplayName,
				Taken:       taken[role.Name],
			})
		}
		writeJSON(w, http.StatusOK, roles)
	}
}

func handleClaimRole(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if _, ok := game.RoleByName(req.RoleName); !ok {
			writeError(w, http.StatusBadRequest, "unknown role")
			return
		}

		// One role per identity: a caller already holding a live player
		// row must release it before claiming again.
		if _, err := playerFromRequest(r, store); err == nil {
			writeError(w, http.StatusConflict, "identity already claimed a role")
			return
		}

		player, token, err := store.ClaimRole(r.Context(), req.RoleName)
		if errors.Is(err, ErrRoleTaken) {
			// Not retried automatically: the caller re-presents the role
			// list from fresh state.
			writeError(w, http.StatusConflict, "role already taken")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(CollectionPlayers, "claimed")
		writeJSON(w, http.StatusOK, ClaimResponse{Token: token, Player: player})
	}
}

func handleReleaseRole(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := playerFromRequest(r, store)
		if err != nil {
			// Already released, or never claimed: a no-op either way.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if err := store.ReleaseRole(r.Context(), p.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(CollectionPlayers, "released")
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleReady(store Store, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := playerFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req ReadyRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := store.SetReady(r.Context(), p.ID, req.Ready); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(CollectionPlayers, "ready")
		w.WriteHeader(http.StatusNoContent)
	}
}
