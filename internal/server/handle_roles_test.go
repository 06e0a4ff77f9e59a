package server

import (
	"net/http"
	"testing"

	"github.com/cluehunt/cluehunt/internal/game"
)

func TestListRolesShowsAvailability(t *testing.T) {
	r, _, _ := testRouter(t)

	var roles []RoleStatus
	if code := doJSON(t, r, http.MethodGet, "/api/roles", nil, &roles); code != http.StatusOK {
		t.Fatalf("list roles: status %d", code)
	}
	if len(roles) != len(game.Roles) {
		t.Fatalf("want %d roles, got %d", len(game.Roles), len(roles))
	}
	for _, rs := range roles {
		if rs.Taken {
			t.Fatalf("role %s taken on a fresh server", rs.RoleName)
		}
	}

	claimRole(t, r, "LINGUIST")

	if code := doJSON(t, r, http.MethodGet, "/api/roles", nil, &roles); code != http.StatusOK {
		t.Fatalf("list roles: status %d", code)
	}
	for _, rs := range roles {
		if rs.RoleName == "LINGUIST" && !rs.Taken {
			t.Fatal("claimed role not marked taken")
		}
	}
}

func TestClaimRoleConflicts(t *testing.T) {
	r, _, _ := testRouter(t)

	player, token := claimRole(t, r, "DETECTIVE")
	if player.RoleName != "DETECTIVE" {
		t.Fatalf("claimed role = %q", player.RoleName)
	}
	if token == "" {
		t.Fatal("claim returned empty token")
	}
	if player.CurrentScore != game.BaseScore {
		t.Fatalf("new player score = %d, want %d", player.CurrentScore, game.BaseScore)
	}

	// Second identity, same role.
	code := doJSON(t, r, http.MethodPost, "/api/roles/claim", ClaimRequest{RoleName: "DETECTIVE"}, nil)
	if code != http.StatusConflict {
		t.Fatalf("duplicate role claim: status %d, want 409", code)
	}

	// Same identity, different role.
	code = doJSON(t, r, http.MethodPost, "/api/roles/claim",
		ClaimRequest{RoleName: "CHEMIST"}, nil, withBearer(token))
	if code != http.StatusConflict {
		t.Fatalf("second claim by same identity: status %d, want 409", code)
	}

	// Unknown role name.
	code = doJSON(t, r, http.MethodPost, "/api/roles/claim", ClaimRequest{RoleName: "PIRATE"}, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("unknown role claim: status %d, want 400", code)
	}
}

func TestReleaseFreesRole(t *testing.T) {
	r, _, _ := testRouter(t)

	_, token := claimRole(t, r, "NAVIGATOR")

	code := doJSON(t, r, http.MethodPost, "/api/roles/release", nil, nil, withBearer(token))
	if code != http.StatusNoContent {
		t.Fatalf("release: status %d, want 204", code)
	}

	// The role is claimable again.
	claimRole(t, r, "NAVIGATOR")

	// Releasing without a token is a silent no-op.
	code = doJSON(t, r, http.MethodPost, "/api/roles/release", nil, nil)
	if code != http.StatusNoContent {
		t.Fatalf("anonymous release: status %d, want 204", code)
	}
}

func TestReadyToggleCountsInState(t *testing.T) {
	r, _, _ := testRouter(t)

	_, token := claimRole(t, r, "HISTORIAN")

	code := doJSON(t, r, http.MethodPost, "/api/player/ready", ReadyRequest{Ready: true}, nil, withBearer(token))
	if code != http.StatusNoContent {
		t.Fatalf("set ready: status %d", code)
	}

	var state StateResponse
	if code := doJSON(t, r, http.MethodGet, "/api/state", nil, &state); code != http.StatusOK {
		t.Fatalf("state: status %d", code)
	}
	if state.Status != game.StatusLobby {
		t.Fatalf("status = %q, want LOBBY", state.Status)
	}
	if state.ReadyCount != 1 {
		t.Fatalf("readyCount = %d, want 1", state.ReadyCount)
	}
	if state.MaxPlayers != game.MaxPlayers {
		t.Fatalf("maxPlayers = %d, want %d", state.MaxPlayers, game.MaxPlayers)
	}

	doJSON(t, r, http.MethodPost, "/api/player/ready", ReadyRequest{Ready: false}, nil, withBearer(token))
	doJSON(t, r, http.MethodGet, "/api/state", nil, &state)
	if state.ReadyCount != 0 {
		t.Fatalf("readyCount after unready = %d, want 0", state.ReadyCount)
	}
}
