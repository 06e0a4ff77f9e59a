// Package client is the HTTP+SSE client for the game API, shared by the
// player and spectator terminal frontends.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cluehunt/cluehunt/internal/server"
)

// Client talks to one game server. The bearer token is set once after a
// successful role claim; calls against the caller's own identity are
// issued sequentially by the UI loop, so no internal locking is needed.
type Client struct {
	base  string
	http  *http.Client
	token string
}

func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string         { return c.token }

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsConflict reports a precondition failure: role taken, session
// already launched, stale advance, expired question. Never retried
// automatically.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// IsRejected reports an authority rejection: this caller is not allowed
// to trigger the transition. Harmless for auto-attempted launches.
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Roles(ctx context.Context) ([]server.RoleStatus, error) {
	var roles []server.RoleStatus
	err := c.do(ctx, http.MethodGet, "/api/roles", nil, &roles)
	return roles, err
}

// ClaimRole claims a role and stores the issued token on success.
func (c *Client) ClaimRole(ctx context.Context, roleName string) (server.Player, error) {
	var resp server.ClaimResponse
	err := c.do(ctx, http.MethodPost, "/api/roles/claim", server.ClaimRequest{RoleName: roleName}, &resp)
	if err != nil {
		return server.Player{}, err
	}
	c.token = resp.Token
	return resp.Player, nil
}

func (c *Client) ReleaseRole(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/roles/release", nil, nil)
}

func (c *Client) SetReady(ctx context.Context, ready bool) error {
	return c.do(ctx, http.MethodPost, "/api/player/ready", server.ReadyRequest{Ready: ready}, nil)
}

// State fetches the authoritative reconciliation payload.
func (c *Client) State(ctx context.Context) (server.StateResponse, error) {
	var state server.StateResponse
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &state)
	return state, err
}

func (c *Client) CurrentQuestion(ctx context.Context) (server.QuestionResponse, error) {
	var q server.QuestionResponse
	err := c.do(ctx, http.MethodGet, "/api/game/question", nil, &q)
	return q, err
}

// ApplyPenalty reports one completed-but-wrong answer for the current
// session.
func (c *Client) ApplyPenalty(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/api/game/answer", server.AnswerRequest{
		SessionID: sessionID,
		Action:    "APPLY_PENALTY",
	}, nil)
}

// SubmitCorrect locks in a correct answer with the remaining time and
// accumulated penalty count.
func (c *Client) SubmitCorrect(ctx context.Context, sessionID string, timeRemaining, penaltyCount int) error {
	return c.do(ctx, http.MethodPost, "/api/game/answer", server.AnswerRequest{
		SessionID:     sessionID,
		Action:        "SUBMIT_CORRECT",
		TimeRemaining: timeRemaining,
		PenaltyCount:  penaltyCount,
	}, nil)
}

// AttemptLaunch races the other clients to trigger the launch. Only the
// authority's call can succeed; everyone else is rejected server-side,
// which callers treat as a no-op.
func (c *Client) AttemptLaunch(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/game/start", nil, nil)
}

// Events subscribes to the change feed. Each received event is only a
// wake-up signal; callers re-fetch State rather than trust the payload.
// The channel closes when ctx is cancelled or the stream drops; callers
// reconnect with backoff.
func (c *Client) Events(ctx context.Context) (<-chan server.ChangeEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/events", nil)
	if err != nil {
		return nil, err
	}

	// No timeout: the stream stays open indefinitely.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Message: "event stream unavailable"}
	}

	ch := make(chan server.ChangeEvent, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			data, found := strings.CutPrefix(line, "data: ")
			if !found {
				continue
			}
			var ev server.ChangeEvent
			if err := json.Unmarshal([]byte(data), &ev); err != nil {
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
