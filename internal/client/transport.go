package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// ErrSessionExpired is returned by RoundTrip when a request failed with an
// auth error and the stored refresh token could not be exchanged for a new
// pair.  The token store is cleared before this error surfaces; callers
// check for it with errors.Is (http.Client wraps it in a *url.Error) and
// send the user back to login.
var ErrSessionExpired = errors.New("sesión expirada, inicie sesión nuevamente")

const refreshPath = "/api/autenticacion/actualizar-token"

// Transport is an http.RoundTripper that attaches the stored access token
// as a bearer header and, on a 401/403 response, refreshes the session once
// and replays the request.  When the refresh itself fails the request ends
// with ErrSessionExpired.  Concurrent requests that fail at the same time
// trigger a single refresh; the latecomers reuse the fresh pair.
type Transport struct {
	Base    http.RoundTripper // underlying transport, http.DefaultTransport when nil
	Tokens  *TokenStore
	BaseURL string // server root, e.g. "http://localhost:8080"

	refreshMu sync.Mutex
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	pair := t.Tokens.Get()
	resp, err := t.send(req, pair.Acceso)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}
	// Auth endpoints answer 401 on bad credentials; refreshing would loop.
	if strings.Contains(req.URL.Path, "/api/autenticacion/") {
		return resp, nil
	}
	// A request without GetBody cannot be replayed safely.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	fresh, rerr := t.refresh(pair)
	if rerr != nil {
		resp.Body.Close()
		return nil, rerr
	}
	resp.Body.Close()
	return t.send(req, fresh.Acceso)
}

// send clones the request, attaches the bearer token and performs it.
func (t *Transport) send(req *http.Request, access string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	if access != "" {
		clone.Header.Set("Authorization", "Bearer "+access)
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// refresh exchanges the refresh token for a new pair.  stale is the pair
// the failed request was sent with; if another goroutine already refreshed,
// the stored pair differs from stale and is reused without a second call.
func (t *Transport) refresh(stale Pair) (Pair, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	current := t.Tokens.Get()
	if current.Acceso != "" && current.Acceso != stale.Acceso {
		return current, nil
	}
	if current.Refresh == "" {
		t.Tokens.Clear()
		return Pair{}, ErrSessionExpired
	}

	payload, _ := json.Marshal(map[string]string{"tokenRefresh": current.Refresh})
	resp, err := http.Post(t.BaseURL+refreshPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return Pair{}, fmt.Errorf("actualizar token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Tokens.Clear()
		return Pair{}, ErrSessionExpired
	}

	var env struct {
		Success bool `json:"success"`
		Data    Pair `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Pair{}, fmt.Errorf("actualizar token: %w", err)
	}
	if err := json.Unmarshal(body, &env); err != nil || !env.Success || env.Data.Acceso == "" {
		t.Tokens.Clear()
		return Pair{}, ErrSessionExpired
	}
	t.Tokens.Set(env.Data)
	return env.Data, nil
}
