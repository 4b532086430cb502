package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI simulates the server: a protected endpoint that only accepts the
// current access token, plus the token rotation endpoint.
type fakeAPI struct {
	mu           sync.Mutex
	access       string
	refresh      string
	refreshCalls int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{access: "acceso-1", refresh: "refresh-1"}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pedidos", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		want := "Bearer " + f.access
		f.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(echo.Map{"success": false, "error": "Token inválido o expirado"})
			return
		}
		_ = json.NewEncoder(w).Encode(echo.Map{"success": true, "pedidos": []string{}})
	})
	mux.HandleFunc("/api/autenticacion/actualizar-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.refreshCalls, 1)
		var body struct {
			TokenRefresh string `json:"tokenRefresh"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		defer f.mu.Unlock()
		if body.TokenRefresh != f.refresh {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(echo.Map{"success": false, "error": "Token refresh inválido"})
			return
		}
		f.access = "acceso-2"
		f.refresh = "refresh-2"
		_ = json.NewEncoder(w).Encode(echo.Map{
			"success": true,
			"data":    echo.Map{"tokenAcceso": f.access, "tokenRefresh": f.refresh},
		})
	})
	return mux
}

func (f *fakeAPI) refreshCount() int64 { return atomic.LoadInt64(&f.refreshCalls) }

func newTestClient(srvURL string, pair Pair) (*http.Client, *TokenStore) {
	store := NewTokenStore("")
	store.Set(pair)
	return &http.Client{Transport: &Transport{Tokens: store, BaseURL: srvURL}}, store
}

func TestTransportAttachesBearer(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	httpc, _ := newTestClient(srv.URL, Pair{Acceso: "acceso-1", Refresh: "refresh-1"})
	resp, err := httpc.Get(srv.URL + "/api/pedidos")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, api.refreshCount())
}

func TestTransportRefreshesAndReplays(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	// Stale access token but a live refresh token.
	httpc, store := newTestClient(srv.URL, Pair{Acceso: "caducado", Refresh: "refresh-1"})
	resp, err := httpc.Get(srv.URL + "/api/pedidos")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1), api.refreshCount())

	pair := store.Get()
	assert.Equal(t, "acceso-2", pair.Acceso)
	assert.Equal(t, "refresh-2", pair.Refresh)
}

func TestTransportRefreshFailureClearsTokens(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	httpc, store := newTestClient(srv.URL, Pair{Acceso: "caducado", Refresh: "revocado"})
	resp, err := httpc.Get(srv.URL + "/api/pedidos")

	// The session is over: tokens purged, error surfaced to the caller.
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, resp)
	assert.Equal(t, Pair{}, store.Get())
}

func TestTransportNoRefreshTokenClearsTokens(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	httpc, store := newTestClient(srv.URL, Pair{Acceso: "caducado"})
	resp, err := httpc.Get(srv.URL + "/api/pedidos")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Nil(t, resp)
	assert.Equal(t, Pair{}, store.Get())
	assert.Zero(t, api.refreshCount())
}

// Auth endpoints must not trigger a refresh loop on 401.
func TestTransportSkipsAuthEndpoints(t *testing.T) {
	api := newFakeAPI()
	mux := http.NewServeMux()
	mux.Handle("/", api.handler())
	mux.HandleFunc("/api/autenticacion/iniciar-sesion", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(echo.Map{"success": false, "error": "Email o contraseña inválidos"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	httpc, _ := newTestClient(srv.URL, Pair{Acceso: "caducado", Refresh: "refresh-1"})
	resp, err := httpc.Post(srv.URL+"/api/autenticacion/iniciar-sesion", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, api.refreshCount())
}

func TestTransportConcurrentRequestsSingleRefresh(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	httpc, store := newTestClient(srv.URL, Pair{Acceso: "caducado", Refresh: "refresh-1"})

	const n = 8
	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := httpc.Get(srv.URL + "/api/pedidos")
			if err != nil {
				return
			}
			codes[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
	assert.Equal(t, int64(1), api.refreshCount())
	assert.Equal(t, "acceso-2", store.Get().Acceso)
}
