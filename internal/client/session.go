package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Usuario is the identity block the session endpoints return.
type Usuario struct {
	ID     uint64 `json:"id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
}

// Session wraps the authentication endpoints.  API calls made through
// HTTPClient() carry the access token and survive its expiry via the
// refresh transport.
type Session struct {
	BaseURL string
	Tokens  *TokenStore

	http *http.Client
}

// NewSession builds a session against baseURL, persisting tokens at
// tokenPath (empty keeps them in memory).
func NewSession(baseURL, tokenPath string) *Session {
	store := NewTokenStore(tokenPath)
	return &Session{
		BaseURL: baseURL,
		Tokens:  store,
		http: &http.Client{
			Transport: &Transport{Tokens: store, BaseURL: baseURL},
		},
	}
}

// HTTPClient returns the client to use for all API calls.
func (s *Session) HTTPClient() *http.Client { return s.http }

type sessionData struct {
	Usuario      Usuario `json:"usuario"`
	TokenAcceso  string  `json:"tokenAcceso"`
	TokenRefresh string  `json:"tokenRefresh"`
}

// Login authenticates and stores the returned token pair.
func (s *Session) Login(ctx context.Context, email, password string) (Usuario, error) {
	data, err := s.postSession(ctx, "/api/autenticacion/iniciar-sesion",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return Usuario{}, err
	}
	s.Tokens.Set(Pair{Acceso: data.TokenAcceso, Refresh: data.TokenRefresh})
	return data.Usuario, nil
}

// Register creates an account.  The server answers with an access token
// only, so the stored pair has no refresh token until the first Login.
func (s *Session) Register(ctx context.Context, nombre, email, password string) (Usuario, error) {
	data, err := s.postSession(ctx, "/api/autenticacion/registrarse",
		map[string]string{"nombre": nombre, "email": email, "password": password})
	if err != nil {
		return Usuario{}, err
	}
	s.Tokens.Set(Pair{Acceso: data.TokenAcceso})
	return data.Usuario, nil
}

// Logout revokes the refresh token server-side and clears local state.
// Local state is cleared even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	pair := s.Tokens.Get()
	defer s.Tokens.Clear()

	body, _ := json.Marshal(map[string]string{"tokenRefresh": pair.Refresh})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.BaseURL+"/api/autenticacion/cerrar-sesion", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if pair.Acceso != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Acceso)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// postSession posts a JSON body to an auth endpoint and unwraps the
// success envelope, translating the error envelope into a Go error.
func (s *Session) postSession(ctx context.Context, path string, payload any) (sessionData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return sessionData{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return sessionData{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return sessionData{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return sessionData{}, err
	}
	var env struct {
		Success bool        `json:"success"`
		Data    sessionData `json:"data"`
		Error   string      `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return sessionData{}, fmt.Errorf("respuesta inválida del servidor: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return sessionData{}, errors.New(env.Error)
		}
		return sessionData{}, fmt.Errorf("la solicitud falló con estado %d", resp.StatusCode)
	}
	return env.Data, nil
}
