package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"prompt-whispers/internal/config"
)

type fakeGenerator struct {
	url string
	err error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type passthroughHost struct{}

func (passthroughHost) Publish(ctx context.Context, rawURL string) string {
	return rawURL
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

func newGameServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(nil, config.Default())
	srv.images = &fakeGenerator{url: "https://images.example/raw.png"}
	srv.host = passthroughHost{}
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

// testClient holds a cookie jar so each client keeps its own session,
// letting a test act as several players at once.
type testClient struct {
	t    *testing.T
	ts   *httptest.Server
	http *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &testClient{t: t, ts: ts, http: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path string, payload any) *http.Response {
	c.t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.ts.URL+path, body)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	c.t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func login(t *testing.T, c *testClient, email, name string) string {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/users/login", map[string]string{
		"email": email,
		"name":  name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	id, ok := body["id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected user id, got %#v", body["id"])
	}
	return id
}

func createLobby(t *testing.T, c *testClient) string {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/lobbies", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["id"].(string)
}

func joinLobby(t *testing.T, c *testClient, lobbyID string) map[string]any {
	t.Helper()
	resp := c.do(http.MethodPut, "/api/lobbies/"+lobbyID+"/join", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func startGame(t *testing.T, c *testClient, lobbyID string) string {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/games", map[string]string{
		"lobby_id": lobbyID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return body["game_id"].(string)
}

func submitPrompt(t *testing.T, c *testClient, gameID, text string) map[string]any {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/games/"+gameID+"/prompt", map[string]string{
		"prompt": text,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func generateImage(t *testing.T, c *testClient, gameID string) map[string]any {
	t.Helper()
	resp := c.do(http.MethodPost, "/api/games/"+gameID+"/generateImage", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func fetchRound(t *testing.T, c *testClient, gameID string) map[string]any {
	t.Helper()
	resp := c.do(http.MethodGet, "/api/games/"+gameID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}
