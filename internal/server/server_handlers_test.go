package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestLoginCreatesUser(t *testing.T) {
	_, ts := newGameServer(t)
	client := newClient(t, ts)

	resp := client.do(http.MethodPost, "/api/users/login", map[string]string{
		"email": "Ada@Example.COM",
		"name":  "Ada",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["email"] != "ada@example.com" {
		t.Fatalf("expected normalized email, got %v", body["email"])
	}
	id := body["id"].(string)

	resp = client.do(http.MethodGet, "/api/users/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	me := decodeBody(t, resp)
	if me["id"] != id {
		t.Fatalf("expected user %s, got %v", id, me["id"])
	}
}

func TestLoginIsIdempotentPerEmail(t *testing.T) {
	_, ts := newGameServer(t)
	first := newClient(t, ts)
	second := newClient(t, ts)

	id := login(t, first, "ada@example.com", "Ada")
	again := login(t, second, "ada@example.com", "Ada")
	if id != again {
		t.Fatalf("expected the same user for the same email, got %s and %s", id, again)
	}
}

func TestLoginRejectsBadEmail(t *testing.T) {
	_, ts := newGameServer(t)
	client := newClient(t, ts)

	resp := client.do(http.MethodPost, "/api/users/login", map[string]string{
		"email": "not-an-email",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestMeRequiresLogin(t *testing.T) {
	_, ts := newGameServer(t)
	client := newClient(t, ts)

	resp := client.do(http.MethodGet, "/api/users/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestLobbyLifecycle(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	hostID := login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")

	lobbyID := createLobby(t, host)

	lobby := joinLobby(t, guest, lobbyID)
	players := lobby["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("expected 2 players after join, got %d", len(players))
	}

	lobby = joinLobby(t, guest, lobbyID)
	players = lobby["players"].([]any)
	if len(players) != 2 {
		t.Fatalf("expected join to be idempotent, got %d players", len(players))
	}

	resp := guest.do(http.MethodPut, "/api/lobbies/"+lobbyID+"/leave", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	lobby = decodeBody(t, resp)
	players = lobby["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("expected 1 player after leave, got %d", len(players))
	}
	hostEntry := players[0].(map[string]any)
	if hostEntry["id"] != hostID {
		t.Fatalf("expected the host to remain, got %v", hostEntry["id"])
	}
}

func TestHostCannotLeaveLobby(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")

	lobbyID := createLobby(t, host)
	resp := host.do(http.MethodPut, "/api/lobbies/"+lobbyID+"/leave", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestDeleteLobbyRequiresHost(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)

	resp := guest.do(http.MethodDelete, "/api/lobbies/"+lobbyID, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = host.do(http.MethodDelete, "/api/lobbies/"+lobbyID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}

	resp = host.do(http.MethodGet, "/api/lobbies/"+lobbyID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestJoinLobbyNotFound(t *testing.T) {
	_, ts := newGameServer(t)
	client := newClient(t, ts)
	login(t, client, "ada@example.com", "Ada")

	resp := client.do(http.MethodPut, "/api/lobbies/missing/join", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestCreateGameRequiresHost(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)

	resp := guest.do(http.MethodPost, "/api/games", map[string]string{
		"lobby_id": lobbyID,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}
}

func TestCreateGameFreezesLobby(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	late := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")
	login(t, late, "cal@example.com", "Cal")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)

	resp := host.do(http.MethodPost, "/api/games", map[string]string{
		"lobby_id": lobbyID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["game_state"] != "NEW" {
		t.Fatalf("expected state NEW, got %v", body["game_state"])
	}

	resp = host.do(http.MethodPost, "/api/games", map[string]string{
		"lobby_id": lobbyID,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d for a second start, got %d", http.StatusConflict, resp.StatusCode)
	}

	resp = late.do(http.MethodPut, "/api/lobbies/"+lobbyID+"/join", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d for a late join, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestGameAccessControl(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	outsider := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")
	login(t, outsider, "cal@example.com", "Cal")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)
	gameID := startGame(t, host, lobbyID)

	resp := outsider.do(http.MethodGet, "/api/games/"+gameID, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = outsider.do(http.MethodPost, "/api/games/"+gameID+"/prompt", map[string]string{
		"prompt": "a cat in a hat",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	// The full transcript is a spectator view; any logged-in user may read it.
	resp = outsider.do(http.MethodGet, "/api/games/"+gameID+"/all", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestGameEndpointsRequireLogin(t *testing.T) {
	_, ts := newGameServer(t)
	anon := newClient(t, ts)

	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/games"},
		{http.MethodGet, "/api/games"},
		{http.MethodGet, "/api/games/some-id"},
		{http.MethodPost, "/api/games/some-id/prompt"},
		{http.MethodPost, "/api/games/some-id/generateImage"},
	} {
		resp := anon.do(probe.method, probe.path, map[string]string{})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status %d, got %d", probe.method, probe.path, http.StatusUnauthorized, resp.StatusCode)
		}
	}
}

func TestGameNotFound(t *testing.T) {
	_, ts := newGameServer(t)
	client := newClient(t, ts)
	login(t, client, "ada@example.com", "Ada")

	resp := client.do(http.MethodGet, "/api/games/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	resp = client.do(http.MethodPost, "/api/games/missing/prompt", map[string]string{
		"prompt": "a cat in a hat",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestPromptValidation(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	lobbyID := createLobby(t, host)
	gameID := startGame(t, host, lobbyID)

	resp := host.do(http.MethodPost, "/api/games/"+gameID+"/prompt", map[string]string{
		"prompt": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for a blank prompt, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = host.do(http.MethodPost, "/api/games/"+gameID+"/prompt", map[string]string{
		"prompt": strings.Repeat("x", maxPromptLength+1),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for an oversize prompt, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestGenerateImageRequiresPendingPrompt(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	lobbyID := createLobby(t, host)
	gameID := startGame(t, host, lobbyID)

	resp := host.do(http.MethodPost, "/api/games/"+gameID+"/generateImage", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, resp.StatusCode)
	}
}

func TestGenerateImageUpstreamFailure(t *testing.T) {
	srv, ts := newGameServer(t)
	srv.images = &fakeGenerator{err: context.DeadlineExceeded}

	host := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	lobbyID := createLobby(t, host)
	gameID := startGame(t, host, lobbyID)
	submitPrompt(t, host, gameID, "a lighthouse in a storm")

	resp := host.do(http.MethodPost, "/api/games/"+gameID+"/generateImage", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestDeleteGameOwnership(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	outsider := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")
	login(t, outsider, "cal@example.com", "Cal")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)
	gameID := startGame(t, host, lobbyID)

	resp := outsider.do(http.MethodDelete, "/api/games/"+gameID, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, resp.StatusCode)
	}

	resp = host.do(http.MethodDelete, "/api/games/"+gameID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}

	resp = host.do(http.MethodGet, "/api/games/"+gameID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestListGames(t *testing.T) {
	_, ts := newGameServer(t)
	host := newClient(t, ts)
	guest := newClient(t, ts)
	login(t, host, "ada@example.com", "Ada")
	login(t, guest, "ben@example.com", "Ben")

	lobbyID := createLobby(t, host)
	joinLobby(t, guest, lobbyID)
	gameID := startGame(t, host, lobbyID)

	for _, client := range []*testClient{host, guest} {
		resp := client.do(http.MethodGet, "/api/games", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
		}
		var games []map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(games) != 1 || games[0]["id"] != gameID {
			t.Fatalf("expected the started game in the list, got %#v", games)
		}
	}
}
