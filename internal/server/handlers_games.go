package server

import (
	"errors"
	"log"
	"net/http"

	"prompt-whispers/internal/game"
)

type createGameRequest struct {
	LobbyID string `json:"lobby_id"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

var errStalePrompt = errors.New("prompt changed while generating the image")

// handleCreateGame freezes the lobby roster into a new game: one empty
// round per player, state NEW.
func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	var req createGameRequest
	if err := readJSON(r.Body, &req); err != nil || req.LobbyID == "" {
		writeError(w, http.StatusBadRequest, "lobby_id is required")
		return
	}
	lobby, found := s.store.GetLobby(req.LobbyID)
	if !found {
		writeError(w, http.StatusNotFound, "lobby not found")
		return
	}
	if lobby.Host.ID != user.UID {
		writeError(w, http.StatusForbidden, "only the host may start the game")
		return
	}
	if lobby.Started {
		writeError(w, http.StatusConflict, "game already started")
		return
	}

	g, err := game.New(lobby.Players)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.store.PutGame(g)
	lobby, err = s.store.UpdateLobby(lobby.ID, func(lobby *Lobby) error {
		lobby.Started = true
		lobby.GameID = g.ID
		return nil
	})
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	s.linkGameToRoster(g)
	if err := s.persistGame(g, user.UID); err != nil {
		log.Printf("failed to persist game game_id=%s: %v", g.ID, err)
	}
	if err := s.persistLobby(lobby); err != nil {
		log.Printf("failed to persist lobby lobby_id=%s: %v", lobby.ID, err)
	}
	s.recordEvent(g.ID, "game_created", EventPayload{
		LobbyID:  lobby.ID,
		PlayerID: user.UID,
		State:    g.State,
	})
	log.Printf("game created game_id=%s lobby_id=%s players=%d", g.ID, lobby.ID, len(g.Players))
	writeJSON(w, http.StatusCreated, roundPayload(g, user.asPlayer()))
}

// handleGetGame projects the caller's current round: exactly the round
// their next turn will land in.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	g, found := s.store.GetGame(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	round, err := g.RoundForPlayer(user.asPlayer())
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roundResponse{
		GameID:    g.ID,
		Turns:     round,
		GameState: g.State,
	})
}

func (s *Server) handleGetGameAll(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.loggedInUser(w, r); !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	g, found := s.store.GetGame(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	games := make([]game.Game, 0, len(user.GameIDs))
	for _, id := range user.GameIDs {
		if g, found := s.store.GetGame(id); found {
			games = append(games, g)
		}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	gameID := r.PathValue("id")
	g, found := s.store.GetGame(gameID)
	if !found {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	owned := false
	for _, id := range user.GameIDs {
		if id == gameID {
			owned = true
			break
		}
	}
	if !owned {
		writeError(w, http.StatusForbidden, "you are not allowed to delete this game")
		return
	}
	s.store.DeleteGame(gameID)
	s.unlinkGameFromRoster(g)
	if err := s.deleteGameRecord(gameID); err != nil {
		log.Printf("failed to delete game record game_id=%s: %v", gameID, err)
	}
	s.recordEvent(gameID, "game_deleted", EventPayload{PlayerID: user.UID})
	log.Printf("game deleted game_id=%s user_id=%s", gameID, user.UID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitPrompt appends a PROMPT turn. The engine derives the
// target round from the author and the completed-cycle count; there is
// no turn-order bookkeeping here.
func (s *Server) handleSubmitPrompt(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	var req promptRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	prompt, err := validatePrompt(req.Prompt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	player := user.asPlayer()
	turn := game.NewTurn(player, game.KindPrompt, prompt)
	updated, err := s.store.UpdateGame(r.PathValue("id"), func(g game.Game) (game.Game, error) {
		return g.WithTurn(turn)
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.persistGameState(updated); err != nil {
		log.Printf("failed to persist game game_id=%s: %v", updated.ID, err)
	}
	s.recordEvent(updated.ID, "prompt_submitted", EventPayload{
		PlayerID: player.ID,
		TurnID:   turn.ID,
		State:    updated.State,
	})
	writeJSON(w, http.StatusCreated, roundPayload(updated, player))
}

// handleGenerateImage resolves the caller's pending prompt, calls the
// image generator, publishes the result and appends the IMAGE turn. The
// slow external calls happen outside the store lock, so the append
// re-checks that the prompt is still the one that was illustrated.
func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	player := user.asPlayer()
	g, found := s.store.GetGame(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	prompt, err := g.MostRecentPromptFor(player)
	if err != nil {
		writeGameError(w, err)
		return
	}

	rawURL, err := s.images.Generate(r.Context(), prompt.Content)
	if err != nil {
		log.Printf("image generation failed game_id=%s: %v", g.ID, err)
		writeError(w, http.StatusBadGateway, "image generation failed")
		return
	}
	imageURL := s.host.Publish(r.Context(), rawURL)

	turn := game.NewTurn(player, game.KindImage, imageURL)
	updated, err := s.store.UpdateGame(g.ID, func(g game.Game) (game.Game, error) {
		current, err := g.MostRecentPromptFor(player)
		if err != nil {
			return game.Game{}, err
		}
		if current.ID != prompt.ID {
			return game.Game{}, errStalePrompt
		}
		return g.WithTurn(turn)
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	if err := s.persistGameState(updated); err != nil {
		log.Printf("failed to persist game game_id=%s: %v", updated.ID, err)
	}
	s.recordEvent(updated.ID, "image_generated", EventPayload{
		PlayerID: player.ID,
		TurnID:   turn.ID,
		ImageURL: imageURL,
		State:    updated.State,
	})
	writeJSON(w, http.StatusCreated, roundPayload(updated, player))
}

func roundPayload(g game.Game, player game.Player) roundResponse {
	round, err := g.RoundForPlayer(player)
	if err != nil {
		round = game.Round{}
	}
	return roundResponse{
		GameID:    g.ID,
		Turns:     round,
		GameState: g.State,
	}
}

func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errGameNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, game.ErrNotInRoster):
		writeError(w, http.StatusForbidden, "you are not part of this game")
	case errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, "game already finished")
	case errors.Is(err, game.ErrNoPendingPrompt),
		errors.Is(err, game.ErrNotAwaitingImage),
		errors.Is(err, errStalePrompt):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "game update failed")
	}
}
