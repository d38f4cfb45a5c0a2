package server

import (
	"errors"
	"log"
	"net/http"

	"prompt-whispers/internal/game"
)

var errNotHost = errors.New("only the host may do this")
var errHostCannotLeave = errors.New("the host cannot leave the lobby")

func (s *Server) handleCreateLobby(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	lobby := s.store.CreateLobby(user.asPlayer())
	if err := s.persistLobby(*lobby); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create lobby")
		return
	}
	log.Printf("lobby created lobby_id=%s host_id=%s", lobby.ID, user.UID)
	writeJSON(w, http.StatusCreated, lobby)
}

func (s *Server) handleGetLobby(w http.ResponseWriter, r *http.Request) {
	lobby, ok := s.store.GetLobby(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "lobby not found")
		return
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (s *Server) handleJoinLobby(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	lobby, err := s.store.UpdateLobby(r.PathValue("id"), func(lobby *Lobby) error {
		if lobby.Started {
			return game.ErrGameStarted
		}
		player := user.asPlayer()
		for _, existing := range lobby.Players {
			if existing.ID == player.ID {
				return nil
			}
		}
		lobby.Players = append(lobby.Players, player)
		return nil
	})
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	if err := s.persistLobby(lobby); err != nil {
		log.Printf("failed to persist lobby lobby_id=%s: %v", lobby.ID, err)
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (s *Server) handleLeaveLobby(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	lobby, err := s.store.UpdateLobby(r.PathValue("id"), func(lobby *Lobby) error {
		if lobby.Host.ID == user.UID {
			return errHostCannotLeave
		}
		kept := make([]game.Player, 0, len(lobby.Players))
		for _, player := range lobby.Players {
			if player.ID != user.UID {
				kept = append(kept, player)
			}
		}
		lobby.Players = kept
		return nil
	})
	if err != nil {
		writeLobbyError(w, err)
		return
	}
	if err := s.persistLobby(lobby); err != nil {
		log.Printf("failed to persist lobby lobby_id=%s: %v", lobby.ID, err)
	}
	writeJSON(w, http.StatusOK, lobby)
}

func (s *Server) handleDeleteLobby(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	lobby, found := s.store.GetLobby(r.PathValue("id"))
	if !found {
		writeError(w, http.StatusNotFound, "lobby not found")
		return
	}
	if lobby.Host.ID != user.UID {
		writeError(w, http.StatusForbidden, "you are not allowed to delete this lobby")
		return
	}
	s.store.DeleteLobby(lobby.ID)
	if err := s.deleteLobbyRecord(lobby.ID); err != nil {
		log.Printf("failed to delete lobby record lobby_id=%s: %v", lobby.ID, err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeLobbyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errLobbyNotFound):
		writeError(w, http.StatusNotFound, "lobby not found")
	case errors.Is(err, errHostCannotLeave):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrGameStarted):
		writeError(w, http.StatusConflict, "game already started")
	default:
		writeError(w, http.StatusInternalServerError, "lobby update failed")
	}
}
