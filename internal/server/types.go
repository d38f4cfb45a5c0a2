package server

import (
	"time"

	"prompt-whispers/internal/game"
)

// User is the server's view of an identity. Resolution happens at the
// session boundary; the engine only ever sees the derived game.Player.
type User struct {
	UID       string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GameIDs   []string  `json:"game_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) asPlayer() game.Player {
	return game.Player{ID: u.UID, Name: u.Name}
}

// Lobby collects a roster before a game starts. Once the game is created
// the roster is frozen inside the game aggregate and the lobby only
// points at it.
type Lobby struct {
	ID        string        `json:"id"`
	Host      game.Player   `json:"host"`
	Players   []game.Player `json:"players"`
	GameID    string        `json:"game_id,omitempty"`
	Started   bool          `json:"is_game_started"`
	CreatedAt time.Time     `json:"created_at"`
}

// roundResponse is the per-player projection: the single round the
// caller should currently continue, plus the game state.
type roundResponse struct {
	GameID    string     `json:"game_id"`
	Turns     game.Round `json:"turns"`
	GameState string     `json:"game_state"`
}

type userResponse struct {
	ID      string   `json:"id"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	GameIDs []string `json:"game_ids"`
}
