package server

import (
	"errors"
	"sync"
	"time"

	"prompt-whispers/internal/game"

	"github.com/google/uuid"
)

var errGameNotFound = errors.New("game not found")
var errLobbyNotFound = errors.New("lobby not found")

// Store is the in-memory authoritative home of all aggregates. Every
// game mutation goes through UpdateGame, which serializes concurrent
// submissions per game: load the latest snapshot, apply the pure
// transform, swap in the result, all under one lock.
type Store struct {
	mu      sync.Mutex
	games   map[string]game.Game
	lobbies map[string]*Lobby
	users   map[string]User
}

func NewStore() *Store {
	return &Store{
		games:   make(map[string]game.Game),
		lobbies: make(map[string]*Lobby),
		users:   make(map[string]User),
	}
}

func (s *Store) PutGame(g game.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *Store) GetGame(id string) (game.Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *Store) UpdateGame(id string, update func(game.Game) (game.Game, error)) (game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return game.Game{}, errGameNotFound
	}
	next, err := update(g)
	if err != nil {
		return game.Game{}, err
	}
	s.games[id] = next
	return next, nil
}

func (s *Store) DeleteGame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return false
	}
	delete(s.games, id)
	return true
}

func (s *Store) CreateLobby(host game.Player) *Lobby {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby := &Lobby{
		ID:        uuid.NewString(),
		Host:      host,
		Players:   []game.Player{host},
		CreatedAt: time.Now().UTC(),
	}
	s.lobbies[lobby.ID] = lobby
	return lobby
}

func (s *Store) GetLobby(id string) (Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[id]
	if !ok {
		return Lobby{}, false
	}
	return *lobby, true
}

func (s *Store) UpdateLobby(id string, update func(*Lobby) error) (Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lobby, ok := s.lobbies[id]
	if !ok {
		return Lobby{}, errLobbyNotFound
	}
	if err := update(lobby); err != nil {
		return Lobby{}, err
	}
	return *lobby, nil
}

func (s *Store) restoreLobby(lobby Lobby) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[lobby.ID]; ok {
		return
	}
	s.lobbies[lobby.ID] = &lobby
}

func (s *Store) DeleteLobby(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[id]; !ok {
		return false
	}
	delete(s.lobbies, id)
	return true
}

func (s *Store) UpsertUser(email, name string) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[email]; ok {
		if name != "" && user.Name != name {
			user.Name = name
			s.users[email] = user
		}
		return user
	}
	user := User{
		UID:       uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if user.Name == "" {
		user.Name = email
	}
	s.users[email] = user
	return user
}

func (s *Store) PutUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
}

func (s *Store) GetUser(email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	return user, ok
}

func (s *Store) LinkGame(email, gameID string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return User{}, false
	}
	for _, id := range user.GameIDs {
		if id == gameID {
			return user, true
		}
	}
	user.GameIDs = append(user.GameIDs, gameID)
	s.users[email] = user
	return user, true
}

func (s *Store) UnlinkGame(email, gameID string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return User{}, false
	}
	kept := make([]string, 0, len(user.GameIDs))
	for _, id := range user.GameIDs {
		if id != gameID {
			kept = append(kept, id)
		}
	}
	user.GameIDs = kept
	s.users[email] = user
	return user, true
}

// userByUID walks the user map; rosters reference players by UID while
// sessions resolve by email.
func (s *Store) userByUID(uid string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.UID == uid {
			return user, true
		}
	}
	return User{}, false
}
