package server

import (
	"net/http"

	"prompt-whispers/internal/config"

	"gorm.io/gorm"
)

type Server struct {
	store    *Store
	db       *gorm.DB
	cfg      config.Config
	sessions *sessionStore
	images   imageGenerator
	host     imageHost
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store:    NewStore(),
		db:       conn,
		cfg:      cfg,
		sessions: newSessionStore(conn),
		images:   newDalleClient(cfg),
		host:     newCloudinaryClient(cfg),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login", s.handleLogin)
	mux.HandleFunc("GET /api/users/me", s.handleMe)
	mux.HandleFunc("POST /api/lobbies", s.handleCreateLobby)
	mux.HandleFunc("GET /api/lobbies/{id}", s.handleGetLobby)
	mux.HandleFunc("PUT /api/lobbies/{id}/join", s.handleJoinLobby)
	mux.HandleFunc("PUT /api/lobbies/{id}/leave", s.handleLeaveLobby)
	mux.HandleFunc("DELETE /api/lobbies/{id}", s.handleDeleteLobby)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("GET /api/games/{id}/all", s.handleGetGameAll)
	mux.HandleFunc("DELETE /api/games/{id}", s.handleDeleteGame)
	mux.HandleFunc("POST /api/games/{id}/prompt", s.handleSubmitPrompt)
	mux.HandleFunc("POST /api/games/{id}/generateImage", s.handleGenerateImage)
	return mux
}
