package server

import (
	"log"
	"net/http"
)

type loginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// handleLogin resolves (or creates) the user behind an email and binds
// it to the caller's session. Identity verification proper lives outside
// this service; this is the boundary the engine's Player references
// cross.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	email, err := validateEmail(req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user := s.resolveUser(email, name)
	s.sessions.SetEmail(w, r, user.Email)
	log.Printf("user logged in user_id=%s", user.UID)
	writeJSON(w, http.StatusOK, userPayload(user))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loggedInUser(w, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}
	writeJSON(w, http.StatusOK, userPayload(user))
}

// loggedInUser resolves the caller's session to a stored user.
func (s *Server) loggedInUser(w http.ResponseWriter, r *http.Request) (User, bool) {
	email := s.sessions.GetEmail(w, r)
	if email == "" {
		return User{}, false
	}
	if user, ok := s.store.GetUser(email); ok {
		return user, true
	}
	if user, ok := s.loadUser(email); ok {
		s.store.PutUser(user)
		return user, true
	}
	return User{}, false
}

// resolveUser returns the stored user for the email, consulting the
// database before minting a fresh one.
func (s *Server) resolveUser(email, name string) User {
	if user, ok := s.store.GetUser(email); ok {
		return user
	}
	if user, ok := s.loadUser(email); ok {
		s.store.PutUser(user)
		return user
	}
	user := s.store.UpsertUser(email, name)
	if err := s.persistUser(user); err != nil {
		log.Printf("failed to persist user user_id=%s: %v", user.UID, err)
	}
	return user
}

func userPayload(user User) userResponse {
	ids := user.GameIDs
	if ids == nil {
		ids = []string{}
	}
	return userResponse{
		ID:      user.UID,
		Email:   user.Email,
		Name:    user.Name,
		GameIDs: ids,
	}
}
