package server

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"prompt-whispers/internal/db"

	"gorm.io/gorm"
)

const sessionCookie = "pw_session"

// sessionStore maps a session cookie to the logged-in user's email.
// Backed by Postgres when a connection is configured, otherwise held in
// memory (tests, local runs without a database).
type sessionStore struct {
	db     *gorm.DB
	mu     sync.Mutex
	emails map[string]string
}

func newSessionStore(conn *gorm.DB) *sessionStore {
	return &sessionStore{
		db:     conn,
		emails: make(map[string]string),
	}
}

func (s *sessionStore) SetEmail(w http.ResponseWriter, r *http.Request, email string) {
	if strings.TrimSpace(email) == "" {
		return
	}
	id := s.ensureSessionID(w, r)
	if s.db == nil {
		s.mu.Lock()
		s.emails[id] = email
		s.mu.Unlock()
		return
	}
	record := db.Session{
		ID:        id,
		UserEmail: email,
	}
	_ = s.db.Save(&record).Error
}

func (s *sessionStore) GetEmail(w http.ResponseWriter, r *http.Request) string {
	id := s.ensureSessionID(w, r)
	if s.db == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.emails[id]
	}
	var record db.Session
	if err := s.db.Where("id = ?", id).First(&record).Error; err != nil {
		return ""
	}
	return record.UserEmail
}

func (s *sessionStore) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	id := newSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("sess-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", buf)
}
