package server

import (
	"encoding/json"
	"errors"
	"log"

	"prompt-whispers/internal/db"
	"prompt-whispers/internal/game"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// persistGame writes the full aggregate snapshot. The snapshot is the
// only persisted representation of rounds and turns; everything the
// engine needs is recomputed from it on restore.
func (s *Server) persistGame(g game.Game, ownerUID string) error {
	if s.db == nil {
		return nil
	}
	snapshot, err := json.Marshal(g)
	if err != nil {
		return err
	}
	record := db.Game{
		UID:      g.ID,
		OwnerUID: ownerUID,
		State:    g.State,
		Snapshot: datatypes.JSON(snapshot),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "snapshot", "updated_at"}),
	}).Create(&record).Error
}

// persistGameState refreshes the snapshot of an already-created game.
func (s *Server) persistGameState(g game.Game) error {
	if s.db == nil {
		return nil
	}
	snapshot, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.db.Model(&db.Game{}).Where("uid = ?", g.ID).Updates(map[string]any{
		"state":    g.State,
		"snapshot": datatypes.JSON(snapshot),
	}).Error
}

func (s *Server) deleteGameRecord(gameID string) error {
	if s.db == nil {
		return nil
	}
	return s.db.Where("uid = ?", gameID).Delete(&db.Game{}).Error
}

func (s *Server) persistLobby(lobby Lobby) error {
	if s.db == nil {
		return nil
	}
	players, err := json.Marshal(lobby.Players)
	if err != nil {
		return err
	}
	record := db.Lobby{
		UID:     lobby.ID,
		HostUID: lobby.Host.ID,
		Players: datatypes.JSON(players),
		GameUID: lobby.GameID,
		Started: lobby.Started,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"players", "game_uid", "started", "updated_at"}),
	}).Create(&record).Error
}

func (s *Server) deleteLobbyRecord(lobbyID string) error {
	if s.db == nil {
		return nil
	}
	return s.db.Where("uid = ?", lobbyID).Delete(&db.Lobby{}).Error
}

func (s *Server) persistUser(user User) error {
	if s.db == nil {
		return nil
	}
	gameIDs, err := json.Marshal(user.GameIDs)
	if err != nil {
		return err
	}
	record := db.User{
		UID:      user.UID,
		Email:    user.Email,
		Name:     user.Name,
		GameUIDs: datatypes.JSON(gameIDs),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uid"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "game_uids", "updated_at"}),
	}).Create(&record).Error
	if err != nil && isUniqueViolation(err) {
		// same email registered under a different uid; keep the stored row
		return s.db.Model(&db.User{}).Where("email = ?", user.Email).Updates(map[string]any{
			"name":      user.Name,
			"game_uids": datatypes.JSON(gameIDs),
		}).Error
	}
	return err
}

// loadUser pulls a user from the database into the server's view.
func (s *Server) loadUser(email string) (User, bool) {
	if s.db == nil {
		return User{}, false
	}
	var record db.User
	if err := s.db.Where("email = ?", email).First(&record).Error; err != nil {
		return User{}, false
	}
	var gameIDs []string
	if len(record.GameUIDs) > 0 {
		_ = json.Unmarshal(record.GameUIDs, &gameIDs)
	}
	return User{
		UID:       record.UID,
		Email:     record.Email,
		Name:      record.Name,
		GameIDs:   gameIDs,
		CreatedAt: record.CreatedAt,
	}, true
}

// recordEvent appends an audit row; failures are logged, never surfaced.
func (s *Server) recordEvent(gameID, eventType string, payload EventPayload) {
	if s.db == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to encode event game_id=%s type=%s: %v", gameID, eventType, err)
		return
	}
	event := db.Event{
		GameUID: gameID,
		Type:    eventType,
		Payload: datatypes.JSON(data),
	}
	if err := s.db.Create(&event).Error; err != nil {
		log.Printf("failed to record event game_id=%s type=%s: %v", gameID, eventType, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
