package server

import (
	"encoding/json"
	"log"

	"prompt-whispers/internal/db"
	"prompt-whispers/internal/game"
)

// RestoreFromDB loads unfinished games and open lobbies back into the
// in-memory store after a restart. The snapshot is authoritative: state
// is taken as stored, and the engine rederives everything else on the
// next append.
func (s *Server) RestoreFromDB() error {
	if s.db == nil {
		return nil
	}
	var records []db.Game
	if err := s.db.Where("state <> ?", game.StateFinished).Find(&records).Error; err != nil {
		return err
	}
	restored := 0
	for _, record := range records {
		var g game.Game
		if err := json.Unmarshal(record.Snapshot, &g); err != nil {
			log.Printf("skipping corrupt game snapshot game_id=%s: %v", record.UID, err)
			continue
		}
		if g.ID == "" {
			g.ID = record.UID
		}
		s.store.PutGame(g)
		restored++
	}

	var lobbies []db.Lobby
	if err := s.db.Where("started = ?", false).Find(&lobbies).Error; err != nil {
		return err
	}
	for _, record := range lobbies {
		var players []game.Player
		if err := json.Unmarshal(record.Players, &players); err != nil || len(players) == 0 {
			log.Printf("skipping corrupt lobby snapshot lobby_id=%s: %v", record.UID, err)
			continue
		}
		host := players[0]
		for _, p := range players {
			if p.ID == record.HostUID {
				host = p
				break
			}
		}
		s.store.restoreLobby(Lobby{
			ID:        record.UID,
			Host:      host,
			Players:   players,
			GameID:    record.GameUID,
			Started:   record.Started,
			CreatedAt: record.CreatedAt,
		})
	}
	log.Printf("restore complete games=%d lobbies=%d", restored, len(lobbies))
	return nil
}
