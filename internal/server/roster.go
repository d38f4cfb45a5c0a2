package server

import (
	"log"

	"prompt-whispers/internal/game"
)

// linkGameToRoster records the game on every roster member so it shows
// up in their game list and grants them deletion rights.
func (s *Server) linkGameToRoster(g game.Game) {
	for _, player := range g.Players {
		user, ok := s.store.userByUID(player.ID)
		if !ok {
			continue
		}
		user, _ = s.store.LinkGame(user.Email, g.ID)
		if err := s.persistUser(user); err != nil {
			log.Printf("failed to persist user user_id=%s: %v", user.UID, err)
		}
	}
}

func (s *Server) unlinkGameFromRoster(g game.Game) {
	for _, player := range g.Players {
		user, ok := s.store.userByUID(player.ID)
		if !ok {
			continue
		}
		user, _ = s.store.UnlinkGame(user.Email, g.ID)
		if err := s.persistUser(user); err != nil {
			log.Printf("failed to persist user user_id=%s: %v", user.UID, err)
		}
	}
}
