package store

import (
	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

// AddWinner appends a winner record and flags the giveaway's winners-selected
// bit. A duplicate (giveaway, user) pair returns false rather than an error.
func (s *Store) AddWinner(giveawayID string, userID int64, prizeNote string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.data.Winners[giveawayID] {
		if w.UserID == userID {
			return false
		}
	}

	s.data.Winners[giveawayID] = append(s.data.Winners[giveawayID], &models.Winner{
		UserID:    userID,
		WonAt:     s.now().UTC(),
		PrizeNote: prizeNote,
	})
	if g, ok := s.data.Giveaways[giveawayID]; ok {
		g.WinnersSelected = true
	}
	s.touchStatsLocked(userID, func(st *models.UserStats) { st.Wins++ })

	s.autoSaveLocked()
	return true
}

// Winners returns copies of the winner records in draw order.
func (s *Store) Winners(giveawayID string) []*models.Winner {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.data.Winners[giveawayID]
	out := make([]*models.Winner, 0, len(src))
	for _, w := range src {
		dup := *w
		out = append(out, &dup)
	}
	return out
}

// MarkPrizeClaimed stamps a winner's prize as claimed. This is the only
// winner mutation permitted after a giveaway has ended.
func (s *Store) MarkPrizeClaimed(giveawayID string, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.data.Winners[giveawayID] {
		if w.UserID == userID {
			now := s.now().UTC()
			w.PrizeClaimed = true
			w.ClaimedAt = &now
			if err := s.saveLocked(); err != nil {
				s.log.Error().Err(err).Msg("Save after prize claim failed")
			}
			return true
		}
	}
	return false
}
