package store

import (
	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

// AddParticipant records a join. Rejections are coded: GIVEAWAY_NOT_FOUND,
// GIVEAWAY_NOT_ACTIVE, GIVEAWAY_ENDED (end time passed while status still
// says active), ALREADY_JOINED. On success the
// cached participant count and the user's statistics are updated.
func (s *Store) AddParticipant(giveawayID string, profile models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[giveawayID]
	if !ok {
		return apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	if g.Status != models.GiveawayStatusActive {
		return apperrors.Newf(apperrors.ErrCodeGiveawayNotActive,
			"giveaway %s is not active", giveawayID)
	}
	now := s.now()
	if g.HasExpired(now) {
		return apperrors.Newf(apperrors.ErrCodeGiveawayEnded,
			"giveaway %s has ended", giveawayID)
	}

	bucket, ok := s.data.Participants[giveawayID]
	if !ok {
		bucket = make(map[int64]*models.Participant)
		s.data.Participants[giveawayID] = bucket
	}
	if p, ok := bucket[profile.UserID]; ok && p.Active {
		return apperrors.Newf(apperrors.ErrCodeAlreadyJoined,
			"user %d already joined giveaway %s", profile.UserID, giveawayID)
	}

	utc := now.UTC()
	bucket[profile.UserID] = &models.Participant{
		Profile:   profile,
		JoinedAt:  utc,
		Active:    true,
		LastCheck: utc,
	}
	g.ParticipantsCount = countActiveLocked(bucket)
	s.touchStatsLocked(profile.UserID, func(st *models.UserStats) { st.Participations++ })

	s.autoSaveLocked()
	s.log.Info().Int64("user_id", profile.UserID).
		Str("giveaway_id", giveawayID).Msg("User joined giveaway")
	return nil
}

// RemoveParticipant archives the active participant record and recomputes the
// cached count. Removing a non-participant is reported as false, not an
// error.
func (s *Store) RemoveParticipant(giveawayID string, userID int64, removedBy string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.data.Participants[giveawayID]
	if !ok {
		return false
	}
	p, ok := bucket[userID]
	if !ok || !p.Active {
		return false
	}

	now := s.now().UTC()
	p.Active = false
	p.RemovedAt = &now
	p.RemovedBy = removedBy

	if _, ok := s.data.Removed[giveawayID]; !ok {
		s.data.Removed[giveawayID] = make(map[int64]*models.Participant)
	}
	s.data.Removed[giveawayID][userID] = p
	delete(bucket, userID)

	if g, ok := s.data.Giveaways[giveawayID]; ok {
		g.ParticipantsCount = countActiveLocked(bucket)
	}
	s.touchStatsLocked(userID, func(st *models.UserStats) { st.Removals++ })

	s.autoSaveLocked()
	return true
}

// Participants returns copies of the active participant records.
func (s *Store) Participants(giveawayID string) []*models.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.data.Participants[giveawayID]
	out := make([]*models.Participant, 0, len(bucket))
	for _, p := range bucket {
		if !p.Active {
			continue
		}
		dup := *p
		out = append(out, &dup)
	}
	return out
}

// ParticipantIDs returns the user IDs of the active participants, the input
// to winner selection.
func (s *Store) ParticipantIDs(giveawayID string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.data.Participants[giveawayID]
	out := make([]int64, 0, len(bucket))
	for id, p := range bucket {
		if p.Active {
			out = append(out, id)
		}
	}
	return out
}

// IsParticipant reports whether the user holds an active participant record.
func (s *Store) IsParticipant(giveawayID string, userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data.Participants[giveawayID][userID]
	return ok && p.Active
}

// UserParticipations lists the giveaways a user actively participates in.
func (s *Store) UserParticipations(userID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0)
	for giveawayID, bucket := range s.data.Participants {
		if p, ok := bucket[userID]; ok && p.Active {
			out = append(out, giveawayID)
		}
	}
	return out
}

func countActiveLocked(bucket map[int64]*models.Participant) int {
	n := 0
	for _, p := range bucket {
		if p.Active {
			n++
		}
	}
	return n
}
