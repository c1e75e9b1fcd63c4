package store

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

// CreateGiveaway validates and stores a new giveaway with status active and
// zero participants, generating an ID when none is supplied. The record is
// saved durably before returning.
func (s *Store) CreateGiveaway(g *models.Giveaway) (string, error) {
	if err := s.validateNewGiveaway(g); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec := g.Clone()
	if rec.ID == "" {
		rec.ID = models.NewGiveawayID(now)
	}
	rec.Status = models.GiveawayStatusActive
	rec.CreatedAt = now
	rec.ParticipantsCount = 0
	rec.WinnersSelected = false
	rec.Announced = false

	s.data.Giveaways[rec.ID] = rec
	if _, ok := s.data.Participants[rec.ID]; !ok {
		s.data.Participants[rec.ID] = make(map[int64]*models.Participant)
	}
	s.data.Counters[now.Format("2006-01")]++

	if err := s.saveLocked(); err != nil {
		return "", err
	}
	s.log.Info().Str("giveaway_id", rec.ID).Str("event", rec.EventName).
		Time("ends_at", rec.EndTime).Msg("Created giveaway")
	return rec.ID, nil
}

func (s *Store) validateNewGiveaway(g *models.Giveaway) error {
	switch {
	case g == nil:
		return apperrors.NewValidationError("giveaway", "missing record")
	case strings.TrimSpace(g.EventName) == "":
		return apperrors.NewValidationError("event_name", "required")
	case g.PrizeType == "":
		return apperrors.NewValidationError("prize_type", "required")
	case strings.TrimSpace(g.PrizeDetails) == "":
		return apperrors.NewValidationError("prize_details", "required")
	case g.WinnerCount <= 0:
		return apperrors.NewValidationError("winner_count", "must be positive")
	case s.maxWinners > 0 && g.WinnerCount > s.maxWinners:
		return apperrors.NewValidationError("winner_count", "exceeds configured maximum")
	case g.StartTime.IsZero() || g.EndTime.IsZero():
		return apperrors.NewValidationError("end_time", "start and end time required")
	case !g.EndTime.After(g.StartTime):
		return apperrors.NewValidationError("end_time", "must be after start time")
	}
	return nil
}

// Giveaway returns a copy of the giveaway, or false if unknown.
func (s *Store) Giveaway(id string) (*models.Giveaway, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[id]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// GiveawayByName looks a giveaway up by event name, case-insensitively.
func (s *Store) GiveawayByName(name string) (*models.Giveaway, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.data.Giveaways {
		if strings.EqualFold(g.EventName, name) {
			return g.Clone(), true
		}
	}
	return nil, false
}

// sortByCreation orders giveaways oldest-first so listings are stable and
// "the current giveaway" means the earliest one still running.
func sortByCreation(gs []*models.Giveaway) []*models.Giveaway {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].CreatedAt.Equal(gs[j].CreatedAt) {
			return gs[i].ID < gs[j].ID
		}
		return gs[i].CreatedAt.Before(gs[j].CreatedAt)
	})
	return gs
}

// ActiveGiveaways returns giveaways that are active and whose end time is
// still in the future, oldest first. Expired-but-unended giveaways belong to
// ExpiredGiveaways, not here.
func (s *Store) ActiveGiveaways() []*models.Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]*models.Giveaway, 0)
	for _, g := range s.data.Giveaways {
		if g.Status == models.GiveawayStatusActive && g.EndTime.After(now) {
			out = append(out, g.Clone())
		}
	}
	return sortByCreation(out)
}

// GiveawaysByStatus returns every giveaway in the given status, or all
// giveaways when status is empty.
func (s *Store) GiveawaysByStatus(status models.GiveawayStatus) []*models.Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Giveaway, 0)
	for _, g := range s.data.Giveaways {
		if status == "" || g.Status == status {
			out = append(out, g.Clone())
		}
	}
	return sortByCreation(out)
}

// ExpiredGiveaways returns giveaways still marked active whose end time has
// passed: the set the scheduler's reconciliation sweep must end.
func (s *Store) ExpiredGiveaways() []*models.Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]*models.Giveaway, 0)
	for _, g := range s.data.Giveaways {
		if g.Status == models.GiveawayStatusActive && !g.EndTime.After(now) {
			out = append(out, g.Clone())
		}
	}
	return out
}

// EndGiveaway flips status active→ended and stamps the end. Returns false if
// the giveaway is unknown or already terminal, making the lifecycle
// transition idempotent for its callers.
func (s *Store) EndGiveaway(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[id]
	if !ok || g.Status != models.GiveawayStatusActive {
		return false, nil
	}
	now := s.now().UTC()
	g.Status = models.GiveawayStatusEnded
	g.EndedAt = &now
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// CancelGiveaway flips status active→cancelled. Terminal; no winners are ever
// drawn for a cancelled giveaway.
func (s *Store) CancelGiveaway(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[id]
	if !ok || g.Status != models.GiveawayStatusActive {
		return false, nil
	}
	now := s.now().UTC()
	g.Status = models.GiveawayStatusCancelled
	g.CancelledAt = &now
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// MarkAnnounced records that the end-of-giveaway announcement batch was sent.
func (s *Store) MarkAnnounced(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[id]
	if !ok {
		return false
	}
	g.Announced = true
	s.autoSaveLocked()
	return true
}

// DeleteGiveaway archives a giveaway and drops it from the live set. The
// caller is responsible for removing any pending scheduler timer.
func (s *Store) DeleteGiveaway(id, deletedBy string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.data.Giveaways[id]
	if !ok {
		return false
	}
	now := s.now().UTC()
	g.DeletedAt = &now
	g.DeletedBy = deletedBy
	s.data.Archived[id] = g
	delete(s.data.Giveaways, id)

	if err := s.saveLocked(); err != nil {
		s.log.Error().Err(err).Str("giveaway_id", id).Msg("Save after delete failed")
	}
	return true
}

// touchStatsLocked bumps a per-user counter, creating the stats record on
// first sight.
func (s *Store) touchStatsLocked(userID int64, bump func(*models.UserStats)) {
	now := s.now().UTC()
	st, ok := s.data.UserStats[userID]
	if !ok {
		st = &models.UserStats{UserID: userID, FirstSeen: now}
		s.data.UserStats[userID] = st
	}
	st.LastSeen = now
	if bump != nil {
		bump(st)
	}
}

// UserStats returns a copy of one user's statistics.
func (s *Store) UserStats(userID int64) (*models.UserStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.data.UserStats[userID]
	if !ok {
		return nil, false
	}
	dup := *st
	return &dup, true
}

// TopParticipants returns up to limit users ordered by participation count.
func (s *Store) TopParticipants(limit int) []*models.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.UserStats, 0, len(s.data.UserStats))
	for _, st := range s.data.UserStats {
		dup := *st
		out = append(out, &dup)
	}
	// Insertion sort by participations descending; the user set is small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Participations > out[j-1].Participations; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// LastCleanup reports when periodic cleanup last ran.
func (s *Store) LastCleanup() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings.LastCleanup
}
