package store

import (
	"fmt"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

// BanUser opens a new ban cycle for the user. Banning an already-banned user
// returns false and leaves state unchanged.
func (s *Store) BanUser(userID int64, reason string, bannedBy int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.data.Bans {
		if b.UserID == userID && b.Active {
			return false
		}
	}
	if reason == "" {
		reason = "No reason provided"
	}
	s.data.Bans = append(s.data.Bans, &models.Ban{
		UserID:   userID,
		BannedAt: s.now().UTC(),
		BannedBy: bannedBy,
		Reason:   reason,
		Active:   true,
	})
	s.addLogLocked("user_banned", bannedBy, "", fmt.Sprintf("Banned user %d: %s", userID, reason))
	if err := s.saveLocked(); err != nil {
		s.log.Error().Err(err).Msg("Save after ban failed")
	}
	return true
}

// UnbanUser deactivates the active ban cycle, preserving the history.
func (s *Store) UnbanUser(userID int64, unbannedBy int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.data.Bans {
		if b.UserID == userID && b.Active {
			now := s.now().UTC()
			b.Active = false
			b.UnbannedAt = &now
			b.UnbannedBy = unbannedBy
			s.addLogLocked("user_unbanned", unbannedBy, "", fmt.Sprintf("Unbanned user %d", userID))
			if err := s.saveLocked(); err != nil {
				s.log.Error().Err(err).Msg("Save after unban failed")
			}
			return true
		}
	}
	return false
}

// IsBanned reports whether the user has an active ban.
func (s *Store) IsBanned(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.data.Bans {
		if b.UserID == userID && b.Active {
			return true
		}
	}
	return false
}

// BanInfo returns the active ban record for the user, if any.
func (s *Store) BanInfo(userID int64) (*models.Ban, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.data.Bans {
		if b.UserID == userID && b.Active {
			dup := *b
			return &dup, true
		}
	}
	return nil, false
}
