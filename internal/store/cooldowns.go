package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

func cooldownKey(userID int64, action string) string {
	return fmt.Sprintf("%d_%s", userID, action)
}

// SetCooldown arms a (user, action) cooldown expiring after d.
func (s *Store) SetCooldown(userID int64, action string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.data.Cooldowns[cooldownKey(userID, action)] = &models.Cooldown{
		Action:    action,
		SetAt:     now,
		ExpiresAt: now.Add(d),
	}
	s.autoSaveLocked()
}

// CheckCooldown reports whether the action is allowed: true when no cooldown
// is armed or it has expired (expired entries are evicted on the way out),
// false while the cooldown is still running.
func (s *Store) CheckCooldown(userID int64, action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := cooldownKey(userID, action)
	cd, ok := s.data.Cooldowns[key]
	if !ok {
		return true
	}
	if s.now().Before(cd.ExpiresAt) {
		return false
	}
	delete(s.data.Cooldowns, key)
	s.autoSaveLocked()
	return true
}

// RemainingCooldown returns how long until the action is allowed again, zero
// when it already is.
func (s *Store) RemainingCooldown(userID int64, action string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	cd, ok := s.data.Cooldowns[cooldownKey(userID, action)]
	if !ok {
		return 0
	}
	remaining := cd.ExpiresAt.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClearCooldown drops one action's cooldown, or every cooldown the user holds
// when action is empty.
func (s *Store) ClearCooldown(userID int64, action string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action != "" {
		delete(s.data.Cooldowns, cooldownKey(userID, action))
	} else {
		prefix := fmt.Sprintf("%d_", userID)
		for key := range s.data.Cooldowns {
			if strings.HasPrefix(key, prefix) {
				delete(s.data.Cooldowns, key)
			}
		}
	}
	s.autoSaveLocked()
}

// CleanupExpiredCooldowns evicts every expired cooldown and returns how many
// were removed.
func (s *Store) CleanupExpiredCooldowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, cd := range s.data.Cooldowns {
		if !now.Before(cd.ExpiresAt) {
			delete(s.data.Cooldowns, key)
			removed++
		}
	}
	if removed > 0 {
		if err := s.saveLocked(); err != nil {
			s.log.Error().Err(err).Msg("Save after cooldown cleanup failed")
		}
	}
	return removed
}

// StampCleanup records that the periodic cleanup pass ran.
func (s *Store) StampCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Settings.LastCleanup = s.now().UTC()
	s.autoSaveLocked()
}
