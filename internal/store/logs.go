package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/google/uuid"
)

// AddLog appends an audit entry, keeping only the most recent entries.
func (s *Store) AddLog(logType string, userID int64, giveawayID, details string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLogLocked(logType, userID, giveawayID, details)
	s.autoSaveLocked()
}

func (s *Store) addLogLocked(logType string, userID int64, giveawayID, details string) {
	s.data.Logs = append(s.data.Logs, &models.LogEntry{
		ID:         uuid.New().String(),
		Type:       logType,
		UserID:     userID,
		GiveawayID: giveawayID,
		Details:    details,
		Timestamp:  s.now().UTC(),
	})
	if len(s.data.Logs) > maxLogEntries {
		s.data.Logs = s.data.Logs[len(s.data.Logs)-maxLogEntries:]
	}
}

// LogFilter narrows RecentLogs; zero values match everything.
type LogFilter struct {
	Type       string
	UserID     int64
	GiveawayID string
}

// RecentLogs returns up to limit entries, newest first.
func (s *Store) RecentLogs(limit int, filter LogFilter) []*models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.LogEntry, 0, limit)
	for _, entry := range s.data.Logs {
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if filter.UserID != 0 && entry.UserID != filter.UserID {
			continue
		}
		if filter.GiveawayID != "" && entry.GiveawayID != filter.GiveawayID {
			continue
		}
		dup := *entry
		out = append(out, &dup)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CleanupOldLogs drops entries older than the retention window and returns
// how many were removed.
func (s *Store) CleanupOldLogs(retention time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-retention)
	kept := s.data.Logs[:0]
	for _, entry := range s.data.Logs {
		if entry.Timestamp.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	removed := len(s.data.Logs) - len(kept)
	s.data.Logs = kept
	if removed > 0 {
		s.addLogLocked("cleanup", 0, "",
			fmt.Sprintf("Cleaned up %d logs older than %s", removed, retention))
		if err := s.saveLocked(); err != nil {
			s.log.Error().Err(err).Msg("Save after log cleanup failed")
		}
	}
	return removed
}
