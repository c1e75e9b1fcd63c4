package store

import (
	"strings"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
)

// AddBroadcastChat registers a chat for end-of-giveaway announcements. The
// chat ID is the primary key; a duplicate ID or handle returns false.
func (s *Store) AddBroadcastChat(chat models.BroadcastChat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat.Username = strings.TrimPrefix(chat.Username, "@")
	for _, c := range s.data.Broadcasts {
		if !c.Active {
			continue
		}
		if (chat.ChatID != 0 && c.ChatID == chat.ChatID) ||
			(chat.Username != "" && strings.EqualFold(c.Username, chat.Username)) {
			return false
		}
	}

	chat.AddedAt = s.now().UTC()
	chat.Active = true
	s.data.Broadcasts = append(s.data.Broadcasts, &chat)
	if err := s.saveLocked(); err != nil {
		s.log.Error().Err(err).Msg("Save after broadcast add failed")
	}
	return true
}

// RemoveBroadcastChat soft-removes a chat by handle (with or without the
// leading @); chats are registered and removed by username.
func (s *Store) RemoveBroadcastChat(ref string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimPrefix(ref, "@")
	for _, c := range s.data.Broadcasts {
		if !c.Active {
			continue
		}
		if strings.EqualFold(c.Username, ref) {
			now := s.now().UTC()
			c.Active = false
			c.RemovedAt = &now
			if err := s.saveLocked(); err != nil {
				s.log.Error().Err(err).Msg("Save after broadcast removal failed")
			}
			return true
		}
	}
	return false
}

// BroadcastChats returns copies of the active broadcast targets.
func (s *Store) BroadcastChats() []*models.BroadcastChat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.BroadcastChat, 0, len(s.data.Broadcasts))
	for _, c := range s.data.Broadcasts {
		if c.Active {
			dup := *c
			out = append(out, &dup)
		}
	}
	return out
}
