package models

import (
	"fmt"
	"time"
)

// Profile is the identity snapshot captured when a user joins a giveaway.
type Profile struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Participant is one user's entry in one giveaway. Removed participants are
// archived with Active=false rather than destroyed.
type Participant struct {
	Profile
	JoinedAt  time.Time  `json:"joined_at"`
	Active    bool       `json:"is_active"`
	LastCheck time.Time  `json:"last_check"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`
	RemovedBy string     `json:"removed_by,omitempty"`
}

// Winner is one drawn winner of one giveaway, unique per (giveaway, user).
type Winner struct {
	UserID       int64      `json:"user_id"`
	WonAt        time.Time  `json:"won_at"`
	PrizeClaimed bool       `json:"prize_claimed"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
	PrizeNote    string     `json:"prize_note,omitempty"`
}

// Ban is one ban cycle for a user. Unbanning deactivates the record so the
// full history is preserved.
type Ban struct {
	UserID     int64      `json:"user_id"`
	BannedAt   time.Time  `json:"banned_at"`
	BannedBy   int64      `json:"banned_by"`
	Reason     string     `json:"reason"`
	Active     bool       `json:"active"`
	UnbannedAt *time.Time `json:"unbanned_at,omitempty"`
	UnbannedBy int64      `json:"unbanned_by,omitempty"`
}

// BroadcastChat is a chat the bot announces into. The numeric chat ID is the
// stable key; the handle is kept for display and can go stale.
type BroadcastChat struct {
	ChatID    int64      `json:"chat_id"`
	Username  string     `json:"username,omitempty"`
	Title     string     `json:"title,omitempty"`
	AddedBy   int64      `json:"added_by,omitempty"`
	AddedAt   time.Time  `json:"added_at"`
	Active    bool       `json:"active"`
	RemovedAt *time.Time `json:"removed_at,omitempty"`
}

// Cooldown holds the expiry of one (user, action) rate gate. Expired entries
// are evicted lazily on the next check.
type Cooldown struct {
	Action    string    `json:"action"`
	SetAt     time.Time `json:"set_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogEntry is one append-only audit record.
type LogEntry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	GiveawayID string    `json:"giveaway_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserStats tracks per-user participation totals across all giveaways.
type UserStats struct {
	UserID         int64     `json:"user_id"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	Participations int       `json:"total_participations"`
	Wins           int       `json:"total_wins"`
	Removals       int       `json:"total_removals"`
}

// MissingChannel identifies a required channel the user has not joined,
// with a best-effort display name for join prompts.
type MissingChannel struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	ChatID   int64  `json:"id,omitempty"`
}

// DisplayName renders the participant's best available human label.
func (p Profile) DisplayName() string {
	if p.Username != "" {
		return "@" + p.Username
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	if p.LastName != "" {
		return p.LastName
	}
	return fmt.Sprintf("User %d", p.UserID)
}
