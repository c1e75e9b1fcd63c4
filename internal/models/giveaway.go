package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GiveawayStatus is the lifecycle state of a giveaway. The only legal
// transitions are active→ended and active→cancelled; both targets are
// terminal.
type GiveawayStatus string

const (
	GiveawayStatusActive    GiveawayStatus = "active"
	GiveawayStatusEnded     GiveawayStatus = "ended"
	GiveawayStatusCancelled GiveawayStatus = "cancelled"
)

// ParseGiveawayStatus validates a stored status value. Unknown values are an
// error so that corrupt records fail at load time instead of propagating.
func ParseGiveawayStatus(s string) (GiveawayStatus, error) {
	switch GiveawayStatus(s) {
	case GiveawayStatusActive, GiveawayStatusEnded, GiveawayStatusCancelled:
		return GiveawayStatus(s), nil
	}
	return "", fmt.Errorf("invalid giveaway status %q", s)
}

func (s *GiveawayStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseGiveawayStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PrizeType is the prize category of a giveaway.
type PrizeType string

const (
	PrizeTypeCoins      PrizeType = "coins"
	PrizeTypeCharacters PrizeType = "characters"
)

func ParsePrizeType(s string) (PrizeType, error) {
	switch PrizeType(strings.ToLower(s)) {
	case PrizeTypeCoins:
		return PrizeTypeCoins, nil
	case PrizeTypeCharacters:
		return PrizeTypeCharacters, nil
	}
	return "", fmt.Errorf("invalid prize type %q", s)
}

func (p *PrizeType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParsePrizeType(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Giveaway is a single timed giveaway event.
type Giveaway struct {
	ID                string         `json:"id"`
	EventName         string         `json:"event_name"`
	PrizeType         PrizeType      `json:"prize_type"`
	PrizeDetails      string         `json:"prize_details"`
	WinnerCount       int            `json:"winner_count"`
	StartTime         time.Time      `json:"start_time"`
	EndTime           time.Time      `json:"end_time"`
	Status            GiveawayStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	CreatedBy         int64          `json:"created_by"`
	ParticipantsCount int            `json:"participants_count"`
	WinnersSelected   bool           `json:"winners_selected"`
	Announced         bool           `json:"announced"`
	EndedAt           *time.Time     `json:"ended_at,omitempty"`
	CancelledAt       *time.Time     `json:"cancelled_at,omitempty"`
	DeletedAt         *time.Time     `json:"deleted_at,omitempty"`
	DeletedBy         string         `json:"deleted_by,omitempty"`
}

// NewGiveawayID returns a fresh giveaway ID. The UTC timestamp keeps IDs
// roughly sortable; the uuid suffix disambiguates IDs minted within the
// same second.
func NewGiveawayID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("GIV_%s_%s", now.UTC().Format("20060102_150405"), suffix)
}

// HasExpired reports whether the end time has passed, regardless of status.
func (g *Giveaway) HasExpired(now time.Time) bool {
	return !g.EndTime.After(now)
}

// IsJoinable reports whether a join attempt can still be accepted.
func (g *Giveaway) IsJoinable(now time.Time) bool {
	return g.Status == GiveawayStatusActive && !g.HasExpired(now)
}

// Clone returns a deep copy; the store hands out copies so that callers can
// never mutate its records by reference.
func (g *Giveaway) Clone() *Giveaway {
	dup := *g
	dup.EndedAt = cloneTime(g.EndedAt)
	dup.CancelledAt = cloneTime(g.CancelledAt)
	dup.DeletedAt = cloneTime(g.DeletedAt)
	return &dup
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	dup := *t
	return &dup
}
