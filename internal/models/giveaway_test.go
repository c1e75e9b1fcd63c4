package models

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseGiveawayStatus(t *testing.T) {
	for _, valid := range []string{"active", "ended", "cancelled"} {
		status, err := ParseGiveawayStatus(valid)
		require.NoError(t, err)
		require.Equal(t, GiveawayStatus(valid), status)
	}
	_, err := ParseGiveawayStatus("paused")
	require.Error(t, err)
	_, err = ParseGiveawayStatus("Active")
	require.Error(t, err)
}

func TestStatusUnmarshalRejectsUnknownValues(t *testing.T) {
	var g Giveaway
	err := json.Unmarshal([]byte(`{"status": "finished"}`), &g)
	require.ErrorContains(t, err, "invalid giveaway status")

	require.NoError(t, json.Unmarshal([]byte(`{"status": "ended"}`), &g))
	require.Equal(t, GiveawayStatusEnded, g.Status)
}

func TestParsePrizeType(t *testing.T) {
	pt, err := ParsePrizeType("Coins")
	require.NoError(t, err)
	require.Equal(t, PrizeTypeCoins, pt)

	pt, err = ParsePrizeType("characters")
	require.NoError(t, err)
	require.Equal(t, PrizeTypeCharacters, pt)

	_, err = ParsePrizeType("gems")
	require.Error(t, err)

	var g Giveaway
	err = json.Unmarshal([]byte(`{"prize_type": "gems"}`), &g)
	require.ErrorContains(t, err, "invalid prize type")
}

func TestNewGiveawayIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 29, 14, 5, 9, 0, time.UTC)
	pattern := regexp.MustCompile(`^GIV_20260829_140509_[0-9a-f]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewGiveawayID(now)
		require.Regexp(t, pattern, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestJoinability(t *testing.T) {
	now := time.Now()
	g := &Giveaway{Status: GiveawayStatusActive, EndTime: now.Add(time.Hour)}
	require.True(t, g.IsJoinable(now))
	require.False(t, g.HasExpired(now))

	g.EndTime = now
	require.True(t, g.HasExpired(now))
	require.False(t, g.IsJoinable(now))

	g.EndTime = now.Add(time.Hour)
	g.Status = GiveawayStatusEnded
	require.False(t, g.IsJoinable(now))
	g.Status = GiveawayStatusCancelled
	require.False(t, g.IsJoinable(now))
}

func TestCloneIsDeep(t *testing.T) {
	ended := time.Now().UTC()
	g := &Giveaway{ID: "GIV_x", Status: GiveawayStatusEnded, EndedAt: &ended}

	dup := g.Clone()
	require.Equal(t, g, dup)

	*dup.EndedAt = ended.Add(time.Hour)
	dup.Status = GiveawayStatusActive
	require.Equal(t, ended, *g.EndedAt)
	require.Equal(t, GiveawayStatusEnded, g.Status)
}

func TestDisplayName(t *testing.T) {
	p := Participant{Profile: Profile{UserID: 42}}
	require.Equal(t, "User 42", p.DisplayName())

	p.FirstName = "Ada"
	require.Equal(t, "Ada", p.DisplayName())

	p.Username = "ada_l"
	require.Equal(t, "@ada_l", p.DisplayName())
}
