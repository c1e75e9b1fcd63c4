package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/notifications"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	Target int64
	Text   string
}

type fakeSink struct {
	sent []sentMessage
}

func (f *fakeSink) Send(ctx context.Context, target int64, text string) error {
	f.sent = append(f.sent, sentMessage{Target: target, Text: text})
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "db.json"), 50)
	require.NoError(t, err)
	return st
}

func createGiveaway(t *testing.T, st *store.Store, winners int, until time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	id, err := st.CreateGiveaway(&models.Giveaway{
		EventName:    "Lifecycle Test",
		PrizeType:    models.PrizeTypeCoins,
		PrizeDetails: "1000 coins",
		WinnerCount:  winners,
		StartTime:    now.Add(-2 * time.Hour),
		EndTime:      now.Add(until),
		CreatedBy:    1000,
	})
	require.NoError(t, err)
	return id
}

func join(t *testing.T, st *store.Store, id string, userIDs ...int64) {
	t.Helper()
	for _, uid := range userIDs {
		require.NoError(t, st.AddParticipant(id, models.Profile{UserID: uid}))
	}
}

func TestEndNowDrawsDistinctWinners(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 3, time.Hour)
	join(t, st, id, 1, 2, 3, 4, 5, 6, 7, 8)

	s := New(st, nil, Options{})
	require.NoError(t, s.EndNow(id))

	g, ok := st.Giveaway(id)
	require.True(t, ok)
	require.Equal(t, models.GiveawayStatusEnded, g.Status)
	require.True(t, g.WinnersSelected)
	require.True(t, g.Announced)

	winners := st.Winners(id)
	require.Len(t, winners, 3)
	seen := make(map[int64]bool)
	for _, w := range winners {
		require.False(t, seen[w.UserID], "user %d drawn twice", w.UserID)
		seen[w.UserID] = true
		require.True(t, st.IsParticipant(id, w.UserID), "winner %d never joined", w.UserID)
	}

	logs := st.RecentLogs(5, store.LogFilter{Type: "giveaway_ended", GiveawayID: id})
	require.Len(t, logs, 1)
	require.Contains(t, logs[0].Details, "3 winners out of 8 participants")
}

func TestEndNowWithFewerParticipantsThanSlots(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 5, time.Hour)
	join(t, st, id, 1, 2)

	s := New(st, nil, Options{})
	require.NoError(t, s.EndNow(id))

	winners := st.Winners(id)
	require.Len(t, winners, 2, "everyone wins when slots exceed participants")
}

func TestEndNowIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 2, time.Hour)
	join(t, st, id, 1, 2, 3, 4)

	s := New(st, nil, Options{})
	require.NoError(t, s.EndNow(id))
	first := st.Winners(id)

	// Repeat triggers observe the terminal status and change nothing.
	require.NoError(t, s.EndNow(id))
	require.NoError(t, s.EndNow(id))
	require.Equal(t, first, st.Winners(id))

	logs := st.RecentLogs(0, store.LogFilter{Type: "giveaway_ended", GiveawayID: id})
	require.Len(t, logs, 1, "the end transition must fire exactly once")
}

func TestEndNowUnknownOrCancelled(t *testing.T) {
	st := newTestStore(t)
	s := New(st, nil, Options{})

	require.NoError(t, s.EndNow("GIV_missing"))

	id := createGiveaway(t, st, 1, time.Hour)
	cancelled, err := st.CancelGiveaway(id)
	require.NoError(t, err)
	require.True(t, cancelled)

	require.NoError(t, s.EndNow(id))
	g, _ := st.Giveaway(id)
	require.Equal(t, models.GiveawayStatusCancelled, g.Status)
	require.Empty(t, st.Winners(id))
}

func TestEndedGiveawayRejectsLateJoin(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 1, time.Hour)
	join(t, st, id, 1)

	s := New(st, nil, Options{})
	require.NoError(t, s.EndNow(id))

	err := st.AddParticipant(id, models.Profile{UserID: 2})
	require.Error(t, err)
	require.Len(t, st.Winners(id), 1)
}

func TestEndNowAnnouncesAndNotifies(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 1, time.Hour)
	join(t, st, id, 42)
	require.True(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -100, Username: "smash_one"}))

	sink := &fakeSink{}
	notifier := notifications.NewService(sink, st, 1000)
	s := New(st, notifier, Options{})
	require.NoError(t, s.EndNow(id))

	// Broadcast announcement, winner DM, owner report.
	require.Len(t, sink.sent, 3)
	require.Equal(t, int64(-100), sink.sent[0].Target)
	require.Contains(t, sink.sent[0].Text, "GIVEAWAY ENDED")
	require.Equal(t, int64(42), sink.sent[1].Target)
	require.Contains(t, sink.sent[1].Text, "YOU WON")
	require.Equal(t, int64(1000), sink.sent[2].Target)
}

func TestEndNowNoParticipantsNotifiesOwner(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 3, time.Hour)
	require.True(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -100, Username: "smash_one"}))

	sink := &fakeSink{}
	notifier := notifications.NewService(sink, st, 1000)
	s := New(st, notifier, Options{})
	require.NoError(t, s.EndNow(id))

	g, _ := st.Giveaway(id)
	require.Equal(t, models.GiveawayStatusEnded, g.Status)
	require.Empty(t, st.Winners(id))

	require.Len(t, sink.sent, 2)
	require.Contains(t, sink.sent[0].Text, "No participants joined")
	require.Equal(t, int64(1000), sink.sent[1].Target)
	require.Contains(t, sink.sent[1].Text, "no participants")
}

func TestStartRecoversExpiredGiveaways(t *testing.T) {
	st := newTestStore(t)
	expired := createGiveaway(t, st, 1, -time.Minute)
	future := createGiveaway(t, st, 1, time.Hour)
	join(t, st, expired, 1, 2)

	s := New(st, nil, Options{SweepInterval: time.Hour, CleanupInterval: time.Hour})
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		g, _ := st.Giveaway(expired)
		return g.Status == models.GiveawayStatusEnded
	}, 2*time.Second, 10*time.Millisecond)

	g, _ := st.Giveaway(future)
	require.Equal(t, models.GiveawayStatusActive, g.Status)

	s.mu.Lock()
	_, scheduled := s.timers[future]
	s.mu.Unlock()
	require.True(t, scheduled, "future giveaway gets a timer at startup")
}

func TestTimerFiresAtEndTime(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 1, 50*time.Millisecond)
	join(t, st, id, 1)

	s := New(st, nil, Options{SweepInterval: time.Hour, CleanupInterval: time.Hour})
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		g, _ := st.Giveaway(id)
		return g.Status == models.GiveawayStatusEnded
	}, 2*time.Second, 10*time.Millisecond)
	require.Len(t, st.Winners(id), 1)
}

func TestSweepIsTheBackstop(t *testing.T) {
	st := newTestStore(t)
	future := createGiveaway(t, st, 1, time.Hour)
	expired := createGiveaway(t, st, 1, -time.Minute)
	join(t, st, expired, 7)

	// No Start: simulate a lost timer by sweeping manually through the
	// message loop only.
	s := New(st, nil, Options{SweepInterval: time.Hour, CleanupInterval: time.Hour})
	s.wg.Add(1)
	go s.run()
	defer s.Stop()

	s.Sweep()

	require.Eventually(t, func() bool {
		g, _ := st.Giveaway(expired)
		return g.Status == models.GiveawayStatusEnded
	}, 2*time.Second, 10*time.Millisecond)

	g, _ := st.Giveaway(future)
	require.Equal(t, models.GiveawayStatusActive, g.Status, "sweep must not touch unexpired giveaways")
}

func TestUnscheduleDropsTimer(t *testing.T) {
	st := newTestStore(t)
	id := createGiveaway(t, st, 1, time.Hour)

	s := New(st, nil, Options{})
	g, _ := st.Giveaway(id)
	s.Schedule(g)

	s.mu.Lock()
	_, ok := s.timers[id]
	s.mu.Unlock()
	require.True(t, ok)

	s.Unschedule(id)
	s.mu.Lock()
	_, ok = s.timers[id]
	s.mu.Unlock()
	require.False(t, ok)
}

func TestScheduleNilGiveawayIsNoOp(t *testing.T) {
	st := newTestStore(t)
	s := New(st, nil, Options{})

	require.NotPanics(t, func() { s.Schedule(nil) })
	s.mu.Lock()
	require.Empty(t, s.timers)
	s.mu.Unlock()
}

func TestCleanupPass(t *testing.T) {
	st := newTestStore(t)
	s := New(st, nil, Options{SweepInterval: time.Hour, CleanupInterval: 20 * time.Millisecond})
	st.SetCooldown(1, "participate", -time.Minute)

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool {
		return st.Snapshot().ActiveCooldowns == 0
	}, 2*time.Second, 10*time.Millisecond)
}
