// Package scheduler drives each giveaway through its lifecycle: one pending
// end timer per active giveaway, startup recovery from the store, and a
// periodic reconciliation sweep that catches anything a timer missed. The
// store's status field stays authoritative throughout; the timer table is
// process-local and rebuildable.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/notifications"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/SDWZORO/GiveAwayBot/internal/utils/random"
	"github.com/rs/zerolog"
)

// Options tunes the background intervals. Zero values take the defaults.
type Options struct {
	SweepInterval   time.Duration // reconciliation sweep, default 1m
	CleanupInterval time.Duration // cooldown/log cleanup, default 30m
	LogRetention    time.Duration // default 30 days
}

func (o *Options) fill() {
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 30 * time.Minute
	}
	if o.LogRetention <= 0 {
		o.LogRetention = 30 * 24 * time.Hour
	}
}

// Scheduler owns the end-of-giveaway transition. There is exactly one
// long-lived instance per process; every entry point that ends, schedules or
// unschedules giveaways goes through it.
type Scheduler struct {
	store    *store.Store
	notifier *notifications.Service
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[string]*time.Timer

	// endCh carries "end giveaway X" messages from timers and sweeps to the
	// single processing loop, so timer callbacks share no mutable state.
	endCh chan string

	now func() time.Time
	log zerolog.Logger
}

func New(st *store.Store, notifier *notifications.Service, opts Options) *Scheduler {
	opts.fill()
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		store:    st,
		notifier: notifier,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[string]*time.Timer),
		endCh:    make(chan string, 16),
		now:      time.Now,
		log:      logger.With("scheduler"),
	}
}

// Start performs startup recovery and launches the background loops: every
// active giveaway gets a timer from its stored end time, and anything already
// past its end time is ended immediately without waiting for the sweep.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()

	recovered := 0
	for _, g := range s.store.ActiveGiveaways() {
		s.Schedule(g)
		recovered++
	}
	for _, g := range s.store.ExpiredGiveaways() {
		s.log.Warn().Str("giveaway_id", g.ID).Msg("Giveaway already expired at startup, ending now")
		s.enqueueEnd(g.ID)
	}

	s.wg.Add(2)
	go s.sweepLoop()
	go s.cleanupLoop()

	s.log.Info().Int("active", recovered).Msg("Scheduler started")
}

// Stop cancels all pending timers and waits for in-flight transitions.
func (s *Scheduler) Stop() {
	s.cancel()

	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("Scheduler stopped")
}

// Schedule registers (or replaces) the end timer for a giveaway. A giveaway
// whose end time has already passed is ended immediately instead.
func (s *Scheduler) Schedule(g *models.Giveaway) {
	if g == nil {
		return
	}
	delay := g.EndTime.Sub(s.now())
	if delay <= 0 {
		s.enqueueEnd(g.ID)
		return
	}

	id := g.ID
	s.mu.Lock()
	if old, ok := s.timers[id]; ok {
		old.Stop()
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.enqueueEnd(id)
	})
	s.mu.Unlock()

	s.log.Info().Str("giveaway_id", id).Dur("in", delay).
		Time("ends_at", g.EndTime).Msg("Scheduled giveaway end")
}

// Unschedule drops the pending timer without touching the store record, for
// administrative deletion.
func (s *Scheduler) Unschedule(giveawayID string) {
	s.mu.Lock()
	if t, ok := s.timers[giveawayID]; ok {
		t.Stop()
		delete(s.timers, giveawayID)
	}
	s.mu.Unlock()
	s.log.Info().Str("giveaway_id", giveawayID).Msg("Removed giveaway from scheduler")
}

// EndNow forces the end-of-giveaway transition early, bypassing the timer.
// Used by the admin "end" command; safe to call for already-ended giveaways.
func (s *Scheduler) EndNow(giveawayID string) error {
	return s.endGiveaway(s.ctx, giveawayID)
}

func (s *Scheduler) enqueueEnd(giveawayID string) {
	select {
	case s.endCh <- giveawayID:
	case <-s.ctx.Done():
	}
}

// run is the single processing loop; all end transitions execute here, one
// at a time, so two triggers for the same giveaway serialize naturally.
func (s *Scheduler) run() {
	defer s.wg.Done()
	for {
		select {
		case id := <-s.endCh:
			if err := s.endGiveaway(s.ctx, id); err != nil {
				// The sweep re-discovers ACTIVE+expired giveaways, so a
				// failed transition is retried on the next cycle.
				s.log.Error().Err(err).Str("giveaway_id", id).Msg("End transition failed")
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) sweepLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// Sweep ends every expired-but-still-active giveaway. It is the safety net
// against lost timers, restarts and clock drift; together with the idempotent
// transition it gives at-least-once triggering with exactly-once effect.
func (s *Scheduler) Sweep() {
	for _, g := range s.store.ExpiredGiveaways() {
		s.log.Info().Str("giveaway_id", g.ID).Msg("Sweep found expired giveaway")
		s.enqueueEnd(g.ID)
	}
}

func (s *Scheduler) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cooldowns := s.store.CleanupExpiredCooldowns()
			logs := s.store.CleanupOldLogs(s.opts.LogRetention)
			s.store.StampCleanup()
			if cooldowns > 0 || logs > 0 {
				s.log.Info().Int("cooldowns", cooldowns).Int("logs", logs).
					Msg("Cleanup pass complete")
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// endGiveaway is the end-of-giveaway transition. It must be safe to invoke
// any number of times for the same ID: the status flip in the store is the
// single decision point, and it happens before winners are computed so a
// concurrent join sees GIVEAWAY_NOT_ACTIVE rather than racing the draw.
func (s *Scheduler) endGiveaway(ctx context.Context, giveawayID string) error {
	s.mu.Lock()
	if t, ok := s.timers[giveawayID]; ok {
		t.Stop()
		delete(s.timers, giveawayID)
	}
	s.mu.Unlock()

	g, ok := s.store.Giveaway(giveawayID)
	if !ok {
		s.log.Error().Str("giveaway_id", giveawayID).Msg("Cannot end unknown giveaway")
		return nil
	}
	if g.Status != models.GiveawayStatusActive {
		s.log.Debug().Str("giveaway_id", giveawayID).Str("status", string(g.Status)).
			Msg("Giveaway already ended, skipping")
		return nil
	}

	flipped, err := s.store.EndGiveaway(giveawayID)
	if err != nil {
		return fmt.Errorf("flip status: %w", err)
	}
	if !flipped {
		// Someone else won the race between our status read and the flip.
		return nil
	}

	participants := s.store.Participants(giveawayID)
	winners, err := random.PickWinners(participants, g.WinnerCount)
	if err != nil {
		return fmt.Errorf("select winners: %w", err)
	}
	for _, w := range winners {
		if !s.store.AddWinner(giveawayID, w.UserID, "") {
			s.log.Warn().Int64("user_id", w.UserID).Str("giveaway_id", giveawayID).
				Msg("Duplicate winner skipped")
		}
	}

	// Re-fetch so announcements carry the ended status and stamp.
	if ended, ok := s.store.Giveaway(giveawayID); ok {
		g = ended
	}

	// Network sends happen outside any store operation.
	if s.notifier != nil {
		s.notifier.AnnounceWinners(ctx, g, winners)
		if len(winners) > 0 {
			s.notifier.NotifyWinners(ctx, g, winners)
		} else {
			s.notifier.NotifyOwner(ctx,
				fmt.Sprintf("ℹ️ Giveaway %s ended with no participants.", giveawayID))
		}
	}
	s.store.MarkAnnounced(giveawayID)

	s.store.AddLog("giveaway_ended", 0, giveawayID,
		fmt.Sprintf("Giveaway ended with %d winners out of %d participants",
			len(winners), len(participants)))
	s.log.Info().Str("giveaway_id", giveawayID).Int("participants", len(participants)).
		Int("winners", len(winners)).Msg("Giveaway ended")
	return nil
}
