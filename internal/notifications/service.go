// Package notifications formats and delivers giveaway announcements. Every
// send is best-effort: a failure for one target is logged and never aborts
// the rest of the batch.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/rs/zerolog"
)

// Sink delivers text to a chat or user. Implementations report per-call
// failures and must never panic past the caller.
type Sink interface {
	Send(ctx context.Context, target int64, text string) error
}

// Service builds announcement text and pushes it through the sink.
type Service struct {
	sink    Sink
	store   *store.Store
	ownerID int64
	// pause between winner DMs, to stay under platform rate limits
	dmDelay time.Duration
	log     zerolog.Logger
}

func NewService(sink Sink, st *store.Store, ownerID int64) *Service {
	return &Service{
		sink:    sink,
		store:   st,
		ownerID: ownerID,
		dmDelay: 500 * time.Millisecond,
		log:     logger.With("notifications"),
	}
}

// AnnounceWinners posts the end-of-giveaway announcement to every active
// broadcast chat and returns how many deliveries succeeded.
func (s *Service) AnnounceWinners(ctx context.Context, g *models.Giveaway, winners []*models.Participant) int {
	var text string
	if len(winners) == 0 {
		text = buildNoWinnersMessage(g)
	} else {
		text = buildWinnersMessage(g, winners)
	}
	return s.broadcast(ctx, g.ID, text)
}

func (s *Service) broadcast(ctx context.Context, giveawayID, text string) int {
	sent := 0
	for _, chat := range s.store.BroadcastChats() {
		if err := s.sink.Send(ctx, chat.ChatID, text); err != nil {
			s.log.Error().Err(err).Int64("chat_id", chat.ChatID).
				Str("giveaway_id", giveawayID).Msg("Broadcast delivery failed")
			continue
		}
		sent++
	}
	s.log.Info().Str("giveaway_id", giveawayID).Int("sent", sent).
		Msg("Announcement broadcast complete")
	return sent
}

// NotifyWinners DMs each winner individually, pacing sends, and then reports
// the delivery tally to the owner. A single failed DM is skipped, not
// retried; the persisted winner list remains the durable record.
func (s *Service) NotifyWinners(ctx context.Context, g *models.Giveaway, winners []*models.Participant) {
	notified, failed := 0, 0
	for i, w := range winners {
		if i > 0 {
			select {
			case <-time.After(s.dmDelay):
			case <-ctx.Done():
				return
			}
		}
		if err := s.sink.Send(ctx, w.UserID, buildWinnerDM(g)); err != nil {
			s.log.Error().Err(err).Int64("user_id", w.UserID).Msg("Winner DM failed")
			failed++
			continue
		}
		notified++
	}

	if notified == 0 && failed == 0 {
		return
	}
	report := fmt.Sprintf(
		"📋 Winner Notification Report\n\nEvent: %s\nGiveaway ID: %s\nTotal Winners: %d\nNotified: %d\nFailed: %d",
		g.EventName, g.ID, len(winners), notified, failed)
	if err := s.sink.Send(ctx, s.ownerID, report); err != nil {
		s.log.Error().Err(err).Msg("Owner report delivery failed")
	}
}

// NotifyOwner sends a one-off message to the bot owner.
func (s *Service) NotifyOwner(ctx context.Context, text string) {
	if err := s.sink.Send(ctx, s.ownerID, text); err != nil {
		s.log.Error().Err(err).Msg("Owner notification failed")
	}
}

func prizeLine(g *models.Giveaway) string {
	label := string(g.PrizeType)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s - %s", label, g.PrizeDetails)
}

func buildWinnersMessage(g *models.Giveaway, winners []*models.Participant) string {
	var b strings.Builder
	b.WriteString("🎊 GIVEAWAY ENDED 🎊\n\n")
	fmt.Fprintf(&b, "🏷 Event: %s\n", g.EventName)
	fmt.Fprintf(&b, "🎁 Prize: %s\n\n", prizeLine(g))
	b.WriteString("🏆 CONGRATULATIONS TO THE WINNERS! 🏆\n\n")
	for i, w := range winners {
		switch i {
		case 0:
			fmt.Fprintf(&b, "🥇 %s\n", w.DisplayName())
		case 1:
			fmt.Fprintf(&b, "🥈 %s\n", w.DisplayName())
		case 2:
			fmt.Fprintf(&b, "🥉 %s\n", w.DisplayName())
		default:
			fmt.Fprintf(&b, "%d. %s\n", i+1, w.DisplayName())
		}
	}
	b.WriteString("\nWinners will be contacted via DM to claim their prizes.\n\nThank you to all participants! 🎮")
	return b.String()
}

func buildNoWinnersMessage(g *models.Giveaway) string {
	return fmt.Sprintf(
		"🎊 GIVEAWAY ENDED 🎊\n\n🏷 Event: %s\n🎁 Prize: %s\n\n🏆 WINNERS: No participants joined this giveaway.\n\nThe giveaway has ended without any participants.",
		g.EventName, prizeLine(g))
}

func buildWinnerDM(g *models.Giveaway) string {
	return fmt.Sprintf(
		"🎉 CONGRATULATIONS! YOU WON! 🎉\n\n🏷 Event: %s\n🎁 Prize: %s\n\nGiveaway ID: %s\n\n🏆 You have been selected as a winner!\n\nPlease contact the admin to claim your reward.\n\nThank you for participating! 🎮",
		g.EventName, prizeLine(g), g.ID)
}
