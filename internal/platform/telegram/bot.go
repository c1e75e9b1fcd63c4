package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/common/timeutil"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/notifications"
	"github.com/SDWZORO/GiveAwayBot/internal/scheduler"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/SDWZORO/GiveAwayBot/internal/validation"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// BotOptions carries the tunables the command surface needs.
type BotOptions struct {
	OwnerID             int64
	ParticipateCooldown time.Duration
	DisplayTimezone     string
}

// Bot is the inbound command surface. All commands are accepted in private
// chats only; admin commands additionally require the owner's user ID.
type Bot struct {
	client    *Client
	store     *store.Store
	validator *validation.Validator
	notifier  *notifications.Service
	sched     *scheduler.Scheduler
	opts      BotOptions
	loc       *time.Location

	now func() time.Time
	log zerolog.Logger
}

func NewBot(client *Client, st *store.Store, v *validation.Validator,
	n *notifications.Service, sched *scheduler.Scheduler, opts BotOptions) *Bot {
	return &Bot{
		client:    client,
		store:     st,
		validator: v,
		notifier:  n,
		sched:     sched,
		opts:      opts,
		loc:       timeutil.Zone(opts.DisplayTimezone),
		now:       time.Now,
		log:       logger.With("bot"),
	}
}

// Run consumes the update stream until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.client.api.GetUpdatesChan(u)

	b.log.Info().Msg("Listening for commands")
	for {
		select {
		case <-ctx.Done():
			b.client.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || !msg.IsCommand() {
		return
	}
	// Commands are private-only; group noise is ignored.
	if !msg.Chat.IsPrivate() {
		return
	}

	cmd := msg.Command()
	b.log.Debug().Str("command", cmd).Int64("user_id", msg.From.ID).Msg("Command received")

	switch cmd {
	case "start":
		b.handleStart(ctx, msg)
	case "part":
		b.handleParticipate(ctx, msg)
	case "gstats":
		if b.isOwner(msg.From.ID) {
			b.handleAdminStats(ctx, msg)
		} else {
			b.handleUserStats(ctx, msg)
		}
	case "sgive":
		b.ownerOnly(ctx, msg, b.handleCreate)
	case "end":
		b.ownerOnly(ctx, msg, b.handleEnd)
	case "cwinner":
		b.ownerOnly(ctx, msg, b.handleManualWinner)
	case "parts":
		b.ownerOnly(ctx, msg, b.handleListParticipants)
	case "rmpart":
		b.ownerOnly(ctx, msg, b.handleRemoveParticipant)
	case "pban":
		b.ownerOnly(ctx, msg, b.handleBan)
	case "punban":
		b.ownerOnly(ctx, msg, b.handleUnban)
	case "set":
		b.ownerOnly(ctx, msg, b.handleSetBroadcast)
	case "unset":
		b.ownerOnly(ctx, msg, b.handleUnsetBroadcast)
	case "gcancel":
		b.ownerOnly(ctx, msg, b.handleCancel)
	case "gdel":
		b.ownerOnly(ctx, msg, b.handleDelete)
	case "claimed":
		b.ownerOnly(ctx, msg, b.handleMarkClaimed)
	}
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.opts.OwnerID
}

func (b *Bot) ownerOnly(ctx context.Context, msg *tgbotapi.Message,
	h func(context.Context, *tgbotapi.Message)) {
	if !b.isOwner(msg.From.ID) {
		b.reply(ctx, msg, "❌ This command is only for bot owner.")
		return
	}
	h(ctx, msg)
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	if err := b.client.Send(ctx, msg.Chat.ID, text); err != nil {
		b.log.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("Reply failed")
	}
}

func profileFrom(u *tgbotapi.User) models.Profile {
	return models.Profile{
		UserID:    u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

const welcomeText = `🎮🤖 SMASH GIVEAWAY & CONTEST MANAGEMENT BOT

Welcome to the official Smash Giveaway Bot!

Available Commands:
/part - Join active giveaway
/gstats - Check giveaway status

Features:
✅ Automated & Fair Giveaways
✅ Secure Participation System
✅ Real-time Winner Selection
✅ Anti-cheat Protection

Requirements:
1. Must join all required channels
2. No multiple accounts

NO Account Age Restriction
NO Profile Photo Required`

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if b.store.IsBanned(msg.From.ID) {
		b.reply(ctx, msg, "🚫 Access Restricted\nYou are banned from using this bot.")
		return
	}
	b.reply(ctx, msg, welcomeText)
}

func (b *Bot) handleParticipate(ctx context.Context, msg *tgbotapi.Message) {
	active := b.store.ActiveGiveaways()
	if len(active) == 0 {
		b.reply(ctx, msg, "🎭 No active giveaway at the moment.")
		return
	}
	g := active[0]
	user := profileFrom(msg.From)

	verdict := b.validator.ValidateJoin(ctx, user, g.ID)
	if !verdict.OK {
		b.reply(ctx, msg, b.rejectionText(verdict))
		return
	}

	if err := b.store.AddParticipant(g.ID, user); err != nil {
		b.log.Warn().Err(err).Int64("user_id", user.UserID).Str("giveaway_id", g.ID).
			Msg("Join rejected by store")
		b.reply(ctx, msg, fmt.Sprintf("❌ %s", err.Error()))
		return
	}

	b.store.SetCooldown(user.UserID, validation.ActionParticipate, b.opts.ParticipateCooldown)
	b.reply(ctx, msg, "🎉 Entry Confirmed!\nGood luck 🍀")

	b.store.AddLog("user_joined", user.UserID, g.ID,
		fmt.Sprintf("User joined giveaway: %s", g.EventName))
	b.notifyOwnerJoin(ctx, user, g)
}

// rejectionText renders a gate verdict for the user, expanding the channel
// list for subscription failures.
func (b *Bot) rejectionText(verdict validation.Verdict) string {
	if len(verdict.Missing) == 0 {
		return verdict.Message
	}
	var sb strings.Builder
	sb.WriteString("📢 Join Required Channels\n\n")
	sb.WriteString("To participate in the giveaway, you must join these channels:\n\n")
	for _, ch := range verdict.Missing {
		fmt.Fprintf(&sb, "• %s (https://t.me/%s)\n", ch.Name, ch.Username)
	}
	sb.WriteString("\nAfter joining, send /part again.")
	return sb.String()
}

func (b *Bot) notifyOwnerJoin(ctx context.Context, user models.Profile, g *models.Giveaway) {
	username := user.Username
	if username == "" {
		username = "N/A"
	}
	count := 0
	if fresh, ok := b.store.Giveaway(g.ID); ok {
		count = fresh.ParticipantsCount
	}
	text := fmt.Sprintf(`📝 User Joined Giveaway

User: %s
ID: %d
Username: @%s
Giveaway: %s
Giveaway ID: %s
Time: %s

Total Participants: %d`,
		user.FirstName, user.UserID, username, g.EventName, g.ID,
		b.now().UTC().Format("2006-01-02 15:04:05 UTC"), count)
	b.notifier.NotifyOwner(ctx, text)
}

func (b *Bot) handleUserStats(ctx context.Context, msg *tgbotapi.Message) {
	active := b.store.ActiveGiveaways()
	if len(active) == 0 {
		b.reply(ctx, msg, "🎭 No active giveaways at the moment.")
		return
	}

	if len(active) > 3 {
		active = active[:3]
	}
	for _, g := range active {
		joined := b.store.IsParticipant(g.ID, msg.From.ID)
		status := "❌ Not Joined"
		if joined {
			status = "✅ Joined"
		}
		text := fmt.Sprintf(`🎁 Active Giveaway

Event: %s
Prize: %s
Winners: %d
Participants: %d
Time Remaining: %s
Your Status: %s`,
			g.EventName, prizeLabel(g), g.WinnerCount, g.ParticipantsCount,
			timeutil.Until(b.now(), g.EndTime), status)
		if !joined {
			text += "\n\nClick /part to join!"
		}
		b.reply(ctx, msg, text)
	}
}

func prizeLabel(g *models.Giveaway) string {
	label := string(g.PrizeType)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s - %s", label, g.PrizeDetails)
}
