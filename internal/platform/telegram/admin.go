package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SDWZORO/GiveAwayBot/internal/common/timeutil"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const participantsPerPage = 20

// handleCreate creates a giveaway in one message:
//
//	/sgive <event name> | <coins|characters> | <prize details> | <winners> | <yyyy-mm-dd hh:mm AM/PM>
//
// The end time is read in the configured display timezone and stored in UTC.
func (b *Bot) handleCreate(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.Split(msg.CommandArguments(), "|")
	if len(parts) != 5 {
		b.reply(ctx, msg, "Usage: /sgive <event name> | <coins|characters> | <prize details> | <winner count> | <end time, e.g. 2026-09-01 08:30 PM>")
		return
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	prizeType, err := models.ParsePrizeType(strings.ToLower(parts[1]))
	if err != nil {
		b.reply(ctx, msg, "❌ Prize type must be coins or characters.")
		return
	}
	winners, err := strconv.Atoi(parts[3])
	if err != nil || winners <= 0 {
		b.reply(ctx, msg, "❌ Winner count must be a positive number.")
		return
	}
	endTime, err := timeutil.ParseLocal(parts[4], b.loc)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid end time. Use format: 2026-09-01 08:30 PM")
		return
	}
	now := b.now().UTC()
	if !endTime.After(now) {
		b.reply(ctx, msg, "❌ End time must be in the future.")
		return
	}

	g := &models.Giveaway{
		EventName:    parts[0],
		PrizeType:    prizeType,
		PrizeDetails: parts[2],
		WinnerCount:  winners,
		StartTime:    now,
		EndTime:      endTime,
		CreatedBy:    msg.From.ID,
	}
	id, err := b.store.CreateGiveaway(g)
	if err != nil {
		b.reply(ctx, msg, fmt.Sprintf("❌ %s", err.Error()))
		return
	}
	created, ok := b.store.Giveaway(id)
	if !ok {
		b.log.Error().Str("giveaway_id", id).Msg("Created giveaway missing on re-fetch")
		b.reply(ctx, msg, "❌ Something went wrong creating the giveaway. Try again.")
		return
	}
	b.sched.Schedule(created)

	b.store.AddLog("giveaway_created", msg.From.ID, id,
		fmt.Sprintf("Created giveaway: %s", g.EventName))
	b.reply(ctx, msg, fmt.Sprintf(`✅ Giveaway Created

Event: %s
Giveaway ID: %s
Prize: %s
Winners: %d
Ends: %s (%s)

Users can now join with /part.`,
		g.EventName, id, prizeLabel(g), winners,
		timeutil.FormatLocal(endTime, b.loc), timeutil.Until(now, endTime)))
}

func (b *Bot) handleEnd(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /end <giveaway_id>")
		return
	}
	id := args[0]

	g, ok := b.store.Giveaway(id)
	if !ok {
		b.reply(ctx, msg, "❌ Giveaway not found.")
		return
	}
	if err := b.sched.EndNow(id); err != nil {
		b.reply(ctx, msg, fmt.Sprintf("❌ Failed to end giveaway: %s", err.Error()))
		return
	}

	b.reply(ctx, msg, fmt.Sprintf(`✅ Giveaway Ended Successfully

Event: %s
Giveaway ID: %s

Winners have been selected and announced.`, g.EventName, id))
}

// handleCancel ends a giveaway without drawing winners.
func (b *Bot) handleCancel(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /gcancel <giveaway_id>")
		return
	}
	id := args[0]

	cancelled, err := b.store.CancelGiveaway(id)
	if err != nil {
		b.reply(ctx, msg, fmt.Sprintf("❌ %s", err.Error()))
		return
	}
	if !cancelled {
		b.reply(ctx, msg, "❌ Giveaway not found or already finished.")
		return
	}
	b.sched.Unschedule(id)
	b.store.AddLog("giveaway_cancelled", msg.From.ID, id, "Cancelled by owner")
	b.reply(ctx, msg, fmt.Sprintf("✅ Giveaway %s cancelled. No winners were drawn.", id))
}

// handleDelete archives a giveaway record out of the main table.
func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /gdel <giveaway_id>")
		return
	}
	id := args[0]

	b.sched.Unschedule(id)
	if !b.store.DeleteGiveaway(id, strconv.FormatInt(msg.From.ID, 10)) {
		b.reply(ctx, msg, "❌ Giveaway not found.")
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("✅ Giveaway %s deleted and archived.", id))
}

func (b *Bot) handleManualWinner(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(ctx, msg, "Usage: /cwinner <giveaway_id> <user_id>")
		return
	}
	id := args[0]
	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid user ID.")
		return
	}

	g, ok := b.store.Giveaway(id)
	if !ok {
		b.reply(ctx, msg, "❌ Giveaway not found.")
		return
	}
	if !b.store.IsParticipant(id, userID) {
		b.reply(ctx, msg, "❌ User is not a participant in this giveaway.")
		return
	}
	if !b.store.AddWinner(id, userID, "manual override") {
		b.reply(ctx, msg, "❌ User is already a winner of this giveaway.")
		return
	}

	b.store.AddLog("manual_winner_set", msg.From.ID, id,
		fmt.Sprintf("Manually set user %d as winner", userID))
	b.reply(ctx, msg, fmt.Sprintf(`✅ Manual Winner Set

User ID: %d
Giveaway: %s
Giveaway ID: %s

Winner has been added to the records.`, userID, g.EventName, id))
}

// handleMarkClaimed records prize delivery for a winner.
func (b *Bot) handleMarkClaimed(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(ctx, msg, "Usage: /claimed <giveaway_id> <user_id>")
		return
	}
	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid user ID.")
		return
	}
	if !b.store.MarkPrizeClaimed(args[0], userID) {
		b.reply(ctx, msg, "❌ No such winner for that giveaway.")
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("✅ Prize marked as claimed for user %d.", userID))
}

func (b *Bot) handleListParticipants(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /parts <giveaway_id> [page]")
		return
	}
	id := args[0]
	page := 0
	if len(args) > 1 {
		if p, err := strconv.Atoi(args[1]); err == nil && p > 0 {
			page = p - 1
		}
	}

	participants := b.store.Participants(id)
	if len(participants) == 0 {
		b.reply(ctx, msg, "📭 No participants found for this giveaway.")
		return
	}

	total := len(participants)
	totalPages := (total + participantsPerPage - 1) / participantsPerPage
	if page >= totalPages {
		page = totalPages - 1
	}
	start := page * participantsPerPage
	end := start + participantsPerPage
	if end > total {
		end = total
	}

	name := id
	if g, ok := b.store.Giveaway(id); ok {
		name = g.EventName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 Participants for: %s\n\n", name)
	fmt.Fprintf(&sb, "🎫 Giveaway ID: %s\n", id)
	fmt.Fprintf(&sb, "📊 Total Participants: %d\n", total)
	fmt.Fprintf(&sb, "📄 Page: %d/%d\n", page+1, totalPages)
	for i, p := range participants[start:end] {
		fmt.Fprintf(&sb, "\n%d. %s\n   🆔 ID: %d\n   ⏰ Joined: %s",
			start+i+1, p.DisplayName(), p.UserID,
			p.JoinedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	if totalPages > 1 {
		fmt.Fprintf(&sb, "\n\nUse /parts %s <page> to browse.", id)
	}
	b.reply(ctx, msg, sb.String())
}

func (b *Bot) handleRemoveParticipant(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(ctx, msg, "Usage: /rmpart <giveaway_id> <user_id>")
		return
	}
	id := args[0]
	userID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid user ID.")
		return
	}

	if !b.store.RemoveParticipant(id, userID, strconv.FormatInt(msg.From.ID, 10)) {
		b.reply(ctx, msg, "❌ User not found in giveaway.")
		return
	}
	b.store.AddLog("participant_removed", msg.From.ID, id,
		fmt.Sprintf("Removed user %d", userID))
	b.reply(ctx, msg, fmt.Sprintf(`✅ Participant Removed

User ID: %d
Giveaway ID: %s

User has been removed from the giveaway.`, userID, id))
}

func (b *Bot) handleBan(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /pban <user_id> [reason]")
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid user ID.")
		return
	}
	reason := strings.Join(args[1:], " ")
	if reason == "" {
		reason = "No reason provided"
	}

	if !b.store.BanUser(userID, reason, msg.From.ID) {
		b.reply(ctx, msg, "❌ User is already banned.")
		return
	}
	b.reply(ctx, msg, fmt.Sprintf(`✅ User Banned Globally

🆔 ID: %d
📝 Reason: %s

User can no longer use the bot.`, userID, reason))
}

func (b *Bot) handleUnban(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /punban <user_id>")
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg, "❌ Invalid user ID.")
		return
	}

	if !b.store.UnbanUser(userID, msg.From.ID) {
		b.reply(ctx, msg, "❌ User not found in ban list.")
		return
	}
	// A fresh start includes any pending rate limits.
	b.store.ClearCooldown(userID, "")
	b.reply(ctx, msg, fmt.Sprintf(`✅ User Unbanned

🆔 ID: %d

User can now use the bot again.`, userID))
}

func (b *Bot) handleSetBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		chats := b.store.BroadcastChats()
		if len(chats) == 0 {
			b.reply(ctx, msg, "📭 No broadcast chats set.\n\nUsage: /set @username1 @username2 ...")
			return
		}
		var sb strings.Builder
		sb.WriteString("📢 Current Broadcast Chats:\n\n")
		for _, chat := range chats {
			fmt.Fprintf(&sb, "• %s (@%s)\n", chat.Title, chat.Username)
		}
		sb.WriteString("\nTo add more, use: /set @username1 @username2 ...")
		b.reply(ctx, msg, sb.String())
		return
	}

	added := 0
	var failed []string
	for _, arg := range args {
		username := strings.TrimPrefix(strings.TrimSpace(arg), "@")
		if username == "" {
			continue
		}
		chatID, title, err := b.client.ChatInfo(username)
		if err != nil {
			failed = append(failed, fmt.Sprintf("@%s (%s)", username, err.Error()))
			continue
		}
		ok := b.store.AddBroadcastChat(models.BroadcastChat{
			ChatID:   chatID,
			Username: username,
			Title:    title,
			AddedBy:  msg.From.ID,
		})
		if !ok {
			failed = append(failed, fmt.Sprintf("@%s (already exists)", username))
			continue
		}
		added++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Added %d broadcast chats.\n", added)
	if len(failed) > 0 {
		fmt.Fprintf(&sb, "\n❌ Failed to add %d chats:\n", len(failed))
		for _, f := range failed {
			fmt.Fprintf(&sb, "• %s\n", f)
		}
	}
	b.reply(ctx, msg, sb.String())
}

// handleUnsetBroadcast removes a chat from the announcement list.
func (b *Bot) handleUnsetBroadcast(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 1 {
		b.reply(ctx, msg, "Usage: /unset @username")
		return
	}
	ref := strings.TrimPrefix(args[0], "@")
	if !b.store.RemoveBroadcastChat(ref) {
		b.reply(ctx, msg, "❌ Chat not found in broadcast list.")
		return
	}
	b.reply(ctx, msg, fmt.Sprintf("✅ Removed @%s from broadcast chats.", ref))
}

func (b *Bot) handleAdminStats(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		b.sendActiveOverview(ctx, msg)
		return
	}

	id := args[0]
	g, ok := b.store.Giveaway(id)
	if !ok {
		b.reply(ctx, msg, "❌ Giveaway not found.")
		return
	}
	winners := b.store.Winners(id)

	var sb strings.Builder
	sb.WriteString("📊 Giveaway Statistics 📊\n\n")
	fmt.Fprintf(&sb, "🎫 ID: %s\n", g.ID)
	fmt.Fprintf(&sb, "🏷 Event: %s\n", g.EventName)
	fmt.Fprintf(&sb, "🎁 Prize: %s\n", prizeLabel(g))
	fmt.Fprintf(&sb, "🏆 Winner Count: %d\n", g.WinnerCount)
	fmt.Fprintf(&sb, "📊 Status: %s\n", strings.ToUpper(string(g.Status)))
	fmt.Fprintf(&sb, "⏰ Start Time: %s\n", timeutil.FormatLocal(g.StartTime, b.loc))
	fmt.Fprintf(&sb, "⏰ End Time: %s\n", timeutil.FormatLocal(g.EndTime, b.loc))
	fmt.Fprintf(&sb, "👥 Participants: %d\n", g.ParticipantsCount)
	fmt.Fprintf(&sb, "🏆 Winners: %d\n", len(winners))
	if g.Status == models.GiveawayStatusActive {
		fmt.Fprintf(&sb, "⏳ Time Left: %s\n", timeutil.Until(b.now(), g.EndTime))
	}
	if len(winners) > 0 {
		sb.WriteString("\n🏆 Winners:\n")
		for i, w := range winners {
			claimed := "❌"
			if w.PrizeClaimed {
				claimed = "✅"
			}
			fmt.Fprintf(&sb, "%d. ID: %d %s\n", i+1, w.UserID, claimed)
		}
	}
	b.reply(ctx, msg, sb.String())
}

func (b *Bot) sendActiveOverview(ctx context.Context, msg *tgbotapi.Message) {
	giveaways := b.store.ActiveGiveaways()
	if len(giveaways) == 0 {
		b.reply(ctx, msg, "📊 No active giveaways found.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 Active Giveaways\n\n")
	shown := giveaways
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for _, g := range shown {
		fmt.Fprintf(&sb, "🏷 Event: %s\n", g.EventName)
		fmt.Fprintf(&sb, "🎫 ID: %s\n", g.ID)
		fmt.Fprintf(&sb, "🎁 Prize: %s\n", prizeLabel(g))
		fmt.Fprintf(&sb, "👥 Participants: %d\n", g.ParticipantsCount)
		fmt.Fprintf(&sb, "⏰ Ends: %s\n", timeutil.FormatLocal(g.EndTime, b.loc))
		fmt.Fprintf(&sb, "⏳ Time Left: %s\n", timeutil.Until(b.now(), g.EndTime))
		sb.WriteString(strings.Repeat("─", 20) + "\n")
	}
	if len(giveaways) > 10 {
		fmt.Fprintf(&sb, "\n... and %d more giveaways.", len(giveaways)-10)
	}
	b.reply(ctx, msg, sb.String())
}
