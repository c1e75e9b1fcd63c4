// Package telegram adapts the bot API to the rest of the system: outbound
// message delivery for notifications, channel-membership checks for the
// participation gate, and the inbound command surface.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/SDWZORO/GiveAwayBot/internal/common/logger"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Client wraps the bot API handle. It satisfies notifications.Sink via Send
// and validation.ChannelOracle via CheckAll.
type Client struct {
	api      *tgbotapi.BotAPI
	channels []string // required channels, stored without the leading @
	log      zerolog.Logger
}

func NewClient(token string, requiredChannels []string) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}

	channels := make([]string, 0, len(requiredChannels))
	for _, ch := range requiredChannels {
		ch = strings.TrimSpace(strings.TrimPrefix(ch, "@"))
		if ch != "" {
			channels = append(channels, ch)
		}
	}

	c := &Client{
		api:      api,
		channels: channels,
		log:      logger.With("telegram"),
	}
	c.log.Info().Str("username", api.Self.UserName).Msg("Bot authorized")
	return c, nil
}

// Username returns the bot's own @handle.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Send delivers a plain-text message to a user or chat.
func (c *Client) Send(ctx context.Context, target int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(target, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send to %d: %w", target, err)
	}
	return nil
}

// memberStatuses are the chat-member states that count as subscribed.
var memberStatuses = map[string]bool{
	"creator":       true,
	"administrator": true,
	"member":        true,
	"restricted":    true,
}

// CheckAll verifies the user's membership in every required channel. A lookup
// failure counts the channel as missing rather than waving the user through.
func (c *Client) CheckAll(ctx context.Context, userID int64) (bool, []models.MissingChannel, error) {
	if len(c.channels) == 0 {
		return true, nil, nil
	}

	var missing []models.MissingChannel
	for _, ch := range c.channels {
		if err := ctx.Err(); err != nil {
			return false, nil, err
		}
		ok, err := c.isMember(userID, ch)
		if err != nil {
			c.log.Warn().Err(err).Str("channel", ch).Int64("user_id", userID).
				Msg("Membership check failed, treating as not subscribed")
			missing = append(missing, models.MissingChannel{Username: ch, Name: ch})
			continue
		}
		if !ok {
			missing = append(missing, models.MissingChannel{Username: ch, Name: ch})
		}
	}
	return len(missing) == 0, missing, nil
}

func (c *Client) isMember(userID int64, channel string) (bool, error) {
	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: "@" + channel,
			UserID:             userID,
		},
	})
	if err != nil {
		return false, err
	}
	return memberStatuses[member.Status], nil
}

// ChatInfo resolves a channel handle to its numeric ID and title.
func (c *Client) ChatInfo(handle string) (int64, string, error) {
	handle = strings.TrimPrefix(handle, "@")
	chat, err := c.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: "@" + handle},
	})
	if err != nil {
		return 0, "", fmt.Errorf("get chat @%s: %w", handle, err)
	}
	return chat.ID, chat.Title, nil
}
