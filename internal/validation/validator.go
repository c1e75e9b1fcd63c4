// Package validation decides whether a join attempt is accepted. Checks run
// cheapest first and short-circuit; the channel-subscription oracle is the
// only external call and always goes last.
package validation

import (
	"context"
	"fmt"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/common/timeutil"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
)

// ActionParticipate is the cooldown bucket consulted before a join.
const ActionParticipate = "participate"

// ChannelOracle answers channel-membership queries. Implementations must
// fail closed: an unreachable or unknown channel counts as not subscribed
// and shows up in the missing list with a best-effort display name.
type ChannelOracle interface {
	CheckAll(ctx context.Context, userID int64) (subscribed bool, missing []models.MissingChannel, err error)
}

// Verdict is the gate's decision. Code is stable and machine-readable;
// Message is ready for the user; Missing is populated only for
// SUBSCRIPTION_REQUIRED so the caller can render join prompts.
type Verdict struct {
	OK      bool
	Code    apperrors.ErrorCode
	Message string
	Missing []models.MissingChannel
}

func accept() Verdict {
	return Verdict{OK: true}
}

func reject(code apperrors.ErrorCode, message string) Verdict {
	return Verdict{Code: code, Message: message}
}

// Validator gates giveaway entry. Dependencies are injected at construction,
// never discovered at call time.
type Validator struct {
	store  *store.Store
	oracle ChannelOracle
}

func New(st *store.Store, oracle ChannelOracle) *Validator {
	return &Validator{store: st, oracle: oracle}
}

// ValidateJoin runs the full check chain for one user against one giveaway.
// Order: banned, giveaway existence, status, duplicate entry, cooldown,
// then channel subscription.
func (v *Validator) ValidateJoin(ctx context.Context, user models.Profile, giveawayID string) Verdict {
	if v.store.IsBanned(user.UserID) {
		return reject(apperrors.ErrCodeUserBanned, "You are banned from participating in giveaways.")
	}

	g, ok := v.store.Giveaway(giveawayID)
	if !ok {
		return reject(apperrors.ErrCodeGiveawayNotFound, "Giveaway not found.")
	}
	if g.Status != models.GiveawayStatusActive {
		return reject(apperrors.ErrCodeGiveawayNotActive, "This giveaway is not active.")
	}

	if v.store.IsParticipant(giveawayID, user.UserID) {
		return reject(apperrors.ErrCodeAlreadyJoined, "You have already joined this giveaway.")
	}

	if !v.store.CheckCooldown(user.UserID, ActionParticipate) {
		remaining := v.store.RemainingCooldown(user.UserID, ActionParticipate)
		return reject(apperrors.ErrCodeCooldownActive,
			fmt.Sprintf("Please wait %s before joining again.", timeutil.CompactDuration(remaining)))
	}

	if v.oracle != nil {
		subscribed, missing, err := v.oracle.CheckAll(ctx, user.UserID)
		if err != nil {
			// Fail closed: an oracle outage never lets a join through.
			return Verdict{
				Code:    apperrors.ErrCodeSubscriptionRequired,
				Message: "Could not verify your channel subscriptions. Please try again.",
				Missing: missing,
			}
		}
		if !subscribed {
			return Verdict{
				Code:    apperrors.ErrCodeSubscriptionRequired,
				Message: "You must join the required channels to participate.",
				Missing: missing,
			}
		}
	}

	return accept()
}
