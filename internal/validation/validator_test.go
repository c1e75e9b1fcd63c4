package validation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/SDWZORO/GiveAwayBot/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeOracle scripts the channel check and records whether it was consulted.
type fakeOracle struct {
	subscribed bool
	missing    []models.MissingChannel
	err        error
	calls      int
}

func (f *fakeOracle) CheckAll(ctx context.Context, userID int64) (bool, []models.MissingChannel, error) {
	f.calls++
	return f.subscribed, f.missing, f.err
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "db.json"), 50)
	require.NoError(t, err)
	return st
}

func createActive(t *testing.T, st *store.Store) string {
	t.Helper()
	now := time.Now().UTC()
	id, err := st.CreateGiveaway(&models.Giveaway{
		EventName:    "Gate Test",
		PrizeType:    models.PrizeTypeCoins,
		PrizeDetails: "1000 coins",
		WinnerCount:  1,
		StartTime:    now.Add(-time.Minute),
		EndTime:      now.Add(time.Hour),
		CreatedBy:    1000,
	})
	require.NoError(t, err)
	return id
}

func TestValidateJoinAccepts(t *testing.T) {
	st := newTestStore(t)
	id := createActive(t, st)
	oracle := &fakeOracle{subscribed: true}
	v := New(st, oracle)

	verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.True(t, verdict.OK)
	require.Empty(t, verdict.Code)
	require.Equal(t, 1, oracle.calls)
}

func TestValidateJoinRejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, st *store.Store, id string)
		oracle   *fakeOracle
		wantCode apperrors.ErrorCode
	}{
		{
			name: "banned user",
			setup: func(t *testing.T, st *store.Store, id string) {
				require.True(t, st.BanUser(1, "fraud", 1000))
			},
			oracle:   &fakeOracle{subscribed: true},
			wantCode: apperrors.ErrCodeUserBanned,
		},
		{
			name: "ended giveaway",
			setup: func(t *testing.T, st *store.Store, id string) {
				_, err := st.EndGiveaway(id)
				require.NoError(t, err)
			},
			oracle:   &fakeOracle{subscribed: true},
			wantCode: apperrors.ErrCodeGiveawayNotActive,
		},
		{
			name: "already joined",
			setup: func(t *testing.T, st *store.Store, id string) {
				require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 1}))
			},
			oracle:   &fakeOracle{subscribed: true},
			wantCode: apperrors.ErrCodeAlreadyJoined,
		},
		{
			name: "cooldown running",
			setup: func(t *testing.T, st *store.Store, id string) {
				st.SetCooldown(1, ActionParticipate, time.Hour)
			},
			oracle:   &fakeOracle{subscribed: true},
			wantCode: apperrors.ErrCodeCooldownActive,
		},
		{
			name:  "not subscribed",
			setup: func(t *testing.T, st *store.Store, id string) {},
			oracle: &fakeOracle{
				missing: []models.MissingChannel{{Username: "smash_official", Name: "Smash Official"}},
			},
			wantCode: apperrors.ErrCodeSubscriptionRequired,
		},
		{
			name:     "oracle outage fails closed",
			setup:    func(t *testing.T, st *store.Store, id string) {},
			oracle:   &fakeOracle{subscribed: true, err: errors.New("api timeout")},
			wantCode: apperrors.ErrCodeSubscriptionRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			id := createActive(t, st)
			tt.setup(t, st, id)

			v := New(st, tt.oracle)
			verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
			require.False(t, verdict.OK)
			require.Equal(t, tt.wantCode, verdict.Code)
			require.NotEmpty(t, verdict.Message)
		})
	}
}

func TestValidateJoinUnknownGiveaway(t *testing.T) {
	st := newTestStore(t)
	v := New(st, &fakeOracle{subscribed: true})

	verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, "GIV_missing")
	require.False(t, verdict.OK)
	require.Equal(t, apperrors.ErrCodeGiveawayNotFound, verdict.Code)
}

// The oracle is the expensive check and must only run after every local
// check has passed.
func TestOracleConsultedLast(t *testing.T) {
	st := newTestStore(t)
	id := createActive(t, st)
	oracle := &fakeOracle{subscribed: true}
	v := New(st, oracle)

	require.True(t, st.BanUser(1, "", 1000))
	verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.Equal(t, apperrors.ErrCodeUserBanned, verdict.Code)
	require.Zero(t, oracle.calls)

	require.True(t, st.UnbanUser(1, 1000))
	st.SetCooldown(1, ActionParticipate, time.Hour)
	verdict = v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.Equal(t, apperrors.ErrCodeCooldownActive, verdict.Code)
	require.Zero(t, oracle.calls)

	st.ClearCooldown(1, ActionParticipate)
	verdict = v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.True(t, verdict.OK)
	require.Equal(t, 1, oracle.calls)
}

func TestSubscriptionVerdictCarriesMissingChannels(t *testing.T) {
	st := newTestStore(t)
	id := createActive(t, st)
	missing := []models.MissingChannel{
		{Username: "smash_official", Name: "Smash Official"},
		{Username: "smash_events", Name: "Smash Events"},
	}
	v := New(st, &fakeOracle{missing: missing})

	verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.Equal(t, apperrors.ErrCodeSubscriptionRequired, verdict.Code)
	require.Equal(t, missing, verdict.Missing)
}

func TestNilOracleSkipsSubscriptionCheck(t *testing.T) {
	st := newTestStore(t)
	id := createActive(t, st)
	v := New(st, nil)

	verdict := v.ValidateJoin(context.Background(), models.Profile{UserID: 1}, id)
	require.True(t, verdict.OK)
}
