package store

import (
	"testing"
	"time"

	apperrors "github.com/SDWZORO/GiveAwayBot/internal/common/errors"
	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAddParticipant(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 1, Username: "alice"}))
	require.True(t, st.IsParticipant(id, 1))

	g, _ := st.Giveaway(id)
	require.Equal(t, 1, g.ParticipantsCount)
}

func TestAddParticipantRejections(t *testing.T) {
	st := newTestStore(t)
	activeID, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)
	expiredID, err := st.CreateGiveaway(testGiveaway(-time.Minute))
	require.NoError(t, err)
	endedID, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)
	_, err = st.EndGiveaway(endedID)
	require.NoError(t, err)

	require.NoError(t, st.AddParticipant(activeID, models.Profile{UserID: 1}))

	tests := []struct {
		name       string
		giveawayID string
		userID     int64
		wantCode   apperrors.ErrorCode
	}{
		{"unknown giveaway", "GIV_unknown", 1, apperrors.ErrCodeGiveawayNotFound},
		{"ended giveaway", endedID, 1, apperrors.ErrCodeGiveawayNotActive},
		{"expired but unswept giveaway", expiredID, 1, apperrors.ErrCodeGiveawayEnded},
		{"duplicate join", activeID, 1, apperrors.ErrCodeAlreadyJoined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := st.AddParticipant(tt.giveawayID, models.Profile{UserID: tt.userID})
			require.Error(t, err)
			require.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}

func TestRemoveParticipant(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)
	require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 1}))
	require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 2}))

	require.True(t, st.RemoveParticipant(id, 1, "1000"))
	require.False(t, st.IsParticipant(id, 1))

	g, _ := st.Giveaway(id)
	require.Equal(t, 1, g.ParticipantsCount)

	// The removal is archived, not lost.
	archived, ok := st.data.Removed[id][1]
	require.True(t, ok)
	require.False(t, archived.Active)
	require.Equal(t, "1000", archived.RemovedBy)
	require.NotNil(t, archived.RemovedAt)

	require.False(t, st.RemoveParticipant(id, 1, "1000"))
	require.False(t, st.RemoveParticipant(id, 99, "1000"))
}

func TestRemovedParticipantCanRejoin(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 1}))
	require.True(t, st.RemoveParticipant(id, 1, "1000"))
	require.NoError(t, st.AddParticipant(id, models.Profile{UserID: 1}))
	require.True(t, st.IsParticipant(id, 1))
}

func TestParticipantIDsListsOnlyActive(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	for _, uid := range []int64{1, 2, 3} {
		require.NoError(t, st.AddParticipant(id, models.Profile{UserID: uid}))
	}
	require.True(t, st.RemoveParticipant(id, 2, "1000"))

	ids := st.ParticipantIDs(id)
	require.ElementsMatch(t, []int64{1, 3}, ids)
	require.Len(t, st.Participants(id), 2)
}

func TestUserParticipations(t *testing.T) {
	st := newTestStore(t)
	id1, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)
	id2, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	require.NoError(t, st.AddParticipant(id1, models.Profile{UserID: 1}))
	require.NoError(t, st.AddParticipant(id2, models.Profile{UserID: 1}))

	require.ElementsMatch(t, []string{id1, id2}, st.UserParticipations(1))
	require.Empty(t, st.UserParticipations(2))
}
