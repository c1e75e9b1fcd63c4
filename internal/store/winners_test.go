package store

import (
	"testing"
	"time"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestAddWinnerPreservesDrawOrder(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	for _, uid := range []int64{30, 10, 20} {
		require.True(t, st.AddWinner(id, uid, ""))
	}

	winners := st.Winners(id)
	require.Len(t, winners, 3)
	require.Equal(t, int64(30), winners[0].UserID)
	require.Equal(t, int64(10), winners[1].UserID)
	require.Equal(t, int64(20), winners[2].UserID)

	g, _ := st.Giveaway(id)
	require.True(t, g.WinnersSelected)
}

func TestAddWinnerRejectsDuplicates(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)

	require.True(t, st.AddWinner(id, 5, ""))
	require.False(t, st.AddWinner(id, 5, "again"))
	require.Len(t, st.Winners(id), 1)
}

func TestMarkPrizeClaimed(t *testing.T) {
	st := newTestStore(t)
	id, err := st.CreateGiveaway(testGiveaway(time.Hour))
	require.NoError(t, err)
	require.True(t, st.AddWinner(id, 5, ""))
	_, err = st.EndGiveaway(id)
	require.NoError(t, err)

	require.False(t, st.MarkPrizeClaimed(id, 99))
	require.True(t, st.MarkPrizeClaimed(id, 5))

	winners := st.Winners(id)
	require.True(t, winners[0].PrizeClaimed)
	require.NotNil(t, winners[0].ClaimedAt)

	// The ended giveaway record itself stays frozen.
	g, _ := st.Giveaway(id)
	require.Equal(t, models.GiveawayStatusEnded, g.Status)
}
