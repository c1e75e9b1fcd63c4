package store

import (
	"testing"

	"github.com/SDWZORO/GiveAwayBot/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBroadcastChatRegistry(t *testing.T) {
	st := newTestStore(t)

	require.True(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -100, Username: "@smash_one", Title: "One"}))
	chats := st.BroadcastChats()
	require.Len(t, chats, 1)
	require.Equal(t, "smash_one", chats[0].Username, "leading @ is stripped")

	// Duplicates by ID or handle are rejected.
	require.False(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -100, Username: "other"}))
	require.False(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -999, Username: "SMASH_ONE"}))

	require.True(t, st.RemoveBroadcastChat("@smash_one"))
	require.Empty(t, st.BroadcastChats())
	require.False(t, st.RemoveBroadcastChat("smash_one"))

	// A removed handle can be registered again.
	require.True(t, st.AddBroadcastChat(models.BroadcastChat{ChatID: -100, Username: "smash_one"}))
}
