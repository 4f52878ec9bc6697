package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchsync/couchsync/internal/domain"
)

func TestRoomStoreCreate(t *testing.T) {
	store := NewRoomStore()

	roomID, err := store.Create("dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Len(t, string(roomID), domain.RoomIDLength)

	videoID, ok := store.VideoID(roomID)
	require.True(t, ok)
	assert.Equal(t, domain.VideoID("dQw4w9WgXcQ"), videoID)

	room, ok := store.Get(roomID)
	require.True(t, ok)
	assert.Equal(t, false, room.State["playing"])
	assert.Equal(t, 0.0, room.State["currentTime"])
	assert.Empty(t, room.Members)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoomStoreUniqueIDs(t *testing.T) {
	store := NewRoomStore()

	seen := make(map[domain.RoomID]struct{})
	for i := 0; i < 500; i++ {
		id, err := store.Create("dQw4w9WgXcQ")
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "room id %q issued twice", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, 500, store.Count())
}

func TestRoomStoreDeleteIdempotent(t *testing.T) {
	store := NewRoomStore()

	id, err := store.Create("dQw4w9WgXcQ")
	require.NoError(t, err)

	store.Delete(id)
	_, ok := store.Get(id)
	assert.False(t, ok)

	store.Delete(id) // second delete is a no-op
	store.Delete("zzzzzz")
	assert.Equal(t, 0, store.Count())
}

func TestRoomStoreMembersSnapshot(t *testing.T) {
	store := NewRoomStore()

	id, err := store.Create("dQw4w9WgXcQ")
	require.NoError(t, err)
	room, _ := store.Get(id)
	room.Members = append(room.Members, "a", "b")

	snap := store.Members(id)
	assert.Equal(t, []domain.SessionID{"a", "b"}, snap)

	snap[0] = "mutated"
	assert.Equal(t, domain.SessionID("a"), room.Members[0])

	assert.Nil(t, store.Members("absent"))
}

func TestRoomStoreList(t *testing.T) {
	store := NewRoomStore()
	id, err := store.Create("dQw4w9WgXcQ")
	require.NoError(t, err)

	infos := store.List()
	require.Len(t, infos, 1)
	assert.Equal(t, id, infos[0].ID)
	assert.Equal(t, domain.VideoID("dQw4w9WgXcQ"), infos[0].VideoID)
	assert.Equal(t, 0, infos[0].MemberCount)
}
