package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchsync/couchsync/internal/domain"
)

func newPresence(t *testing.T) (*PresenceTracker, *RoomStore, domain.RoomID) {
	t.Helper()
	store := NewRoomStore()
	roomID, err := store.Create("dQw4w9WgXcQ")
	require.NoError(t, err)
	return NewPresenceTracker(store), store, roomID
}

func TestPresenceNames(t *testing.T) {
	p, _, _ := newPresence(t)

	assert.Equal(t, "Anonymous", p.Name("unknown"))

	p.SetName("a", "Alice")
	assert.Equal(t, "Alice", p.Name("a"))

	p.SetName("b", "")
	assert.Equal(t, "Anonymous", p.Name("b"))

	long := strings.Repeat("x", 200)
	p.SetName("c", long)
	assert.Len(t, p.Name("c"), domain.MaxDisplayNameLen)

	p.ClearName("a")
	assert.Equal(t, "Anonymous", p.Name("a"))
	p.ClearName("a") // idempotent
}

func TestPresenceMembership(t *testing.T) {
	p, store, roomID := newPresence(t)

	assert.True(t, p.AddMember(roomID, "a"))
	assert.True(t, p.AddMember(roomID, "b"))
	assert.False(t, p.AddMember(roomID, "a"), "duplicates forbidden")
	assert.Equal(t, []domain.SessionID{"a", "b"}, store.Members(roomID))

	assert.False(t, p.RemoveMember(roomID, "missing"), "no-op")
	assert.Len(t, store.Members(roomID), 2)

	assert.True(t, p.RemoveMember(roomID, "a"))
	assert.Equal(t, []domain.SessionID{"b"}, store.Members(roomID))

	assert.True(t, p.RemoveMember(roomID, "b"))
	assert.Empty(t, store.Members(roomID))

	assert.False(t, p.AddMember("zzzzzz", "a"), "absent room takes no members")
}

func TestPresenceListMembers(t *testing.T) {
	p, _, roomID := newPresence(t)

	p.SetName("a", "Alice")
	p.AddMember(roomID, "a")
	p.AddMember(roomID, "b") // never named, resolves to the default

	assert.Equal(t, []domain.MemberInfo{
		{ID: "a", Name: "Alice"},
		{ID: "b", Name: "Anonymous"},
	}, p.ListMembers(roomID))

	assert.Empty(t, p.ListMembers("zzzzzz"))
}
