package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/domain"
)

// RoomMissingMessage is the error payload a participant sees when joining
// a room that does not exist.
const RoomMissingMessage = "Room does not exist."

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose connection could not keep
// up with a broadcast.
type Policy interface {
	OnBackpressure(roomID domain.RoomID, sid domain.SessionID) BackpressureAction
}

// SessionCoordinator orchestrates room lifecycle transitions. A single
// mutex serializes all transitions, so every event runs to completion
// before the next one starts and no transition observes a half-applied
// mutation. It is the only component allowed to mutate the store and the
// presence tracker.
type SessionCoordinator struct {
	mu       sync.Mutex
	rooms    *RoomStore
	presence *PresenceTracker
	router   Router
	conns    ConnectionSource
	policy   Policy
}

func NewSessionCoordinator(rooms *RoomStore, presence *PresenceTracker, router Router, conns ConnectionSource, policy Policy) *SessionCoordinator {
	return &SessionCoordinator{
		rooms:    rooms,
		presence: presence,
		router:   router,
		conns:    conns,
		policy:   policy,
	}
}

// Join adds sid to the room under the given display name. If the room does
// not exist, the sender alone receives a single error event and nothing is
// mutated. On success the joiner first receives the current authoritative
// state, then the others learn about the joiner, and last everyone gets a
// consistent post-join membership snapshot.
func (c *SessionCoordinator) Join(roomID domain.RoomID, sid domain.SessionID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(roomID)
	if !ok {
		log.Info().Str("module", "core.coordinator").Str("room", string(roomID)).Str("sid", string(sid)).Msg("join rejected, no such room")
		c.router.ToSender(sid, EventError, RoomMissingMessage)
		return domain.ErrRoomNotFound
	}

	c.presence.SetName(sid, name)
	c.presence.AddMember(roomID, sid)
	log.Info().Str("module", "core.coordinator").Str("room", string(roomID)).Str("sid", string(sid)).Msg("member joined")

	c.router.ToSender(sid, EventVideoState, room.State)
	c.applyPolicy(roomID, c.router.ToOthers(roomID, sid, EventUserJoined, UserRef{UserID: sid}))
	c.applyPolicy(roomID, c.router.ToAll(roomID, EventRoomUsers, c.presence.ListMembers(roomID)))
	return nil
}

// StateChange merges a partial update into the room's authoritative state
// and relays the new full state to everyone but the sender. The sender is
// never echoed its own update. The room context comes from the session
// established at join time; a vanished room makes this a no-op.
func (c *SessionCoordinator) StateChange(roomID domain.RoomID, sid domain.SessionID, partial domain.PlayerState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms.Get(roomID)
	if !ok {
		return
	}
	newState := MergeState(room, partial)
	c.applyPolicy(roomID, c.router.ToOthers(roomID, sid, EventVideoState, newState))
}

// GetUsers broadcasts the current membership list to the whole room.
// Absent rooms are a silent no-op.
func (c *SessionCoordinator) GetUsers(roomID domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.rooms.Get(roomID); !ok {
		return
	}
	c.applyPolicy(roomID, c.router.ToAll(roomID, EventRoomUsers, c.presence.ListMembers(roomID)))
}

// Disconnect removes sid from the room and clears its display name. The
// remaining members are told who left and get the updated membership list;
// when the last member leaves, the room is deleted instead and nothing is
// broadcast. This is the sole implicit room-destruction trigger.
func (c *SessionCoordinator) Disconnect(roomID domain.RoomID, sid domain.SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leave(roomID, sid)
}

func (c *SessionCoordinator) leave(roomID domain.RoomID, sid domain.SessionID) {
	if _, ok := c.rooms.Get(roomID); !ok {
		c.presence.ClearName(sid)
		return
	}
	removed := c.presence.RemoveMember(roomID, sid)
	c.presence.ClearName(sid)
	if !removed {
		// Already gone (e.g. kicked earlier); nothing to announce.
		return
	}
	log.Info().Str("module", "core.coordinator").Str("room", string(roomID)).Str("sid", string(sid)).Msg("member left")

	if len(c.rooms.Members(roomID)) == 0 {
		c.rooms.Delete(roomID)
		return
	}
	c.router.ToAll(roomID, EventUserLeft, UserRef{UserID: sid})
	c.router.ToAll(roomID, EventRoomUsers, c.presence.ListMembers(roomID))
}

// ReapIdle deletes rooms that were created but never joined and have
// outlived the grace window. Rooms with members are never touched here.
// Returns the number of rooms reaped.
func (c *SessionCoordinator) ReapIdle(ttl time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	reaped := 0
	cutoff := time.Now().Add(-ttl)
	for _, info := range c.rooms.List() {
		if info.MemberCount == 0 && info.CreatedAt.Before(cutoff) {
			c.rooms.Delete(info.ID)
			reaped++
		}
	}
	if reaped > 0 {
		log.Info().Str("module", "core.coordinator").Int("reaped", reaped).Msg("idle rooms reaped")
	}
	return reaped
}

// applyPolicy consults the backpressure policy for every dropped delivery.
// A kicked member goes through the regular leave path and its connection is
// closed; drops caused by the kick itself are not re-examined.
func (c *SessionCoordinator) applyPolicy(roomID domain.RoomID, res PublishResult) {
	if c.policy == nil {
		return
	}
	for _, sid := range res.Dropped {
		switch c.policy.OnBackpressure(roomID, sid) {
		case KickMember:
			c.leave(roomID, sid)
			if conn, ok := c.conns.Connection(sid); ok {
				conn.Close()
			}
			log.Warn().Str("module", "core.coordinator").Str("room", string(roomID)).Str("sid", string(sid)).Msg("kicked slow member")
		case DropFrame:
		}
	}
}
