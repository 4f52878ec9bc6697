package core

import (
	"sync"

	"github.com/couchsync/couchsync/internal/domain"
)

// PresenceTracker owns the connection-id → display-name mapping and the
// membership operations of each room. Name lookups never fail: unknown ids
// resolve to the default display name. The member lists themselves live in
// the RoomStore and are mutated under its lock, so concurrent listings on
// other goroutines never observe a half-applied change.
type PresenceTracker struct {
	mu    sync.RWMutex
	names map[domain.SessionID]string
	rooms *RoomStore
}

func NewPresenceTracker(rooms *RoomStore) *PresenceTracker {
	return &PresenceTracker{
		names: make(map[domain.SessionID]string),
		rooms: rooms,
	}
}

func (p *PresenceTracker) SetName(sid domain.SessionID, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names[sid] = domain.SanitizeDisplayName(name)
}

func (p *PresenceTracker) Name(sid domain.SessionID) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if name, ok := p.names[sid]; ok {
		return name
	}
	return domain.DefaultDisplayName
}

// ClearName is idempotent.
func (p *PresenceTracker) ClearName(sid domain.SessionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.names, sid)
}

// AddMember appends sid to the room's member list unless already present.
func (p *PresenceTracker) AddMember(roomID domain.RoomID, sid domain.SessionID) bool {
	return p.rooms.AddMember(roomID, sid)
}

// RemoveMember drops sid from the room's member list; reports whether sid
// was actually a member.
func (p *PresenceTracker) RemoveMember(roomID domain.RoomID, sid domain.SessionID) bool {
	return p.rooms.RemoveMember(roomID, sid)
}

// ListMembers projects the room's member ids through the name mapping,
// preserving join order.
func (p *PresenceTracker) ListMembers(roomID domain.RoomID) []domain.MemberInfo {
	members := p.rooms.Members(roomID)
	out := make([]domain.MemberInfo, 0, len(members))
	for _, sid := range members {
		out = append(out, domain.MemberInfo{ID: sid, Name: p.Name(sid)})
	}
	return out
}
