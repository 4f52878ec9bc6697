package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/core"
	"github.com/couchsync/couchsync/internal/domain"
)

type sessionEntry struct {
	Conn   core.SignalConnection
	Rooms  []domain.RoomID // join order
	Cancel context.CancelFunc
}

// Registry binds live connection ids to their transport endpoint and the
// rooms they joined through it. It is the per-participant session context:
// the signal adapter reads it to know which rooms a state change or a
// disconnect applies to. A connection may be joined to several rooms at
// once; that is explicit behavior, not an oversight.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[domain.SessionID]*sessionEntry)}
}

func (r *Registry) Bind(sid domain.SessionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

// Connection implements core.ConnectionSource.
func (r *Registry) Connection(sid domain.SessionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// AddRoom records that sid joined roomID; duplicates are ignored.
func (r *Registry) AddRoom(sid domain.SessionID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	for _, id := range e.Rooms {
		if id == roomID {
			return
		}
	}
	e.Rooms = append(e.Rooms, roomID)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(roomID)).Msg("joined room")
}

func (r *Registry) RemoveRoom(sid domain.SessionID, roomID domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return
	}
	for i, id := range e.Rooms {
		if id == roomID {
			e.Rooms = append(e.Rooms[:i], e.Rooms[i+1:]...)
			return
		}
	}
}

// Rooms returns a snapshot of the rooms sid joined, in join order.
func (r *Registry) Rooms(sid domain.SessionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, len(e.Rooms))
	copy(out, e.Rooms)
	return out
}

// Len reports the number of bound sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Unbind(sid domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Cancel(sid domain.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
