package core

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/domain"
)

// Outbound event names on the wire.
const (
	EventError      = "error"
	EventVideoState = "video-state"
	EventUserJoined = "user-joined"
	EventUserLeft   = "user-left"
	EventRoomUsers  = "room-users"
)

// UserRef names a participant in user-joined / user-left payloads.
type UserRef struct {
	UserID domain.SessionID `json:"userId"`
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// PublishResult reports delivery stats/backpressure to the coordinator.
type PublishResult struct {
	SentTo  int
	Dropped []domain.SessionID
}

// Router delivers an event to a selected audience of a room. Delivery is
// fire-and-forget: no acknowledgment, no retry. Delivering to a room with
// zero members is a no-op. The router never mutates room or presence state.
type Router interface {
	ToSender(sid domain.SessionID, event string, payload any)
	ToOthers(roomID domain.RoomID, sender domain.SessionID, event string, payload any) PublishResult
	ToAll(roomID domain.RoomID, event string, payload any) PublishResult
}

type broadcastRouter struct {
	store *RoomStore
	conns ConnectionSource
}

func NewRouter(store *RoomStore, conns ConnectionSource) Router {
	return &broadcastRouter{store: store, conns: conns}
}

func (r *broadcastRouter) ToSender(sid domain.SessionID, event string, payload any) {
	r.deliver(sid, event, payload)
}

func (r *broadcastRouter) ToOthers(roomID domain.RoomID, sender domain.SessionID, event string, payload any) PublishResult {
	return r.fanOut(roomID, event, payload, func(sid domain.SessionID) bool { return sid != sender })
}

func (r *broadcastRouter) ToAll(roomID domain.RoomID, event string, payload any) PublishResult {
	return r.fanOut(roomID, event, payload, func(domain.SessionID) bool { return true })
}

func (r *broadcastRouter) fanOut(roomID domain.RoomID, event string, payload any, include func(domain.SessionID) bool) PublishResult {
	res := PublishResult{}
	for _, sid := range r.store.Members(roomID) {
		if !include(sid) {
			continue
		}
		if r.deliver(sid, event, payload) {
			res.SentTo++
		} else {
			res.Dropped = append(res.Dropped, sid)
		}
	}
	log.Debug().Str("module", "core.broadcast").Str("room", string(roomID)).Str("event", event).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("fan out")
	return res
}

func (r *broadcastRouter) deliver(sid domain.SessionID, event string, payload any) bool {
	conn, ok := r.conns.Connection(sid)
	if !ok {
		return false
	}
	b, err := json.Marshal(envelope{Type: event, Data: payload})
	if err != nil {
		log.Error().Err(err).Str("module", "core.broadcast").Str("event", event).Msg("marshal event")
		return false
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "core.broadcast").Str("sid", string(sid)).Str("event", event).Msg("drop delivery")
		return false
	}
	return true
}
