package core

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/domain"
)

// Base36 lowercase, same space the web client displays in invite links.
const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RoomInfo is a read-only view for listings (no state or member ids).
type RoomInfo struct {
	ID          domain.RoomID  `json:"id"`
	VideoID     domain.VideoID `json:"video_id"`
	MemberCount int            `json:"member_count"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RoomStore is the threadsafe in-memory owner of all Room entities.
// It never touches transport resources.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[domain.RoomID]*domain.Room)}
}

// Create registers a new room for videoID under a freshly generated id and
// returns that id. The room is visible to concurrent lookups the moment the
// lock is released, so there is no partial-construction window. Collisions
// in the id space are vanishingly rare but checked anyway; on collision a
// new id is drawn.
func (s *RoomStore) Create(videoID domain.VideoID) (domain.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		id, err := randomRoomID()
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		if _, taken := s.rooms[id]; taken {
			continue
		}
		s.rooms[id] = domain.NewRoom(id, videoID)
		log.Info().Str("module", "core.store").Str("room", string(id)).Str("video", string(videoID)).Msg("room created")
		return id, nil
	}
}

func (s *RoomStore) Get(id domain.RoomID) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// VideoID is the read-only lookup backing the room validation endpoint.
func (s *RoomStore) VideoID(id domain.RoomID) (domain.VideoID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if room, ok := s.rooms[id]; ok {
		return room.VideoID, true
	}
	return "", false
}

// Members returns a snapshot of the room's member ids in join order.
// A missing room yields an empty snapshot.
func (s *RoomStore) Members(id domain.RoomID) []domain.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil
	}
	out := make([]domain.SessionID, len(room.Members))
	copy(out, room.Members)
	return out
}

// AddMember appends sid to the room's member list unless already present.
// Reports whether sid was actually appended. Membership writes happen under
// the store lock so listings from other goroutines never race them.
func (s *RoomStore) AddMember(id domain.RoomID, sid domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	for _, m := range room.Members {
		if m == sid {
			return false
		}
	}
	room.Members = append(room.Members, sid)
	return true
}

// RemoveMember drops sid from the room's member list; reports whether sid
// was a member.
func (s *RoomStore) RemoveMember(id domain.RoomID, sid domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	for i, m := range room.Members {
		if m == sid {
			room.Members = append(room.Members[:i], room.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Delete removes the room; deleting an absent room is a no-op.
func (s *RoomStore) Delete(id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; ok {
		delete(s.rooms, id)
		log.Info().Str("module", "core.store").Str("room", string(id)).Msg("room deleted")
	}
}

func (s *RoomStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

func (s *RoomStore) List() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, RoomInfo{
			ID:          room.ID,
			VideoID:     room.VideoID,
			MemberCount: len(room.Members),
			CreatedAt:   room.CreatedAt,
		})
	}
	return out
}

func randomRoomID() (domain.RoomID, error) {
	buf := make([]byte, domain.RoomIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = roomIDAlphabet[int(b)%len(roomIDAlphabet)]
	}
	return domain.RoomID(buf), nil
}
