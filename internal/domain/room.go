package domain

import (
	"errors"
	"time"
)

type (
	RoomID  string
	VideoID string
)

const (
	RoomIDLength  = 6
	VideoIDLength = 11
)

var (
	ErrRoomNotFound   = errors.New("room does not exist")
	ErrInvalidVideoID = errors.New("invalid video id")
)

// Room groups participants around one shared video and one shared playback
// state. Members holds connection ids only, never transport endpoints or
// participant data.
type Room struct {
	ID        RoomID
	VideoID   VideoID
	State     PlayerState
	Members   []SessionID
	CreatedAt time.Time
}

// NewRoom avoids raw literals in adapters and keeps construction obvious.
func NewRoom(id RoomID, videoID VideoID) *Room {
	return &Room{
		ID:        id,
		VideoID:   videoID,
		State:     NewPlayerState(),
		Members:   []SessionID{},
		CreatedAt: time.Now(),
	}
}

// ValidateVideoID checks the fixed-length video identifier constraint.
func ValidateVideoID(v string) error {
	if len(v) != VideoIDLength {
		return ErrInvalidVideoID
	}
	return nil
}
