package core

import "github.com/couchsync/couchsync/internal/domain"

// MergeState applies a shallow union of partial onto the room's playback
// state: keys present in partial overwrite, absent keys are preserved, new
// keys are added. No type validation happens here; any JSON scalar is
// accepted so clients can ship new playback fields without a server change.
// The result is stored as the room's authoritative state before it is
// returned for broadcast.
func MergeState(room *domain.Room, partial domain.PlayerState) domain.PlayerState {
	if room.State == nil {
		room.State = domain.NewPlayerState()
	}
	for k, v := range partial {
		room.State[k] = v
	}
	return room.State
}
