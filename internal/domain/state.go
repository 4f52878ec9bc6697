package domain

// PlayerState is the authoritative playback state of a room. It is an
// untyped string-keyed map on purpose: clients may introduce new playback
// fields (playback rate, captions, ...) without a server release. The two
// fields every room starts with are "playing" and "currentTime".
type PlayerState map[string]any

func NewPlayerState() PlayerState {
	return PlayerState{
		"playing":     false,
		"currentTime": 0.0,
	}
}

// Clone returns a shallow copy, enough for the scalar values the state holds.
func (s PlayerState) Clone() PlayerState {
	out := make(PlayerState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
