package core

import "github.com/couchsync/couchsync/internal/domain"

// Frame is a raw JSON payload.
type Frame []byte

// SignalConnection abstracts the messaging transport of one participant.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// ConnectionSource resolves live connection ids to transport endpoints.
// The broadcast router reads it to turn an audience into deliveries.
type ConnectionSource interface {
	Connection(sid domain.SessionID) (SignalConnection, bool)
}
