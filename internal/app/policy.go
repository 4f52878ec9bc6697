package app

import (
	"github.com/couchsync/couchsync/internal/core"
	"github.com/couchsync/couchsync/internal/domain"
)

// DropPolicy tolerates slow consumers: an undeliverable frame is simply
// lost, matching the fire-and-forget broadcast contract.
type DropPolicy struct{}

func (DropPolicy) OnBackpressure(domain.RoomID, domain.SessionID) core.BackpressureAction {
	return core.DropFrame
}

// KickPolicy evicts a member whose connection cannot keep up.
type KickPolicy struct{}

func (KickPolicy) OnBackpressure(domain.RoomID, domain.SessionID) core.BackpressureAction {
	return core.KickMember
}

// PolicyFor maps the configured policy name to an implementation,
// defaulting to drop.
func PolicyFor(name string) core.Policy {
	if name == "kick" {
		return KickPolicy{}
	}
	return DropPolicy{}
}
