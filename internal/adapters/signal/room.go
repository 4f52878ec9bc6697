package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/domain"
)

func (ctl *WatchWSController) handleJoinRoom(sid domain.SessionID, conn *WsSignalConn, data []byte) {
	type joinPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
		Name   string `json:"name,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		ctl.sendError(conn, "rate limited")
		return
	}

	roomID := domain.RoomID(p.RoomID)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.RoomID).Msg("join")
	if err := ctl.Coord.Join(roomID, sid, p.Name); err != nil {
		// The coordinator already told the sender what went wrong.
		return
	}
	ctl.Registry.AddRoom(sid, roomID)
}

// handleStateChange applies the partial update to every room this
// connection has joined, in join order. The payload carries no room id;
// the room context is the one established at join time.
func (ctl *WatchWSController) handleStateChange(sid domain.SessionID, data []byte) {
	var partial map[string]any
	if err := json.Unmarshal(data, &partial); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad state payload")
		return
	}
	delete(partial, "type") // envelope field, not a playback field

	rooms := ctl.Registry.Rooms(sid)
	if len(rooms) == 0 {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("state change outside a room")
		return
	}
	for _, roomID := range rooms {
		ctl.Coord.StateChange(roomID, sid, domain.PlayerState(partial))
	}
}

func (ctl *WatchWSController) handleGetUsers(sid domain.SessionID, conn *WsSignalConn, data []byte) {
	type usersPayload struct {
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var p usersPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad get-users payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	ctl.Coord.GetUsers(domain.RoomID(p.RoomID))
}
