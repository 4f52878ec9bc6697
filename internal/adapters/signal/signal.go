package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/app"
	"github.com/couchsync/couchsync/internal/config"
	"github.com/couchsync/couchsync/internal/core"
	"github.com/couchsync/couchsync/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const defaultSendBuffer = 32

// WatchWSController is the websocket transport adapter: it owns the
// connections and translates inbound envelopes into coordinator calls.
type WatchWSController struct {
	Coord    *core.SessionCoordinator
	Registry *app.Registry
	limiter  *JoinRateLimiter
	cfg      *config.Config
}

func NewWatchWSController(coord *core.SessionCoordinator, registry *app.Registry, cfg *config.Config) *WatchWSController {
	return &WatchWSController{
		Coord:    coord,
		Registry: registry,
		limiter:  NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinInterval),
		cfg:      cfg,
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWatch upgrades the request and runs the connection until the peer
// goes away. Every connection gets a fresh session id: the client-token
// cookie is shared across tabs of one browser, so it cannot identify a
// single live connection.
func (ctl *WatchWSController) HandleWatch(ctx context.Context, c *gin.Context) {
	sid := domain.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ct", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.cfg.ReadLimit)
	}

	buffer := ctl.cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.Bind(sid, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// handleDisconnect runs the disconnect transition for every room the
// connection had joined, then forgets the session. It always runs to
// completion, even if the participant never issued an action.
func (ctl *WatchWSController) handleDisconnect(sid domain.SessionID) {
	for _, roomID := range ctl.Registry.Rooms(sid) {
		ctl.Coord.Disconnect(roomID, sid)
	}
	ctl.Registry.Cancel(sid)
	ctl.Registry.Unbind(sid)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("session torn down")
}

const writeDeadline = 5 * time.Second
