package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/VoiceClient/internal/app/views"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 32
	watchBuffer  = 64
	writeTimeout = 5 * time.Second
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedMessage is one frame of the events websocket.
type FeedMessage struct {
	Type  string        `json:"type"`
	Slots []views.Event `json:"slots,omitempty"`
	Event *views.Event  `json:"event,omitempty"`
}

type wsEventConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsEventConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsEventConn) Close() {
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

type eventFeed struct {
	ctx        context.Context
	src        SlotSource
	pingPeriod time.Duration
	readLimit  int64
}

func (f *eventFeed) handle(c *gin.Context) {
	token := c.GetString("client_token")
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "adapters.http").Str("client", token).Msg("events feed opened")

	conn := &wsEventConn{conn: ws, send: make(chan []byte, sendBuffer)}
	ctx, cancel := context.WithCancel(f.ctx)

	events, stop := f.src.Watch(watchBuffer)
	sendJSON(conn, FeedMessage{Type: "snapshot", Slots: f.src.Snapshot()})

	go f.forward(ctx, conn, events, stop)
	go f.writePump(ctx, conn)
	go f.readPump(ctx, cancel, token, conn)
}

func (f *eventFeed) forward(ctx context.Context, c *wsEventConn, events <-chan views.Event, stop func()) {
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			sendJSON(c, FeedMessage{Type: "slot", Event: &ev})
		}
	}
}

func (f *eventFeed) writePump(ctx context.Context, c *wsEventConn) {
	ticker := time.NewTicker(f.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Debug().Err(err).Str("module", "adapters.http").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump owns the connection lifetime: the feed ends when the peer goes
// away or stops answering pings.
func (f *eventFeed) readPump(ctx context.Context, cancel context.CancelFunc, token string, c *wsEventConn) {
	defer func() {
		log.Info().Str("module", "adapters.http").Str("client", token).Msg("events feed closed")
		cancel()
		c.Close()
	}()

	pongWait := f.pingPeriod * 10 / 9
	c.conn.SetReadLimit(f.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		handleClientMessage(c, data)
	}
}

func handleClientMessage(c *wsEventConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("bad json")
		return
	}
	switch env.Type {
	case "ping":
		sendJSON(c, FeedMessage{Type: "pong"})
	default:
		log.Warn().Str("module", "adapters.http").Str("type", env.Type).Msg("unknown message")
	}
}

func sendJSON(c *wsEventConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("sendJSON marshal")
		return
	}
	if err := c.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("event dropped")
	}
}
