package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

const (
	maxMessageSize = 64 * 1024
	pingTime       = pongTime * 9 / 10
	pongTime       = 60 * time.Second
	writeWait      = 10 * time.Second
	dialWait       = 10 * time.Second
)

var ErrClosed = errors.New("websocket closed")

// WS is a signaling connection with serialized reads and writes.
type WS struct {
	id   uuid.UUID
	conn deadlinedConn
	send chan []byte
	log  *logger.Logger

	OnMessage MessageHandler

	shutdown sync.WaitGroup
	once     sync.Once
	quit     chan struct{}
	Done     chan struct{}
}

type MessageHandler func(message []byte)

var dialer = websocket.Dialer{
	Proxy:            http.ProxyFromEnvironment,
	HandshakeTimeout: dialWait,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	WriteBufferPool:  &sync.Pool{},
}

// NewClient dials the address. The reader and writer pumps start only
// on Listen, so OnMessage can be set before any message arrives.
func NewClient(ctx context.Context, address string, log *logger.Logger) (*WS, error) {
	conn, _, err := dialer.DialContext(ctx, address, nil)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	ws := &WS{
		id:   id,
		conn: deadlinedConn{sock: conn, wt: writeWait},
		send: make(chan []byte, 16),
		log:  log.Extend(log.With().Str("ws", id.String()[:8])),
		quit: make(chan struct{}),
		Done: make(chan struct{}),
	}
	return ws, nil
}

func (ws *WS) Id() uuid.UUID { return ws.id }

func (ws *WS) Listen() {
	ws.shutdown.Add(2)
	go ws.writer()
	go ws.reader()
	go func() {
		ws.shutdown.Wait()
		_ = ws.conn.close()
		close(ws.Done)
	}()
}

// reader pumps messages from the websocket connection to the OnMessage callback.
// Blocking, must be called as goroutine. Serializes all websocket reads.
func (ws *WS) reader() {
	defer func() {
		ws.stop()
		ws.shutdown.Done()
		ws.log.Debug().Msg("close reader")
	}()
	ws.conn.setup(func(conn *websocket.Conn) {
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongTime))
		conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongTime)) })
		conn.SetPingHandler(func(data string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongTime))
			return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		})
	})
	for {
		message, err := ws.conn.read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.log.Warn().Err(err).Msg("read")
			}
			return
		}
		ws.log.Debug().Bytes("msg", message).Msg("read")
		if ws.OnMessage != nil {
			ws.OnMessage(message)
		}
	}
}

// writer pumps messages from the send channel to the websocket connection.
// Blocking, must be called as goroutine. Serializes all websocket writes.
func (ws *WS) writer() {
	ticker := time.NewTicker(pingTime)
	defer func() {
		ticker.Stop()
		ws.stop()
		ws.shutdown.Done()
		ws.log.Debug().Msg("close writer")
	}()
	for {
		select {
		case message := <-ws.send:
			ws.log.Debug().Bytes("msg", message).Msg("write")
			if err := ws.conn.write(websocket.TextMessage, message); err != nil {
				ws.log.Warn().Err(err).Msg("write")
				return
			}
		case <-ticker.C:
			if err := ws.conn.write(websocket.PingMessage, nil); err != nil {
				ws.log.Warn().Err(err).Msg("ping")
				return
			}
		case <-ws.quit:
			_ = ws.conn.write(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Write queues a message. It fails when the connection is closing.
func (ws *WS) Write(data []byte) error {
	select {
	case <-ws.quit:
		return ErrClosed
	default:
	}
	select {
	case ws.send <- data:
		return nil
	case <-ws.quit:
		return ErrClosed
	}
}

// Close asks the pumps to stop. Wait on Done for the connection to be released.
func (ws *WS) Close() { ws.stop() }

func (ws *WS) stop() {
	ws.once.Do(func() {
		close(ws.quit)
		// unblocks the reader
		_ = ws.conn.sock.SetReadDeadline(time.Now())
	})
}
