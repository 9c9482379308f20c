package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ui-xd/test-stream-sub001/pkg/logger"
)

func echoServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err = conn.WriteMessage(mt, msg); err != nil {
				return
			}
		}
	}))
}

func TestClientEcho(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	ws, err := NewClient(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	got := make(chan string, 1)
	ws.OnMessage = func(m []byte) { got <- string(m) }
	ws.Listen()

	if err = ws.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	select {
	case m := <-got:
		if m != "hello" {
			t.Errorf("got %q", m)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no echo")
	}

	ws.Close()
	select {
	case <-ws.Done:
	case <-time.After(5 * time.Second):
		t.Fatal("not closed")
	}
	if err = ws.Write([]byte("late")); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestDialFail(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewClient(ctx, "ws://127.0.0.1:1/ws", logger.Nop()); err == nil {
		t.Error("expected dial error")
	}
}
