package ws

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"memeindex-bot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func testHub() *Hub {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHub(logrus.NewEntry(logger))
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func TestHubStreamsDeliveries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := testHub()
	done := make(chan struct{})
	defer close(done)
	go hub.Run(done)

	r := gin.New()
	r.GET("/ws", hub.Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.RecordDelivery(models.Delivery{Chat: "42", MessageID: 7, Kind: models.KindWelcome, Status: models.StatusSent})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event struct {
		Type string          `json:"type"`
		Data models.Delivery `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Type != "delivery" || event.Data.MessageID != 7 || event.Data.Kind != models.KindWelcome {
		t.Errorf("event = %+v", event)
	}
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	hub := testHub()

	for i := 0; i < broadcastBuffer+10; i++ {
		hub.RecordDelivery(models.Delivery{MessageID: i})
	}
	if got := len(hub.broadcast); got != broadcastBuffer {
		t.Errorf("queued = %d, want %d", got, broadcastBuffer)
	}
}

func TestHubClosesConnectionsAfterStop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := testHub()
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		hub.Run(done)
		close(stopped)
	}()
	close(done)
	<-stopped

	r := gin.New()
	r.GET("/ws", hub.Handle)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("read succeeded on a stopped hub")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatal("connection left open after the hub stopped")
	}
	if n := hub.clientCount(); n != 0 {
		t.Errorf("clients = %d, want 0", n)
	}
}
