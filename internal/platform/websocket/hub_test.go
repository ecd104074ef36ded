package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newClient(hub *Hub, id string, topics ...string) *Client {
	return &Client{ID: id, Topics: topics, Send: make(chan []byte, 8), hub: hub}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newClient(hub, "c1", TopicQueue)

	hub.Register(c)
	if hub.ClientCount() != 1 || hub.TopicCount(TopicQueue) != 1 {
		t.Fatalf("expected 1 client on queue, got %d/%d", hub.ClientCount(), hub.TopicCount(TopicQueue))
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 || hub.TopicCount(TopicQueue) != 0 {
		t.Fatalf("expected empty hub, got %d/%d", hub.ClientCount(), hub.TopicCount(TopicQueue))
	}
	if _, ok := <-c.Send; ok {
		t.Fatal("expected Send channel to be closed")
	}

	// second unregister is a no-op
	hub.Unregister(c)
}

func TestHub_BroadcastOnlyToSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := newClient(hub, "sub", TopicQueue)
	other := newClient(hub, "other", "appointments")
	hub.Register(sub)
	hub.Register(other)

	ev, err := NewEvent("queue.checked_in", TopicQueue, 4, map[string]string{"patientName": "Ann"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-sub.Send:
		var got Event
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != "queue.checked_in" || got.ResourceID != 4 {
			t.Fatalf("unexpected event: %+v", got)
		}
		if !strings.Contains(string(got.Data), "Ann") {
			t.Fatalf("expected payload in data, got %s", got.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-other.Send:
		t.Fatal("non-subscriber received event")
	default:
	}
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := &Client{ID: "slow", Topics: []string{TopicQueue}, Send: make(chan []byte, 1), hub: hub}
	hub.Register(c)

	hub.Broadcast(TopicQueue, Event{Type: "a", Topic: TopicQueue})
	hub.Broadcast(TopicQueue, Event{Type: "b", Topic: TopicQueue})

	if len(c.Send) != 1 {
		t.Fatalf("expected 1 buffered message, got %d", len(c.Send))
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := newClient(hub, "c")
	hub.Register(c)

	hub.ProcessMessage(c, ClientMessage{Action: "subscribe", Topics: []string{TopicQueue, "appointments"}})
	if hub.TopicCount(TopicQueue) != 1 || hub.TopicCount("appointments") != 1 {
		t.Fatal("expected subscriptions on both topics")
	}

	hub.ProcessMessage(c, ClientMessage{Action: "unsubscribe", Topics: []string{"appointments"}})
	if hub.TopicCount("appointments") != 0 {
		t.Fatal("expected appointments subscription removed")
	}
	if len(c.Topics) != 1 || c.Topics[0] != TopicQueue {
		t.Fatalf("expected only queue topic left, got %v", c.Topics)
	}

	hub.ProcessMessage(c, ClientMessage{Action: "bogus", Topics: []string{"x"}})
	if hub.TopicCount("x") != 0 {
		t.Fatal("unknown action should be ignored")
	}
}

func TestHandler_EndToEnd(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	e := echo.New()
	NewHandler(hub, []string{"http://localhost:3000"}).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/queue"
	conn, _, err := gorillawebsocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.TopicCount(TopicQueue) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(TopicQueue, Event{Type: "queue.removed", Topic: TopicQueue, ResourceID: 2})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Event
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "queue.removed" || got.ResourceID != 2 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	e := echo.New()
	NewHandler(hub, []string{"http://localhost:3000"}).RegisterRoutes(e)

	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/queue"
	header := map[string][]string{"Origin": {"http://evil.example"}}
	if _, _, err := gorillawebsocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected handshake to fail for unknown origin")
	}
}
