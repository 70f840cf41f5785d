package webui

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"detect_dashboard/internal/normalize"
	"detect_dashboard/internal/orchestrator"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, h.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestListeningClientOutlivesPongWait(t *testing.T) {
	s, ts := newTestServer(t, "http://127.0.0.1:1", nil, func(h *Hub) {
		h.pongWait = 300 * time.Millisecond
		h.pingPeriod = 100 * time.Millisecond
	})

	conn := dialHub(t, ts.URL)
	waitForClients(t, s.Hub(), 1)

	events := make(chan Event, 8)
	go func() {
		defer close(events)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var e Event
			if json.Unmarshal(raw, &e) == nil {
				events <- e
			}
		}
	}()

	time.Sleep(time.Second)
	if got := s.Hub().ClientCount(); got != 1 {
		t.Fatalf("idle listener was dropped, %d clients left", got)
	}

	s.Hub().Broadcast(Event{Type: EventAlert, Media: normalize.Video, Message: "still here"})
	select {
	case e, ok := <-events:
		if !ok || e.Message != "still here" {
			t.Fatalf("unexpected event %+v (open=%v)", e, ok)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not receive the event")
	}
}

func TestStalledClientDoesNotBlockPublishing(t *testing.T) {
	backend := newFakeBackend(t, `{"label":"Real","confidence":0.7}`)
	s, ts := newTestServer(t, backend.URL, nil, func(h *Hub) {
		h.writeWait = 200 * time.Millisecond
	})

	// Never read from this connection.
	dialHub(t, ts.URL)
	waitForClients(t, s.Hub(), 1)

	sink := s.Hub().Sink()
	big := strings.Repeat("x", 512<<10)
	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < 200; i++ {
			sink.Progress(normalize.Video, orchestrator.ProgressState{Percent: i % 100}, big)
		}
	}()
	select {
	case <-published:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked on a stalled client")
	}
	waitForClients(t, s.Hub(), 0)

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Post(ts.URL+"/api/v1/detect/text", "application/json", strings.NewReader(`{"text":"after the stall"}`))
	if err != nil {
		t.Fatalf("submit after stall: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
