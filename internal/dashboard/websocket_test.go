package dashboard

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/angrygoose0/gitvis-sub000/internal/api/contracts"
)

func TestWebSocketReceivesBroadcast(t *testing.T) {
	s := newTestServer(&fakeManager{})
	ts := httptest.NewServer(s.routes())
	defer ts.Close()
	defer s.hub.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/analysis"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the server side to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.hub.mu.Lock()
		n := len(s.hub.clients)
		s.hub.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.hub.Broadcast(contracts.AnalysisEvent{RunID: "run-1", Repo: "o/r", Phase: "merge-detection"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event contracts.AnalysisEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read: %v", err)
	}
	if event.RunID != "run-1" || event.Phase != "merge-detection" {
		t.Errorf("event = %+v", event)
	}
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	h := NewHub()
	h.Close()
	if _, ok := h.add(nil); ok {
		t.Error("add succeeded on closed hub")
	}
	// Broadcast and a second Close must not panic.
	h.Broadcast(contracts.AnalysisEvent{})
	h.Close()
}
