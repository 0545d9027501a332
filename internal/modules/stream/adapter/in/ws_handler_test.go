package in_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	postureout "posturetrack/internal/modules/posture/adapter/out"
	"posturetrack/internal/modules/posture/service"
	"posturetrack/internal/modules/posture/usecase"
	streamin "posturetrack/internal/modules/stream/adapter/in"
	streamout "posturetrack/internal/modules/stream/adapter/out"
	streamservice "posturetrack/internal/modules/stream/service"
	"posturetrack/internal/platform/clock"
)

type event struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ack struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func newTestServer(t *testing.T) (*httptest.Server, *streamservice.Registry) {
	t.Helper()
	store, err := postureout.NewSQLiteRecordStore(filepath.Join(t.TempDir(), "posturetrack.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry := streamservice.NewRegistry()
	t.Cleanup(registry.Shutdown)

	uc := usecase.NewInteractor(service.NewTrackerService(
		clock.SystemClock{}, store, streamout.NewRecordPublisher(registry)))

	mux := http.NewServeMux()
	streamin.NewWSHandler(registry, uc, 16, 5*time.Second).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendUpdate(t *testing.T, conn *websocket.Conn, payload string) ack {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("write update: %v", err)
	}
	var a ack
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&a); err != nil {
		t.Fatalf("read ack: %v", err)
	}
	return a
}

func readEvent(t *testing.T, conn *websocket.Conn) event {
	t.Helper()
	var e event
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&e); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return e
}

func TestProducerToObserverFlow(t *testing.T) {
	srv, registry := newTestServer(t)

	observer := dial(t, wsURL(srv, "/ws/dashboard"))
	producer := dial(t, wsURL(srv, "/ws/posture"))
	waitForObservers(t, registry, 1)

	statuses := []string{"good", "ok", "bad"}
	for _, status := range statuses {
		a := sendUpdate(t, producer, `{"status":"`+status+`","timestamp":"2025-06-01T09:00:00Z"}`)
		if a.Status != "received" || a.Error != "" {
			t.Fatalf("expected received ack, got %+v", a)
		}
	}

	var lastID int64
	for i, want := range statuses {
		e := readEvent(t, observer)
		if e.Status != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, e.Status)
		}
		if e.ID <= lastID {
			t.Fatalf("expected strictly increasing IDs, got %d after %d", e.ID, lastID)
		}
		lastID = e.ID
	}
}

func TestMalformedFrameKeepsSessionOpen(t *testing.T) {
	srv, _ := newTestServer(t)
	producer := dial(t, wsURL(srv, "/ws/posture"))

	if a := sendUpdate(t, producer, `{not json`); a.Error == "" {
		t.Fatal("expected error ack for malformed payload")
	}
	if a := sendUpdate(t, producer, `{"status":"excellent"}`); a.Error == "" {
		t.Fatal("expected error ack for unknown status")
	}
	if a := sendUpdate(t, producer, `{"status":"good","timestamp":"not-a-time"}`); a.Error == "" {
		t.Fatal("expected error ack for bad timestamp")
	}

	// The session survived all three.
	if a := sendUpdate(t, producer, `{"status":"good"}`); a.Status != "received" {
		t.Fatalf("expected session to stay open, got %+v", a)
	}
}

func TestSecondProducerRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	first := dial(t, wsURL(srv, "/ws/posture"))
	if a := sendUpdate(t, first, `{"status":"good"}`); a.Status != "received" {
		t.Fatalf("first producer should work, got %+v", a)
	}

	second := dial(t, wsURL(srv, "/ws/posture"))
	var a ack
	_ = second.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := second.ReadJSON(&a); err != nil || a.Error == "" {
		t.Fatalf("expected busy error payload, got %+v err=%v", a, err)
	}

	// The original producer is untouched.
	if a := sendUpdate(t, first, `{"status":"ok"}`); a.Status != "received" {
		t.Fatalf("existing producer must be unaffected, got %+v", a)
	}
}

func TestObserverDisconnectIsolated(t *testing.T) {
	srv, registry := newTestServer(t)

	staying := dial(t, wsURL(srv, "/ws/dashboard"))
	leaving := dial(t, wsURL(srv, "/ws/dashboard"))
	producer := dial(t, wsURL(srv, "/ws/posture"))

	waitForObservers(t, registry, 2)
	sendUpdate(t, producer, `{"status":"good"}`)
	readEvent(t, staying)
	readEvent(t, leaving)

	_ = leaving.Close()
	waitForObservers(t, registry, 1)

	sendUpdate(t, producer, `{"status":"bad"}`)
	if e := readEvent(t, staying); e.Status != "bad" {
		t.Fatalf("remaining observer must keep receiving, got %+v", e)
	}
}

func TestProducerDisconnectFreesSlot(t *testing.T) {
	srv, _ := newTestServer(t)

	first := dial(t, wsURL(srv, "/ws/posture"))
	sendUpdate(t, first, `{"status":"good"}`)
	_ = first.Close()

	deadline := time.Now().Add(5 * time.Second)
	for {
		second, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/posture"), nil)
		if err != nil {
			t.Fatalf("dial second producer: %v", err)
		}
		a := sendUpdateOrBusy(t, second)
		_ = second.Close()
		if a.Status == "received" {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("slot never freed, last ack %+v", a)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func sendUpdateOrBusy(t *testing.T, conn *websocket.Conn) ack {
	t.Helper()
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"status":"ok"}`))
	var a ack
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&a); err != nil {
		return ack{Error: err.Error()}
	}
	return a
}

func waitForObservers(t *testing.T, registry *streamservice.Registry, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for registry.ObserverCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d observers, have %d", want, registry.ObserverCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
