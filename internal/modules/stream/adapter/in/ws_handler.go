package in

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	posturedto "posturetrack/internal/modules/posture/dto"
	posturein "posturetrack/internal/modules/posture/port/in"
	"posturetrack/internal/modules/stream/domain"
	"posturetrack/internal/modules/stream/service"
	apperrors "posturetrack/internal/platform/errors"
	"posturetrack/internal/platform/id"
	"posturetrack/internal/platform/telemetry"
)

// WSHandler upgrades producer and observer connections and runs their
// session loops. Roles are fixed by path at handshake time: /ws/posture for
// the producer, /ws/dashboard for observers.
type WSHandler struct {
	registry       *service.Registry
	posture        posturein.Usecase
	ids            id.Generator
	observerBuffer int
	writeTimeout   time.Duration

	upgrader websocket.Upgrader
}

func NewWSHandler(registry *service.Registry, posture posturein.Usecase, observerBuffer int, writeTimeout time.Duration) *WSHandler {
	return &WSHandler{
		registry:       registry,
		posture:        posture,
		ids:            id.UUID{},
		observerBuffer: observerBuffer,
		writeTimeout:   writeTimeout,
		upgrader: websocket.Upgrader{
			// Browser dashboards connect from other origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws/posture", h.HandleProducer)
	mux.HandleFunc("/ws/dashboard", h.HandleObserver)
}

type producerAck struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HandleProducer runs the single-producer ingest loop. A malformed message
// gets an error acknowledgment and the session stays open; only a busy
// producer slot or a transport drop ends the connection.
func (h *WSHandler) HandleProducer(w http.ResponseWriter, r *http.Request) {
	logger := telemetry.GetLogger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "producer upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := domain.NewSession(h.ids.New(), domain.RoleProducer, 1)
	if err := h.registry.AcquireProducer(session); err != nil {
		logger.InfoContext(r.Context(), "producer rejected", "error", err)
		h.writeAck(conn, producerAck{Error: "producer already connected"})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "producer already connected"),
			time.Now().Add(h.writeTimeout))
		return
	}
	defer h.registry.ReleaseProducer(session)

	// Unblock the read loop when the registry shuts the session down.
	go func() {
		<-session.Done()
		_ = conn.Close()
	}()

	logger.InfoContext(r.Context(), "producer connected", "session_id", session.ID())

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.InfoContext(r.Context(), "producer disconnected",
				"session_id", session.ID(), "error", err)
			return
		}

		var update posturedto.PostureUpdate
		if err := json.Unmarshal(payload, &update); err != nil {
			h.writeAck(conn, producerAck{Error: "invalid data format"})
			continue
		}

		out, err := h.posture.Ingest(r.Context(), update)
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			h.writeAck(conn, producerAck{Error: "invalid data format"})
		case errors.Is(err, apperrors.ErrStoreUnavailable):
			logger.ErrorContext(r.Context(), "record append failed",
				"session_id", session.ID(), "error", err)
			h.writeAck(conn, producerAck{Error: "storage unavailable"})
		case err != nil:
			logger.ErrorContext(r.Context(), "ingest failed",
				"session_id", session.ID(), "error", err)
			h.writeAck(conn, producerAck{Error: "internal error"})
		default:
			logger.DebugContext(r.Context(), "frame ingested",
				"session_id", session.ID(),
				"record_id", out.Record.ID,
				"status", out.Record.Status)
			h.writeAck(conn, producerAck{Status: "received"})
		}
	}
}

// HandleObserver registers the session, then pumps registry-pushed events to
// the socket while draining (and ignoring) inbound payloads as keep-alives.
func (h *WSHandler) HandleObserver(w http.ResponseWriter, r *http.Request) {
	logger := telemetry.GetLogger()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "observer upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	session := domain.NewSession(h.ids.New(), domain.RoleObserver, h.observerBuffer)
	if err := h.registry.AddObserver(session); err != nil {
		logger.WarnContext(r.Context(), "observer rejected", "error", err)
		return
	}
	defer h.registry.RemoveObserver(session)

	logger.InfoContext(r.Context(), "observer connected",
		"session_id", session.ID(), "observers", h.registry.ObserverCount())

	// Reader only detects disconnects; observer payloads carry no meaning.
	readFailed := make(chan struct{})
	go func() {
		defer close(readFailed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-session.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				logger.InfoContext(r.Context(), "observer write failed",
					"session_id", session.ID(), "error", err)
				return
			}
		case <-session.Done():
			return
		case <-readFailed:
			return
		}
	}
}

func (h *WSHandler) writeAck(conn *websocket.Conn, ack producerAck) {
	_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	if err := conn.WriteJSON(ack); err != nil {
		telemetry.GetLogger().Warn("producer ack write failed", "error", err)
	}
}
