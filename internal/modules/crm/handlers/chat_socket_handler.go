package handlers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/services"
	"github.com/simplecrm/simplecrm-be/internal/realtime"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// turnTimeout bounds one full pipeline cycle, classification included.
const turnTimeout = 60 * time.Second

// ChatSocketHandler owns the websocket side of the conversation pipeline.
// One goroutine per connection reads inbound events and runs the pipeline
// synchronously, so a second message queues in the socket buffer until the
// prior turn's reply has been emitted.
type ChatSocketHandler struct {
	hub      *realtime.Hub
	sessions repositories.SessionRepo
	pipeline *services.PipelineService
}

func NewChatSocketHandler(hub *realtime.Hub, sessions repositories.SessionRepo, pipeline *services.PipelineService) *ChatSocketHandler {
	return &ChatSocketHandler{hub: hub, sessions: sessions, pipeline: pipeline}
}

type errorPayload struct {
	Message string `json:"message"`
}

type typingPayload struct {
	Typing bool `json:"typing"`
}

// Handle runs one websocket connection to completion. The handshake must
// carry sessionId, contactId and tenantId; anything missing or not matching
// an owned session is rejected with an error event and a disconnect.
func (h *ChatSocketHandler) Handle(c *websocket.Conn) {
	sessionRaw := c.Query("sessionId")
	contactRaw := c.Query("contactId")
	tenantRaw := c.Query("tenantId")
	if sessionRaw == "" || contactRaw == "" || tenantRaw == "" {
		h.rejectConn(c, "Missing required parameters")
		return
	}

	sessionID, err1 := uuid.Parse(sessionRaw)
	contactID, err2 := uuid.Parse(contactRaw)
	tenantID, err3 := uuid.Parse(tenantRaw)
	if err1 != nil || err2 != nil || err3 != nil {
		h.rejectConn(c, "Invalid connection parameters")
		return
	}

	// The declared triple must name a session the contact actually owns in
	// that tenant; anything else reads as not found.
	if _, err := h.sessions.GetForTriple(sessionID, tenantID, contactID); err != nil {
		h.rejectConn(c, "Session not found")
		return
	}

	conn := realtime.NewConnection(sessionID.String(), c)
	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	em := &roomEmitter{hub: h.hub, sessionID: sessionID.String()}

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		var frame realtime.Event
		if err := json.Unmarshal(data, &frame); err != nil {
			em.Error("invalid payload")
			continue
		}
		if frame.Event != "message" {
			continue
		}

		var in services.InboundMessage
		if err := json.Unmarshal(frame.Data, &in); err != nil || in.Text == "" {
			em.Error("invalid message payload")
			continue
		}
		// The payload may not redirect the turn to another session or
		// contact than the ones this socket was opened for.
		if in.SessionID != sessionID || in.ContactID != contactID {
			em.Error("Session not found")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		h.pipeline.HandleInbound(ctx, em, tenantID, in)
		cancel()
	}
}

// rejectConn answers a failed handshake with a single error event and closes.
func (h *ChatSocketHandler) rejectConn(c *websocket.Conn, message string) {
	if payload, err := realtime.NewEvent("error", errorPayload{Message: message}); err == nil {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
	_ = c.Close()
}

// roomEmitter fans pipeline events out to the session's room. Emission is
// best effort: a client gone mid-turn loses the frame, never the persisted
// work behind it.
type roomEmitter struct {
	hub       *realtime.Hub
	sessionID string
}

func (e *roomEmitter) Typing(on bool) {
	e.emit("typing", typingPayload{Typing: on})
}

func (e *roomEmitter) Message(m services.OutboundMessage) {
	e.emit("message", m)
}

func (e *roomEmitter) Error(message string) {
	e.emit("error", errorPayload{Message: message})
}

func (e *roomEmitter) emit(name string, data interface{}) {
	payload, err := realtime.NewEvent(name, data)
	if err != nil {
		utils.LogWarn("event encode failed", map[string]interface{}{
			"event": name, "error": err.Error(),
		})
		return
	}
	e.hub.Broadcast(e.sessionID, payload)
}
