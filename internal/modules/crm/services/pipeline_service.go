package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/simplecrm/simplecrm-be/internal/core/assistant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// recentTicketLimit caps how much ticket history goes into the prompt.
const recentTicketLimit = 5

// OutboundMessage is the wire shape of an assistant message event.
type OutboundMessage struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   uuid.UUID       `json:"session_id"`
	SenderType  string          `json:"sender_type"`
	MessageText string          `json:"message_text"`
	MessageType string          `json:"message_type"`
	AIIntent    string          `json:"ai_intent,omitempty"`
	AIEntities  json.RawMessage `json:"ai_entities,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Emitter delivers transient events to the customer's connection. Calls are
// best effort; a gone client must not undo persisted work.
type Emitter interface {
	Typing(on bool)
	Message(m OutboundMessage)
	Error(message string)
}

// Assistant is the classification boundary; *assistant.Classifier satisfies
// it and tests substitute their own.
type Assistant interface {
	Process(ctx context.Context, message string, cctx assistant.CustomerContext) assistant.Result
}

// InboundMessage is one customer message event off the socket.
type InboundMessage struct {
	SessionID uuid.UUID `json:"session_id"`
	ContactID uuid.UUID `json:"contact_id"`
	Text      string    `json:"text"`
}

// PipelineService orchestrates one conversation turn: persist the inbound
// message, classify, dispatch any CRM action, persist and emit the reply.
// The caller (the socket read loop) runs turns strictly one at a time per
// connection, so replies on a connection never interleave.
type PipelineService struct {
	contacts repositories.ContactRepo
	tickets  repositories.TicketRepo
	sessions repositories.SessionRepo
	messages repositories.MessageRepo
	ai       Assistant
	actions  *ActionService
}

func NewPipelineService(
	contacts repositories.ContactRepo,
	tickets repositories.TicketRepo,
	sessions repositories.SessionRepo,
	messages repositories.MessageRepo,
	ai Assistant,
	actions *ActionService,
) *PipelineService {
	return &PipelineService{
		contacts: contacts,
		tickets:  tickets,
		sessions: sessions,
		messages: messages,
		ai:       ai,
		actions:  actions,
	}
}

// HandleInbound processes one customer message for the session bound to the
// connection. tenantID comes from the connection handshake, never from the
// message payload.
func (s *PipelineService) HandleInbound(ctx context.Context, em Emitter, tenantID uuid.UUID, in InboundMessage) {
	// Re-verify the whole triple on every turn; a stale or forged session id
	// must read as not found.
	session, err := s.sessions.GetForTriple(in.SessionID, tenantID, in.ContactID)
	if err != nil {
		em.Error("Session not found")
		return
	}

	// Losing the customer's message silently is unacceptable, so this write
	// is the one fatal step of the turn.
	inbound := &models.ChatMessage{
		SessionID:   session.ID,
		SenderType:  models.SenderCustomer,
		SenderID:    &in.ContactID,
		MessageText: in.Text,
		MessageType: models.MessageKindText,
	}
	if err := s.messages.Create(inbound); err != nil {
		utils.LogError("inbound message persist failed", err, map[string]interface{}{
			"session_id": session.ID.String(),
		})
		em.Error("Your message could not be saved. Please try again.")
		return
	}

	em.Typing(true)

	cctx := s.customerContext(in.ContactID, tenantID)
	result := s.ai.Process(ctx, in.Text, cctx)

	reply, actionResult := s.actions.Execute(ctx, ActionInput{
		Intent:   result.Intent,
		Entities: result.Entities,
		Text:     in.Text,
		Reply:    result.Reply,
		Context:  cctx,
	})

	entitiesJSON, _ := json.Marshal(result.Entities)
	outbound := &models.ChatMessage{
		SessionID:   session.ID,
		SenderType:  models.SenderAssistant,
		MessageText: reply,
		MessageType: models.MessageKindText,
		AIIntent:    string(result.Intent),
		AIEntities:  datatypes.JSON(entitiesJSON),
	}
	if actionResult != nil {
		if crmJSON, err := json.Marshal(actionResult); err == nil {
			outbound.CRMData = datatypes.JSON(crmJSON)
		}
	}
	if err := s.messages.Create(outbound); err != nil {
		utils.LogError("assistant message persist failed", err, map[string]interface{}{
			"session_id": session.ID.String(),
		})
		em.Typing(false)
		em.Error("I encountered an error. Please try again or contact support.")
		return
	}

	if err := s.sessions.TouchLastMessage(session.ID, time.Now()); err != nil {
		utils.LogWarn("session timestamp update failed", map[string]interface{}{
			"session_id": session.ID.String(), "error": err.Error(),
		})
	}

	// Audit trail is best effort; its failure never blocks the turn.
	queryLog := &models.ChatQueryLog{
		SessionID: session.ID,
		MessageID: inbound.ID,
		ContactID: in.ContactID,
		TenantID:  tenantID,
		QueryText: in.Text,
		Intent:    string(result.Intent),
		Entities:  datatypes.JSON(entitiesJSON),
		ReplyText: reply,
		CRMData:   outbound.CRMData,
	}
	if err := s.messages.LogQuery(queryLog); err != nil {
		utils.LogWarn("query audit log failed", map[string]interface{}{
			"session_id": session.ID.String(), "error": err.Error(),
		})
	}

	em.Typing(false)
	em.Message(OutboundMessage{
		ID:          outbound.ID,
		SessionID:   outbound.SessionID,
		SenderType:  outbound.SenderType,
		MessageText: outbound.MessageText,
		MessageType: outbound.MessageType,
		AIIntent:    outbound.AIIntent,
		AIEntities:  entitiesJSON,
		CreatedAt:   outbound.CreatedAt,
	})
}

// customerContext gathers identity and recent tickets for the prompt. A
// partial context is better than no turn, so lookups degrade quietly.
func (s *PipelineService) customerContext(contactID, tenantID uuid.UUID) assistant.CustomerContext {
	cctx := assistant.CustomerContext{ContactID: contactID, TenantID: tenantID}

	if contact, err := s.contacts.GetForTenant(tenantID, contactID); err == nil {
		cctx.CustomerName = contact.Name
		cctx.CustomerEmail = contact.Email
	} else {
		utils.LogWarn("customer context lookup failed", map[string]interface{}{
			"contact_id": contactID.String(), "error": err.Error(),
		})
	}

	if tickets, err := s.tickets.RecentForContact(contactID, tenantID, recentTicketLimit); err == nil {
		cctx.RecentTickets = tickets
	}

	return cctx
}
