package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
)

// GreetingMessage seeds every new session so the customer never opens an
// empty conversation.
const GreetingMessage = "Hello! I'm here to help. How can I assist you today?"

// SessionService owns chat session lifecycle. It creates sessions and reuses
// active ones; closing a session is an administrative action elsewhere.
type SessionService struct {
	contacts repositories.ContactRepo
	sessions repositories.SessionRepo
	messages repositories.MessageRepo
}

func NewSessionService(
	contacts repositories.ContactRepo,
	sessions repositories.SessionRepo,
	messages repositories.MessageRepo,
) *SessionService {
	return &SessionService{contacts: contacts, sessions: sessions, messages: messages}
}

// GetOrCreate returns the contact's active session, creating and greeting a
// new one when none exists. Reuse makes the call idempotent: page reloads
// and extra tabs land on the same conversation.
//
// Two racing bootstrap calls can both miss the active-session lookup and
// each insert a session. That rare duplicate is tolerated rather than
// serialized on a lock; the stale one gets closed by hand. The migration
// ships a partial unique index for deployments that prefer rejecting the
// racing insert.
func (s *SessionService) GetOrCreate(scope tenant.Scope, contactID uuid.UUID) (*models.ChatSession, error) {
	contact, err := s.contacts.GetScoped(scope, contactID)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.ActiveForContact(contact.TenantID, contact.ID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	session = &models.ChatSession{
		TenantID:  contact.TenantID,
		ContactID: contact.ID,
		Status:    models.SessionStatusActive,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, err
	}

	greeting := &models.ChatMessage{
		SessionID:   session.ID,
		SenderType:  models.SenderAssistant,
		MessageText: GreetingMessage,
		MessageType: models.MessageKindText,
	}
	if err := s.messages.Create(greeting); err != nil {
		return nil, err
	}

	return session, nil
}
