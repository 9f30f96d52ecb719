package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chat session statuses.
const (
	SessionStatusActive = "active"
	SessionStatusClosed = "closed"
)

// Message sender types.
const (
	SenderCustomer  = "customer"
	SenderAssistant = "assistant"
	SenderSystem    = "system"
)

// Message kinds.
const (
	MessageKindText  = "text"
	MessageKindVoice = "voice"
)

// ChatSession is one ongoing conversation between a contact and the
// assistant. At most one active session per (contact, tenant) pair is the
// target state; a rare racing duplicate is tolerated and closed by hand.
type ChatSession struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ContactID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"contact_id"`
	Status        string     `gorm:"type:text;not null;default:'active';index" json:"status"`
	LastMessageAt *time.Time `json:"last_message_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Contact Contact `gorm:"foreignKey:ContactID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ChatMessage is immutable once written. Ordering within a session is
// (created_at, id) ascending; the id breaks same-timestamp ties.
type ChatMessage struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	SenderType  string         `gorm:"type:text;not null" json:"sender_type"`
	SenderID    *uuid.UUID     `gorm:"type:uuid" json:"sender_id"`
	MessageText string         `gorm:"type:text;not null" json:"message_text"`
	MessageType string         `gorm:"type:text;not null;default:'text'" json:"message_type"`
	AIIntent    string         `gorm:"type:text" json:"ai_intent,omitempty"`
	AIEntities  datatypes.JSON `json:"ai_entities,omitempty"`
	CRMData     datatypes.JSON `json:"crm_data,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`

	Session ChatSession `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ChatQueryLog is the append-only audit trail of one classification+action
// cycle. Kept apart from ChatMessage so message persistence is never blocked
// by an audit failure.
type ChatQueryLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	MessageID uuid.UUID      `gorm:"type:uuid;not null" json:"message_id"`
	ContactID uuid.UUID      `gorm:"type:uuid;not null" json:"contact_id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	QueryText string         `gorm:"type:text;not null" json:"query_text"`
	Intent    string         `gorm:"type:text" json:"intent"`
	Entities  datatypes.JSON `json:"entities,omitempty"`
	ReplyText string         `gorm:"type:text" json:"reply_text"`
	CRMData   datatypes.JSON `json:"crm_data,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatQueryLog) TableName() string {
	return "chat_ai_queries"
}
