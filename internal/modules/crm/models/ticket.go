package models

import (
	"time"

	"github.com/google/uuid"
)

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusClosed     = "closed"
)

// Ticket priorities recognized by the assistant.
const (
	TicketPriorityHigh   = "high"
	TicketPriorityMedium = "medium"
	TicketPriorityLow    = "low"
)

// Ticket is a support ticket. IDs are sequential so customers can reference
// them in chat ("ticket #57").
type Ticket struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"type:text;not null;default:'open'" json:"status"`
	Priority    string     `gorm:"type:text;not null;default:'medium'" json:"priority"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid" json:"assigned_to"`
	SLADueAt    *time.Time `gorm:"index" json:"sla_due_at"`
	// Set once by the SLA scanner so a breach is only reported one time.
	SLABreachedAt *time.Time `json:"sla_breached_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Customer     Contact `gorm:"foreignKey:CustomerID;references:ID" json:"-"`
	AssignedUser *User   `gorm:"foreignKey:AssignedTo;references:ID" json:"assigned_user,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}
