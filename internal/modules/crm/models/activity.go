package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity kinds written by the conversation pipeline and jobs.
const (
	ActivityTicketCreated = "ticket_created"
	ActivitySLABreached   = "sla_breached"
)

// ActivityEvent is an append-only timeline entry. The pipeline only ever
// inserts; no update or delete path exists.
type ActivityEvent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ContactID   *uuid.UUID     `gorm:"type:uuid;index" json:"contact_id"`
	TicketID    *int64         `gorm:"index" json:"ticket_id"`
	ActorID     *uuid.UUID     `gorm:"type:uuid" json:"actor_id"`
	Kind        string         `gorm:"type:text;not null;index" json:"kind"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (ActivityEvent) TableName() string {
	return "activity_timeline"
}
