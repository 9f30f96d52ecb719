package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

type MessageRepo interface {
	Create(msg *models.ChatMessage) error
	ListBySession(sessionID uuid.UUID) ([]models.ChatMessage, error)
	LogQuery(entry *models.ChatQueryLog) error
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(msg *models.ChatMessage) error {
	return r.db.Create(msg).Error
}

// ListBySession returns the session history in persisted order. Tenant
// scoping happens one hop up on the session row; messages have no tenant
// column of their own.
func (r *messageRepo) ListBySession(sessionID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) LogQuery(entry *models.ChatQueryLog) error {
	return r.db.Create(entry).Error
}
