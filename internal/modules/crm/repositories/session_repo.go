package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

type SessionRepo interface {
	ActiveForContact(tenantID, contactID uuid.UUID) (*models.ChatSession, error)
	Create(session *models.ChatSession) error
	GetScoped(scope tenant.Scope, id uuid.UUID) (*models.ChatSession, error)
	GetForTriple(id, tenantID, contactID uuid.UUID) (*models.ChatSession, error)
	TouchLastMessage(id uuid.UUID, at time.Time) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{db: db}
}

// ActiveForContact returns the most recently active session, preferring
// last_message_at and falling back to creation order for untouched sessions.
// An untouched session has a NULL last_message_at, and Postgres puts NULLs
// first on a bare DESC, so a racing duplicate that nobody ever wrote to
// would shadow the session holding the conversation. COALESCE onto
// created_at keeps the touched session in front on every backend.
func (r *sessionRepo) ActiveForContact(tenantID, contactID uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.
		Where("contact_id = ? AND tenant_id = ? AND status = ?",
			contactID, tenantID, models.SessionStatusActive).
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("created_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Create(session *models.ChatSession) error {
	return r.db.Create(session).Error
}

func (r *sessionRepo) GetScoped(scope tenant.Scope, id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := scope.Apply(r.db.Where("id = ?", id)).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetForTriple re-verifies the whole (session, tenant, contact) triple in one
// predicate, so a crafted session id cannot be joined against another
// tenant's contact.
func (r *sessionRepo) GetForTriple(id, tenantID, contactID uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.
		Where("id = ? AND tenant_id = ? AND contact_id = ?", id, tenantID, contactID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) TouchLastMessage(id uuid.UUID, at time.Time) error {
	return r.db.Model(&models.ChatSession{}).
		Where("id = ?", id).
		Update("last_message_at", at).Error
}
