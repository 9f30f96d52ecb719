package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

type ContactRepo interface {
	GetScoped(scope tenant.Scope, id uuid.UUID) (*models.Contact, error)
	GetForTenant(tenantID, id uuid.UUID) (*models.Contact, error)
}

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepo(db *gorm.DB) ContactRepo {
	return &contactRepo{db: db}
}

func (r *contactRepo) GetScoped(scope tenant.Scope, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := scope.Apply(r.db.Where("id = ?", id)).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) GetForTenant(tenantID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &contact, nil
}
