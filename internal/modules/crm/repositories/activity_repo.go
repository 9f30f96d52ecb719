package repositories

import (
	"gorm.io/gorm"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

type ActivityRepo interface {
	Create(event *models.ActivityEvent) error
	ListScoped(scope tenant.Scope, limit int) ([]models.ActivityEvent, error)
}

type activityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepo {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(event *models.ActivityEvent) error {
	return r.db.Create(event).Error
}

func (r *activityRepo) ListScoped(scope tenant.Scope, limit int) ([]models.ActivityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	var events []models.ActivityEvent
	err := scope.Apply(r.db.Model(&models.ActivityEvent{})).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
