package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

type TicketRepo interface {
	// GetForContact re-asserts tenant AND contact ownership on the ticket
	// row itself; a valid ticket id from another tenant reads as not found.
	GetForContact(ticketID int64, contactID, tenantID uuid.UUID) (*models.Ticket, error)
	RecentForContact(contactID, tenantID uuid.UUID, limit int) ([]models.Ticket, error)
	// CreateWithActivity inserts the ticket and its timeline entry in one
	// transaction; neither row exists without the other.
	CreateWithActivity(ticket *models.Ticket, event *models.ActivityEvent) error
	OverdueOpen(now time.Time) ([]models.Ticket, error)
	MarkSLABreached(ticket *models.Ticket, event *models.ActivityEvent, at time.Time) error
}

type ticketRepo struct {
	db *gorm.DB
}

func NewTicketRepo(db *gorm.DB) TicketRepo {
	return &ticketRepo{db: db}
}

func (r *ticketRepo) GetForContact(ticketID int64, contactID, tenantID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.
		Preload("AssignedUser").
		Where("id = ? AND customer_id = ? AND tenant_id = ?", ticketID, contactID, tenantID).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepo) RecentForContact(contactID, tenantID uuid.UUID, limit int) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.
		Where("customer_id = ? AND tenant_id = ?", contactID, tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepo) CreateWithActivity(ticket *models.Ticket, event *models.ActivityEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		event.TicketID = &ticket.ID
		return tx.Create(event).Error
	})
}

// OverdueOpen lists open tickets past their SLA that have not been flagged.
func (r *ticketRepo) OverdueOpen(now time.Time) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.
		Where("status = ? AND sla_due_at IS NOT NULL AND sla_due_at < ? AND sla_breached_at IS NULL",
			models.TicketStatusOpen, now).
		Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepo) MarkSLABreached(ticket *models.Ticket, event *models.ActivityEvent, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Ticket{}).
			Where("id = ? AND sla_breached_at IS NULL", ticket.ID).
			Update("sla_breached_at", at)
		if res.Error != nil {
			return res.Error
		}
		// Another scanner run already reported this breach.
		if res.RowsAffected == 0 {
			return nil
		}
		event.TicketID = &ticket.ID
		return tx.Create(event).Error
	})
}
