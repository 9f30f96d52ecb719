package jobs

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
)

func setupScanner(t *testing.T) (*gorm.DB, *SLAScanner) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{}, &models.Contact{}, &models.Ticket{}, &models.ActivityEvent{},
	))
	return db, NewSLAScanner(repositories.NewTicketRepo(db))
}

func seedTicket(t *testing.T, db *gorm.DB, status string, due time.Time) *models.Ticket {
	t.Helper()
	tn := &models.Tenant{Slug: "acme-" + due.Format("150405.000000000"), Name: "acme"}
	require.NoError(t, db.Create(tn).Error)
	contact := &models.Contact{TenantID: tn.ID, Name: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(contact).Error)

	ticket := &models.Ticket{
		TenantID:   tn.ID,
		CustomerID: contact.ID,
		Title:      "Login broken",
		Status:     status,
		Priority:   models.TicketPriorityMedium,
		SLADueAt:   &due,
	}
	require.NoError(t, db.Create(ticket).Error)
	return ticket
}

func TestSLAScanner_FlagsOverdueOpenTicketOnce(t *testing.T) {
	db, scanner := setupScanner(t)
	ticket := seedTicket(t, db, models.TicketStatusOpen, time.Now().Add(-time.Hour))

	scanner.Scan()

	var reloaded models.Ticket
	require.NoError(t, db.First(&reloaded, ticket.ID).Error)
	require.NotNil(t, reloaded.SLABreachedAt)

	var events []models.ActivityEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.ActivitySLABreached, events[0].Kind)
	assert.Contains(t, events[0].Title, "Login broken")

	// A second pass must not double-report the same breach.
	scanner.Scan()
	require.NoError(t, db.Find(&events).Error)
	assert.Len(t, events, 1)
}

func TestSLAScanner_IgnoresHealthyAndClosedTickets(t *testing.T) {
	db, scanner := setupScanner(t)
	seedTicket(t, db, models.TicketStatusOpen, time.Now().Add(time.Hour))
	seedTicket(t, db, models.TicketStatusClosed, time.Now().Add(-time.Hour))

	scanner.Scan()

	var count int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}
