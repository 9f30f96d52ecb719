package repositories

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Tenant{}, &models.User{}, &models.Contact{}, &models.Ticket{},
		&models.ActivityEvent{}, &models.ChatSession{}, &models.ChatMessage{},
		&models.ChatQueryLog{},
	))
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, slug string) *models.Tenant {
	t.Helper()
	tn := &models.Tenant{Slug: slug, Name: slug}
	require.NoError(t, db.Create(tn).Error)
	return tn
}

func seedContact(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string) *models.Contact {
	t.Helper()
	c := &models.Contact{TenantID: tenantID, Name: name, Email: name + "@example.com"}
	require.NoError(t, db.Create(c).Error)
	return c
}

func TestContactRepo_GetScoped_CrossTenantReadsAsNotFound(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, "acme")
	t2 := seedTenant(t, db, "globex")
	contact := seedContact(t, db, t2.ID, "eve")

	repo := NewContactRepo(db)

	scope := tenant.Scope{TenantID: t1.ID}
	_, err := repo.GetScoped(scope, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Same id is visible inside its own tenant.
	got, err := repo.GetScoped(tenant.Scope{TenantID: t2.ID}, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, got.ID)

	// Super admin without a target sees everything.
	got, err = repo.GetScoped(tenant.Scope{AllTenants: true, SuperAdmin: true}, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, t2.ID, got.TenantID)
}

func TestSessionRepo_GetForTriple_RejectsForgedHops(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, "acme")
	t2 := seedTenant(t, db, "globex")
	c1 := seedContact(t, db, t1.ID, "alice")
	c2 := seedContact(t, db, t2.ID, "eve")

	repo := NewSessionRepo(db)
	session := &models.ChatSession{TenantID: t1.ID, ContactID: c1.ID, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(session))

	// Right triple resolves.
	_, err := repo.GetForTriple(session.ID, t1.ID, c1.ID)
	require.NoError(t, err)

	// A valid session id pointed at another tenant or contact reads as
	// not found on every hop.
	_, err = repo.GetForTriple(session.ID, t2.ID, c1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetForTriple(session.ID, t1.ID, c2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_ActiveForContact_PrefersMostRecentlyActive(t *testing.T) {
	db := newTestDB(t)
	tn := seedTenant(t, db, "acme")
	contact := seedContact(t, db, tn.ID, "alice")
	repo := NewSessionRepo(db)

	older := &models.ChatSession{TenantID: tn.ID, ContactID: contact.ID, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(older))
	newer := &models.ChatSession{TenantID: tn.ID, ContactID: contact.ID, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(newer))

	require.NoError(t, repo.TouchLastMessage(newer.ID, time.Now()))
	require.NoError(t, repo.TouchLastMessage(older.ID, time.Now().Add(-time.Hour)))

	got, err := repo.ActiveForContact(tn.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	// Closed sessions never come back.
	require.NoError(t, db.Model(&models.ChatSession{}).
		Where("contact_id = ?", contact.ID).
		Update("status", models.SessionStatusClosed).Error)
	_, err = repo.ActiveForContact(tn.ID, contact.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo_ActiveForContact_UntouchedDuplicateNeverShadows(t *testing.T) {
	db := newTestDB(t)
	tn := seedTenant(t, db, "acme")
	contact := seedContact(t, db, tn.ID, "alice")
	repo := NewSessionRepo(db)

	// The tolerated bootstrap race: two active sessions, the customer's
	// conversation lives in the first, the duplicate was never written to
	// and keeps a NULL last_message_at.
	holding := &models.ChatSession{TenantID: tn.ID, ContactID: contact.ID, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(holding))
	duplicate := &models.ChatSession{TenantID: tn.ID, ContactID: contact.ID, Status: models.SessionStatusActive}
	require.NoError(t, repo.Create(duplicate))
	require.NoError(t, repo.TouchLastMessage(holding.ID, time.Now()))

	got, err := repo.ActiveForContact(tn.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, holding.ID, got.ID, "a never-touched duplicate must not hide the conversation")
}

func TestMessageRepo_ListBySession_OrderedByCreatedAtThenID(t *testing.T) {
	db := newTestDB(t)
	tn := seedTenant(t, db, "acme")
	contact := seedContact(t, db, tn.ID, "alice")
	sessions := NewSessionRepo(db)
	session := &models.ChatSession{TenantID: tn.ID, ContactID: contact.ID, Status: models.SessionStatusActive}
	require.NoError(t, sessions.Create(session))

	repo := NewMessageRepo(db)
	base := time.Now().Add(-time.Minute)
	for i := 0; i < 5; i++ {
		msg := &models.ChatMessage{
			SessionID:   session.ID,
			SenderType:  models.SenderCustomer,
			MessageText: "msg",
			MessageType: models.MessageKindText,
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Create(msg))
	}

	messages, err := repo.ListBySession(session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 5)
	for i := 1; i < len(messages); i++ {
		prev, cur := messages[i-1], messages[i]
		notBefore := cur.CreatedAt.After(prev.CreatedAt) ||
			(cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID.String() > prev.ID.String())
		assert.True(t, notBefore, "history must be non-decreasing in (created_at, id)")
	}
}

func TestTicketRepo_GetForContact_ScopesEveryColumn(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, "acme")
	t2 := seedTenant(t, db, "globex")
	c1 := seedContact(t, db, t1.ID, "alice")
	c2 := seedContact(t, db, t2.ID, "eve")

	repo := NewTicketRepo(db)
	ticket := &models.Ticket{
		TenantID: t2.ID, CustomerID: c2.ID,
		Title: "VPN down", Status: models.TicketStatusOpen, Priority: models.TicketPriorityMedium,
	}
	event := &models.ActivityEvent{TenantID: t2.ID, ContactID: &c2.ID, Kind: models.ActivityTicketCreated, Title: "t"}
	require.NoError(t, repo.CreateWithActivity(ticket, event))

	// Another tenant's contact with the right numeric id still misses.
	_, err := repo.GetForContact(ticket.ID, c1.ID, t1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := repo.GetForContact(ticket.ID, c2.ID, t2.ID)
	require.NoError(t, err)
	assert.Equal(t, "VPN down", got.Title)
}

func TestTicketRepo_CreateWithActivity_AllOrNothing(t *testing.T) {
	db := newTestDB(t)
	tn := seedTenant(t, db, "acme")
	contact := seedContact(t, db, tn.ID, "alice")
	repo := NewTicketRepo(db)

	// Fault injection: the activity insert cannot succeed once its table is
	// gone, so the surrounding transaction must also discard the ticket.
	require.NoError(t, db.Migrator().DropTable(&models.ActivityEvent{}))

	ticket := &models.Ticket{
		TenantID: tn.ID, CustomerID: contact.ID,
		Title: "orphan", Status: models.TicketStatusOpen, Priority: models.TicketPriorityMedium,
	}
	event := &models.ActivityEvent{TenantID: tn.ID, ContactID: &contact.ID, Kind: models.ActivityTicketCreated, Title: "t"}
	require.Error(t, repo.CreateWithActivity(ticket, event))

	var count int64
	require.NoError(t, db.Model(&models.Ticket{}).Count(&count).Error)
	assert.Zero(t, count, "ticket must not exist without its activity event")
}

func TestTicketRepo_MarkSLABreached_ReportsOnce(t *testing.T) {
	db := newTestDB(t)
	tn := seedTenant(t, db, "acme")
	contact := seedContact(t, db, tn.ID, "alice")
	repo := NewTicketRepo(db)

	due := time.Now().Add(-time.Hour)
	ticket := &models.Ticket{
		TenantID: tn.ID, CustomerID: contact.ID,
		Title: "late", Status: models.TicketStatusOpen, Priority: models.TicketPriorityMedium,
		SLADueAt: &due,
	}
	event := &models.ActivityEvent{TenantID: tn.ID, ContactID: &contact.ID, Kind: models.ActivityTicketCreated, Title: "t"}
	require.NoError(t, repo.CreateWithActivity(ticket, event))

	overdue, err := repo.OverdueOpen(time.Now())
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	breach := func() *models.ActivityEvent {
		return &models.ActivityEvent{TenantID: tn.ID, ContactID: &contact.ID, Kind: models.ActivitySLABreached, Title: "b"}
	}
	now := time.Now()
	require.NoError(t, repo.MarkSLABreached(&overdue[0], breach(), now))
	require.NoError(t, repo.MarkSLABreached(&overdue[0], breach(), now))

	var breaches int64
	require.NoError(t, db.Model(&models.ActivityEvent{}).
		Where("kind = ?", models.ActivitySLABreached).Count(&breaches).Error)
	assert.EqualValues(t, 1, breaches)

	// Flagged tickets drop out of the next scan.
	overdue, err = repo.OverdueOpen(time.Now())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestActivityRepo_ListScoped_IsTenantIsolated(t *testing.T) {
	db := newTestDB(t)
	t1 := seedTenant(t, db, "acme")
	t2 := seedTenant(t, db, "globex")
	repo := NewActivityRepo(db)

	require.NoError(t, repo.Create(&models.ActivityEvent{TenantID: t1.ID, Kind: "k", Title: "mine"}))
	require.NoError(t, repo.Create(&models.ActivityEvent{TenantID: t2.ID, Kind: "k", Title: "theirs"}))

	events, err := repo.ListScoped(tenant.Scope{TenantID: t1.ID}, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "mine", events[0].Title)

	events, err = repo.ListScoped(tenant.Scope{AllTenants: true}, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
