package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// SLAScanner periodically flags open tickets that blew past their SLA due
// time. Each breach is reported exactly once: the ticket row is stamped and
// an activity event written in the same transaction.
type SLAScanner struct {
	tickets repositories.TicketRepo
	cron    *cron.Cron
}

func NewSLAScanner(tickets repositories.TicketRepo) *SLAScanner {
	return &SLAScanner{tickets: tickets, cron: cron.New()}
}

// Start schedules an hourly scan. The first run happens on schedule, not at
// startup, so a deploy storm never floods the timeline.
func (s *SLAScanner) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.Scan); err != nil {
		return err
	}
	s.cron.Start()
	utils.LogInfo("SLA scanner started", map[string]interface{}{"schedule": "@hourly"})
	return nil
}

func (s *SLAScanner) Stop() {
	s.cron.Stop()
}

// Scan runs one pass over overdue open tickets.
func (s *SLAScanner) Scan() {
	now := time.Now()
	tickets, err := s.tickets.OverdueOpen(now)
	if err != nil {
		utils.LogError("SLA scan query failed", err, nil)
		return
	}

	for i := range tickets {
		ticket := &tickets[i]
		event := &models.ActivityEvent{
			TenantID:    ticket.TenantID,
			ContactID:   &ticket.CustomerID,
			Kind:        models.ActivitySLABreached,
			Title:       fmt.Sprintf("SLA breached on ticket #%d: %s", ticket.ID, ticket.Title),
			Description: fmt.Sprintf("Ticket was due %s and is still open.", ticket.SLADueAt.Format(time.RFC3339)),
		}
		if err := s.tickets.MarkSLABreached(ticket, event, now); err != nil {
			utils.LogError("SLA breach flag failed", err, map[string]interface{}{
				"ticket_id": ticket.ID,
			})
		}
	}

	if len(tickets) > 0 {
		utils.LogInfo("SLA scan finished", map[string]interface{}{"breached": len(tickets)})
	}
}
