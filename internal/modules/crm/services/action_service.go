package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simplecrm/simplecrm-be/internal/core/assistant"
	"github.com/simplecrm/simplecrm-be/internal/core/events"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// SLAWindow is how long after creation a chat-created ticket is due.
const SLAWindow = 72 * time.Hour

// ActionInput carries one classified turn into the dispatcher.
type ActionInput struct {
	Intent   assistant.Intent
	Entities assistant.Entities
	// Text is the raw customer message, used for title extraction.
	Text    string
	Reply   string
	Context assistant.CustomerContext
}

// ActionResult is the structured outcome attached to the assistant message.
type ActionResult struct {
	TicketID int64  `json:"ticket_id"`
	Title    string `json:"title,omitempty"`
	Status   string `json:"status,omitempty"`
}

// ActionService executes CRM side effects keyed off a classified intent.
type ActionService struct {
	tickets   repositories.TicketRepo
	publisher events.Publisher
}

func NewActionService(tickets repositories.TicketRepo, publisher events.Publisher) *ActionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ActionService{tickets: tickets, publisher: publisher}
}

// Execute runs the side effect for the intent, if any, and returns the
// (possibly enriched) reply plus a structured result. Persistence failure
// degrades to the unmodified text reply; the turn is never failed here.
func (s *ActionService) Execute(ctx context.Context, in ActionInput) (string, *ActionResult) {
	switch in.Intent {
	case assistant.IntentTicketLookup:
		if in.Entities.TicketID == 0 {
			return in.Reply, nil
		}
		return s.lookupTicket(in)
	case assistant.IntentCreateTicket:
		return s.createTicket(ctx, in)
	default:
		return in.Reply, nil
	}
}

func (s *ActionService) lookupTicket(in ActionInput) (string, *ActionResult) {
	ticket, err := s.tickets.GetForContact(in.Entities.TicketID, in.Context.ContactID, in.Context.TenantID)
	if errors.Is(err, repositories.ErrNotFound) {
		// A miss is answered explicitly, never papered over.
		reply := fmt.Sprintf(
			"I couldn't find ticket #%d in your account. Please check the ticket number and try again.",
			in.Entities.TicketID)
		return reply, nil
	}
	if err != nil {
		utils.LogError("ticket lookup failed", err, map[string]interface{}{
			"ticket_id": in.Entities.TicketID, "tenant_id": in.Context.TenantID.String(),
		})
		return in.Reply, nil
	}

	result := &ActionResult{TicketID: ticket.ID, Title: ticket.Title, Status: ticket.Status}
	return formatTicketSummary(ticket, in.Reply), result
}

func (s *ActionService) createTicket(ctx context.Context, in ActionInput) (string, *ActionResult) {
	title := ExtractTicketTitle(in.Text)
	priority := in.Entities.Priority
	if priority == "" {
		priority = models.TicketPriorityMedium
	}

	due := time.Now().Add(SLAWindow)
	ticket := &models.Ticket{
		TenantID:    in.Context.TenantID,
		CustomerID:  in.Context.ContactID,
		Title:       title,
		Description: in.Text,
		Status:      models.TicketStatusOpen,
		Priority:    priority,
		SLADueAt:    &due,
	}
	event := &models.ActivityEvent{
		TenantID:    in.Context.TenantID,
		ContactID:   &in.Context.ContactID,
		Kind:        models.ActivityTicketCreated,
		Title:       fmt.Sprintf("Ticket created via chat: %s", title),
		Description: in.Text,
	}

	if err := s.tickets.CreateWithActivity(ticket, event); err != nil {
		utils.LogError("ticket creation failed", err, map[string]interface{}{
			"tenant_id": in.Context.TenantID.String(), "contact_id": in.Context.ContactID.String(),
		})
		return in.Reply, nil
	}

	if err := s.publisher.Publish(ctx, "ticket.created", events.TicketCreatedEvent{
		TicketID:  ticket.ID,
		TenantID:  ticket.TenantID,
		ContactID: ticket.CustomerID,
		Title:     ticket.Title,
		Priority:  ticket.Priority,
		Source:    "chat",
		CreatedAt: ticket.CreatedAt,
	}); err != nil {
		utils.LogWarn("ticket.created event not published", map[string]interface{}{
			"ticket_id": ticket.ID, "error": err.Error(),
		})
	}

	reply := fmt.Sprintf(
		"I've created a new ticket #%d for you: %q. Our team will get back to you soon!",
		ticket.ID, title)
	return reply, &ActionResult{TicketID: ticket.ID, Title: title, Status: models.TicketStatusOpen}
}

var ticketStatusMarkers = map[string]string{
	models.TicketStatusOpen:       "🔴",
	models.TicketStatusInProgress: "🟡",
	models.TicketStatusClosed:     "⚫",
}

func formatTicketSummary(ticket *models.Ticket, replyText string) string {
	marker := ticketStatusMarkers[ticket.Status]
	if marker == "" {
		marker = "⚪"
	}

	var sb strings.Builder
	sb.WriteString(replyText)
	sb.WriteString("\n\n📋 *Ticket Details:*\n")
	sb.WriteString(fmt.Sprintf("ID: #%d\n", ticket.ID))
	sb.WriteString(fmt.Sprintf("Title: %s\n", ticket.Title))
	sb.WriteString(fmt.Sprintf("Status: %s %s\n", marker, ticket.Status))
	sb.WriteString(fmt.Sprintf("Priority: %s\n", ticket.Priority))
	if ticket.AssignedUser != nil {
		sb.WriteString(fmt.Sprintf("Assigned to: %s\n", ticket.AssignedUser.FullName))
	}
	if ticket.Description != "" {
		sb.WriteString(fmt.Sprintf("\nDescription: %s", ticket.Description))
	}
	return sb.String()
}
