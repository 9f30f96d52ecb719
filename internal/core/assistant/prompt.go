package assistant

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
)

// CustomerContext is the per-conversation context handed to the assistant:
// who the customer is and their most recent tickets, newest first.
type CustomerContext struct {
	ContactID     uuid.UUID
	TenantID      uuid.UUID
	CustomerName  string
	CustomerEmail string
	RecentTickets []models.Ticket
}

// BuildPrompt embeds the customer context and the short menu of actions the
// assistant may request into the generation prompt.
func BuildPrompt(message string, cctx CustomerContext) string {
	var sb strings.Builder

	sb.WriteString("You are a helpful customer support chatbot for SimpleCRM.\n\n")

	name := cctx.CustomerName
	if name == "" {
		name = "Customer"
	}
	email := cctx.CustomerEmail
	if email == "" {
		email = "N/A"
	}

	sb.WriteString("Customer Information:\n")
	sb.WriteString(fmt.Sprintf("- Name: %s\n", name))
	sb.WriteString(fmt.Sprintf("- Email: %s\n", email))
	sb.WriteString(fmt.Sprintf("- Contact ID: %s\n\n", cctx.ContactID))

	if len(cctx.RecentTickets) > 0 {
		refs := make([]string, 0, len(cctx.RecentTickets))
		for _, t := range cctx.RecentTickets {
			refs = append(refs, fmt.Sprintf("#%d - %s (%s)", t.ID, t.Title, t.Status))
		}
		sb.WriteString("Recent Tickets: " + strings.Join(refs, ", ") + "\n\n")
	} else {
		sb.WriteString("Recent Tickets: None\n\n")
	}

	sb.WriteString("Available Actions:\n")
	sb.WriteString("1. ticket_lookup(ticket_id) - Get details of a specific ticket by ID\n")
	sb.WriteString("2. account_info() - Get customer account information\n")
	sb.WriteString("3. create_ticket(title, description, priority) - Create a new support ticket\n")
	sb.WriteString("4. search_knowledge_base(query) - Search help articles\n\n")

	sb.WriteString("Instructions:\n")
	sb.WriteString("- Be friendly, professional, and helpful\n")
	sb.WriteString("- If customer asks about a ticket, extract the ticket ID and use ticket_lookup\n")
	sb.WriteString("- If customer wants to create a ticket, extract title and description\n")
	sb.WriteString("- Keep responses concise but informative\n")
	sb.WriteString("- If you don't know something, admit it and offer to help find the answer\n\n")

	sb.WriteString(fmt.Sprintf("Customer Message: %q\n\n", message))
	sb.WriteString("Respond naturally and helpfully. If the customer mentions a ticket number, acknowledge it and indicate you'll look it up.")

	return sb.String()
}
