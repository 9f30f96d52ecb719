package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/simplecrm/simplecrm-be/internal/core/events"
	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/models"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/services"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

// ChatHandler serves the REST bootstrap the chat UI calls before opening a
// websocket, plus the customer-facing ticket endpoints.
type ChatHandler struct {
	sessionService *SessionDeps
	tickets        repositories.TicketRepo
	contacts       repositories.ContactRepo
	publisher      events.Publisher
}

// SessionDeps groups the session bootstrap collaborators.
type SessionDeps struct {
	Sessions *services.SessionService
	Repo     repositories.SessionRepo
	Messages repositories.MessageRepo
}

func NewChatHandler(deps *SessionDeps, tickets repositories.TicketRepo, contacts repositories.ContactRepo, publisher events.Publisher) *ChatHandler {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &ChatHandler{sessionService: deps, tickets: tickets, contacts: contacts, publisher: publisher}
}

type createSessionRequest struct {
	ContactID string `json:"contact_id"`
}

// CreateSession returns the contact's active session, creating one when
// needed.
func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil || req.ContactID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contact_id is required",
		})
	}
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contact_id is invalid",
		})
	}

	scope := tenant.ScopeFrom(c)
	session, err := h.sessionService.Sessions.GetOrCreate(scope, contactID)
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "contact not found",
		})
	}
	if err != nil {
		utils.LogError("session bootstrap failed", err, map[string]interface{}{
			"contact_id": contactID.String(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
		})
	}

	return c.JSON(fiber.Map{"session_id": session.ID})
}

// GetSessionMessages returns the session history in persisted order.
func (h *ChatHandler) GetSessionMessages(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session id is invalid",
		})
	}

	scope := tenant.ScopeFrom(c)
	if _, err := h.sessionService.Repo.GetScoped(scope, sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "session not found",
		})
	}

	messages, err := h.sessionService.Messages.ListBySession(sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch messages",
		})
	}
	return c.JSON(messages)
}

// GetTicket fetches one ticket for a customer, re-checking tenant and
// contact ownership on the row itself.
func (h *ChatHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ticket id is invalid",
		})
	}
	contactID, err := uuid.Parse(c.Query("contact_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contact_id is required",
		})
	}

	scope := tenant.ScopeFrom(c)
	contact, err := h.contacts.GetScoped(scope, contactID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ticket not found",
		})
	}

	ticket, err := h.tickets.GetForContact(int64(ticketID), contact.ID, contact.TenantID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ticket not found",
		})
	}
	return c.JSON(ticket)
}

type createTicketRequest struct {
	ContactID   string `json:"contact_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// CreateTicket creates a ticket directly from the chat UI. Same
// transactional ticket+activity write as the assistant's dispatcher path.
func (h *ChatHandler) CreateTicket(c *fiber.Ctx) error {
	var req createTicketRequest
	if err := c.BodyParser(&req); err != nil || req.ContactID == "" || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contact_id and title are required",
		})
	}
	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contact_id is invalid",
		})
	}

	scope := tenant.ScopeFrom(c)
	contact, err := h.contacts.GetScoped(scope, contactID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "contact not found",
		})
	}

	priority := req.Priority
	if priority == "" {
		priority = models.TicketPriorityMedium
	}
	description := req.Description
	if description == "" {
		description = "Ticket created from chatbot"
	}

	due := time.Now().Add(services.SLAWindow)
	ticket := &models.Ticket{
		TenantID:    contact.TenantID,
		CustomerID:  contact.ID,
		Title:       req.Title,
		Description: description,
		Status:      models.TicketStatusOpen,
		Priority:    priority,
		SLADueAt:    &due,
	}
	event := &models.ActivityEvent{
		TenantID:    contact.TenantID,
		ContactID:   &contact.ID,
		Kind:        models.ActivityTicketCreated,
		Title:       fmt.Sprintf("Ticket created via chat: %s", req.Title),
		Description: description,
	}
	if err := h.tickets.CreateWithActivity(ticket, event); err != nil {
		utils.LogError("ticket creation failed", err, map[string]interface{}{
			"contact_id": contact.ID.String(),
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create ticket",
		})
	}

	if err := h.publisher.Publish(c.Context(), "ticket.created", events.TicketCreatedEvent{
		TicketID:  ticket.ID,
		TenantID:  ticket.TenantID,
		ContactID: ticket.CustomerID,
		Title:     ticket.Title,
		Priority:  ticket.Priority,
		Source:    "api",
		CreatedAt: ticket.CreatedAt,
	}); err != nil {
		utils.LogWarn("ticket.created event not published", map[string]interface{}{
			"ticket_id": ticket.ID, "error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"ok": true, "ticket_id": ticket.ID})
}
