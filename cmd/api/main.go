package main

import (
	"log"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/simplecrm/simplecrm-be/internal/core/assistant"
	"github.com/simplecrm/simplecrm-be/internal/core/events"
	"github.com/simplecrm/simplecrm-be/internal/core/jobs"
	"github.com/simplecrm/simplecrm-be/internal/core/llm"
	"github.com/simplecrm/simplecrm-be/internal/core/tenant"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/handlers"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/repositories"
	"github.com/simplecrm/simplecrm-be/internal/modules/crm/services"
	"github.com/simplecrm/simplecrm-be/internal/realtime"
	"github.com/simplecrm/simplecrm-be/internal/shared/config"
	"github.com/simplecrm/simplecrm-be/internal/shared/database"
	"github.com/simplecrm/simplecrm-be/internal/shared/utils"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories
	contactRepo := repositories.NewContactRepo(db.GORM)
	sessionRepo := repositories.NewSessionRepo(db.GORM)
	messageRepo := repositories.NewMessageRepo(db.GORM)
	ticketRepo := repositories.NewTicketRepo(db.GORM)
	activityRepo := repositories.NewActivityRepo(db.GORM)

	// Init generation chain (multi-backend, per-call fallback)
	chain, err := llm.ChainFromConfig(cfg.LLMProviders, cfg.OpenAIKey, cfg.GeminiKey, cfg.ClaudeKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("❌ Failed to build LLM chain: %v", err)
	}
	log.Printf("🤖 Preferred LLM backend: %s", chain.GetProviderName())
	classifier := assistant.NewClassifier(chain)

	// Init CRM event publisher (Noop when AMQP_URL unset)
	publisher := events.FromConfig(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()

	// Init services
	sessionService := services.NewSessionService(contactRepo, sessionRepo, messageRepo)
	actionService := services.NewActionService(ticketRepo, publisher)
	pipeline := services.NewPipelineService(contactRepo, ticketRepo, sessionRepo, messageRepo, classifier, actionService)

	// Init realtime hub + handlers
	hub := realtime.NewHub()
	defer hub.Close()

	sessionDeps := &handlers.SessionDeps{
		Sessions: sessionService,
		Repo:     sessionRepo,
		Messages: messageRepo,
	}
	chatHandler := handlers.NewChatHandler(sessionDeps, ticketRepo, contactRepo, publisher)
	activityHandler := handlers.NewActivityHandler(activityRepo)
	socketHandler := handlers.NewChatSocketHandler(hub, sessionRepo, pipeline)

	// SLA scanner
	scanner := jobs.NewSLAScanner(ticketRepo)
	if err := scanner.Start(); err != nil {
		log.Fatalf("❌ Failed to start SLA scanner: %v", err)
	}
	defer scanner.Stop()

	// Fiber app
	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID, X-Tenant-ID, X-Super-Admin",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", tenant.Middleware())
	api.Post("/chat/sessions", chatHandler.CreateSession)
	api.Get("/chat/sessions/:id/messages", chatHandler.GetSessionMessages)
	api.Get("/chat/tickets/:id", chatHandler.GetTicket)
	api.Post("/chat/tickets", chatHandler.CreateTicket)
	api.Get("/activity", activityHandler.List)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(socketHandler.Handle))

	log.Fatal(app.Listen(":" + cfg.Port))
}
