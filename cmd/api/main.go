package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"

	"github.com/loomchat/loomchat-be/internal/config"
	"github.com/loomchat/loomchat-be/internal/core/admission"
	"github.com/loomchat/loomchat-be/internal/core/artifact"
	"github.com/loomchat/loomchat-be/internal/core/auth"
	"github.com/loomchat/loomchat-be/internal/core/billing"
	"github.com/loomchat/loomchat-be/internal/core/deck"
	"github.com/loomchat/loomchat-be/internal/core/jobs"
	"github.com/loomchat/loomchat-be/internal/core/llm"
	"github.com/loomchat/loomchat-be/internal/core/session"
	"github.com/loomchat/loomchat-be/internal/core/settlement"
	"github.com/loomchat/loomchat-be/internal/core/stream"
	"github.com/loomchat/loomchat-be/internal/core/upload"
	"github.com/loomchat/loomchat-be/internal/database"
	"github.com/loomchat/loomchat-be/internal/handlers"
	"github.com/loomchat/loomchat-be/internal/pricing"
	"github.com/loomchat/loomchat-be/internal/repositories"
	"github.com/loomchat/loomchat-be/internal/shared/utils"
)

func main() {
	utils.InitLogger()
	cfg := config.LoadConfig()
	log.Printf("🚀 Starting loomchat-be on port %s", cfg.Port)

	db := database.NewDB(cfg.DatabaseURL)
	defer database.Close(db)

	// Repositories
	userRepo := repositories.NewUserRepo(db)
	chatRepo := repositories.NewChatRepo(db)
	messageRepo := repositories.NewMessageRepo(db)
	voteRepo := repositories.NewVoteRepo(db)
	documentRepo := repositories.NewDocumentRepo(db)

	// LLM service (multi-provider support)
	llmService := llm.NewService()
	log.Printf("🤖 Using LLM provider: %s", llmService.GetProviderName())

	// Upload provider
	uploadProvider, err := upload.NewProviderFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize upload provider: %v", err)
	}
	log.Printf("📦 Using upload provider: %s", uploadProvider.GetProviderName())

	// Core services
	registry := artifact.DefaultRegistry(llmService, uploadProvider)
	artifactService := artifact.NewService(registry, documentRepo)
	orchestrator := stream.NewOrchestrator(llmService, artifactService, registry.Kinds())
	sessionService := session.NewService(chatRepo, messageRepo, llmService)

	// Settlement with its retry worker
	queue := jobs.NewQueue(db)
	settlementService := settlement.NewService(userRepo, messageRepo, queue)
	worker := jobs.NewWorker(queue, jobs.WorkerConfig{
		Queue:        "settlement",
		Concurrency:  1,
		PollInterval: 10 * time.Second,
		Timeout:      30 * time.Second,
	})
	worker.RegisterHandler(settlement.NewRetryHandler(settlementService))
	if err := worker.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start job worker: %v", err)
	}
	defer worker.Stop()

	billingService := billing.NewService(userRepo, cfg.BillingSigningSecret)
	authService := auth.NewService(cfg.JWTSecret)

	// Handlers
	chatHandler := handlers.NewChatHandler(userRepo, sessionService, admission.NewController(), orchestrator, settlementService, cfg.TurnTimeout)
	voteHandler := handlers.NewVoteHandler(voteRepo, sessionService)
	documentHandler := handlers.NewDocumentHandler(documentRepo)
	creditsHandler := handlers.NewCreditsHandler(userRepo)
	deckHandler := handlers.NewDeckHandler(deck.NewPPTXGenerator())
	billingHandler := handlers.NewBillingHandler(billingService)

	// Monthly credit refills, first day of the month.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 0 1 * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		for _, plan := range pricing.ResettablePlans() {
			if err := userRepo.ResetMonthlyCredits(ctx, plan); err != nil {
				utils.LogError("monthly credit reset failed", err, map[string]interface{}{"plan": plan.ID})
			}
		}
	}); err != nil {
		log.Fatalf("Failed to schedule credit reset: %v", err)
	}
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := queue.DeleteOldJobs(ctx, 7*24*time.Hour); err != nil {
			utils.LogError("job cleanup failed", err, nil)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule job cleanup: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		AppName: "Loomchat API",
	})
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Billing webhook carries its own signature, no JWT.
	app.Post("/api/billing/webhook", billingHandler.Webhook)

	api := app.Group("/api", auth.Middleware(authService))
	api.Post("/chat", chatHandler.Turn)
	api.Delete("/chat", chatHandler.Delete)
	api.Get("/chat/:id/messages", chatHandler.Messages)
	api.Patch("/chat/visibility", chatHandler.UpdateVisibility)
	api.Get("/history", chatHandler.History)

	api.Get("/vote", voteHandler.List)
	api.Patch("/vote", voteHandler.Upsert)

	api.Get("/document", documentHandler.Versions)
	api.Post("/document", documentHandler.Save)
	api.Delete("/document", documentHandler.DeleteAfter)
	api.Get("/document/export", documentHandler.Export)

	api.Post("/presentations/export", deckHandler.Export)

	api.Get("/user/credits", creditsHandler.Get)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("✅ loomchat-be running at :%s", port)
	log.Fatal(app.Listen(":" + port))
}
