package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"feedback-backend/internal/blob"
	"feedback-backend/internal/config"
	"feedback-backend/internal/database"
	"feedback-backend/internal/handlers"
	"feedback-backend/internal/identity"
	"feedback-backend/internal/mail"
	customMiddleware "feedback-backend/internal/middleware"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository"
	"feedback-backend/internal/submit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect()

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	feedbackRepo := repository.NewFeedbackRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create user indexes: %v", err)
	}
	if err := feedbackRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create feedback indexes: %v", err)
	}
	cancel()

	// Blob store (S3 or compatible)
	blobStore, err := blob.NewS3Store(context.Background(), blob.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.AWSRegion,
		Endpoint: cfg.S3Endpoint,
		MaxSize:  cfg.MaxAttachmentSize,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize blob store: %v", err)
	}

	idp := identity.NewService(userRepo, cfg.JWTSecret)
	mailer := mail.NewResendTransport(cfg.ResendAPIKey)

	coordinator := submit.NewCoordinator(blobStore, feedbackRepo, cfg.MaxAttachments, cfg.MaxAttachmentSize)
	pipeline := notify.NewPipeline(blobStore, idp, mailer, cfg.NotificationEmail, cfg.SenderEmail, cfg.LinkTTL)

	// Start the notification watcher on the record-creation feed. The
	// record write is the sole trigger; nothing calls the pipeline
	// synchronously.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	events, err := feedbackRepo.Watch(watchCtx)
	if err != nil {
		log.Fatalf("❌ Failed to open feedback change stream: %v", err)
	}
	go notify.NewWatcher(pipeline).Run(watchCtx, events)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(idp)
	feedbackHandler := handlers.NewFeedbackHandler(coordinator, feedbackRepo)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"feedback-backend"}`))
	})

	// Public routes (no auth required)
	r.Post("/auth/signin", authHandler.SignIn)

	// Protected routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(cfg.JWTSecret))

		r.Post("/feedback", feedbackHandler.SubmitFeedback)
		r.Get("/feedback/{feedbackID}", feedbackHandler.GetFeedback)
	})

	// Start server
	log.Printf("🚀 Feedback backend starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
