package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/config"
	"github.com/pulsekit/smsdash/internal/db"
	"github.com/pulsekit/smsdash/internal/handler"
	"github.com/pulsekit/smsdash/internal/middleware"
	"github.com/pulsekit/smsdash/internal/queue"
	"github.com/pulsekit/smsdash/internal/repository"
	"github.com/pulsekit/smsdash/internal/service"
	"github.com/pulsekit/smsdash/internal/sms"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on OS environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DSN())
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	profileRepo := &repository.ProfileRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn}
	customerRepo := &repository.CustomerRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}
	inviteRepo := &repository.InviteRepository{DB: conn}

	tokens := auth.NewTokenIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL)
	resolver := &auth.Resolver{Tokens: tokens, Profiles: profileRepo}

	gateway := sms.NewMockGateway(0.1, cfg.SenderID, 1)

	// With an AMQP broker configured, deliveries go through cmd/worker;
	// otherwise the in-memory queue handles them in-process.
	var q queue.Queue
	if cfg.AMQPURL != "" {
		amqpQueue, cleanup, err := queue.NewAMQPQueue(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("connect amqp", zap.Error(err))
		}
		defer cleanup()
		q = amqpQueue
	} else {
		memQueue := queue.NewInMemoryQueue()
		queue.StartDeliverySubscriber(memQueue, messageRepo, customerRepo, campaignRepo, gateway, logger)
		q = memQueue
	}

	authService := &service.AuthService{
		ProfileRepo: profileRepo,
		InviteRepo:  inviteRepo,
		Tokens:      tokens,
	}
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		MessageRepo:  messageRepo,
		Queue:        q,
		Logger:       logger,
	}
	customerService := &service.CustomerService{CustomerRepo: customerRepo}
	adminService := &service.AdminService{
		ProfileRepo:  profileRepo,
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		InviteRepo:   inviteRepo,
		DB:           conn,
	}

	authHandler := &handler.AuthHandler{Service: authService, Logger: logger, SessionTTL: cfg.SessionTTL}
	campaignHandler := &handler.CampaignHandler{Service: campaignService, Logger: logger}
	customerHandler := &handler.CustomerHandler{Service: customerService, Logger: logger}
	adminHandler := &handler.AdminHandler{Service: adminService, Logger: logger}

	gate := &middleware.Gate{
		Resolver: resolver,
		Rules:    middleware.DefaultRules(),
		Logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(gate.Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/logout", authHandler.Logout)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)

		r.Get("/campaigns", campaignHandler.List)
		r.Post("/campaigns", campaignHandler.Create)
		r.Get("/campaigns/{id}", campaignHandler.Get)
		r.Get("/campaigns/{id}/messages", campaignHandler.Messages)
		r.Post("/campaigns/{id}/send", campaignHandler.Send)
		r.Post("/campaigns/{id}/preview", campaignHandler.Preview)

		r.Get("/customers", customerHandler.List)
		r.Post("/customers", customerHandler.Create)
		r.Get("/customers/template", customerHandler.Template)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users/pending", adminHandler.PendingUsers)
			r.Patch("/users/batch", adminHandler.BatchUpdate)
			r.Post("/users/reject", adminHandler.RejectUser)
			r.Post("/invites", adminHandler.CreateInvite)
			r.Get("/system/health", adminHandler.SystemHealth)
		})
	})

	logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
