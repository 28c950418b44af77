package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yoockh/visaprep/config"
	"github.com/yoockh/visaprep/internal/api/handlers"
	"github.com/yoockh/visaprep/internal/api/middleware"
	"github.com/yoockh/visaprep/internal/api/routes"
	"github.com/yoockh/visaprep/internal/cache"
	"github.com/yoockh/visaprep/internal/events"
	"github.com/yoockh/visaprep/internal/logger"
	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/providers/llm"
	"github.com/yoockh/visaprep/internal/repositories"
	fsrepo "github.com/yoockh/visaprep/internal/repositories/firestore"
	"github.com/yoockh/visaprep/internal/repositories/memory"
	mongorepo "github.com/yoockh/visaprep/internal/repositories/mongo"
	pgrepo "github.com/yoockh/visaprep/internal/repositories/postgres"
	"github.com/yoockh/visaprep/internal/services"
	"github.com/yoockh/visaprep/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Firestore (either store may use it)
	var fs *firestore.Client
	if cfg.DocStore == "firestore" || cfg.UserStore == "firestore" {
		c, err := config.InitFirestore(ctx)
		if err != nil {
			log.WithError(err).Fatal("Firestore init error")
		}
		fs = c
		defer fs.Close()
		log.Info("Firestore connected")
	}

	// PostgreSQL: users when USER_STORE=postgres, turn log whenever configured
	var pg *gorm.DB
	if cfg.UserStore == "postgres" || os.Getenv("POSTGRES_URI") != "" {
		db, err := config.InitPostgres()
		if err != nil {
			log.WithError(err).Fatal("PostgreSQL init error")
		}
		if err := config.MigratePostgres(db, &pgrepo.UserRow{}, &models.TurnLog{}); err != nil {
			log.WithError(err).Fatal("PostgreSQL migrate error")
		}
		pg = db
		log.Info("PostgreSQL connected")
	}

	deps := services.Deps{Log: log}

	switch cfg.DocStore {
	case "mongo":
		client, db, err := config.InitMongo(ctx)
		if err != nil {
			log.WithError(err).Fatal("MongoDB init error")
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := config.EnsureMongoIndexes(ctx, db); err != nil {
			log.WithError(err).Warn("mongo index setup failed")
		}
		deps.Sessions = mongorepo.NewSessionRepo(db)
		deps.Progress = mongorepo.NewProgressRepo(db)
		log.Info("MongoDB connected")
	case "firestore":
		deps.Sessions = fsrepo.NewSessionRepo(fs)
		deps.Progress = fsrepo.NewProgressRepo(fs)
	case "memory":
		deps.Sessions = memory.NewSessionRepo()
		deps.Progress = memory.NewProgressRepo()
	default:
		log.Fatalf("unknown DOC_STORE %q", cfg.DocStore)
	}

	switch cfg.UserStore {
	case "postgres":
		deps.Users = pgrepo.NewUserRepo(pg)
	case "firestore":
		deps.Users = fsrepo.NewUserRepo(fs)
	case "memory":
		deps.Users = memory.NewUserRepo()
	default:
		log.Fatalf("unknown USER_STORE %q", cfg.UserStore)
	}

	var turns repositories.TurnLogRepository = memory.NewTurnLogRepo()
	if pg != nil {
		turns = pgrepo.NewTurnLogRepo(pg)
	}
	deps.Turns = turns

	// Redis is optional: cache, locks, live feed, red-flag queue
	rdb, err := config.InitRedis(ctx)
	switch {
	case errors.Is(err, config.ErrRedisNotConfigured):
		log.Warn("Redis not configured; using in-process cache and locks")
		deps.Cache = cache.NewMemoryCache()
		deps.Locker = cache.NewMemoryLocker()
	case err != nil:
		log.WithError(err).Fatal("Redis init error")
	default:
		defer rdb.Close()
		deps.Cache = cache.NewRedisCache(rdb)
		deps.Locker = cache.NewRedisLocker(rdb)
		deps.Feed = events.NewRedisFeed(rdb)
		log.Info("Redis connected")
	}

	if cfg.NatsURL != "" {
		nc, err := config.InitNATS(cfg.NatsURL, cfg.NatsToken, log)
		if err != nil {
			log.WithError(err).Fatal("NATS init error")
		}
		defer nc.Drain()
		deps.Bus = events.NewNATSPublisher(nc)
		log.WithField("url", nc.ConnectedUrl()).Info("NATS connected")
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("oracle init error")
	}
	defer provider.Close()
	deps.LLM = provider

	// Services
	authSvc := services.NewAuthService(deps.Users, services.TokenConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.JWTExpiration,
	}, log)
	interviewSvc := services.NewInterviewService(deps, cfg.AgentID, cfg.AgentEndpoint)
	redflagSvc := services.NewRedFlagService(deps)
	conversationSvc := services.NewConversationService(provider, log)
	progressSvc := services.NewProgressService(deps)
	analysisSvc := services.NewAnalysisService(deps, progressSvc)

	var queue services.RedFlagQueue
	if rdb != nil && cfg.RedFlagWorkers > 0 {
		queue = workers.NewRedFlagQueue(rdb)
		pool := &workers.RedFlagWorkerPool{
			Redis:      rdb,
			RedFlags:   redflagSvc,
			NumWorkers: cfg.RedFlagWorkers,
			Logger:     log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("red flag workers")
		}
		log.WithField("workers", cfg.RedFlagWorkers).Info("red flag workers started")
	}
	completionSvc := services.NewCompletionService(deps, conversationSvc, redflagSvc, queue)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, "/health"))

	routes.RegisterRoutes(r, routes.Deps{
		Auth:           handlers.NewAuthHandler(authSvc),
		Interview:      handlers.NewInterviewHandler(interviewSvc, completionSvc, analysisSvc),
		Completions:    handlers.NewCompletionsHandler(completionSvc, cfg.GeminiModel, log),
		User:           handlers.NewUserHandler(progressSvc, interviewSvc),
		WS:             handlers.NewWSHandler(interviewSvc, rdb, log, originChecker(cfg)),
		Environment:    cfg.Env,
		JWTSecret:      cfg.JWTSecret,
		JWTIssuer:      cfg.JWTIssuer,
		FrontendOrigin: frontendOrigin(cfg),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env, "doc_store": cfg.DocStore, "user_store": cfg.UserStore, "oracle": cfg.Oracle}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}

func newProvider(ctx context.Context, cfg config.AppConfig) (llm.Provider, error) {
	switch cfg.Oracle {
	case "vertex":
		p, err := llm.NewVertexGemini(ctx, cfg.GCPProject, cfg.GCPLocation, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "genai":
		p, err := llm.NewGenAI(ctx, llm.GenAIConfig{
			APIKey:    cfg.GeminiAPIKey,
			Project:   cfg.GCPProject,
			Location:  cfg.GCPLocation,
			ModelName: cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case "mock":
		return llm.NewMock(), nil
	default:
		return nil, errors.New("unknown ORACLE " + cfg.Oracle)
	}
}

// frontendOrigin opens CORS outside production.
func frontendOrigin(cfg config.AppConfig) string {
	if cfg.IsProduction() {
		return cfg.FrontendURL
	}
	return "*"
}

func originChecker(cfg config.AppConfig) func(*http.Request) bool {
	if !cfg.IsProduction() {
		return nil
	}
	allowed := strings.TrimRight(cfg.FrontendURL, "/")
	return func(r *http.Request) bool {
		return strings.TrimRight(r.Header.Get("Origin"), "/") == allowed
	}
}
