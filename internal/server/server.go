package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "nosybot/docs"
	"nosybot/internal/bot"
	"nosybot/internal/config"
	"nosybot/internal/dialogue"
	"nosybot/internal/handler"
	"nosybot/internal/lifecycle"
	"nosybot/internal/repository"
	"nosybot/internal/scheduler"
	"nosybot/internal/summary"
)

type Server struct {
	Engine    *gin.Engine
	DB        *gorm.DB
	Bot       *bot.Bot
	Scheduler *scheduler.Scheduler
	Config    *config.Config
	Log       *zap.SugaredLogger
}

func Init(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Info("✅ Connected to database")

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Info("✅ Migrations applied")

	// Initialize repositories and the engine
	taskRepo := repository.NewTaskRepository(db)
	tagRepo := repository.NewTagRepository(db)
	engine := lifecycle.NewEngine(taskRepo, tagRepo)

	// Language model collaborator
	llm, err := summary.NewClient(cfg.LLMAPIKey, cfg.LLMEndpoint, cfg.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to create LLM client: %w", err)
	}

	// Cancellation dialogue and Telegram transport
	dlg := dialogue.New(engine, dialogue.ParsePolicy(cfg.CancelCommandPolicy))
	tgBot, err := bot.New(cfg.TelegramToken, engine, dlg, llm, log)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to start Telegram bot: %w", err)
	}

	// Broadcast jobs
	sched := scheduler.New(engine, tgBot, llm, cfg, log)

	// Setup Gin facade
	r := gin.Default()
	r.Use(cors.Default())

	apiHandler := handler.NewAPIHandler(engine, llm)
	r.GET("/api/test", apiHandler.Test)
	r.POST("/api/chat", apiHandler.Chat)
	r.GET("/api/users/:id/summary", apiHandler.UserSummary)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		Engine:    r,
		DB:        db,
		Bot:       tgBot,
		Scheduler: sched,
		Config:    cfg,
		Log:       log,
	}, nil
}

func runMigrations(cfg *config.Config) error {
	url := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)
	m, err := migrate.New("file://migrations", url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	botCtx, stopBot := context.WithCancel(context.Background())
	go s.Bot.Run(botCtx)

	if err := s.Scheduler.Start(); err != nil {
		s.Log.Fatalf("❌ Failed to start scheduler: %s", err)
	}

	go func() {
		s.Log.Infof("🚀 Server running on port %s", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Log.Fatalf("❌ Failed to listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.Log.Info("🛑 Shutting down...")

	stopBot()
	<-s.Scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.Log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	s.Log.Info("✅ Server exited properly")
}
