package main // Entry point: wires the bot, the staff API and the notification pipeline

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ermekov/club-table-reservation/internal/availability"
	"github.com/ermekov/club-table-reservation/internal/config"
	"github.com/ermekov/club-table-reservation/internal/database"
	"github.com/ermekov/club-table-reservation/internal/flow"
	"github.com/ermekov/club-table-reservation/internal/handler"
	"github.com/ermekov/club-table-reservation/internal/menu"
	"github.com/ermekov/club-table-reservation/internal/queue"
	"github.com/ermekov/club-table-reservation/internal/ratelimit"
	"github.com/ermekov/club-table-reservation/internal/repository"
	"github.com/ermekov/club-table-reservation/internal/router"
	"github.com/ermekov/club-table-reservation/internal/store"
	"github.com/ermekov/club-table-reservation/internal/transport"
	"github.com/ermekov/club-table-reservation/internal/utils"
	"github.com/ermekov/club-table-reservation/internal/venue"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	loc, err := time.LoadLocation(cfg.VenueTZ)
	if err != nil {
		log.Fatalf("invalid VENUE_TZ %q: %v", cfg.VenueTZ, err)
	}

	v, err := venue.Load(cfg.VenueFile)
	if err != nil {
		log.Fatalf("load venue: %v", err)
	}

	// Optional MySQL archive; without it the booking state is memory-only.
	var archive availability.Archive
	if cfg.ArchiveEnabled() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatalf("open archive database: %v", err)
		}
		repo := repository.NewReservationRepo(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("ensure archive schema: %v", err)
		}
		cancel()
		archive = repo
		logger.Info("reservation archive enabled", zap.String("db", cfg.DBName))
	}

	avail := availability.New(v, archive)
	if err := avail.Load(context.Background()); err != nil {
		log.Fatalf("warm availability model: %v", err)
	}

	// Optional Gemini-backed allergy filter.
	var gf *menu.GeminiFilter
	if cfg.GeminiAPIKey != "" {
		gf, err = menu.NewGeminiFilter(context.Background(), cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Warn("gemini filter unavailable, using local filter", zap.Error(err))
			gf = nil
		}
	}

	sessions := store.New()
	engine := flow.New(v, avail, sessions, menu.New(gf), cfg.DJName, loc, logger)
	limiter := ratelimit.New(config.LoadRateLimitConfig(), config.NewRedisClient())

	bot, err := transport.New(cfg.BotToken, engine, limiter, cfg.StaffChatID, logger)
	if err != nil {
		log.Fatalf("telegram init: %v", err)
	}

	// Notifications ride RabbitMQ when configured; the consumer below
	// forwards them to the staff chat. Without a broker the dispatcher
	// delivers directly.
	pub := queue.NewPublisher(cfg.AMQPURL, logger)
	bot.SetDispatcher(queue.NewDispatcher(pub, bot.DeliverToStaff, logger))
	if cfg.AMQPURL != "" {
		go queue.StartStaffNotifier(cfg.AMQPURL, bot.DeliverToStaff, logger)
	}

	// Staff API runs in the same process so it shares the live
	// availability model.
	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, handler.NewAuthHandler(cfg), handler.NewAdminHandler(avail, v), cfg.JWTSecret)
	go func() {
		addr := ":" + cfg.Port
		logger.Info("staff API listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil {
			log.Fatal(err)
		}
	}()

	logger.Info("bot running")
	bot.Run(context.Background())
}
