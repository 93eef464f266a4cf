package app

import (
	"log/slog"
	"time"

	"github.com/civicdex/platform/internal/achievement"
	"github.com/civicdex/platform/internal/auth"
	"github.com/civicdex/platform/internal/guard"
	"github.com/civicdex/platform/internal/handler"
	"github.com/civicdex/platform/internal/ledger"
	"github.com/civicdex/platform/internal/profile"
	"github.com/civicdex/platform/internal/projection"
	"github.com/civicdex/platform/internal/quest"
	"github.com/civicdex/platform/internal/repository"
	"github.com/civicdex/platform/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	// Mutating-endpoint rate limit; zero means no limiting.
	RateLimit       int
	RateLimitWindow time.Duration
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	logger := deps.Logger

	// Repositories
	profileRepo := repository.NewProfileRepository()
	txRepo := repository.NewTransactionRepository()
	achievementRepo := repository.NewAchievementRepository()
	questRepo := repository.NewQuestRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Engines
	coinLedger := ledger.NewEngine(profileRepo, txRepo, outboxRepo)
	achievementEngine := achievement.NewEngine(pool, profileRepo, achievementRepo, outboxRepo, logger)
	questEngine := quest.NewEngine(pool, questRepo, profileRepo, outboxRepo, coinLedger, logger)

	// Services
	svc := service.NewGamificationService(pool, coinLedger, achievementEngine, profileRepo, txRepo, outboxRepo, logger)
	aggregator := profile.NewAggregator(pool, profileRepo, txRepo, achievementRepo, projection.NewInMemoryStore())

	// Guards
	idemGuard := guard.NewIdempotencyGuard()

	// Handlers
	profileHandler := handler.NewProfileHandler(svc, aggregator)
	pointsHandler := handler.NewPointsHandler(svc, pool, txRepo, idemGuard)
	questHandler := handler.NewQuestHandler(questEngine)
	achievementHandler := handler.NewAchievementHandler(pool, achievementRepo)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Public catalog (no auth)
	r.Get("/achievements", achievementHandler.ListCatalog)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(deps.JWTMgr))
		if deps.RateLimit > 0 {
			r.Use(handler.RateLimit(guard.NewRateLimiter(deps.RateLimit, deps.RateLimitWindow)))
		}

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/register", profileHandler.Register)
			r.Get("/me", profileHandler.Me)
			r.Patch("/me/username", profileHandler.UpdateUsername)
		})

		r.Route("/points", func(r chi.Router) {
			r.Post("/award", pointsHandler.Award)
			r.Get("/history", pointsHandler.History)
			r.Post("/reconcile", pointsHandler.Reconcile)
		})

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", questHandler.ListActive)
			r.Post("/generate", questHandler.Generate)
			r.Post("/checkin", questHandler.CheckIn)
			r.Post("/{questID}/progress", questHandler.Progress)
		})

		r.Get("/achievements/me", achievementHandler.Mine)
	})

	return r
}
