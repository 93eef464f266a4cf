package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicdex/platform/internal/achievement"
	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/ledger"
	"github.com/civicdex/platform/internal/policy"
	"github.com/civicdex/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// evaluateRetries bounds the asynchronous achievement re-evaluation.
// Evaluation is idempotent, so retries are safe.
const evaluateRetries = 3

// GamificationService orchestrates coin awards, profile lifecycle and the
// award-triggered achievement re-evaluation.
type GamificationService struct {
	pool         *pgxpool.Pool
	coins        *ledger.Engine
	achievements *achievement.Engine
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	earnLimits   policy.EarnLimitPolicy
	awardRouting policy.ReasonRoutingPolicy
	logger       *slog.Logger
}

// NewGamificationService creates a GamificationService.
func NewGamificationService(
	pool *pgxpool.Pool,
	coins *ledger.Engine,
	achievements *achievement.Engine,
	profiles repository.ProfileRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *GamificationService {
	return &GamificationService{
		pool:         pool,
		coins:        coins,
		achievements: achievements,
		profiles:     profiles,
		transactions: transactions,
		outbox:       outbox,
		earnLimits:   policy.DefaultEarnLimits(),
		awardRouting: policy.ClientAwardPolicy(),
		logger:       logger,
	}
}

// AwardPoints records a point-earning event and kicks off achievement
// re-evaluation. The ledger entry and the balance increment commit
// atomically; the re-evaluation runs asynchronously and is retried, so a
// profile read may briefly observe a stale unlock state.
func (s *GamificationService) AwardPoints(ctx context.Context, params domain.AwardParams) (*domain.AwardResult, error) {
	if route := policy.EvaluateReasonRoute(s.awardRouting, params.Reason); !route.Allowed {
		return nil, domain.ErrValidation(route.Reason)
	}

	// Advisory cap check. The read is outside the award transaction, so
	// racing awards can overshoot by one; acceptable for an anti-farming
	// limit that is not a ledger invariant.
	dayStart := time.Now().Truncate(24 * time.Hour)
	earned, err := s.transactions.SumPositiveSince(ctx, s.pool, params.UserID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("sum daily earnings: %w", err)
	}
	if eval := policy.EvaluateEarnLimits(s.earnLimits, params.Amount, earned); !eval.Allowed {
		return nil, domain.ErrLimitExceeded(fmt.Sprintf(
			"earning limit %s exceeded: %d > %d", eval.BreachedLimit, eval.RequestedAmt, eval.LimitValue))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrUnavailable("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	result, err := s.coins.Award(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrUnavailable("commit award", err)
	}

	if !result.Idempotent {
		s.evaluateAsync(params.UserID)
	}
	return result, nil
}

// RegisterProfile creates the profile on first sign-up. Exactly-once under
// concurrent sign-ups: the upsert-on-conflict keyed by user ID makes the
// duplicate call a no-op that returns the existing row.
func (s *GamificationService) RegisterProfile(ctx context.Context, userID uuid.UUID, username, avatarURL string) (*domain.UserProfile, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	p := &domain.UserProfile{
		ID:           userID,
		Username:     username,
		AvatarURL:    avatarURL,
		TrainerLevel: 1,
		Rank:         domain.RankFor(0),
	}

	created, err := s.profiles.CreateIfAbsent(ctx, s.pool, p)
	if err != nil {
		return nil, err
	}

	stored, err := s.profiles.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if stored == nil {
		return nil, domain.ErrInternal("profile vanished after upsert", nil)
	}

	if created {
		if err := s.outbox.Insert(ctx, s.pool, domain.NewProfileCreatedEvent(stored)); err != nil {
			s.logger.Error("publish profile created", "user_id", userID, "error", err)
		}
		// Unlock the zero-threshold starter badges right away.
		s.evaluateAsync(userID)
	}
	return stored, nil
}

// UpdateUsername changes the username, surfacing uniqueness conflicts for
// the caller to resolve; it never retries with a different value.
func (s *GamificationService) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) error {
	if err := domain.ValidateUsername(username); err != nil {
		return domain.ErrValidation(err.Error())
	}
	return s.profiles.UpdateUsername(ctx, s.pool, userID, username)
}

// ReconcileBalance forces the profile balance back to the ledger sum.
func (s *GamificationService) ReconcileBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, domain.ErrUnavailable("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	sum, err := s.coins.Reconcile(ctx, tx, userID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, domain.ErrUnavailable("commit reconciliation", err)
	}
	return sum, nil
}

// EvaluateAchievements re-runs unlock evaluation synchronously. Used by the
// event consumer when it sees a balance change.
func (s *GamificationService) EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.achievements.Evaluate(ctx, userID)
}

// evaluateAsync re-evaluates unlocks off the request path. Detached from
// the request context so a cancelled caller doesn't abort the evaluation.
func (s *GamificationService) evaluateAsync(userID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		for attempt := 1; attempt <= evaluateRetries; attempt++ {
			if _, err = s.achievements.Evaluate(ctx, userID); err == nil {
				return
			}
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
		s.logger.Error("achievement evaluation failed", "user_id", userID, "error", err)
	}()
}
