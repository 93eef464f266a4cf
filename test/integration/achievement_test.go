//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/civicdex/platform/internal/achievement"
	"github.com/civicdex/platform/internal/repository"
	"github.com/civicdex/platform/test/integration/testutil"
	"github.com/google/uuid"
)

func TestAchievementCatalogIsPublic(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/achievements")
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Achievements []struct {
			Name          string `json:"name"`
			RequiredCoins int64  `json:"required_coins"`
		} `json:"achievements"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if len(result.Achievements) != 7 {
		t.Fatalf("catalog: got %d entries", len(result.Achievements))
	}
	if result.Achievements[0].RequiredCoins != 0 {
		t.Errorf("lowest threshold: got %d, want a zero-coin starter badge", result.Achievements[0].RequiredCoins)
	}
	// Ascending threshold order.
	for i := 1; i < len(result.Achievements); i++ {
		if result.Achievements[i].RequiredCoins < result.Achievements[i-1].RequiredCoins {
			t.Errorf("catalog not ordered by threshold at %d", i)
		}
	}
}

func TestAchievementsUnlockAfterAward(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("badge_hunter")

	resp := env.AuthPOST("/points/award", map[string]interface{}{
		"amount": 150,
		"reason": "issue_report",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Unlock evaluation runs asynchronously after the award commits.
	deadline := time.Now().Add(3 * time.Second)
	for {
		var unlocked int
		err := env.Pool.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM user_achievements WHERE user_id = $1 AND unlocked", userID).Scan(&unlocked)
		if err != nil {
			t.Fatalf("count unlocks: %v", err)
		}
		// 150 coins unlocks Novice Trainer (0), First Steps (1) and
		// Pocket Change (100).
		if unlocked == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("unlocks: got %d, want 3 before deadline", unlocked)
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp = env.AuthGET("/achievements/me", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Badges []struct {
			Name     string `json:"name"`
			Unlocked bool   `json:"unlocked"`
		} `json:"badges"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if len(result.Badges) != 7 {
		t.Fatalf("badges: got %d entries, want full catalog", len(result.Badges))
	}
	unlockedNames := map[string]bool{}
	for _, b := range result.Badges {
		if b.Unlocked {
			unlockedNames[b.Name] = true
		}
	}
	if !unlockedNames["Novice Trainer"] || !unlockedNames["First Steps"] || !unlockedNames["Pocket Change"] {
		t.Errorf("unlocked set: %v", unlockedNames)
	}
	if len(unlockedNames) != 3 {
		t.Errorf("unlocked %d badges, want 3", len(unlockedNames))
	}

	// Each unlock commits together with its event: one draft per badge.
	var events int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM event_outbox WHERE event_type = 'civic.achievement.unlocked' AND partition_key = $1",
		userID.String()).Scan(&events)
	if err != nil {
		t.Fatalf("count unlock events: %v", err)
	}
	if events != 3 {
		t.Errorf("unlock events: got %d, want 3", events)
	}
}

func TestEvaluateUnchangedBalanceKeepsUnlockedAt(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, userID := env.RegisterUser("steady_scout")
	env.DirectAward(userID, 120, "issue_report")

	engine := achievement.NewEngine(env.Pool,
		repository.NewProfileRepository(),
		repository.NewAchievementRepository(),
		repository.NewOutboxRepository(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	if _, err := engine.Evaluate(ctx, userID); err != nil {
		t.Fatalf("first evaluation: %v", err)
	}

	first := unlockTimes(t, env, userID)
	// 120 coins: Novice Trainer, First Steps, Pocket Change.
	if len(first) != 3 {
		t.Fatalf("unlocks after first evaluation: got %d, want 3", len(first))
	}

	newly, err := engine.Evaluate(ctx, userID)
	if err != nil {
		t.Fatalf("second evaluation: %v", err)
	}
	if len(newly) != 0 {
		t.Errorf("second evaluation unlocked %d badges, want none", len(newly))
	}

	second := unlockTimes(t, env, userID)
	for id, at := range first {
		if !second[id].Equal(at) {
			t.Errorf("unlocked_at moved for %s: %s -> %s", id, at, second[id])
		}
	}
}

func unlockTimes(t *testing.T, env *testutil.TestEnv, userID uuid.UUID) map[uuid.UUID]time.Time {
	t.Helper()
	rows, err := env.Pool.Query(context.Background(),
		"SELECT achievement_id, unlocked_at FROM user_achievements WHERE user_id = $1 AND unlocked", userID)
	if err != nil {
		t.Fatalf("query unlocks: %v", err)
	}
	defer rows.Close()

	times := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var id uuid.UUID
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			t.Fatalf("scan unlock: %v", err)
		}
		times[id] = at
	}
	return times
}
