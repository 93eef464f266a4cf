//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/civicdex/platform/test/integration/testutil"
)

func TestAwardPoints(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("officer_jenny")

	resp := env.AuthPOST("/points/award", map[string]interface{}{
		"amount": 50,
		"reason": "issue_report",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Balance    int64 `json:"balance"`
		Idempotent bool  `json:"idempotent"`
		Transaction struct {
			Amount       int64 `json:"amount"`
			BalanceAfter int64 `json:"balance_after"`
		} `json:"transaction"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if result.Balance != 50 || result.Transaction.BalanceAfter != 50 {
		t.Errorf("balance: got %d / %d", result.Balance, result.Transaction.BalanceAfter)
	}
	if result.Idempotent {
		t.Error("first award flagged idempotent")
	}

	testutil.AssertBalance(t, env, userID, 50, "Novice Trainer")
	if n := testutil.CountTransactions(t, env, userID); n != 1 {
		t.Errorf("transactions: got %d", n)
	}
	if n := testutil.CountOutboxEvents(t, env, userID.String()); n == 0 {
		t.Error("no outbox events staged for award")
	}
}

func TestAwardPointsDuplicateKeyRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("gary_oak")
	headers := map[string]string{"Idempotency-Key": "report-abc-123"}
	body := map[string]interface{}{"amount": 25, "reason": "issue_verification"}

	resp := env.AuthPOSTWithHeaders("/points/award", body, token, headers)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.AuthPOSTWithHeaders("/points/award", body, token, headers)
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "DUPLICATE_REQUEST")

	testutil.AssertBalance(t, env, userID, 25, "")
	if n := testutil.CountTransactions(t, env, userID); n != 1 {
		t.Errorf("duplicate award wrote a second entry: %d", n)
	}
}

func TestAwardPointsCrossesRankThreshold(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("professor_oak")
	env.DirectAward(userID, 480, "issue_report")

	resp := env.AuthPOST("/points/award", map[string]interface{}{
		"amount": 30,
		"reason": "issue_report",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Rank string `json:"rank"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if result.Rank != "Issue Scout" {
		t.Errorf("rank after crossing 500: got %q", result.Rank)
	}
	testutil.AssertBalance(t, env, userID, 510, "Issue Scout")
}

func TestAwardPointsBlocksInternalReasons(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, _ := env.RegisterUser("team_rocket")

	resp := env.AuthPOST("/points/award", map[string]interface{}{
		"amount": 100,
		"reason": "quest_completion",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestAwardPointsEarningCap(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("meowth_cash")

	resp := env.AuthPOST("/points/award", map[string]interface{}{
		"amount": 501,
		"reason": "issue_report",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusTooManyRequests)
	testutil.AssertErrorCode(t, resp, "LIMIT_EXCEEDED")

	testutil.AssertBalance(t, env, userID, 0, "")
}

func TestPointsHistory(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("tracey_sketch")
	env.DirectAward(userID, 10, "issue_report")
	env.DirectAward(userID, 20, "issue_verification")

	resp := env.AuthGET("/points/history", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Transactions []struct {
			Amount int64  `json:"amount"`
			Reason string `json:"reason"`
		} `json:"transactions"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if len(result.Transactions) != 2 {
		t.Fatalf("history: got %d entries", len(result.Transactions))
	}
	// Newest first.
	if result.Transactions[0].Amount != 20 {
		t.Errorf("history order: first entry amount %d", result.Transactions[0].Amount)
	}
}

func TestReconcileRestoresLedgerBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, userID := env.RegisterUser("auditor")
	env.DirectAward(userID, 300, "issue_report")
	env.DirectAward(userID, 300, "issue_verification")

	// Simulate a lost increment: the entries exist but the balance and
	// rank no longer match their sum.
	_, err := env.Pool.Exec(context.Background(),
		"UPDATE user_profiles SET civic_coins = 50, rank = 'Novice Trainer' WHERE id = $1", userID)
	if err != nil {
		t.Fatalf("corrupt balance: %v", err)
	}

	resp := env.AuthPOST("/points/reconcile", nil, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Balance int64 `json:"balance"`
	}
	testutil.DecodeJSON(t, resp, &result)
	if result.Balance != 600 {
		t.Errorf("reconciled balance: got %d, want 600", result.Balance)
	}

	// Balance converges to the ledger sum and the rank is re-derived.
	testutil.AssertBalance(t, env, userID, 600, "Issue Scout")
}
