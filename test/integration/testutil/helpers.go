//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RegisterUser mints a session token for a fresh user ID and registers a
// profile, returning the token and user ID.
func (env *TestEnv) RegisterUser(username string) (token string, userID uuid.UUID) {
	env.t.Helper()

	userID = uuid.New()
	token, err := env.JWTMgr.GenerateToken(userID, username)
	if err != nil {
		env.t.Fatalf("RegisterUser: generate token: %v", err)
	}

	resp := env.AuthPOST("/profiles/register", map[string]string{"username": username}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterUser: expected 201, got %d", resp.StatusCode)
	}
	return token, userID
}

// MintToken creates a session token for a fresh user ID without registering
// a profile.
func (env *TestEnv) MintToken() (token string, userID uuid.UUID) {
	env.t.Helper()

	userID = uuid.New()
	token, err := env.JWTMgr.GenerateToken(userID, "")
	if err != nil {
		env.t.Fatalf("MintToken: %v", err)
	}
	return token, userID
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// AuthGET performs a GET request with a bearer token.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, env.Server.URL+path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs a POST request with a JSON body and bearer token.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.authRequest(http.MethodPost, path, body, token, nil)
}

// AuthPOSTWithHeaders performs a POST with extra headers (e.g. Idempotency-Key).
func (env *TestEnv) AuthPOSTWithHeaders(path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	return env.authRequest(http.MethodPost, path, body, token, headers)
}

// AuthPATCH performs a PATCH request with a JSON body and bearer token.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.authRequest(http.MethodPatch, path, body, token, nil)
}

func (env *TestEnv) authRequest(method, path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode body: %v", method, path, err)
		}
	}

	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// DirectAward inserts a ledger entry and increments the balance directly,
// bypassing the HTTP surface. Used to set up balances for read tests.
func (env *TestEnv) DirectAward(userID uuid.UUID, amount int64, reason string) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := env.Pool.Begin(ctx)
	if err != nil {
		env.t.Fatalf("DirectAward: begin: %v", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, `
		UPDATE user_profiles SET civic_coins = civic_coins + $2, updated_at = now()
		WHERE id = $1 RETURNING civic_coins`, userID, amount).Scan(&balance)
	if err != nil {
		env.t.Fatalf("DirectAward: increment: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO point_transactions (id, user_id, amount, reason, balance_after)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, amount, reason, balance)
	if err != nil {
		env.t.Fatalf("DirectAward: insert entry: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		env.t.Fatalf("DirectAward: commit: %v", err)
	}
}

// SeedQuest inserts an active quest for the user and returns its ID.
func (env *TestEnv) SeedQuest(userID uuid.UUID, questType string, required, reward int64, expiresIn time.Duration) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	questID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO quests (id, user_id, title, description, type, reward_amount, progress, required, status, expires_at)
		VALUES ($1, $2, $3, '', $4, $5, 0, $6, 'active', $7)`,
		questID, userID, fmt.Sprintf("Seeded %s", questType), questType, reward, required,
		time.Now().Add(expiresIn))
	if err != nil {
		env.t.Fatalf("SeedQuest: %v", err)
	}
	return questID
}
