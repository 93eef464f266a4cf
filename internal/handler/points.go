package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/civicdex/platform/internal/auth"
	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/guard"
	"github.com/civicdex/platform/internal/repository"
	"github.com/civicdex/platform/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultHistoryLimit = 50

// PointsHandler handles CivicCoin ledger endpoints.
type PointsHandler struct {
	svc          *service.GamificationService
	pool         *pgxpool.Pool
	transactions repository.TransactionRepository
	idem         *guard.IdempotencyGuard
}

// NewPointsHandler creates a new PointsHandler.
func NewPointsHandler(
	svc *service.GamificationService,
	pool *pgxpool.Pool,
	transactions repository.TransactionRepository,
	idem *guard.IdempotencyGuard,
) *PointsHandler {
	return &PointsHandler{svc: svc, pool: pool, transactions: transactions, idem: idem}
}

type awardRequest struct {
	Amount   int64           `json:"amount"`
	Reason   string          `json:"reason"`
	Metadata json.RawMessage `json:"metadata"`
}

type awardResponse struct {
	Transaction *domain.PointTransaction `json:"transaction"`
	Balance     int64                    `json:"balance"`
	Rank        domain.Rank              `json:"rank"`
	Idempotent  bool                     `json:"idempotent"`
}

// Award handles POST /points/award. The Idempotency-Key header doubles as
// the ledger source key, so retries return the original entry.
func (h *PointsHandler) Award(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	var req awardRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	idemKey := r.Header.Get("Idempotency-Key")
	if res := h.idem.Check(r.Context(), idemKey); !res.Allowed {
		RespondJSON(w, http.StatusConflict, map[string]string{
			"code":    "DUPLICATE_REQUEST",
			"message": res.Reason,
		})
		return
	}

	result, err := h.svc.AwardPoints(r.Context(), domain.AwardParams{
		UserID:    userID,
		Amount:    req.Amount,
		Reason:    domain.PointReason(req.Reason),
		SourceKey: idemKey,
		Metadata:  req.Metadata,
	})
	if err != nil {
		h.idem.Remove(idemKey)
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, awardResponse{
		Transaction: result.Transaction,
		Balance:     result.Profile.CivicCoins,
		Rank:        result.Profile.Rank,
		Idempotent:  result.Idempotent,
	})
}

// History handles GET /points/history — the user's ledger entries, newest first.
func (h *PointsHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.transactions.ListByUser(r.Context(), h.pool, userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"transactions": entries})
}

// Reconcile handles POST /points/reconcile — forces the profile balance
// back to the ledger sum.
func (h *PointsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	balance, err := h.svc.ReconcileBalance(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}
