package handler

import (
	"net/http"

	"github.com/civicdex/platform/internal/auth"
	"github.com/civicdex/platform/internal/profile"
	"github.com/civicdex/platform/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AchievementHandler handles achievement endpoints.
type AchievementHandler struct {
	pool         *pgxpool.Pool
	achievements repository.AchievementRepository
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(pool *pgxpool.Pool, achievements repository.AchievementRepository) *AchievementHandler {
	return &AchievementHandler{pool: pool, achievements: achievements}
}

// ListCatalog handles GET /achievements — the full badge catalog.
func (h *AchievementHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.achievements.ListCatalog(r.Context(), h.pool)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"achievements": catalog})
}

// Mine handles GET /achievements/me — the catalog merged with the caller's
// unlock state, locked entries included.
func (h *AchievementHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	catalog, err := h.achievements.ListCatalog(r.Context(), h.pool)
	if err != nil {
		RespondError(w, err)
		return
	}
	unlocks, err := h.achievements.ListByUser(r.Context(), h.pool, userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": profile.BuildBadges(catalog, unlocks),
	})
}
