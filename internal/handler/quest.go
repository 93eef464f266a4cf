package handler

import (
	"net/http"
	"time"

	"github.com/civicdex/platform/internal/auth"
	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/quest"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// QuestHandler handles quest endpoints.
type QuestHandler struct {
	engine *quest.Engine
}

// NewQuestHandler creates a new QuestHandler.
func NewQuestHandler(engine *quest.Engine) *QuestHandler {
	return &QuestHandler{engine: engine}
}

type questView struct {
	domain.Quest
	IsNew bool `json:"is_new"`
}

func toQuestViews(quests []domain.Quest, now time.Time) []questView {
	views := make([]questView, 0, len(quests))
	for _, q := range quests {
		views = append(views, questView{Quest: q, IsNew: q.IsNew(now)})
	}
	return views
}

// ListActive handles GET /quests — the user's active quests with the
// fresh-quest marker the mobile client renders.
func (h *QuestHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	quests, err := h.engine.ListActive(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"quests": toQuestViews(quests, time.Now()),
	})
}

// Generate handles POST /quests/generate — instantiates today's quest set
// for the caller. Safe to retry; existing active quests are kept.
func (h *QuestHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	quests, err := h.engine.GenerateDaily(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"quests": toQuestViews(quests, time.Now()),
	})
}

type progressRequest struct {
	Increment int64 `json:"increment"`
}

// Progress handles POST /quests/{questID}/progress.
func (h *QuestHandler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	questID, err := uuid.Parse(chi.URLParam(r, "questID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid quest id"))
		return
	}

	req := progressRequest{Increment: 1}
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			RespondError(w, domain.ErrValidation("invalid request body"))
			return
		}
	}

	updated, err := h.engine.UpdateProgress(r.Context(), questID, userID, req.Increment)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, questView{Quest: *updated, IsNew: updated.IsNew(time.Now())})
}

// CheckIn handles POST /quests/checkin — advances the Daily Check-in quest.
// Returns 204 when no check-in quest is active.
func (h *QuestHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	q, err := h.engine.CompleteLoginQuest(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	if q == nil {
		RespondJSON(w, http.StatusNoContent, nil)
		return
	}
	RespondJSON(w, http.StatusOK, questView{Quest: *q, IsNew: q.IsNew(time.Now())})
}
