package handler

import (
	"net/http"

	"github.com/civicdex/platform/internal/auth"
	"github.com/civicdex/platform/internal/domain"
	"github.com/civicdex/platform/internal/profile"
	"github.com/civicdex/platform/internal/service"
)

// ProfileHandler handles profile endpoints.
type ProfileHandler struct {
	svc        *service.GamificationService
	aggregator *profile.Aggregator
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.GamificationService, aggregator *profile.Aggregator) *ProfileHandler {
	return &ProfileHandler{svc: svc, aggregator: aggregator}
}

type registerRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Register handles POST /profiles/register. Safe to retry; an existing
// profile is returned unchanged.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	var req registerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	p, err := h.svc.RegisterProfile(r.Context(), userID, req.Username, req.AvatarURL)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, p)
}

// Me handles GET /profiles/me — the composed profile view with rank
// progress, badges and recent activity.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	view, err := h.aggregator.GetUserProfile(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

type usernameRequest struct {
	Username string `json:"username"`
}

// UpdateUsername handles PATCH /profiles/me/username.
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}

	var req usernameRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.svc.UpdateUsername(r.Context(), userID, req.Username); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"username": req.Username})
}
