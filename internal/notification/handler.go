// AngelaMos | 2026
// handler.go

package notification

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Put("/{notificationID}/read", h.MarkRead)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	notifications, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, notifications)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "invalid notification id")
		return
	}

	userID := middleware.GetUserID(r.Context())

	if err := h.service.MarkRead(r.Context(), id, userID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "notification")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}
