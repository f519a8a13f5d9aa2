// AngelaMos | 2026
// handler.go

package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/tasks/{taskID}/comments", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		core.BadRequest(w, "invalid task id")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	comments, err := h.service.List(r.Context(), identity, taskID)
	if err != nil {
		h.writeCommentError(w, err)
		return
	}

	core.OK(w, comments)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		core.BadRequest(w, "invalid task id")
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Create(r.Context(), identity, taskID, req.Body)
	if err != nil {
		h.writeCommentError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) writeCommentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this task")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "task")
	default:
		core.InternalServerError(w, err)
	}
}

func parseTaskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
}
