// AngelaMos | 2026
// handler.go

package task

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
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/report", h.Report)
		r.Get("/{taskID}", h.Get)
		r.Put("/{taskID}", h.Update)
		r.Delete("/{taskID}", h.Delete)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Create(r.Context(), identity, req)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var projectID int64
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			core.BadRequest(w, "invalid project_id")
			return
		}
		projectID = parsed
	}

	identity := middleware.GetIdentity(r.Context())

	tasks, err := h.service.List(r.Context(), identity, projectID)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.OK(w, tasks)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		core.BadRequest(w, "invalid task id")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Get(r.Context(), identity, taskID)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		core.BadRequest(w, "invalid task id")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Update(r.Context(), identity, taskID, req)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		core.BadRequest(w, "invalid task id")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	if err := h.service.Delete(r.Context(), identity, taskID); err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var projectID int64
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			core.BadRequest(w, "invalid project_id")
			return
		}
		projectID = parsed
	}

	identity := middleware.GetIdentity(r.Context())

	report, err := h.service.Report(r.Context(), identity, projectID)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	core.OK(w, report)
}

func (h *Handler) writeTaskError(w http.ResponseWriter, err error) {
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
