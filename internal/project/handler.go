// AngelaMos | 2026
// handler.go

package project

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
	r.Route("/projects", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{projectID}", h.Get)
		r.Post("/{projectID}/members", h.AddMember)
		r.Delete("/{projectID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	projects, err := h.service.List(r.Context(), identity)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, projects)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
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
		if errors.Is(err, ErrProjectNameExists) {
			core.JSONError(w, core.DuplicateError("project name"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseProjectID(r)
	if err != nil {
		core.BadRequest(w, "invalid project id")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	resp, err := h.service.Get(r.Context(), identity, projectID)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseProjectID(r)
	if err != nil {
		core.BadRequest(w, "invalid project id")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	identity := middleware.GetIdentity(r.Context())

	err = h.service.AddMember(r.Context(), identity, projectID, req.UserID)
	if err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseProjectID(r)
	if err != nil {
		core.BadRequest(w, "invalid project id")
		return
	}

	identity := middleware.GetIdentity(r.Context())

	if err := h.service.Delete(r.Context(), identity, projectID); err != nil {
		h.writeProjectError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you do not have access to this project")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "project")
	default:
		core.InternalServerError(w, err)
	}
}

func parseProjectID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
}
