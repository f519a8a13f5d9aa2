// AngelaMos | 2026
// handler.go

package user

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		r.Get("/", h.List)
		r.Put("/{userID}/role", h.UpdateRole)
		r.Delete("/{userID}", h.Delete)
	})
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveQuery(r, "page", 1)
	pageSize := parsePositiveQuery(r, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	users, total, err := h.service.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, users, page, pageSize, total)
}

func parsePositiveQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUserID(r)
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actorID := middleware.GetUserID(r.Context())

	err = h.service.UpdateUserRole(r.Context(), actorID, targetID, req.Role)
	if err != nil {
		h.writeUserError(w, err)
		return
	}

	core.OK(w, map[string]any{"id": targetID, "role": req.Role})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	targetID, err := parseUserID(r)
	if err != nil {
		core.BadRequest(w, "invalid user id")
		return
	}

	actorID := middleware.GetUserID(r.Context())

	if err := h.service.DeleteUser(r.Context(), actorID, targetID); err != nil {
		h.writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrSelfAction):
		core.BadRequest(w, "you cannot perform this action on your own account")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "role must be one of: USER ADMIN")
	default:
		core.InternalServerError(w, err)
	}
}

func parseUserID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
}
