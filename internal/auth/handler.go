// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/wemanage-app/backend/internal/core"
	"github.com/wemanage-app/backend/internal/middleware"
)

const (
	stateCookieName = "wm_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

type Handler struct {
	service       *Service
	google        *GoogleClient
	sessions      *SessionStore
	validator     *validator.Validate
	frontendURL   string
	sessionCookie string
	sessionTTL    time.Duration
	secureCookies bool
}

func NewHandler(
	service *Service,
	google *GoogleClient,
	sessions *SessionStore,
	frontendURL, sessionCookie string,
	sessionTTL time.Duration,
	secureCookies bool,
) *Handler {
	return &Handler{
		service:       service,
		google:        google,
		sessions:      sessions,
		validator:     validator.New(validator.WithRequiredStructEnabled()),
		frontendURL:   frontendURL,
		sessionCookie: sessionCookie,
		sessionTTL:    sessionTTL,
		secureCookies: secureCookies,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Put("/reset-password/{token}", h.ResetPassword)

		r.Get("/google", h.GoogleRedirect)
		r.Get("/google/callback", h.GoogleCallback)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.BadRequest(w, "invalid email or password")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

// ForgotPassword acknowledges identically whether or not the email
// matches an account. Only infrastructure failures surface.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "If that email is registered, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		core.BadRequest(w, "reset token is required")
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req.Password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			core.BadRequest(w, "reset token is invalid or has expired")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "Password has been reset"})
}

// GoogleRedirect starts the federated login handshake. The state value
// rides in a short-lived cookie and is checked on callback.
func (h *Handler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		core.NotFound(w, "federated login")
		return
	}

	state, err := h.google.StateToken()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusFound)
}

// GoogleCallback finishes the handshake. Every failure redirects back
// to the frontend login page with an error code; the API never strands
// a browser on a JSON body mid-login.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		core.NotFound(w, "federated login")
		return
	}

	h.clearStateCookie(w)

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.redirectLoginError(w, r, "google_denied")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" ||
		stateCookie.Value != r.URL.Query().Get("state") {
		h.redirectLoginError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectLoginError(w, r, "missing_code")
		return
	}

	profile, err := h.google.FetchProfile(r.Context(), code)
	if err != nil {
		h.redirectLoginError(w, r, "exchange_failed")
		return
	}

	account, err := h.service.ReconcileGoogleProfile(r.Context(), profile)
	if err != nil {
		if errors.Is(err, ErrMissingProviderEmail) {
			h.redirectLoginError(w, r, "missing_email")
			return
		}
		h.redirectLoginError(w, r, "server_error")
		return
	}

	token, err := h.service.IssueToken(account)
	if err != nil {
		h.redirectLoginError(w, r, "server_error")
		return
	}

	sessionID, err := h.sessions.Create(r.Context(), account.ID)
	if err != nil {
		h.redirectLoginError(w, r, "server_error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	callbackURL := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(token)
	http.Redirect(w, r, callbackURL, http.StatusFound)
}

// Logout drops the cookie session if one exists. Bearer tokens are
// stateless and simply expire; there is nothing server-side to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.sessionCookie); err == nil && cookie.Value != "" {
		//nolint:errcheck // logout is best-effort; the cookie is cleared regardless
		_ = h.sessions.Delete(r.Context(), cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	core.NoContent(w)
}

func (h *Handler) redirectLoginError(
	w http.ResponseWriter,
	r *http.Request,
	code string,
) {
	loginURL := h.frontendURL + "/login?error=" + url.QueryEscape(code)
	http.Redirect(w, r, loginURL, http.StatusFound)
}

func (h *Handler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
