package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ochen1/immich/internal/auth/models"
	"github.com/ochen1/immich/internal/platform/middleware"
	jsonResponse "github.com/ochen1/immich/internal/transport/http/json"
	httpError "github.com/ochen1/immich/internal/transport/http/shared"
	"github.com/ochen1/immich/pkg/domain"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
)

// Service defines the interface for authentication operations.
type Service interface {
	Login(ctx context.Context, creds models.LoginCredentials, details models.LoginDetails) (*models.LoginResult, error)
	AdminSignUp(ctx context.Context, dto *models.SignUpDto) (*models.AdminSignUpResponse, error)
	ChangePassword(ctx context.Context, authUser *models.AuthUser, dto *models.ChangePasswordDto) (*models.User, error)
	Logout(ctx context.Context, authType models.AuthType) *models.LogoutResponse
	Validate(ctx context.Context, token string) (*models.AuthUser, error)
	OAuthAuthorizeURL(ctx context.Context, dto *models.OAuthConfigDto) (*models.OAuthConfigResponse, error)
	OAuthCallbackLogin(ctx context.Context, dto *models.OAuthCallbackDto, details models.LoginDetails) (*models.LoginResult, error)
	OAuthLink(ctx context.Context, authUser *models.AuthUser, dto *models.OAuthCallbackDto) (*models.User, error)
	OAuthUnlink(ctx context.Context, authUser *models.AuthUser) (*models.User, error)
}

// Handler serves the authentication endpoints: password login, the admin
// bootstrap, federated login, session validation, and logout.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

// New creates a new auth Handler with the given service and logger.
func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Register registers the public auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/admin-sign-up", h.HandleAdminSignUp)
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/oauth/authorize-url", h.HandleOAuthAuthorize)
	r.Post("/oauth/callback", h.HandleOAuthCallback)
}

// RegisterProtected registers the routes that require a valid session. The
// parent router applies the auth middleware.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/change-password", h.HandleChangePassword)
	r.Post("/auth/validateToken", h.HandleValidateToken)
	r.Post("/oauth/link", h.HandleOAuthLink)
	r.Post("/oauth/unlink", h.HandleOAuthUnlink)
}

// HandleLogin implements POST /auth/login.
//
// Input: { "email": "user@example.com", "password": "..." }
// Output: login payload plus the access-token and auth-type cookies.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var creds models.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.auth.Login(ctx, creds, loginDetails(r))
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httpError.WriteError(w, err)
		return
	}

	setCookies(w, result.Cookies)
	jsonResponse.WriteJSON(w, http.StatusCreated, result.Response)
}

// HandleAdminSignUp implements POST /auth/admin-sign-up, the one-time
// bootstrap that creates the instance administrator.
func (h *Handler) HandleAdminSignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto models.SignUpDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	resp, err := h.auth.AdminSignUp(ctx, &dto)
	if err != nil {
		h.logger.WarnContext(ctx, "admin sign-up failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusCreated, resp)
}

// HandleChangePassword implements POST /auth/change-password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authUser, err := authUserFromContext(ctx)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	var dto models.ChangePasswordDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	updated, err := h.auth.ChangePassword(ctx, authUser, &dto)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, map[string]string{
		"id":    updated.ID.String(),
		"email": updated.Email,
	})
}

// HandleValidateToken implements POST /auth/validateToken. The auth
// middleware already validated the session, so reaching here means success.
func (h *Handler) HandleValidateToken(w http.ResponseWriter, r *http.Request) {
	jsonResponse.WriteJSON(w, http.StatusOK, map[string]bool{"authStatus": true})
}

// HandleLogout implements POST /auth/logout. The auth-type cookie selects
// the redirect target; both auth cookies are expired on the way out.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authType := models.AuthTypePassword
	if cookie, err := r.Cookie(models.CookieAuthType); err == nil {
		authType = models.ParseAuthType(cookie.Value)
	}

	resp := h.auth.Logout(ctx, authType)
	setCookies(w, models.LogoutCookies(isSecure(r)))
	jsonResponse.WriteJSON(w, http.StatusOK, resp)
}

// HandleOAuthAuthorize implements POST /oauth/authorize-url.
//
// Input: { "redirectUri": "https://..." }
// Output: { "enabled": true, "url": "https://idp...", ... }
func (h *Handler) HandleOAuthAuthorize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto models.OAuthConfigDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	resp, err := h.auth.OAuthAuthorizeURL(ctx, &dto)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusCreated, resp)
}

// HandleOAuthCallback implements POST /oauth/callback.
//
// Input: { "url": "https://app/auth/callback?code=...&state=..." }
func (h *Handler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var dto models.OAuthCallbackDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	result, err := h.auth.OAuthCallbackLogin(ctx, &dto, loginDetails(r))
	if err != nil {
		h.logger.WarnContext(ctx, "oauth callback failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		httpError.WriteError(w, err)
		return
	}

	setCookies(w, result.Cookies)
	jsonResponse.WriteJSON(w, http.StatusCreated, result.Response)
}

// HandleOAuthLink implements POST /oauth/link.
func (h *Handler) HandleOAuthLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authUser, err := authUserFromContext(ctx)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	var dto models.OAuthCallbackDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		httpError.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid JSON in request body"))
		return
	}

	updated, err := h.auth.OAuthLink(ctx, authUser, &dto)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, userSummary(updated))
}

// HandleOAuthUnlink implements POST /oauth/unlink.
func (h *Handler) HandleOAuthUnlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	authUser, err := authUserFromContext(ctx)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	updated, err := h.auth.OAuthUnlink(ctx, authUser)
	if err != nil {
		httpError.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, userSummary(updated))
}

func userSummary(u *models.User) map[string]any {
	return map[string]any{
		"id":      u.ID.String(),
		"email":   u.Email,
		"oauthId": u.OAuthID,
	}
}

// authUserFromContext rebuilds the service-level auth user from the
// principal the middleware stored.
func authUserFromContext(ctx context.Context) (*models.AuthUser, error) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	id, err := domain.ParseUserID(principal.ID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	return &models.AuthUser{
		ID:      id,
		Email:   principal.Email,
		IsAdmin: principal.IsAdmin,
	}, nil
}

func setCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

// loginDetails captures the request metadata the service logs and uses for
// cookie attributes.
func loginDetails(r *http.Request) models.LoginDetails {
	return models.LoginDetails{
		ClientIP:  clientIP(r),
		UserAgent: r.UserAgent(),
		IsSecure:  isSecure(r),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if ip, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(ip)
		}
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
