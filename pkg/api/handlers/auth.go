package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/api/errors"
	"github.com/nhfg/crm-backend/pkg/auth"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/metrics"
	"github.com/nhfg/crm-backend/pkg/models"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users           domain.UserStore
	blacklist       *auth.TokenBlacklist
	metrics         *metrics.Metrics
	jwtSecret       string
	expirationHours int
	validator       *validator.Validate
}

// NewAuthHandler creates a new auth handler. blacklist and metrics may be nil.
func NewAuthHandler(users domain.UserStore, blacklist *auth.TokenBlacklist, m *metrics.Metrics, jwtSecret string, expirationHours int) *AuthHandler {
	return &AuthHandler{
		users:           users,
		blacklist:       blacklist,
		metrics:         m,
		jwtSecret:       jwtSecret,
		expirationHours: expirationHours,
		validator:       validator.New(),
	}
}

// Login authenticates a user and issues a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	user, err := h.users.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.recordLogin(false)
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password.",
		})
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, user.Role, h.jwtSecret, h.expirationHours)
	if err != nil {
		return errors.InternalError(c, err)
	}

	h.recordLogin(true)
	return c.JSON(http.StatusOK, models.AuthResponse{
		Token: token,
		User:  user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return errors.UnauthorizedError(c, "missing user context")
	}

	user, err := h.users.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return errors.NotFoundError(c, "user")
		}
		return errors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

// Logout revokes the current token by blacklisting it until its natural expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.blacklist == nil {
		return c.JSON(http.StatusOK, models.SuccessResponse{
			Success: true,
			Message: "Logged out",
		})
	}

	authHeader := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" || token == authHeader {
		return errors.UnauthorizedError(c, "missing token")
	}

	ttl := time.Duration(h.expirationHours) * time.Hour
	if err := h.blacklist.Add(c.Request().Context(), token, ttl); err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Logged out",
	})
}

func (h *AuthHandler) recordLogin(success bool) {
	if h.metrics != nil {
		h.metrics.RecordLoginAttempt(success)
	}
}
