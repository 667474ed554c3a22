package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nhfg/crm-backend/pkg/auth"
	"github.com/nhfg/crm-backend/pkg/domain"
	"github.com/nhfg/crm-backend/pkg/models"
)

// JWTMiddlewareWithBlacklist creates a JWT authentication middleware with
// revocation and user-existence checks.
func JWTMiddlewareWithBlacklist(secret string, blacklist *auth.TokenBlacklist, users domain.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}

			token := parts[1]

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token",
					Message: err.Error(),
				})
			}

			if users != nil {
				if _, err := users.GetUserByID(ctx, claims.UserID); err != nil {
					return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
						Error:   "user_not_found",
						Message: "User account not found",
					})
				}
			}

			// Store token in context for potential logout
			c.Set("token", token)

			c.Set("user_id", claims.UserID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)

			return next(c)
		}
	}
}
