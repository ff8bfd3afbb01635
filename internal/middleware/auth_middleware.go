package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"myArtMarket/pkg/logger"
	"myArtMarket/pkg/utils"

	jsonres "myArtMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxToken  = "token"

	roleAdmin = "ADMIN"
)

func deny(c echo.Context, status int, code, message string) error {
	return c.JSON(status, jsonres.Error(code, message, nil))
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get(ctxRole).(string)
	return strings.EqualFold(role, roleAdmin)
}

// AuthMiddleware validates the JWT and puts user_id (uint), role and token on
// the echo context.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing authorization header")
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid authorization format")
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Debug("jwt_rejected", "error", err)
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			}

			// ParseJWT already rejects expired tokens; a token without exp is refused too
			expAt, err := claims.GetExpirationTime()
			if err != nil || expAt == nil || time.Now().After(expAt.Time) {
				return deny(c, http.StatusForbidden, "FORBIDDEN", "Token expired")
			}

			userID, err := strconv.ParseUint(claims.UserID, 10, 64)
			if err != nil {
				logger.Error("Invalid user ID in token", "error", err)
				return deny(c, http.StatusForbidden, "FORBIDDEN", "Invalid user ID in token")
			}

			c.Set(ctxUserID, uint(userID))
			c.Set(ctxRole, claims.Role)
			c.Set(ctxToken, tokenString)

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isAdmin(c) {
				return deny(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			}
			return next(c)
		}
	}
}

// SelfOrAdmin lets a user reach resources under their own :user_id only.
// Admins pass through.
func SelfOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedIn, ok := c.Get(ctxUserID).(uint)
			if !ok {
				return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
			}
			if isAdmin(c) {
				return next(c)
			}

			requested, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
			if err != nil {
				return deny(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid user ID")
			}
			if uint(requested) != loggedIn {
				return deny(c, http.StatusForbidden, "FORBIDDEN", "You can only access your own data")
			}

			return next(c)
		}
	}
}
