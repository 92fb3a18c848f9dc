package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pibble/pibble/internal/auth"
)

const (
	TokenKey  = "token"
	ClaimsKey = "claims"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Enabled() bool
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// FailureRecorder is told about every rejected and accepted token.
type FailureRecorder interface {
	RecordFailure(ip string)
	RecordSuccess(ip string)
}

type AuthMiddleware struct {
	validator TokenValidator
	failures  FailureRecorder
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
	}
}

func (m *AuthMiddleware) SetFailureRecorder(r FailureRecorder) {
	m.failures = r
}

// Token stores the bearer token for handlers to forward upstream. When
// verification is enabled the token must be present and valid.
func (m *AuthMiddleware) Token() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			c.Set(TokenKey, token)

			if m.validator == nil || !m.validator.Enabled() {
				return next(c)
			}

			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization token")
			}

			claims, err := m.validator.ValidateToken(token)
			if err != nil {
				if m.failures != nil {
					m.failures.RecordFailure(c.RealIP())
				}
				if errors.Is(err, auth.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if m.failures != nil {
				m.failures.RecordSuccess(c.RealIP())
			}
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// SameUser requires the verified subject to match the user id taken from
// the path parameter, or the query parameter of the same name. It is a
// no-op when verification is disabled.
func (m *AuthMiddleware) SameUser(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return next(c)
			}

			userID := c.Param(param)
			if userID == "" {
				userID = c.QueryParam(param)
			}
			if claims.Subject != strings.TrimSpace(userID) {
				return echo.NewHTTPError(http.StatusForbidden, "token does not belong to this user")
			}
			return next(c)
		}
	}
}

// GetToken returns the raw bearer token of the request, or "".
func GetToken(c echo.Context) string {
	token, _ := c.Get(TokenKey).(string)
	return token
}

func GetClaims(c echo.Context) *auth.Claims {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
