package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"eateryApi/internal/shared/auth"
)

const claimsContextKey = "claims"

// RequireToken rejects requests without a valid bearer token. When role is set the token must
// carry it. A nil validator disables the check.
func RequireToken(validator auth.TokenValidator, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if validator == nil {
			return next
		}
		return func(c echo.Context) error {
			claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
			if err != nil {
				status := http.StatusUnauthorized
				message := "invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					message = "missing token"
				}
				slog.Warn("refresh request unauthorized", slog.String("path", c.Path()), slog.String("ip", c.RealIP()), slog.Any("error", err))
				return echo.NewHTTPError(status, message)
			}
			if role != "" && !claims.HasRole(role) {
				slog.Warn("refresh request forbidden", slog.String("subject", claims.Subject), slog.String("role", role))
				return echo.NewHTTPError(http.StatusForbidden, auth.ErrForbidden.Error())
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}
