package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/scoresync/account-service/internal/api/handler"
	"github.com/scoresync/account-service/internal/core/domain"
	"github.com/scoresync/account-service/internal/infrastructure/auth"
	"github.com/scoresync/account-service/internal/pkg/metrics"
)

// RequireToken pulls the bearer token out of the Authorization header and
// stores it under handler.TokenContextKey. Both "Bearer <token>" and a bare
// token are accepted. Signature and expiry are checked by the account service.
func RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := auth.ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(domain.TokenErrorReason(err)).Inc()
				return err
			}

			c.Set(handler.TokenContextKey, token)
			return next(c)
		}
	}
}
