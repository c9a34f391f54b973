package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-service/internal/api/metrics"
	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

const bearerPrefix = "Bearer "

// Authenticate inspects the bearer token of every request. Requests without
// one pass through anonymously; requests with one either carry a resolved
// identity in their context afterwards or are rejected here.
func Authenticate(tokens ports.TokenService, directory ports.AccountDirectory, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				decided("anonymous")
				return next(c)
			}
			token := strings.TrimPrefix(authHeader, bearerPrefix)

			email, err := tokens.VerifyAndExtractIdentity(token)
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					decided("expired_token")
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				decided("malformed_token")
				return echo.NewHTTPError(http.StatusBadRequest, "invalid or malformed token: "+err.Error())
			}

			ctx := c.Request().Context()
			identity, err := directory.Lookup(ctx, email)
			switch {
			case errors.Is(err, domain.ErrAccountNotFound):
				decided("unknown_identity")
				return echo.NewHTTPError(http.StatusUnauthorized, "account not found: "+email)
			case err != nil:
				decided("error")
				log.Error().Err(err).Str("path", c.Path()).Msg("identity lookup failed")
				return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("unexpected failure: %v", err))
			case !identity.Active:
				decided("unknown_identity")
				return echo.NewHTTPError(http.StatusUnauthorized, "account not found: "+email)
			case !tokens.IsValidFor(token, identity.Email, identity.CredentialVersion):
				decided("invalid_token")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			decided("authenticated")
			c.SetRequest(c.Request().WithContext(WithIdentity(ctx, identity)))
			return next(c)
		}
	}
}

// RequireIdentity rejects requests that Authenticate left anonymous.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := IdentityFrom(c.Request().Context()); !ok {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

func decided(outcome string) {
	metrics.AuthGateDecisionsTotal.WithLabelValues(outcome).Inc()
}
