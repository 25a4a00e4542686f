package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/phr/phr/internal/platform/identity"
)

type contextKey string

const callerKey contextKey = "caller"

// DebugIdentityHeader lets development clients pick the identity they call
// as, so a patient and a provider can be simulated from one machine.
const DebugIdentityHeader = "X-Debug-Identity"

type Claims struct {
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HMAC validation for development and tests.
	SigningKey []byte
}

// JWTMiddleware authenticates the caller and places the token subject on the
// request context as the opaque identity reference. The control plane never
// inspects the reference; it only compares it.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	var keyFunc jwt.Keyfunc
	if len(cfg.SigningKey) > 0 {
		keyFunc = func(t *jwt.Token) (interface{}, error) {
			return cfg.SigningKey, nil
		}
	} else {
		keyFunc = jwksKeyFunc(cfg.JWKSURL)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"RS256", "HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			if cfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(cfg.Audience))
			}

			token, err := jwt.ParseWithClaims(parts[1], claims, keyFunc, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			if claims.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
			}

			ctx := context.WithValue(c.Request().Context(), callerKey, identity.Ref(claims.Subject))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development. The caller
// identity comes from the X-Debug-Identity header, defaulting to "dev-user".
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			who := c.Request().Header.Get(DebugIdentityHeader)
			if who == "" {
				who = "dev-user"
			}
			ctx := context.WithValue(c.Request().Context(), callerKey, identity.Ref(who))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// CallerFromContext returns the authenticated caller's identity reference, or
// the zero Ref when no caller was established.
func CallerFromContext(ctx context.Context) identity.Ref {
	ref, _ := ctx.Value(callerKey).(identity.Ref)
	return ref
}

// WithCaller returns a context carrying the given caller identity. Intended
// for tests and internal wiring.
func WithCaller(ctx context.Context, ref identity.Ref) context.Context {
	return context.WithValue(ctx, callerKey, ref)
}
