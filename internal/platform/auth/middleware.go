package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const actorKey contextKey = "actor"

// Claims are the token claims the service consumes. The roles claim carries
// "medico" and/or "admin"; anything else resolves to an unprivileged actor.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// JWTConfig configures token verification.
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
	// SigningKey enables HMAC verification for development and testing.
	SigningKey []byte
}

// JWTMiddleware authenticates each request, resolves the Actor once, and
// stores it on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	var keyFunc jwt.Keyfunc
	if len(cfg.SigningKey) > 0 {
		keyFunc = func(*jwt.Token) (interface{}, error) { return cfg.SigningKey, nil }
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
			opts := []jwt.ParserOption{}
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

			actor, err := resolveActor(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", actor.ID.String())
			return next(c)
		}
	}
}

// resolveActor maps token claims onto the Actor sum type. The admin role
// wins when a token carries both.
func resolveActor(claims *Claims) (Actor, error) {
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "subject is not a valid identifier")
	}

	role := RoleUnprivileged
	for _, r := range claims.Roles {
		switch r {
		case string(RoleAdmin):
			role = RoleAdmin
		case string(RoleMedico):
			if role != RoleAdmin {
				role = RoleMedico
			}
		}
	}

	return Actor{ID: id, Name: claims.Name, Role: role}, nil
}

// DevAuthMiddleware grants every unauthenticated request a fixed
// administrative actor. Development only.
func DevAuthMiddleware() echo.MiddlewareFunc {
	devID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := Actor{ID: devID, Name: "Dev Admin", Role: RoleAdmin}
			ctx := WithActor(c.Request().Context(), actor)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", actor.ID.String())
			return next(c)
		}
	}
}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the actor resolved by the auth middleware. The
// zero Actor (unprivileged, nil ID) is returned when none is present.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey).(Actor)
	return actor
}

// RequireRole returns middleware that rejects actors holding none of the
// given roles. Administrators always pass.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor := ActorFromContext(c.Request().Context())
			if actor.IsAdmin() {
				return next(c)
			}
			for _, r := range roles {
				if actor.Role == r {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
