package middleware

import (
	"context"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"craftopia/internal/auth"
	"craftopia/internal/authz"
	apperrors "craftopia/internal/errors"
	"craftopia/internal/model"
)

const (
	claimsKey        = "claims"
	identityKey      = "identity"
	accessCookieName = "accessToken"
)

var (
	errNoToken      = apperrors.Wrap(apperrors.ErrUnauthorized, "Access denied. No token provided.")
	errBadToken     = apperrors.Wrap(apperrors.ErrUnauthorized, "Invalid or expired token")
	errUnknownUser  = apperrors.Wrap(apperrors.ErrUnauthorized, "User not found or account deactivated")
	errNoIdentity   = apperrors.Wrap(apperrors.ErrUnauthorized, "Authentication required")
	errInsufficient = apperrors.Wrap(apperrors.ErrForbidden, "Access denied. Insufficient permissions.")
)

// UserFinder loads the account behind a token.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticate requires a valid access token in the Authorization header
// and an existing, active account behind it.
func Authenticate(jwtService *auth.JWTService, users UserFinder) echo.MiddlewareFunc {
	return authenticate(jwtService, users, true)
}

// OptionalAuthenticate attaches an identity when a usable token is present
// and otherwise lets the request through anonymously.
func OptionalAuthenticate(jwtService *auth.JWTService, users UserFinder) echo.MiddlewareFunc {
	return authenticate(jwtService, users, false)
}

func authenticate(jwtService *auth.JWTService, users UserFinder, required bool) echo.MiddlewareFunc {
	cfg := echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + accessCookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !required {
				return nil
			}
			if !hasToken(c) {
				return errNoToken
			}
			return errBadToken
		},
		ContinueOnIgnoredError: !required,
	}
	jwtMiddleware := echojwt.WithConfig(cfg)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return jwtMiddleware(func(c echo.Context) error {
			claims, ok := c.Get(claimsKey).(*auth.Claims)
			if !ok {
				if required {
					return errNoToken
				}
				return next(c)
			}

			identity, err := resolve(c.Request().Context(), users, claims)
			if err != nil {
				if required {
					return err
				}
				return next(c)
			}
			c.Set(identityKey, identity)
			return next(c)
		})
	}
}

func hasToken(c echo.Context) bool {
	if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
		return true
	}
	cookie, err := c.Cookie(accessCookieName)
	return err == nil && cookie.Value != ""
}

// resolve turns token claims into an identity using the stored role, so
// role changes apply before the token expires.
func resolve(ctx context.Context, users UserFinder, claims *auth.Claims) (authz.Identity, error) {
	id, err := claims.UserID()
	if err != nil {
		return authz.Identity{}, errBadToken
	}
	user, err := users.FindByID(ctx, id)
	if err != nil || !user.IsActive {
		return authz.Identity{}, errUnknownUser
	}
	return authz.Identity{ID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// IdentityFrom returns the authenticated caller, if any.
func IdentityFrom(c echo.Context) (authz.Identity, bool) {
	identity, ok := c.Get(identityKey).(authz.Identity)
	return identity, ok
}

// IsAdmin reports whether the request carries an admin or super_admin identity.
func IsAdmin(c echo.Context) bool {
	identity, ok := IdentityFrom(c)
	return ok && identity.IsAdmin()
}
