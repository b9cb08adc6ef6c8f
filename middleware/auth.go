package middleware

import (
	"context"
	"net/http"
	"strings"

	"farm-market/models"
	"farm-market/utils"

	"go.uber.org/zap"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

var (
	errNoToken      = utils.AuthError("Not authorized, no token")
	errNoIdentity   = utils.AuthError("Not authorized")
	errBuyersOnly   = utils.RoleMismatchError("Access denied: Buyers only")
	errFarmersOnly  = utils.RoleMismatchError("Access denied: Farmers only")
	errUnknownRoute = utils.RoleMismatchError("Access denied")
)

// Authenticator resolves a bearer token to the identity it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// Auth holds the authentication and role gates.
type Auth struct {
	authenticator Authenticator
	logger        *zap.Logger
}

func NewAuth(authenticator Authenticator, logger *zap.Logger) *Auth {
	return &Auth{authenticator: authenticator, logger: logger}
}

// Authenticate verifies the bearer token and attaches the identity to the
// request context. Every branch either rejects or calls next exactly once.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			utils.RespondError(w, errNoToken)
			return
		}

		identity, err := a.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if utils.KindOf(err) == utils.KindInternal {
				a.logger.Error("identity lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
			} else {
				a.logger.Debug("authentication rejected", zap.String("path", r.URL.Path), zap.Error(err))
			}
			utils.RespondError(w, err)
			return
		}

		// Attach identity information to the request context
		ctx := context.WithValue(r.Context(), UserContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole only lets identities of role through. It must be mounted
// after Authenticate; reaching it without an identity is a routing bug and
// is answered as unauthenticated.
func (a *Auth) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				a.logger.Error("role gate reached without identity", zap.String("path", r.URL.Path))
				utils.RespondError(w, errNoIdentity)
				return
			}
			if identity.Role != role {
				utils.RespondError(w, roleDenied(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleDenied(role models.Role) error {
	switch role {
	case models.RoleBuyer:
		return errBuyersOnly
	case models.RoleFarmer:
		return errFarmersOnly
	default:
		return errUnknownRoute
	}
}

// IdentityFromContext returns the identity attached by Authenticate.
func IdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(UserContextKey).(*models.Identity)
	return identity, ok && identity != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
