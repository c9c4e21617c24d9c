package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	apperrors "clubhouse/pkg/errors"
	httputil "clubhouse/pkg/http"
	"clubhouse/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

const principalKey contextKey = "principal"

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Principal struct {
	Subject string
	Roles   []string
}

func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if slices.Contains(p.Roles, role) {
			return true
		}
	}
	return false
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Actor names whoever performs an administrative action, for audit fields.
func Actor(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok && p.Subject != "" {
		return p.Subject
	}
	return "anonymous"
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Authenticator checks HMAC-signed bearer tokens. With an empty secret it is
// disabled and every route is open.
type Authenticator struct {
	secret []byte
	log    *logger.Logger
}

func NewAuthenticator(secret string, log *logger.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), log: log}
}

func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

func (a *Authenticator) Parse(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	if !token.Valid {
		return Principal{}, jwt.ErrTokenInvalidClaims
	}
	return Principal{Subject: claims.Subject, Roles: claims.Roles}, nil
}

// Require wraps a route so it needs a valid bearer token carrying one of roles.
// No roles means any authenticated caller.
func (a *Authenticator) Require(roles ...string) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		if !a.Enabled() {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				httputil.WriteError(w, apperrors.Unauthorized("missing bearer token"))
				return
			}

			principal, err := a.Parse(tokenString)
			if err != nil {
				a.log.Warn("Rejected bearer token",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				if errors.Is(err, jwt.ErrTokenExpired) {
					httputil.WriteError(w, apperrors.Unauthorized("token has expired"))
					return
				}
				httputil.WriteError(w, apperrors.Unauthorized("invalid token"))
				return
			}

			if len(roles) > 0 && !principal.HasAnyRole(roles...) {
				a.log.Warn("Insufficient role",
					"request_id", RequestIDFrom(r.Context()),
					"subject", principal.Subject,
					"required", roles,
					"path", r.URL.Path,
				)
				httputil.WriteError(w, apperrors.Forbidden("insufficient permissions"))
				return
			}

			next(w, r.WithContext(WithPrincipal(r.Context(), principal)), ps)
		}
	}
}
