package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/procurehub/portal/api/responses"
	"github.com/procurehub/portal/internal/access"
	pkgAuth "github.com/procurehub/portal/pkg/auth"
	"github.com/procurehub/portal/pkg/auth/session"
	"github.com/procurehub/portal/pkg/config"
	pkgerrors "github.com/procurehub/portal/pkg/errors"
	"github.com/procurehub/portal/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, cfg, verifier, logg)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth seeds the caller when a valid token is present and otherwise
// lets the request through anonymously.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := authenticate(r, cfg, verifier, logg)
			if err != nil {
				if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) (context.Context, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if pkgAuth.IsExpired(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token expired")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	ctx := WithActor(r.Context(), access.Actor{UserID: claims.UserID, Role: claims.Role})
	ctx = withAccessID(ctx, claims.ID)
	if logg != nil {
		ctx = logg.WithActor(ctx, claims.UserID.String(), string(claims.Role))
	}
	return ctx, nil
}

func bearerToken(r *http.Request) string {
	token := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
