package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

// Headers set by the session layer in front of this service.
const (
	ActorIDHeader   = "X-Actor-ID"
	ActorRoleHeader = "X-Actor-Role"
)

// Actor reads the caller identity from the session headers and seeds the
// request context with it. Requests without the headers pass through
// anonymously; malformed headers are rejected.
func Actor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := strings.TrimSpace(r.Header.Get(ActorIDHeader))
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := strconv.ParseUint(rawID, 10, 64)
			if err != nil || id == 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid actor id"))
				return
			}

			role := enums.UserRoleUser
			if rawRole := strings.TrimSpace(r.Header.Get(ActorRoleHeader)); rawRole != "" {
				role, err = enums.ParseUserRole(strings.ToLower(rawRole))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor role"))
					return
				}
			}

			ctx := WithActor(r.Context(), types.Actor{ID: id, Role: role})
			if logg != nil {
				ctx = logg.WithUserID(ctx, id)
				ctx = logg.WithActorRole(ctx, string(role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects anonymous callers.
func RequireActor(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ActorFromContext(r.Context()); !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
