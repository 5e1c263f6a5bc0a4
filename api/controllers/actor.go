package controllers

import (
	"net/http"

	"github.com/angelmondragon/nazorat-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

func requireActor(r *http.Request) (types.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return types.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return actor, nil
}
