package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/api/validators"
	"github.com/angelmondragon/nazorat-backend/internal/users"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

const userIDParam = "userId"

type createUserBody struct {
	Username string  `json:"username" validate:"required,max=80"`
	FullName *string `json:"full_name" validate:"omitempty,max=150"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role" validate:"omitempty,oneof=user admin"`
}

func AdminListUsers(svc UserService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]*users.UserDTO, 0, len(list))
		for i := range list {
			out = append(out, users.FromModel(&list[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminCreateUser(svc UserService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createUserBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Create(r.Context(), users.CreateUserInput{
			Username: body.Username,
			FullName: body.FullName,
			Password: body.Password,
			Role:     enums.UserRole(body.Role),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, users.FromModel(user))
	}
}

// AdminDeleteUser removes an account. ?mode=keep (default) detaches the
// user's requests, ?mode=with_requests deletes them with their media.
func AdminDeleteUser(svc UserService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, userIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mode, err := enums.ParseUserDeleteMode(strings.TrimSpace(r.URL.Query().Get("mode")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delete mode").
				WithDetails(map[string]any{"field": "mode"}))
			return
		}
		res, err := svc.Delete(r.Context(), id, mode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
