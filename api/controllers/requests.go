package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/api/validators"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/pagination"
	"github.com/angelmondragon/nazorat-backend/pkg/types"
)

const (
	maxCommentRunes = 5000
	multipartMemory = 8 << 20
	mediaFormField  = "media"
	requestIDParam  = "requestId"
)

type createRequestBody struct {
	TopicID   uint64   `json:"topic_id" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Comment   string   `json:"comment" validate:"max=5000"`
}

func (b createRequestBody) toInput(actor types.Actor, media *string) requests.CreateInput {
	userID := actor.ID
	return requests.CreateInput{
		UserID:        &userID,
		TopicID:       b.TopicID,
		Latitude:      b.Latitude,
		Longitude:     b.Longitude,
		Comment:       validators.SanitizeString(b.Comment, maxCommentRunes),
		MediaFilename: media,
	}
}

// CreateRequest accepts a citizen submission either as JSON or as a
// multipart form carrying an optional attachment in the "media" field.
func CreateRequest(svc RequestService, store MediaStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createRequestBody
		var media *string
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			body, media, err = readMultipartRequest(r, store)
		} else {
			err = validators.DecodeJSONBody(r, &body)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), body.toInput(actor, media))
		if err != nil {
			if media != nil {
				if rmErr := store.Remove(*media); rmErr != nil {
					logg.WarnErr(logg.WithField(r.Context(), "media_filename", *media), "request.orphan_media_remove_failed", rmErr)
				}
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), actor, created.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

func readMultipartRequest(r *http.Request, store MediaStore) (createRequestBody, *string, error) {
	var body createRequestBody
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return body, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	topicID, err := strconv.ParseUint(strings.TrimSpace(r.FormValue("topic_id")), 10, 64)
	if err != nil {
		return body, nil, pkgerrors.New(pkgerrors.CodeValidation, "topic is required").
			WithDetails(map[string]any{"field": "topic_id"})
	}
	body.TopicID = topicID
	if body.Latitude, err = formFloat(r, "latitude"); err != nil {
		return body, nil, err
	}
	if body.Longitude, err = formFloat(r, "longitude"); err != nil {
		return body, nil, err
	}
	body.Comment = r.FormValue("comment")
	if err := validators.Struct(body); err != nil {
		return body, nil, err
	}

	file, header, err := r.FormFile(mediaFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return body, nil, nil
	}
	if err != nil {
		return body, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid media upload")
	}
	defer file.Close()
	if header.Filename == "" {
		return body, nil, nil
	}

	name, err := store.Save(header.Filename, file)
	if err != nil {
		return body, nil, err
	}
	return body, &name, nil
}

func formFloat(r *http.Request, key string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]any{"field": key})
	}
	return &v, nil
}

// GetRequest returns one request to its owner or an administrator.
func GetRequest(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathID(r, requestIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Get(r.Context(), actor, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ListRequests pages through requests newest first. Non-admin callers only
// ever see their own.
func ListRequests(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parseListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseListParams(r *http.Request) (requests.ListParams, error) {
	var params requests.ListParams
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return params, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	if params.TopicID, err = validators.ParseQueryID(r, "topic_id"); err != nil {
		return params, err
	}
	if params.UserID, err = validators.ParseQueryID(r, "user_id"); err != nil {
		return params, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseEffectiveStatus(raw)
		if err != nil {
			return params, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter").
				WithDetails(map[string]any{"field": "status"})
		}
		params.Status = &status
	}
	return params, nil
}
