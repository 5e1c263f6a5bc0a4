package controllers

import (
	"net/http"

	"github.com/angelmondragon/nazorat-backend/api/middleware"
	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/api/validators"
	"github.com/angelmondragon/nazorat-backend/pkg/db/models"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

type statusBody struct {
	Status string `json:"status" validate:"required"`
}

type replyBody struct {
	Reply         *string `json:"reply"`
	MarkCompleted bool    `json:"mark_completed"`
}

type regNumberBody struct {
	RegNumber string `json:"reg_number" validate:"required"`
}

// documentNumberBody either asks for the next DOC number or sets a
// free-form value; a null value clears it.
type documentNumberBody struct {
	Assign bool    `json:"assign"`
	Value  *string `json:"value"`
}

type adminMutation func(r *http.Request, id uint64) (*models.Request, error)

// adminRequestAction runs a mutation and answers with the refreshed detail.
func adminRequestAction(svc RequestService, logg *logger.Logger, fn adminMutation) http.HandlerFunc {
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
		ctx := logg.WithRequestRecord(r.Context(), id)
		if _, err := fn(r.WithContext(ctx), id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		detail, err := svc.Get(ctx, actor, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminMarkRead returns a request to an administrator and marks it seen.
// Opening a request in the admin view has the same effect.
func AdminMarkRead(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return adminRequestAction(svc, logg, func(r *http.Request, id uint64) (*models.Request, error) {
		return svc.MarkAdminRead(r.Context(), id)
	})
}

func AdminSetStatus(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return adminRequestAction(svc, logg, func(r *http.Request, id uint64) (*models.Request, error) {
		var body statusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.SetStatus(r.Context(), id, body.Status)
	})
}

func AdminSetReply(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return adminRequestAction(svc, logg, func(r *http.Request, id uint64) (*models.Request, error) {
		var body replyBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.SetReply(r.Context(), id, body.Reply, body.MarkCompleted)
	})
}

func AdminCorrectRegNumber(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return adminRequestAction(svc, logg, func(r *http.Request, id uint64) (*models.Request, error) {
		var body regNumberBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		return svc.CorrectRegNumber(r.Context(), id, body.RegNumber)
	})
}

func AdminDocumentNumber(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return adminRequestAction(svc, logg, func(r *http.Request, id uint64) (*models.Request, error) {
		var body documentNumberBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			return nil, err
		}
		if body.Assign {
			return svc.AssignDocumentNumber(r.Context(), id)
		}
		return svc.SetDocumentNumber(r.Context(), id, body.Value)
	})
}

func AdminDeleteRequest(svc RequestService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, requestIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

// AdminRequestProtocol downloads the request as a word protocol.
func AdminRequestProtocol(svc RequestService, store MediaStore, renderer ReportRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := middleware.ActorFromContext(r.Context())
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

		mediaPath := ""
		if detail.MediaFilename != nil && *detail.MediaFilename != "" {
			if p, err := store.Path(*detail.MediaFilename); err == nil {
				mediaPath = p
			} else {
				logg.WarnErr(logg.WithField(r.Context(), "media_filename", *detail.MediaFilename), "reports.media_path_rejected", err)
			}
		}

		artifact, err := renderer.RenderProtocol(r.Context(), detail, mediaPath)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, artifact.Filename, artifact.ContentType, artifact.Body)
	}
}
