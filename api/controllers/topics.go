package controllers

import (
	"net/http"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/api/validators"
	"github.com/angelmondragon/nazorat-backend/internal/topics"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

const topicIDParam = "topicId"

type topicBody struct {
	Title string `json:"title" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor,len=7"`
}

func (b topicBody) toInput() topics.Input {
	return topics.Input{Title: b.Title, Color: b.Color}
}

func ListTopics(svc TopicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminCreateTopic(svc TopicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body topicBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		topic, err := svc.Create(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, topic)
	}
}

func AdminUpdateTopic(svc TopicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, topicIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body topicBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		topic, err := svc.Rename(r.Context(), id, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, topic)
	}
}

func AdminDeleteTopic(svc TopicService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParsePathID(r, topicIDParam)
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
