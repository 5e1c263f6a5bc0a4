package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/nazorat-backend/api/responses"
	"github.com/angelmondragon/nazorat-backend/api/validators"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

const workerIDParam = "workerId"

// parseFilter reads from, to, topic_id and worker_id. Dates are calendar
// days in the report time zone.
func parseFilter(r *http.Request, loc *time.Location) (statistics.Filter, error) {
	var f statistics.Filter
	var err error
	if f.From, err = validators.ParseQueryDate(r, "from", loc); err != nil {
		return f, err
	}
	if f.To, err = validators.ParseQueryDate(r, "to", loc); err != nil {
		return f, err
	}
	if f.TopicID, err = validators.ParseQueryID(r, "topic_id"); err != nil {
		return f, err
	}
	if f.WorkerID, err = validators.ParseQueryID(r, "worker_id"); err != nil {
		return f, err
	}
	return f, nil
}

func parseFormat(r *http.Request) (enums.ReportFormat, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("format"))
	if raw == "" {
		return enums.ReportFormatWord, nil
	}
	format, err := enums.ParseReportFormat(strings.ToLower(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "format must be word or excel").
			WithDetails(map[string]any{"field": "format"})
	}
	return format, nil
}

func AdminStatistics(svc StatisticsService, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Aggregate(r.Context(), f)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func AdminExportStatistics(svc StatisticsService, renderer ReportRenderer, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		format, err := parseFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		res, err := svc.Aggregate(r.Context(), f)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := renderer.RenderStatistics(r.Context(), res, format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, artifact.Filename, artifact.ContentType, artifact.Body)
	}
}

func AdminExportWorker(svc StatisticsService, renderer ReportRenderer, loc *time.Location, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, err := validators.ParsePathID(r, workerIDParam)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		f, err := parseFilter(r, loc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		format, err := parseFormat(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rep, err := svc.WorkerReport(r.Context(), workerID, f)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		artifact, err := renderer.RenderWorkerStatistics(r.Context(), rep, format)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, artifact.Filename, artifact.ContentType, artifact.Body)
	}
}
