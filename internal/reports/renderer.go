package reports

import (
	"context"
	"os"
	"time"

	"github.com/angelmondragon/nazorat-backend/internal/media"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
)

// Artifact is a rendered file ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Options struct {
	Clock   func() time.Time
	Metrics *metrics.ReportMetrics
	Logger  *logger.Logger
}

// Renderer turns aggregated statistics and request details into docx and
// xlsx files. The clock is its only non-deterministic input.
type Renderer struct {
	cfg     config.ReportsConfig
	loc     *time.Location
	clock   func() time.Time
	metrics *metrics.ReportMetrics
	logg    *logger.Logger
}

func NewRenderer(cfg config.ReportsConfig, opts Options) *Renderer {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = 90
	}
	if cfg.ImageWidthInches <= 0 {
		cfg.ImageWidthInches = 5
	}
	return &Renderer{
		cfg:     cfg,
		loc:     cfg.Location(),
		clock:   opts.Clock,
		metrics: opts.Metrics,
		logg:    opts.Logger,
	}
}

func (r *Renderer) now() time.Time { return r.clock().In(r.loc) }

func (r *Renderer) display(t time.Time) string { return t.In(r.loc).Format(displayLayout) }

// RenderStatistics renders an aggregation as a word or excel file.
func (r *Renderer) RenderStatistics(ctx context.Context, res *statistics.Result, format enums.ReportFormat) (*Artifact, error) {
	if res == nil {
		res = &statistics.Result{}
	}
	now := r.now()

	var body []byte
	var err error
	switch format {
	case enums.ReportFormatWord:
		body, err = r.statisticsDocx(res, now.Format(displayLayout)).Bytes()
	case enums.ReportFormatExcel:
		body, err = r.statisticsXLSX(res, now)
	default:
		return nil, invalidFormat(format)
	}
	return r.artifact(ctx, KindStatistics, "", format, now, body, err)
}

// RenderWorkerStatistics renders one worker's requests. Word output is
// capped at the configured row count; excel lists every request.
func (r *Renderer) RenderWorkerStatistics(ctx context.Context, rep *statistics.WorkerReport, format enums.ReportFormat) (*Artifact, error) {
	if rep == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "worker report is required")
	}
	now := r.now()

	var body []byte
	var err error
	switch format {
	case enums.ReportFormatWord:
		body, err = r.workerDocx(rep, now.Format(displayLayout)).Bytes()
	case enums.ReportFormatExcel:
		body, err = r.workerXLSX(rep, now)
	default:
		return nil, invalidFormat(format)
	}
	return r.artifact(ctx, KindWorkerStatistics, rep.Worker.Username, format, now, body, err)
}

// RenderProtocol renders a single request as a word protocol. mediaPath may
// be empty; a missing file is left out.
func (r *Renderer) RenderProtocol(ctx context.Context, d *requests.Detail, mediaPath string) (*Artifact, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request detail is required")
	}
	ctx = r.logg.WithRequestRecord(ctx, d.ID)
	now := r.now()
	body, err := r.protocolDocx(ctx, d, mediaPath, now.Format(displayLayout)).Bytes()

	subject := ""
	if d.RegNumber != nil {
		subject = *d.RegNumber
	}
	return r.artifact(ctx, KindProtocol, subject, enums.ReportFormatWord, now, body, err)
}

// artifact canonicalizes the archive and names it. now is the single clock
// reading taken by the Render call.
func (r *Renderer) artifact(ctx context.Context, kind, subject string, format enums.ReportFormat, now time.Time, body []byte, err error) (*Artifact, error) {
	if err == nil {
		body, err = canonicalZip(body, now)
	}
	if err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeRender, err, "render "+kind)
		r.logg.Error(r.logg.WithField(ctx, "report_kind", kind), "reports.render_failed", wrapped)
		return nil, wrapped
	}
	r.metrics.IncRendered(kind, format.String())
	return &Artifact{
		Filename:    Filename(kind, subject, now, format.Extension()),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func invalidFormat(format enums.ReportFormat) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "format must be word or excel").
		WithDetails(map[string]any{"format": string(format)})
}

func isEmbeddable(path string) bool { return media.IsImage(path) }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
