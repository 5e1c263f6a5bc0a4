// Package app assembles the services shared by the api server and nazctl.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/nazorat-backend/internal/media"
	"github.com/angelmondragon/nazorat-backend/internal/numbering"
	"github.com/angelmondragon/nazorat-backend/internal/reports"
	"github.com/angelmondragon/nazorat-backend/internal/requests"
	"github.com/angelmondragon/nazorat-backend/internal/schema"
	"github.com/angelmondragon/nazorat-backend/internal/statistics"
	"github.com/angelmondragon/nazorat-backend/internal/topics"
	"github.com/angelmondragon/nazorat-backend/internal/users"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
	"github.com/angelmondragon/nazorat-backend/pkg/metrics"
	"github.com/angelmondragon/nazorat-backend/pkg/security"
)

// App holds one wired instance of every domain service.
type App struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *db.Client
	Registry   *prometheus.Registry
	Media      *media.Store
	Numbering  *numbering.Service
	Requests   *requests.Service
	Topics     *topics.Service
	Users      *users.Service
	Statistics *statistics.Service
	Reports    *reports.Renderer
	Upgrader   *schema.Upgrader
}

// Options overrides the defaults used by New.
type Options struct {
	Clock    func() time.Time
	Registry *prometheus.Registry
}

func New(cfg *config.Config, logg *logger.Logger, client *db.Client, opts Options) (*App, error) {
	if cfg == nil || client == nil {
		return nil, fmt.Errorf("config and database client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	reg := opts.Registry
	loc := cfg.Reports.Location()

	store, err := media.NewStore(cfg.Media)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}

	num, err := numbering.NewService(client, numbering.Options{
		AdvisoryLocks: client.IsPostgres(),
		MaxRetries:    cfg.Numbering.MaxRetries,
		Metrics:       metrics.NewNumberingMetrics(reg),
		Logger:        logg,
	})
	if err != nil {
		return nil, fmt.Errorf("numbering service: %w", err)
	}

	requestRepo := requests.NewRepository(client.DB())
	requestSvc, err := requests.NewService(requests.ServiceParams{
		Repo:      requestRepo,
		Tx:        client,
		Numbering: num,
		Media:     store,
		Logger:    logg,
		Clock:     opts.Clock,
	})
	if err != nil {
		return nil, fmt.Errorf("requests service: %w", err)
	}

	topicSvc, err := topics.NewService(topics.NewRepository(client.DB()), client, logg)
	if err != nil {
		return nil, fmt.Errorf("topics service: %w", err)
	}

	userSvc, err := users.NewService(
		users.NewRepository(client.DB()),
		client,
		security.NewHasher(cfg.Password),
		store,
		cfg.Admin,
		logg,
	)
	if err != nil {
		return nil, fmt.Errorf("users service: %w", err)
	}

	statsSvc, err := statistics.NewService(statistics.Params{
		DB:       client.DB(),
		Requests: requestRepo,
		Location: loc,
		Clock:    opts.Clock,
		Logger:   logg,
	})
	if err != nil {
		return nil, fmt.Errorf("statistics service: %w", err)
	}

	upgrader, err := schema.NewUpgrader(client, logg,
		schema.WithMetrics(metrics.NewUpgradeMetrics(reg)),
		schema.WithClock(opts.Clock),
	)
	if err != nil {
		return nil, fmt.Errorf("schema upgrader: %w", err)
	}

	return &App{
		Config:     cfg,
		Logger:     logg,
		DB:         client,
		Registry:   reg,
		Media:      store,
		Numbering:  num,
		Requests:   requestSvc,
		Topics:     topicSvc,
		Users:      userSvc,
		Statistics: statsSvc,
		Reports: reports.NewRenderer(cfg.Reports, reports.Options{
			Clock:   opts.Clock,
			Metrics: metrics.NewReportMetrics(reg),
			Logger:  logg,
		}),
		Upgrader: upgrader,
	}, nil
}

// Prepare upgrades the schema and makes sure an administrator exists. A
// failed upgrade step is logged and reported but does not stop startup.
func (a *App) Prepare(ctx context.Context) (schema.Report, error) {
	report, err := a.Upgrader.Run(ctx)
	if err != nil {
		a.Logger.WarnErr(ctx, "app.upgrade_incomplete", err)
	}
	admin, created, aerr := a.Users.BootstrapAdmin(ctx)
	if aerr != nil {
		return report, fmt.Errorf("bootstrap admin: %w", aerr)
	}
	if created {
		a.Logger.Info(a.Logger.WithUserID(ctx, admin.ID), "admin.bootstrapped")
	}
	return report, err
}
