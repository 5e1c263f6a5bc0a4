package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/nazorat-backend/api/controllers"
	"github.com/angelmondragon/nazorat-backend/api/middleware"
	"github.com/angelmondragon/nazorat-backend/pkg/config"
	"github.com/angelmondragon/nazorat-backend/pkg/db"
	"github.com/angelmondragon/nazorat-backend/pkg/logger"
)

// Deps carries everything the router hands to its controllers.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Gatherer   prometheus.Gatherer
	Requests   controllers.RequestService
	Media      controllers.MediaStore
	Topics     controllers.TopicService
	Users      controllers.UserService
	Statistics controllers.StatisticsService
	Reports    controllers.ReportRenderer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	loc := cfg.Reports.Location()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB))
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Get("/topics", controllers.ListTopics(d.Topics, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireActor(logg))
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.ListRequests(d.Requests, logg))
				r.Post("/", controllers.CreateRequest(d.Requests, d.Media, logg))
				r.Get("/{requestId}", controllers.GetRequest(d.Requests, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.ListRequests(d.Requests, logg))
			r.Route("/{requestId}", func(r chi.Router) {
				r.Get("/", controllers.AdminMarkRead(d.Requests, logg))
				r.Delete("/", controllers.AdminDeleteRequest(d.Requests, logg))
				r.Post("/read", controllers.AdminMarkRead(d.Requests, logg))
				r.Post("/status", controllers.AdminSetStatus(d.Requests, logg))
				r.Post("/reply", controllers.AdminSetReply(d.Requests, logg))
				r.Post("/reg-number", controllers.AdminCorrectRegNumber(d.Requests, logg))
				r.Post("/document-number", controllers.AdminDocumentNumber(d.Requests, logg))
				r.Get("/protocol", controllers.AdminRequestProtocol(d.Requests, d.Media, d.Reports, logg))
			})
		})

		r.Route("/topics", func(r chi.Router) {
			r.Get("/", controllers.ListTopics(d.Topics, logg))
			r.Post("/", controllers.AdminCreateTopic(d.Topics, logg))
			r.Put("/{topicId}", controllers.AdminUpdateTopic(d.Topics, logg))
			r.Delete("/{topicId}", controllers.AdminDeleteTopic(d.Topics, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(d.Users, logg))
			r.Post("/", controllers.AdminCreateUser(d.Users, logg))
			r.Delete("/{userId}", controllers.AdminDeleteUser(d.Users, logg))
		})

		r.Get("/statistics", controllers.AdminStatistics(d.Statistics, loc, logg))
		r.Get("/statistics/export", controllers.AdminExportStatistics(d.Statistics, d.Reports, loc, logg))
		r.Get("/workers/{workerId}/export", controllers.AdminExportWorker(d.Statistics, d.Reports, loc, logg))
	})

	return r
}
