package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/listdist/api/controllers"
	"github.com/angelmondragon/listdist/api/middleware"
	"github.com/angelmondragon/listdist/internal/agents"
	"github.com/angelmondragon/listdist/internal/lists"
	"github.com/angelmondragon/listdist/pkg/auth/session"
	"github.com/angelmondragon/listdist/pkg/config"
	"github.com/angelmondragon/listdist/pkg/db"
	"github.com/angelmondragon/listdist/pkg/enums"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/metrics"
	"github.com/angelmondragon/listdist/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	listsService lists.Service,
	agentsService agents.Service,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	readiness := []controllers.ReadinessCheck{{Name: "db", Pinger: dbP}}
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
		idempotencyStore = redisClient
	} else {
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis"})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	maxUpload := cfg.Upload.MaxUploadBytes()

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Use(middleware.Idempotency(idempotencyStore, maxUpload, logg))

		r.Route("/lists", func(r chi.Router) {
			r.Post("/upload", controllers.UploadList(listsService, maxUpload, logg))
			r.Get("/", controllers.ListBatches(listsService, logg))
			r.Get("/agent/{agentId}", controllers.AgentItems(listsService, logg))
			r.Put("/assign/{itemId}", controllers.AssignItem(listsService, logg))
			r.Get("/{batch}", controllers.GetBatch(listsService, logg))
			r.Delete("/{batch}", controllers.DeleteBatch(listsService, logg))
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.ListAgents(agentsService, logg))
			r.Post("/", controllers.CreateAgent(agentsService, logg))
			r.Get("/{agentId}", controllers.GetAgent(agentsService, logg))
			r.Put("/{agentId}", controllers.UpdateAgent(agentsService, logg))
			r.Delete("/{agentId}", controllers.DeleteAgent(agentsService, logg))
		})
	})

	return r
}
