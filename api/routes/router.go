package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ddsc-labs/community-backend/api/controllers"
	"github.com/ddsc-labs/community-backend/api/middleware"
	"github.com/ddsc-labs/community-backend/internal/engagement"
	"github.com/ddsc-labs/community-backend/internal/waitlist"
	"github.com/ddsc-labs/community-backend/pkg/config"
	"github.com/ddsc-labs/community-backend/pkg/logger"
	"github.com/ddsc-labs/community-backend/pkg/redis"
)

// RouterParams collects everything the HTTP surface depends on.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Redis      *redis.Client
	DBPinger   controllers.Pinger
	PubSub     controllers.Pinger
	Waitlist   waitlist.Service
	Engagement engagement.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, controllers.ReadinessDeps{
			DB:     params.DBPinger,
			Redis:  params.Redis,
			PubSub: params.PubSub,
		}, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		var idempotencyStore redis.IdempotencyStore
		if params.Redis != nil {
			idempotencyStore = params.Redis
		}
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/waitlist", func(r chi.Router) {
			r.Post("/join", controllers.WaitlistJoin(params.Waitlist, logg))
			r.Get("/status", controllers.WaitlistStatus(params.Waitlist, logg))
			r.Get("/{eventName}/next", controllers.WaitlistNext(params.Waitlist, logg))
			r.Post("/{entryId}/promote", controllers.WaitlistPromote(params.Waitlist, logg))
		})

		r.Route("/engagement", func(r chi.Router) {
			r.Post("/activities", controllers.EngagementLogActivity(params.Engagement, logg))
			r.Get("/activities", controllers.EngagementActivities(params.Engagement, logg))
			r.Get("/stats", controllers.EngagementUserStats(params.Engagement, logg))
			r.Get("/leaderboard", controllers.EngagementLeaderboard(params.Engagement, logg))
			r.Post("/goals", controllers.EngagementCreateGoal(params.Engagement, logg))
			r.Post("/goals/{goalId}/progress", controllers.EngagementGoalProgress(params.Engagement, logg))
			r.Get("/report", controllers.EngagementReport(params.Engagement, logg))
		})
	})

	return r
}
