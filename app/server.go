package app

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	contesthandlers "github.com/wingshot-club/wingshot-bot/app/modules/contest/infrastructure/handlers"
	judginghandlers "github.com/wingshot-club/wingshot-bot/app/modules/judging/infrastructure/handlers"
	submissionhandlers "github.com/wingshot-club/wingshot-bot/app/modules/submission/infrastructure/handlers"
	"github.com/wingshot-club/wingshot-bot/config"
	"github.com/wingshot-club/wingshot-bot/internal/adminauth"
)

// newRouter assembles the full HTTP surface: public contest reads, the
// rate-limited submission upload, the judge's write-back endpoint, the
// JWT-guarded admin subtree, static attachment serving, and metrics.
func newRouter(
	cfg *config.Config,
	submission *submissionhandlers.SubmissionHandlers,
	judging *judginghandlers.JudgingHandlers,
	contest *contesthandlers.ContestHandlers,
	content http.Handler,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	submitLimiter := rate.NewLimiter(rate.Limit(cfg.HTTP.SubmissionRate), cfg.HTTP.SubmissionBurst)

	r.Route("/api", func(r chi.Router) {
		r.Get("/members", contest.GetMembers)
		r.Get("/members/{memberID}", contest.GetMember)
		r.Get("/schedule", contest.GetSchedule)
		r.Get("/standings", contest.GetStandings)

		r.Route("/weeks/{week}", func(r chi.Router) {
			r.Get("/", contest.GetWeek)
			r.Get("/submissions", submission.GetWeekSubmissions)
			r.Get("/submissions/{memberID}", submission.GetSubmission)
			r.With(throttle(submitLimiter)).Post("/submissions/{memberID}", submission.CreateSubmission)
			r.Get("/judgments/{memberA}/{memberB}", judging.GetJudgment)
		})

		r.Post("/judgments", judging.RecordJudgment)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminauth.Middleware(cfg.Admin.JWTSecret))
			r.Put("/weeks/{week}/status", contest.SetWeekStatus)
			r.Get("/db", contest.ExportDataset)
			r.Put("/db", contest.ReplaceDataset)
			r.Post("/reset", contest.ResetDataset)
			r.Get("/backups", contest.ListBackups)
			r.Post("/backups/{name}/restore", contest.RestoreBackup)
			r.Get("/standings/export", contest.ExportStandings)
		})
	})

	// Stored attachments are exposed under the same prefix their refs use;
	// the content store validates each ref before serving it.
	r.Get("/content/*", content.ServeHTTP)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "ok")
	})

	if cfg.HTTP.MetricsEnabled && registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	return r
}

// throttle applies a process-wide rate limit to one route.
func throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many submissions, slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
