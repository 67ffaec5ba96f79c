package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func newRouter(logger *zap.Logger, svc Service, dispatcher Dispatcher, status StatusSource) http.Handler {
	h := &handler{
		svc:        svc,
		dispatcher: dispatcher,
		status:     status,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(zapRequestLogger(logger))

	r.Get("/health", h.handleHealth)
	r.Get("/status", h.handleStatus)

	r.Post("/webhook", h.handleWebhook)

	r.Get("/settings", h.handleSettingsGet)
	r.Put("/settings", h.handleSettingsUpdate)

	r.Route("/snoozes", func(r chi.Router) {
		r.Get("/", h.handleSnoozeList)
		r.Post("/", h.handleSnoozeCreate)
		r.Delete("/{id}", h.handleSnoozeDelete)
	})

	return r
}

func zapRequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info(
				"http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
