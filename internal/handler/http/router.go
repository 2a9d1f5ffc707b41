package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/workforce-sync-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, sourceHandler SourceHandler, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       cfg.LogLevel,
	})).With(
		slog.String("app", "workforce-sync"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/sources", func(r chi.Router) {
					r.Get("/", sourceHandler.List)
					r.Post("/", sourceHandler.Create)

					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", sourceHandler.Get)
						r.Put("/", sourceHandler.Update)
						r.Delete("/", sourceHandler.Delete)
						r.Post("/test", sourceHandler.Test)
						r.Post("/sync", sourceHandler.Sync)
						r.Post("/upload", sourceHandler.Upload)
					})
				})

				r.Route("/import-logs", func(r chi.Router) {
					r.Get("/", sourceHandler.ListImportLogs)
					r.Delete("/", sourceHandler.ClearImportLogs)
				})

				r.Get("/attendance/today", attendanceHandler.Today)
				r.Get("/attendance/employees/{id}/reconcile", attendanceHandler.Reconcile)
			})

			r.With(middleware.RequireManager).Get("/attendance/manager", attendanceHandler.ManagerDashboard)
		})
	})
	return r
}
