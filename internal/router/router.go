package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/salesledger/api/internal/config"
	"github.com/salesledger/api/internal/database"
	"github.com/salesledger/api/internal/handler"
	mw "github.com/salesledger/api/internal/middleware"
	"github.com/salesledger/api/internal/policy"
	"github.com/salesledger/api/internal/service"
	"github.com/salesledger/api/internal/storage"
	"github.com/salesledger/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Capability checks come from the access policy table; handlers assume
// the caller has already passed them.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, store storage.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket feed (handles auth internally via query param)
	r.Get("/ws/submissions", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Attachments are served straight off disk; the S3 driver returns
	// absolute URLs instead so nothing hits this route.
	if cfg.StorageDriver == "disk" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	ledgerService := service.NewLedgerService(
		pool,
		queries,
		func(db database.DBTX) service.LedgerStore {
			return database.New(db)
		},
		store,
	)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		r.Get("/auth/verify", authHandler.Verify)

		entryHandler := handler.NewSalesEntryHandler(ledgerService, hub)
		r.Route("/sales-entries", func(r chi.Router) {
			r.With(mw.RequireCapability(policy.CapSubmit)).Post("/submit", entryHandler.Submit)
			r.With(mw.RequireCapability(policy.CapAmend)).Get("/entry/{id}", entryHandler.GetForEdit)
			r.With(mw.RequireCapability(policy.CapAmend)).Put("/update/{id}", entryHandler.Update)
			r.With(mw.RequireCapability(policy.CapViewOthers)).Get("/view/{id}", entryHandler.GetForView)
		})

		submissionHandler := handler.NewSubmissionHandler(queries)
		r.With(mw.RequireCapability(policy.CapViewReports)).
			Get("/submissions/tracker", submissionHandler.Tracker)

		dashboardHandler := handler.NewDashboardHandler(queries)
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", dashboardHandler.Stats)
			r.Get("/recent-entries", dashboardHandler.RecentEntries)
		})

		posHandler := handler.NewPosHandler(queries)
		r.Get("/pos/user-pos", posHandler.UserPos)

		salesTypeHandler := handler.NewSalesTypeHandler(queries)
		r.Get("/sales-types/active", salesTypeHandler.ListActive)

		reportHandler := handler.NewReportHandler(queries)
		r.With(mw.RequireCapability(policy.CapViewReports)).
			Get("/reports/sales-data", reportHandler.SalesData)

		// Reference data management
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireCapability(policy.CapManageReferenceData))

			cityHandler := handler.NewCityHandler(queries)
			r.Route("/cities", cityHandler.RegisterRoutes)

			locationHandler := handler.NewLocationHandler(queries)
			r.Route("/locations", locationHandler.RegisterRoutes)

			r.Route("/pos", posHandler.RegisterAdminRoutes)
			r.Route("/sales-types", salesTypeHandler.RegisterAdminRoutes)

			userHandler := handler.NewUserHandler(queries)
			r.Route("/users", userHandler.RegisterAdminRoutes)
		})
	})

	return r
}
