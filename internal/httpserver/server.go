package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/fdg312/meal-hub/internal/auth"
	"github.com/fdg312/meal-hub/internal/blob"
	"github.com/fdg312/meal-hub/internal/config"
	"github.com/fdg312/meal-hub/internal/mealplans"
	"github.com/fdg312/meal-hub/internal/mealslots"
	"github.com/fdg312/meal-hub/internal/metrics"
	"github.com/fdg312/meal-hub/internal/recipes"
	"github.com/fdg312/meal-hub/internal/storage"
	"github.com/fdg312/meal-hub/internal/storage/memory"
	"github.com/fdg312/meal-hub/internal/storage/postgres"
)

// Server представляет HTTP сервер
type Server struct {
	config     *config.Config
	mux        *http.ServeMux
	storage    storage.Store
	photos     blob.Store
	blobMode   string
	registry   *prometheus.Registry
	metrics    *metrics.Collector
	httpServer *http.Server

	authMiddleware *auth.Middleware
}

// New создаёт новый HTTP сервер
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{
		config:   cfg,
		mux:      http.NewServeMux(),
		registry: prometheus.NewRegistry(),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = metrics.NewCollector(s.registry)

	if err := s.initStorage(ctx); err != nil {
		return nil, err
	}

	photos, mode, err := blob.NewBlobStore(ctx, cfg.Blob)
	if err != nil {
		s.storage.Close()
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	s.photos, s.blobMode = photos, mode

	s.routes()
	return s, nil
}

// initStorage выбирает storage: Postgres при заданном DATABASE_URL, иначе
// in-memory. В local env при ошибке подключения откатывается на in-memory.
func (s *Server) initStorage(ctx context.Context) error {
	if s.config.DatabaseURL == "" {
		log.Info().Msg("using in-memory storage")
		s.storage = memory.New()
		return nil
	}

	log.Info().Msg("connecting to PostgreSQL")
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL, s.config.DBConnectMaxAttempts)
	if err != nil {
		if s.config.Env != "local" {
			return fmt.Errorf("connect postgres: %w", err)
		}
		log.Warn().Err(err).Msg("PostgreSQL unavailable, fallback to in-memory storage")
		s.storage = memory.New()
		return nil
	}
	s.storage = pgStorage
	return nil
}

// routes регистрирует маршруты
func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", metrics.Handler(s.registry))

	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Meal slots
	slotService := mealslots.NewService(s.storage.MealSlots())
	slotHandler := mealslots.NewHandler(slotService)
	s.mux.HandleFunc("GET /v1/meal-slots", slotHandler.HandleList)
	s.mux.HandleFunc("POST /v1/meal-slots", slotHandler.HandleCreate)
	s.mux.HandleFunc("PUT /v1/meal-slots/order", slotHandler.HandleReorder)
	s.mux.HandleFunc("PATCH /v1/meal-slots/{id}", slotHandler.HandleRename)
	s.mux.HandleFunc("DELETE /v1/meal-slots/{id}", slotHandler.HandleDelete)

	// Plans and templates. Recipes need the plan service for the in-use
	// guard and plans need recipes for names, so the namer is set last.
	planService := mealplans.NewService(s.storage.MealPlans(), slotSource{slots: slotService})
	templateEngine := mealplans.NewTemplateEngine(s.storage.MealPlans()).WithRecorder(s.metrics)

	recipeService := recipes.NewService(s.storage.Recipes(), planService).
		WithPhotoStore(s.photos, s.config.UploadMaxMB, s.config.UploadAllowedMime, s.config.Blob.S3.PresignTTLSeconds)
	planService.WithRecipeNamer(recipeService)

	planHandler := mealplans.NewHandler(planService, templateEngine)
	s.mux.HandleFunc("GET /v1/plans", planHandler.HandleList)
	s.mux.HandleFunc("POST /v1/plans", planHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/plans/{id}", planHandler.HandleGet)
	s.mux.HandleFunc("PATCH /v1/plans/{id}", planHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/plans/{id}", planHandler.HandleDelete)
	s.mux.HandleFunc("PUT /v1/plans/{id}/assignments", planHandler.HandleAssign)
	s.mux.HandleFunc("GET /v1/plans/{id}/weeks/{week}", planHandler.HandleWeek)
	s.mux.HandleFunc("GET /v1/plans/{id}/validation", planHandler.HandleValidation)
	s.mux.HandleFunc("GET /v1/plans/{id}/pdf", planHandler.HandlePDF)
	s.mux.HandleFunc("POST /v1/plans/{id}/template", planHandler.HandleSaveTemplate)

	s.mux.HandleFunc("GET /v1/templates", planHandler.HandleListTemplates)
	s.mux.HandleFunc("GET /v1/templates/name-available", planHandler.HandleNameAvailable)
	s.mux.HandleFunc("POST /v1/templates/import", planHandler.HandleImport)
	s.mux.HandleFunc("POST /v1/templates/{id}/apply", planHandler.HandleApply)
	s.mux.HandleFunc("GET /v1/templates/{id}/stats", planHandler.HandleStats)
	s.mux.HandleFunc("GET /v1/templates/{id}/export", planHandler.HandleExport)

	// Recipes
	recipeHandler := recipes.NewHandler(recipeService)
	s.mux.HandleFunc("GET /v1/recipes", recipeHandler.HandleList)
	s.mux.HandleFunc("POST /v1/recipes", recipeHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/recipes/{id}", recipeHandler.HandleGet)
	s.mux.HandleFunc("PATCH /v1/recipes/{id}", recipeHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/recipes/{id}", recipeHandler.HandleDelete)
	s.mux.HandleFunc("PUT /v1/recipes/{id}/photo", recipeHandler.HandlePutPhoto)
	s.mux.HandleFunc("GET /v1/recipes/{id}/photo", recipeHandler.HandleGetPhoto)
}

// Handler builds the middleware chain (outermost first):
// CORS → Rate Limit → Auth → Request log → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RequestLogMiddleware(s.metrics, handler)
	handler = s.authMiddleware.Authenticate(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "ok",
		"storage": "memory",
		"blob":    s.blobMode,
	}
	if pg, ok := s.storage.(*postgres.PostgresStorage); ok {
		status["storage"] = "postgres"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pg.Pool().Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("healthz: database ping failed")
			status["status"] = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// Start запускает HTTP сервер и блокируется до Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Close закрывает storage и освобождает ресурсы
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
