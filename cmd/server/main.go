package main

import (
	"context"
	"database/sql"
	"errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/pricedesk/internal/advisory"
	"github.com/Simplici0/pricedesk/internal/config"
	"github.com/Simplici0/pricedesk/internal/db"
	"github.com/Simplici0/pricedesk/internal/logger"
	"github.com/Simplici0/pricedesk/internal/migrations"
	"github.com/Simplici0/pricedesk/internal/report"
	"github.com/Simplici0/pricedesk/internal/scenario"
	"github.com/Simplici0/pricedesk/internal/seed"
	"github.com/Simplici0/pricedesk/internal/settings"
)

type server struct {
	db           *sql.DB
	log          *zap.Logger
	settings     *settings.Store
	scenarios    *scenario.Store
	trees        *advisory.Catalog
	templatesDir string
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath, cfg.DBOpenTimeout, logg)
	if err != nil {
		logg.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logg.Fatal("failed to run database migrations", zap.Error(err))
	}
	if version, err := migrations.Version(database); err == nil {
		logg.Info("database ready", zap.String("path", cfg.DBPath), zap.Int64("schema_version", version))
	}

	stats, err := seed.Run(ctx, database, seed.Config{Samples: cfg.SeedSamples || cfg.IsDev()})
	if err != nil {
		logg.Fatal("failed to seed database", zap.Error(err))
	}
	logg.Info("seed complete", zap.Int("inserts", stats.Inserts))

	trees, err := advisory.LoadCatalog()
	if err != nil {
		logg.Fatal("failed to load decision trees", zap.Error(err))
	}

	srv := &server{
		db:           database,
		log:          logg,
		settings:     settings.NewStore(database),
		scenarios:    scenario.NewStore(database),
		trees:        trees,
		templatesDir: cfg.TemplatesDir,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.AppEnv))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("server stopped", zap.Error(err))
		return
	}
	logg.Info("server stopped")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)

	r.Get("/pricing", s.handlePricingForm)
	r.Post("/pricing", s.handlePricingSubmit)
	r.Get("/deal", s.handleDealForm)
	r.Post("/deal", s.handleDealSubmit)
	r.Get("/deal/tree/{name}", s.handleTree)
	r.Post("/deal/tree/{name}", s.handleTree)
	r.Get("/playbook", s.handlePlaybook)

	r.Get("/scenarios", s.handleScenariosList)
	r.Post("/scenarios", s.handleScenarioSave)
	r.Get("/scenarios/{id}", s.handleScenarioDetail)
	r.Post("/scenarios/{id}/delete", s.handleScenarioDelete)
	r.Get("/scenarios/{id}/report.html", s.handleScenarioReportHTML)
	r.Get("/scenarios/{id}/report.xlsx", s.handleScenarioReportXLSX)

	r.Get("/settings", s.handleSettingsForm)
	r.Post("/settings", s.handleSettingsSubmit)

	r.Route("/api", func(r chi.Router) {
		r.Post("/pricing", s.handleAPIPricing)
		r.Post("/deal", s.handleAPIDeal)
		r.Post("/tree/{name}", s.handleAPITree)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{Trees: s.treeLinks()})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(report.Funcs()).ParseFiles(
		filepath.Join(s.templatesDir, "layout.html"),
		filepath.Join(s.templatesDir, page),
	)
	if err != nil {
		s.log.Error("failed to parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		s.log.Error("failed to render template", zap.String("page", page), zap.Error(err))
	}
}
