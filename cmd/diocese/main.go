// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/diocese-go/internal/access"
	"github.com/olegiv/diocese-go/internal/backend"
	"github.com/olegiv/diocese-go/internal/cache"
	"github.com/olegiv/diocese-go/internal/config"
	"github.com/olegiv/diocese-go/internal/content"
	"github.com/olegiv/diocese-go/internal/demo"
	"github.com/olegiv/diocese-go/internal/editor"
	"github.com/olegiv/diocese-go/internal/handler"
	"github.com/olegiv/diocese-go/internal/identity"
	"github.com/olegiv/diocese-go/internal/imaging"
	"github.com/olegiv/diocese-go/internal/logging"
	"github.com/olegiv/diocese-go/internal/metrics"
	"github.com/olegiv/diocese-go/internal/middleware"
	"github.com/olegiv/diocese-go/internal/model"
	"github.com/olegiv/diocese-go/internal/render"
	"github.com/olegiv/diocese-go/internal/scheduler"
	"github.com/olegiv/diocese-go/internal/session"
	"github.com/olegiv/diocese-go/internal/slider"
	"github.com/olegiv/diocese-go/internal/store"
	"github.com/olegiv/diocese-go/internal/version"
	"github.com/olegiv/diocese-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// uploadsPrefix is the URL path uploaded images are served under.
const uploadsPrefix = "/uploads"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "diocese - Diocese website and content admin\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_DB_PATH           SQLite database path (default: ./data/diocese.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_UPLOADS_DIR       Uploaded images directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_SITE_URL          Public site address used in links and the sitemap\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_REDIS_URL         Redis URL for the shared cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_ADMIN_EMAIL       Bootstrap administrator email (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_ADMIN_PASSWORD    Bootstrap administrator password (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DIOCESE_DEMO_MODE         Reset and reseed sample content daily (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(buildInfo().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := buildInfo()

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(textHandler)
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	if cfg.DemoMode {
		resetter := demo.Resetter{
			DBPath:     cfg.DBPath,
			UploadsDir: cfg.UploadsDir,
			Interval:   cfg.DemoResetInterval,
		}
		if _, err := resetter.ResetIfDue(); err != nil {
			return fmt.Errorf("resetting demo data: %w", err)
		}
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	m := metrics.New()
	client := backend.NewSQLClient(db, m)

	// From here on WARN and ERROR records are also kept in the events table.
	logger = slog.New(logging.NewEventLogHandler(textHandler, client))
	slog.SetDefault(logger)

	ctx := context.Background()
	if err := store.Seed(ctx, db, store.SeedOptions{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Demo:          cfg.DoSeed || cfg.DemoMode,
	}); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}
	slog.Info("database ready")

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	sharedCache, backendName := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	})
	defer func() { _ = sharedCache.Close() }()
	slog.Info("cache initialized", "backend", backendName)

	auth := backend.NewSessionAuth(db, sessionManager)
	ident := identity.New(auth, client, sharedCache, logger,
		identity.WithMetrics(m),
		identity.WithRoleTTL(cacheTTL),
	)
	ident.Start()
	defer ident.Close()

	svc := content.New(client, sharedCache, cacheTTL, logger)

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.TemplatesFS(),
		SessionManager: sessionManager,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Home slider: loaded now, refreshed on schedule and after edits.
	carousel := slider.New[model.Article](nil, slider.WithInterval(cfg.SliderInterval))
	if items, err := svc.SliderArticles(ctx); err != nil {
		slog.Warn("loading slider articles", "error", err)
	} else {
		carousel.SetSlides(items)
	}
	carousel.Start(ctx)
	defer carousel.Stop()

	sched := scheduler.New(logger)
	sliderJob := scheduler.SliderRefresh(svc, carousel)
	if cfg.SliderRefresh != "" {
		sliderJob.Schedule = cfg.SliderRefresh
	}
	for _, job := range []scheduler.Job{
		sliderJob,
		scheduler.ExpirePopups(client, time.Now, logger),
	} {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("registering job: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	images := imaging.NewProcessor(cfg.UploadsDir, uploadsPrefix)
	ed := editor.New(client, svc, images, logger,
		editor.OnSliderChange(func(context.Context) {
			if err := sched.TriggerNow(sliderJob.Name); err != nil {
				slog.Warn("refreshing slider", "error", err)
			}
		}),
	)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()
	popupLimiter := middleware.NewRateLimiter(1, 10)

	base := handler.NewBase(renderer, svc, logger, cfg.SiteURL)
	publicHandler := handler.NewPublicHandler(base,
		handler.WithCarousel(carousel),
		handler.WithPopupDelay(cfg.PopupDelay),
		handler.WithSecureCookies(!cfg.IsDevelopment()),
	)
	authHandler := handler.NewAuthHandler(base, auth, ident, loginProtection)
	adminHandler := handler.NewAdminHandler(base, sched)
	articlesHandler := handler.NewArticlesHandler(base, ed)
	categoriesHandler := handler.NewCategoriesHandler(base, ed)
	settingsHandler := handler.NewSettingsHandler(base, ed)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir, versionInfo.Version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(m.Middleware)
	secCfg := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	secCfg.ExcludePrefixes = []string{uploadsPrefix + "/"}
	r.Use(middleware.SecurityHeaders(secCfg))
	r.Use(middleware.Compress(1024))
	r.Use(middleware.StripTrailingSlash)

	// Probes and metrics skip sessions.
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", m.Handler())

	r.Handle("/static/*", http.StripPrefix("/static/", staticCache(http.FileServer(http.FS(web.StaticFS())))))
	r.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix+"/", noDirListing(http.FileServer(http.Dir(cfg.UploadsDir)))))

	r.Get("/sitemap.xml", base.Sitemap)
	r.Get("/robots.txt", base.Robots(cfg.IsDevelopment()))

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(ident.Middleware)
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", publicHandler.Home)
		r.Get("/sobre", publicHandler.About)
		r.Get("/contato", publicHandler.Contact)
		r.Get("/noticias", publicHandler.NewsList)
		r.Get("/noticias/{slug}", publicHandler.NewsDetail)
		r.Get("/bispo", publicHandler.Bishop)
		r.Get("/mensagens-bispo", publicHandler.BishopMessages)
		r.Get("/mensagens-bispo/{slug}", publicHandler.BishopMessage)
		r.Get("/clero", publicHandler.Clergy)
		r.Get("/padres", handler.ClergyTab(handler.TabPriests))
		r.Get("/padres/{slug}", publicHandler.Priest)
		r.Get("/diaconos", handler.ClergyTab(handler.TabDeacons))
		r.Get("/diaconos/{slug}", publicHandler.Deacon)
		r.Get("/seminaristas", handler.ClergyTab(handler.TabSeminarians))
		r.Get("/seminaristas/{slug}", publicHandler.Seminarian)
		r.Get("/paroquias", publicHandler.Parishes)
		r.Get("/paroquias/{slug}", publicHandler.Parish)
		r.With(popupLimiter.Middleware).Post("/popup/{id}/dismiss", publicHandler.DismissPopup)

		r.Route(access.HomePath, func(r chi.Router) {
			r.Get("/login", authHandler.LoginForm)
			r.With(loginProtection.Middleware).Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/unauthorized", publicHandler.Forbidden)

			r.Group(func(r chi.Router) {
				r.Use(access.Require(model.RoleEditor))

				r.Get("/", adminHandler.Dashboard)

				r.Get("/articles", articlesHandler.List)
				r.Get("/articles/new", articlesHandler.NewForm)
				r.Post("/articles/new", articlesHandler.Create)
				r.Get("/articles/edit/{id}", articlesHandler.EditForm)
				r.Post("/articles/edit/{id}", articlesHandler.Update)
				r.Get("/articles/{id}/delete", articlesHandler.ConfirmDelete)
				r.Post("/articles/{id}/delete", articlesHandler.Delete)
				r.Post("/articles/{id}/publish", articlesHandler.TogglePublished)
				r.Post("/articles/{id}/slider", articlesHandler.ToggleSlider)

				r.Get("/categories", categoriesHandler.List)
				r.Get("/categories/new", categoriesHandler.NewForm)
				r.Post("/categories/new", categoriesHandler.Create)
				r.Get("/categories/edit/{id}", categoriesHandler.EditForm)
				r.Post("/categories/edit/{id}", categoriesHandler.Update)
				r.Get("/categories/{id}/delete", categoriesHandler.ConfirmDelete)
				r.Post("/categories/{id}/delete", categoriesHandler.Delete)

				r.Group(func(r chi.Router) {
					r.Use(access.Require(model.RoleAdmin))
					r.Get("/settings", settingsHandler.Edit)
					r.Post("/settings", settingsHandler.Save)
				})
			})
		})

		r.NotFound(base.NotFound)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // image uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "build", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}.Resolve()
}

// staticCache lets browsers keep embedded assets for a day.
func staticCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		next.ServeHTTP(w, r)
	})
}

// noDirListing answers directory requests with 404.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
