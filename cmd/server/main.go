package main

import (
	"context"
	"errors"
	"fmt"
	"go-success-stories/internal/auth"
	"go-success-stories/internal/cache"
	"go-success-stories/internal/cdn"
	"go-success-stories/internal/config"
	"go-success-stories/internal/data"
	"go-success-stories/internal/handler"
	"go-success-stories/internal/logger"
	"go-success-stories/internal/mail"
	"go-success-stories/internal/markup"
	"go-success-stories/internal/middleware"
	"go-success-stories/internal/notify"
	"go-success-stories/internal/service"
	"go-success-stories/internal/view"
	"go-success-stories/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure STORIES_SESSION_SECRET_KEY environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authorization Setup ---
	log.Info("Initializing authorization...")
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, cfg.Auth.Editors, log)

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}

	// --- Cache Initialization ---
	log.Info("Initializing SQLite fragment cache...")
	fragmentCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer fragmentCache.Close()

	// --- Dependency Injection and Handler Initialization ---
	categoryRepository := data.NewCategoryRepository(db)
	storyRepository := data.NewSQLStoryRepository(db)
	companyRepository := data.NewCompanyRepository(db)
	boxService := service.NewBoxService(data.NewBoxRepository(db), fragmentCache, log)

	purger := cdn.New(cfg.Server.SiteURL, cfg.CDN.APIKey, cfg.CDN.Timeout, log)
	if !purger.Enabled() {
		log.Warn("CDN API key not set; edge cache purging is disabled.")
	}
	notifier := notify.New(viewService, boxService, purger, mail.NewSMTPSender(cfg.Mail),
		cfg.Mail.DefaultFrom, cfg.Mail.NotifyTo, log)

	storyService := service.NewStoryService(storyRepository, categoryRepository, companyRepository,
		markup.New(cfg.Markup.DefaultType), notifier, log)
	categoryService := service.NewCategoryService(categoryRepository)

	storyHandler := handler.NewStoryHandler(storyService, categoryService, viewService, log)
	boxHandler := handler.NewBoxHandler(boxService)
	seoHandler := handler.NewSeoHandler(storyService, categoryService, cfg.Server.SiteURL)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, log)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	router := handler.NewRouter(storyHandler, boxHandler, seoHandler, authzMiddleware, errorMiddleware, sessionManager)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
