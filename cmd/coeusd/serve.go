package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	apihttp "github.com/mind-engage/coeus/internal/api/http"
	authmw "github.com/mind-engage/coeus/internal/auth/middleware"
	"github.com/mind-engage/coeus/internal/config"
	"github.com/mind-engage/coeus/internal/exam"
	"github.com/mind-engage/coeus/internal/grading"
	"github.com/mind-engage/coeus/internal/history"
	"github.com/mind-engage/coeus/internal/queue"
	"github.com/mind-engage/coeus/internal/recall"
	"github.com/mind-engage/coeus/internal/sequencer"
	"github.com/mind-engage/coeus/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command) error {
	cfg := loadConfig(cmd)
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(cfg, db),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, db.Driver())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg config.Config, db *store.DB) http.Handler {
	authSvc := authmw.NewAuthService(cfg.AuthSecret)

	api := &apihttp.Server{
		Queue:   queue.NewResolver(db, time.Now),
		Content: sequencer.New(db),
		Exams:   exam.NewBuilder(db, exam.WithSizes(cfg.ExamSize, cfg.UnitExamSize)),
		Grader:  grading.New(db, grading.WithRetry(retryConfig(cfg))),
		Recall:  recall.NewService(db, time.Now),
		History: history.NewService(db),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", authmw.LoginHandler(authSvc, authmw.LoginOptions{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
		LocalAuth:     cfg.EnableLocalAuth,
	}))

	if cfg.EnableGuestAuth {
		r.Post("/auth/guest", authmw.GuestLoginHandler(authSvc, cfg.Mode == config.ModeOnline))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			log.Printf("readyz: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(authmw.JWTMiddleware(authSvc))
		r.Mount("/", apihttp.Routes(api))
	})
	return r
}

func retryConfig(cfg config.Config) grading.RetryConfig {
	rc := grading.DefaultRetryConfig()
	if cfg.GradeRetries > 0 {
		rc.MaxAttempts = cfg.GradeRetries
	}
	return rc
}
