package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"allswell/internal/api"
	"allswell/internal/auth"
	"allswell/internal/config"
	"allswell/internal/docstore"
	"allswell/internal/planner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	store, err := docstore.Open(cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("docstore: %v", err)
	}
	defer store.Close()

	broker := api.NewBroker()
	defer broker.Close()

	hub := planner.NewHub(store, logger, func(uid string, ev planner.Event) {
		broker.Publish(uid, ev)
	})
	defer hub.CloseAll()

	authMgr := auth.NewManager(store, logger)

	taskSvc := planner.NewTaskService(store, logger)
	categorySvc := planner.NewCategoryService(store, logger)
	goalSvc := planner.NewGoalService(store)
	profileSvc := planner.NewProfileService(store)

	handler := api.NewHandler(authMgr, hub, taskSvc, categorySvc, goalSvc, profileSvc, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(handler, authMgr, broker))

	reconciler := planner.NewReconciler(store, logger)
	scheduler := planner.NewScheduler(time.Local)
	if cfg.ReconcileInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReconcileInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if err := reconciler.ReconcileAll(jobCtx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("reconcile run failed", slog.String("error", err.Error()))
			}
		}); err != nil {
			log.Fatalf("schedule reconcile: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.Address(),
		Handler: r,
	}

	logger.Info("allswell started", slog.String("address", cfg.Address()))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
	logger.Info("shutdown complete")
}
