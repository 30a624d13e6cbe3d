// Package server is the composition root: it opens the database, assembles
// the service and reminder machinery from configuration, wires the routes,
// and owns startup and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/plantcare/internal/config"
	"github.com/sakif/plantcare/internal/handler"
	"github.com/sakif/plantcare/internal/middleware"
	"github.com/sakif/plantcare/internal/notify"
	"github.com/sakif/plantcare/internal/reminder"
	sqliteRepo "github.com/sakif/plantcare/internal/repository/sqlite"
	"github.com/sakif/plantcare/internal/service"
)

// Server owns every long-lived resource: the database connection, the
// reminder engine, and (in timer mode) the per-entry timer scheduler.
// Start tears them down in reverse order on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger

	db     *sqliteRepo.DB
	engine *reminder.Engine
	timers *reminder.TimerScheduler // nil in sweep mode

	stopSweep chan struct{} // nil unless the internal sweep ticker runs
}

// New assembles the full dependency graph from configuration.
//
// The reminder strategy is picked here: sweep mode uses a no-op scheduler
// and relies on periodic ticks (internal ticker and/or the cron endpoint),
// timer mode arms one timer per plant and recovers them from the store at
// startup.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
		engine: reminder.NewEngine(db, db, notifier, logger, cfg.SendTimeout),
	}

	var scheduler service.Scheduler = service.NopScheduler{}
	if cfg.ReminderMode == config.ModeTimer {
		s.timers = reminder.NewTimerScheduler(s.engine, logger)
		scheduler = s.timers
	}

	gardenService := service.NewGardenService(db, db, notifier, scheduler, logger)
	s.setupRoutes(gardenService)

	return s, nil
}

// buildNotifier returns the SMTP mailer when configured and a discarding
// stub otherwise, so the service runs fully in development without a relay.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, notifications will be discarded")
		return notify.Discard{}, nil
	}

	mailer, err := notify.NewMailer(notify.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("creating mailer: %w", err)
	}
	return mailer, nil
}

func (s *Server) setupRoutes(gardenService *service.GardenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	gardenHandler := handler.NewGardenHandler(gardenService, s.logger)
	profileHandler := handler.NewProfileHandler(gardenService, s.logger)
	cronHandler := handler.NewCronHandler(s.engine, s.logger)

	s.router.Get("/api/healthz", s.handleHealthz)

	s.router.Route("/api/garden", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/", gardenHandler.HandleList)
		r.Post("/", gardenHandler.HandleAdd)
		r.Post("/{id}/water", gardenHandler.HandleWater)
		r.Delete("/{id}", gardenHandler.HandleDelete)
	})

	s.router.Route("/api/profile", func(r chi.Router) {
		r.Use(middleware.RequireUser)
		r.Get("/stats", profileHandler.HandleStats)
	})

	s.router.Route("/api/cron", func(r chi.Router) {
		r.Use(middleware.RequireCronSecret(s.cfg.CronSecret))
		r.Get("/watering-reminders", cronHandler.HandleWateringReminders)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down in order:
// stop accepting requests, stop the sweep ticker, drain the timer
// scheduler, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	if err := s.startReminders(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
			slog.String("reminderMode", s.cfg.ReminderMode),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		s.stopReminders()
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.stopReminders()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.stopReminders()
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// startReminders brings up whichever delivery strategy is configured.
func (s *Server) startReminders() error {
	if s.timers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.timers.Recover(ctx); err != nil {
			return fmt.Errorf("recovering reminder timers: %w", err)
		}
		return nil
	}

	if s.cfg.SweepInterval <= 0 {
		s.logger.Info("internal sweep ticker disabled, relying on cron endpoint")
		return nil
	}

	s.stopSweep = make(chan struct{})
	go s.runSweepLoop()
	return nil
}

// runSweepLoop fires RunSweepTick on a fixed interval. Errors are logged
// and the next tick retries; a broken tick must never stop the loop.
func (s *Server) runSweepLoop() {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SweepInterval)
			if _, err := s.engine.RunSweepTick(ctx); err != nil {
				s.logger.Error("sweep tick failed", slog.String("error", err.Error()))
			}
			cancel()
		case <-s.stopSweep:
			return
		}
	}
}

func (s *Server) stopReminders() {
	if s.stopSweep != nil {
		close(s.stopSweep)
	}
	if s.timers != nil {
		s.timers.Close()
	}
}
