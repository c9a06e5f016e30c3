package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ruralcare/clinic/internal/config"
	"github.com/ruralcare/clinic/internal/domain/admin"
	"github.com/ruralcare/clinic/internal/domain/appointment"
	"github.com/ruralcare/clinic/internal/domain/doctor"
	"github.com/ruralcare/clinic/internal/domain/patient"
	"github.com/ruralcare/clinic/internal/domain/prescription"
	"github.com/ruralcare/clinic/internal/domain/reminder"
	"github.com/ruralcare/clinic/internal/platform/db"
	"github.com/ruralcare/clinic/internal/platform/mail"
	"github.com/ruralcare/clinic/internal/platform/middleware"
	"github.com/ruralcare/clinic/internal/platform/seed"
	"github.com/ruralcare/clinic/internal/platform/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Rural Health Care appointment API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the clinic API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo doctors, patients, appointments and prescriptions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed.Run(ctx, pool); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Println("Demo data seeded successfully.")
			return nil
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Session tokens
	tokens := token.NewIssuer(cfg.JWTSecret, 24*time.Hour)

	// Outbound mail
	var mailer mail.Sender
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.FromEmail,
		})
	} else {
		logger.Warn().Msg("SMTP not configured; reminder emails will be recorded, not sent")
		mailer = &mail.MockSender{}
	}

	// Repositories
	patientRepo := patient.NewPatientRepoPG(pool)
	doctorRepo := doctor.NewDoctorRepoPG(pool)
	apptRepo := appointment.NewAppointmentRepoPG(pool)
	presRepo := prescription.NewPrescriptionRepoPG(pool)

	// Services
	presSvc := prescription.NewService(presRepo)
	apptSvc := appointment.NewService(apptRepo, patientNameAdapter{repo: patientRepo}, presSvc,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		})
	patientSvc := patient.NewService(patientRepo, apptSvc, seed.History, cfg.BcryptCost)
	doctorSvc := doctor.NewService(doctorRepo, apptSvc, cfg.BcryptCost)
	reminderSvc := reminder.NewService(apptRepo, patientRepo, doctorRepo, mailer, logger)

	// Routes
	public := e.Group("/api")
	secured := e.Group("/api", tokens.Middleware())

	admin.NewHandler(cfg.AdminUsername, cfg.AdminPassword, tokens).RegisterRoutes(public)
	patient.NewHandler(patientSvc, tokens).RegisterRoutes(public, secured)
	doctor.NewHandler(doctorSvc, tokens).RegisterRoutes(public, secured)
	appointment.NewHandler(apptSvc).RegisterRoutes(secured)
	prescription.NewHandler(presSvc, cfg.UploadDir).RegisterRoutes(secured)
	reminder.NewHandler(reminderSvc).RegisterRoutes(secured)

	// Uploaded prescription scans
	e.Static("/uploads", cfg.UploadDir)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// patientNameAdapter exposes the patient repository as the name directory
// booking needs, without coupling the appointment package to patients.
type patientNameAdapter struct {
	repo patient.Repository
}

func (a patientNameAdapter) GetName(ctx context.Context, patientID string) (string, error) {
	p, err := a.repo.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}
