package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/frontdesk/frontdesk/internal/config"
	"github.com/frontdesk/frontdesk/internal/domain/doctor"
	"github.com/frontdesk/frontdesk/internal/domain/patient"
	"github.com/frontdesk/frontdesk/internal/domain/queue"
	"github.com/frontdesk/frontdesk/internal/domain/scheduling"
	"github.com/frontdesk/frontdesk/internal/domain/user"
	"github.com/frontdesk/frontdesk/internal/platform/auth"
	"github.com/frontdesk/frontdesk/internal/platform/db"
	"github.com/frontdesk/frontdesk/internal/platform/middleware"
	"github.com/frontdesk/frontdesk/internal/platform/sandbox"
	"github.com/frontdesk/frontdesk/internal/platform/websocket"
)

const banner = "Clinic Front Desk API is running!"

func main() {
	rootCmd := &cobra.Command{
		Use:   "frontdesk-server",
		Short: "Clinic front desk API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// connect loads the configuration and opens the database pool for the
// maintenance commands, which only make sense against Postgres.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.UsesPostgres() {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	return db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
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

			ctx := context.Background()
			pool, err := connect(ctx)
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

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
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

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || email == "" || password == "" {
				return fmt.Errorf("--username, --email and --password are required")
			}

			ctx := context.Background()
			pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := user.NewService(user.NewPGRepo(pool), zerolog.Nop())
			u, err := svc.Create(ctx, user.CreateInput{
				Username: username,
				Email:    email,
				Password: password,
				Role:     auth.RoleAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %q with id %d.\n", u.Username, u.ID)
			return nil
		},
	}
	createAdmin.Flags().String("username", "", "Login name")
	createAdmin.Flags().String("email", "", "Email address")
	createAdmin.Flags().String("password", "", "Initial password")
	cmd.AddCommand(createAdmin)

	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// stores holds one repository per persisted resource.
type stores struct {
	users        user.Repository
	doctors      doctor.Repository
	patients     patient.Repository
	appointments scheduling.AppointmentRepository
}

func memoryStores() stores {
	return stores{
		users:        user.NewMemoryRepo(),
		doctors:      doctor.NewMemoryRepo(),
		patients:     patient.NewMemoryRepo(),
		appointments: scheduling.NewMemoryRepo(),
	}
}

func pgStores(pool *pgxpool.Pool) stores {
	return stores{
		users:        user.NewPGRepo(pool),
		doctors:      doctor.NewPGRepo(pool),
		patients:     patient.NewPGRepo(pool),
		appointments: scheduling.NewPGRepo(pool),
	}
}

// app is the wired set of services behind the HTTP server.
type app struct {
	cfg         *config.Config
	logger      zerolog.Logger
	users       *user.Service
	doctors     *doctor.Service
	patients    *patient.Service
	appts       *scheduling.Service
	queue       *queue.Manager
	hub         *websocket.Hub
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
	seeder      *sandbox.Seeder
	pool        *pgxpool.Pool
}

func newApp(cfg *config.Config, logger zerolog.Logger, st stores, revocations auth.RevocationStore) *app {
	doctors := doctor.NewService(st.doctors)
	a := &app{
		cfg:         cfg,
		logger:      logger,
		users:       user.NewService(st.users, logger),
		doctors:     doctors,
		patients:    patient.NewService(st.patients),
		appts:       scheduling.NewService(st.appointments, doctors),
		hub:         websocket.NewHub(logger),
		issuer:      auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL),
		revocations: revocations,
	}

	opts := []queue.Option{
		queue.WithMinutesPerPatient(cfg.QueueMinutesPerPatient),
		queue.WithLogger(logger),
	}
	if cfg.QueueStrictTransitions {
		opts = append(opts, queue.WithStrictTransitions())
	}
	a.queue = queue.NewManager(opts...)
	a.seeder = sandbox.NewSeeder(a.users, a.doctors, a.patients, a.appts, a.queue, logger)
	return a
}

func (a *app) router() *echo.Echo {
	cfg := a.cfg
	logger := a.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, banner)
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "ok",
			"message":   banner,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	if a.pool != nil {
		pool := a.pool
		e.GET("/health/db", db.HealthHandler(pool, func() db.PoolStats { return db.GetPoolStats(pool) }))
	}

	websocket.NewHandler(a.hub, cfg.CORSOrigins).RegisterRoutes(e,
		auth.JWTMiddleware(auth.JWTConfig{
			Issuer:      a.issuer,
			Revocations: a.revocations,
			Logger:      logger,
			QueryParam:  "token",
		}),
		auth.RequireRole(auth.RoleAdmin, auth.RoleStaff),
	)

	api := e.Group("/api")
	api.Use(auth.JWTMiddleware(auth.JWTConfig{
		Issuer:      a.issuer,
		Revocations: a.revocations,
		Skipper:     auth.AuthSkipper,
		Logger:      logger,
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.Audit(logger, nil))

	user.NewAuthHandler(a.users, a.issuer, a.revocations).RegisterRoutes(api)
	user.NewHandler(a.users).RegisterRoutes(api)
	patient.NewHandler(a.patients).RegisterRoutes(api)
	doctor.NewHandler(a.doctors).RegisterRoutes(api)
	scheduling.NewHandler(a.appts).RegisterRoutes(api)
	queue.NewHandler(a.queue, a.patients, a.hub).RegisterRoutes(api)
	sandbox.NewHandler(a.seeder).RegisterRoutes(api)

	return e
}

func newRevocationStore(ctx context.Context, cfg *config.Config) (auth.RevocationStore, func(), error) {
	if !cfg.UsesRedis() {
		store := auth.NewMemoryRevocationStore(time.Minute)
		return store, store.Close, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return auth.NewRedisRevocationStore(rdb, "frontdesk:revoked:"), func() { rdb.Close() }, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()

	st := memoryStores()
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		st = pgStores(pool)
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory storage")
	}

	revocations, closeRevocations, err := newRevocationStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up token revocation")
	}
	defer closeRevocations()

	a := newApp(cfg, logger, st, revocations)
	a.pool = pool

	if cfg.SeedDemoData {
		if _, err := a.seeder.Seed(ctx); err != nil {
			logger.Error().Err(err).Msg("seeding demo data failed")
		}
	}

	e := a.router()

	// Graceful shutdown
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

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
