package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/project-planner/internal/core/port"
	"github.com/arklim/project-planner/internal/infra/config"
	"github.com/arklim/project-planner/internal/infra/database"
	kafkainfra "github.com/arklim/project-planner/internal/infra/kafka"
	"github.com/arklim/project-planner/internal/infra/logger"
	redisinfra "github.com/arklim/project-planner/internal/infra/redis"
	"github.com/arklim/project-planner/internal/infra/security"
	postgresrepo "github.com/arklim/project-planner/internal/repository/postgres"
	redisrepo "github.com/arklim/project-planner/internal/repository/redis"
	"github.com/arklim/project-planner/internal/transport/http/middleware"
	"github.com/arklim/project-planner/internal/transport/http/routes"
	"github.com/arklim/project-planner/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	// A weak signing key is refused here, before the server ever accepts traffic.
	tokenManager, err := security.NewTokenManager(security.TokenManagerOptions{
		Key:      cfg.JWT.Key,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      time.Duration(cfg.JWT.ExpiryMinutes) * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	passwordValidator := security.DefaultPasswordValidator(cfg.Password.MinLength, cfg.Password.MinStrength)

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var (
		redisClient   *redisinfra.Client
		loginThrottle *middleware.LoginThrottle
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}

		if cfg.RateLimit.LoginMaxAttempts > 0 {
			window := cfg.RateLimit.WindowDuration
			if window <= 0 {
				window = time.Minute
			}
			attemptStore := redisrepo.NewLoginAttemptRepository(redisClient.Client(), window*2)
			loginThrottle = middleware.NewLoginThrottle(attemptStore, cfg.RateLimit.LoginMaxAttempts, window, log)
		}
	} else {
		log.Info("redis disabled, login rate limiting off")
	}

	authService, err := usecase.NewAuthService(
		repos.Credentials,
		hasher,
		tokenManager,
		eventPublisher,
		usecase.LockoutPolicy{Threshold: cfg.Lockout.Threshold, Cooldown: cfg.Lockout.Cooldown},
		cfg.Store.Timeout,
		log,
	)
	if err != nil {
		closeClients(pool, redisClient)
		return nil, fmt.Errorf("init auth service: %w", err)
	}

	registrationService := usecase.NewRegistrationService(repos.Credentials, hasher, passwordValidator, eventPublisher, cfg.Store.Timeout, log)
	roleService := usecase.NewRoleService(repos.Roles)
	projectService := usecase.NewProjectService(repos.Projects)
	taskService := usecase.NewTaskService(repos.Tasks, repos.Projects)

	// The fixed role set must exist before any registration can assign a role.
	bootstrapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := roleService.EnsureRoles(bootstrapCtx); err != nil {
		closeClients(pool, redisClient)
		return nil, fmt.Errorf("bootstrap roles: %w", err)
	}

	metrics, err := middleware.NewHTTPMetrics(nil)
	if err != nil {
		closeClients(pool, redisClient)
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	deps := routes.Dependencies{
		Config:        cfg,
		Logger:        log,
		Metrics:       metrics,
		LoginThrottle: loginThrottle,
		Database:      pool,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Projects:     projectService,
			Tasks:        taskService,
		},
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine := routes.Register(deps)

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

func closeClients(pool *pgxpool.Pool, redisClient *redisinfra.Client) {
	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting planner API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
