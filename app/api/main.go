package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/redis/go-redis/v9"

	"github.com/orielmalik/people-directory/app/api/errs"
	"github.com/orielmalik/people-directory/app/api/handlers"
	"github.com/orielmalik/people-directory/business/broker/rabbitmq"
	"github.com/orielmalik/people-directory/business/database/postgres"
	"github.com/orielmalik/people-directory/business/domain/audit"
	auditRedis "github.com/orielmalik/people-directory/business/domain/audit/store/redis"
	"github.com/orielmalik/people-directory/foundation/keystore"
	"github.com/orielmalik/people-directory/foundation/logger"
)

// will be changed from build tags
var build = "0.0.1"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "err: %s", err)
		os.Exit(1)
	}
}

func run() error {
	//==========================================================================
	//setup configurations
	configs := struct {
		API struct {
			Host            string        `conf:"default:0.0.0.0:8000"`
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			Environment     string        `conf:"default:development"`
		}

		DB struct {
			User            string        `conf:"default:postgres"`
			Password        string        `conf:"default:password,mask"`
			Host            string        `conf:"default:localhost:5432"`
			Name            string        `conf:"default:postgres"`
			MaxIdleConns    int           `conf:"default:10"`
			MaxOpenConns    int           `conf:"default:10"`
			MaxIdleConnTime time.Duration `conf:"default:5m"`
			MaxConnLifeTime time.Duration `conf:"default:10m"`
			DisableTLS      bool          `conf:"default:true"`
		}

		Auth struct {
			KeysFolder string        `conf:"default:zarf/keys/"`
			ActiveKid  string        `conf:"default:b52d7b4f-9a3a-4bd5-9a40-0d1e13d88f81"`
			Issuer     string        `conf:"default:people directory"`
			TokenAge   time.Duration `conf:"default:24h"`
		}

		Redis struct {
			Host     string        `conf:"default:localhost:6379"`
			Password string        `conf:"default:"`
			DBIdx    int           `conf:"default:0"`
			Timeout  time.Duration `conf:"default:5s"`
			CacheTTL time.Duration `conf:"default:5m"`
		}

		Rabbit struct {
			Host     string `conf:"default:localhost:5672"`
			User     string `conf:"default:guest"`
			Password string `conf:"default:guest,mask"`
		}

		Audit struct {
			MaxConcurrent int `conf:"default:10"`
		}
	}{}

	const prefix = "PEOPLE"
	if help, err := conf.Parse(prefix, &configs); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	//==========================================================================
	//setup logger
	isProd := configs.API.Environment == "production"

	attrs := []slog.Attr{
		{Key: "build", Value: slog.StringValue(build)},
		{Key: "app", Value: slog.StringValue("people-directory")},
	}

	logger := logger.New(slog.LevelInfo, isProd, attrs...)

	//==========================================================================
	//validator
	appValidator, err := errs.NewAppValidator()
	if err != nil {
		return fmt.Errorf("creating app validator: %w", err)
	}
	logger.Info("application validator", "status", "successfully initialized")

	//==========================================================================
	//database setup
	logger.Info("database setup", "status", "connecting", "host", configs.DB.Host)
	client, err := postgres.NewClient(postgres.Config{
		User:        configs.DB.User,
		Password:    configs.DB.Password,
		Host:        configs.DB.Host,
		Name:        configs.DB.Name,
		DisableTLS:  configs.DB.DisableTLS,
		MaxIdleConn: configs.DB.MaxIdleConns,
		MaxOpenConn: configs.DB.MaxOpenConns,
		MaxIdleTime: configs.DB.MaxIdleConnTime,
		MaxLifeTime: configs.DB.MaxConnLifeTime,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := client.StatusCheck(ctx); err != nil {
		return fmt.Errorf("status check: %w", err)
	}

	logger.Info("database", "status", "running migrations", "host", configs.DB.Host)
	if err := client.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("database", "status", "ready to use")

	//==========================================================================
	//keystore
	logger.Info("keystore", "status", "initializing keystore support")

	ks, err := keystore.LoadFromFS(os.DirFS(configs.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loadFromFS: %w", err)
	}

	//==========================================================================
	//redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     configs.Redis.Host,
		Password: configs.Redis.Password,
		DB:       configs.Redis.DBIdx,
	})

	logger.Info("redis", "status", "pinging redis engine")
	ctx, cancel = context.WithTimeout(context.Background(), configs.Redis.Timeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("redis", "status", "successfully connected")

	//==========================================================================
	//rabbitmq
	logger.Info("rabbitmq", "status", "connecting", "host", configs.Rabbit.Host)
	ctx, cancel = context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	broker, err := rabbitmq.NewClient(ctx, rabbitmq.Configs{
		Host:     configs.Rabbit.Host,
		User:     configs.Rabbit.User,
		Password: configs.Rabbit.Password,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq client: %w", err)
	}
	defer broker.Close()
	logger.Info("rabbitmq", "status", "successfully connected")

	//==========================================================================
	//audit consumer
	auditor, err := audit.New(audit.Config{
		RabbitClient:  broker,
		Trail:         auditRedis.NewRepository(redisClient),
		Logger:        logger,
		MaxConcurrent: configs.Audit.MaxConcurrent,
	})
	if err != nil {
		return fmt.Errorf("audit consumer: %w", err)
	}

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if err := auditor.ConsumeEvents(consumerCtx); err != nil {
		return fmt.Errorf("consume events: %w", err)
	}
	logger.Info("audit", "status", "consuming events")

	//==========================================================================
	//server
	serverErrors := make(chan error, 1)
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGTERM, syscall.SIGINT)

	app, err := handlers.RegisterRoutes(handlers.Config{
		Shutdown:       shutdownCh,
		Logger:         logger,
		Validator:      appValidator,
		PostgresClient: client,
		RedisClient:    redisClient,
		Broker:         broker,
		Keystore:       ks,
		ActiveKID:      configs.Auth.ActiveKid,
		TokenAge:       configs.Auth.TokenAge,
		Issuer:         configs.Auth.Issuer,
		CacheTTL:       configs.Redis.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv := http.Server{
		Addr:        configs.API.Host,
		Handler:     http.TimeoutHandler(app, configs.API.WriteTimeout, "timed out"),
		ReadTimeout: configs.API.ReadTimeout,
		ErrorLog:    slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("server", "status", "started", "host", configs.API.Host, "environment", configs.API.Environment)
		serverErrors <- srv.ListenAndServe()
	}()

	//block
	select {
	case serverErr := <-serverErrors:
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-shutdownCh:
		logger.Info("shutdown", "status", "started", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), configs.API.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		if err := auditor.Shutdown(ctx); err != nil {
			return fmt.Errorf("audit shutdown failed: %w", err)
		}

		logger.Info("shutdown", "status", "completed")
	}
	return nil
}
