package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/green-store/internal/config"
	"github.com/flicky/green-store/internal/handler"
	"github.com/flicky/green-store/internal/repository"
	"github.com/flicky/green-store/internal/repository/memory"
	"github.com/flicky/green-store/internal/service"
	"github.com/flicky/green-store/internal/worker"
)

type stores struct {
	tx    repository.Transactor
	users repository.UserRepository
	prods repository.ProductRepository
	cart  repository.CartRepository
	order repository.OrderRepository
	prefs repository.PreferenceRepository
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		st stores
		db handler.Pinger
	)
	switch cfg.DB.Driver {
	case "memory":
		mem := memory.New()
		st = stores{mem, mem.Users(), mem.Products(), mem.Cart(), mem.Orders(), mem.Preferences()}
		log.Warn("using in-memory store; data is lost on restart")
	default:
		pool, err := connectPostgres(ctx, cfg.DB)
		if err != nil {
			log.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		log.Info("connected to PostgreSQL")

		if cfg.DB.ApplySchema {
			if err := repository.ApplySchema(ctx, pool); err != nil {
				log.Error("apply schema", "error", err)
				os.Exit(1)
			}
			log.Info("schema applied")
		}
		db = pool
		st = stores{
			repository.NewTransactor(pool),
			repository.NewUserRepository(pool),
			repository.NewProductRepository(pool),
			repository.NewCartRepository(pool),
			repository.NewOrderRepository(pool),
			repository.NewPreferenceRepository(pool),
		}
	}

	// Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("connected to Redis")
	}

	// RabbitMQ
	var (
		amqpConn  *amqp.Connection
		amqpCh    *amqp.Channel
		publisher service.OrderEventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		amqpConn, err = amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer amqpConn.Close()

		amqpCh, err = amqpConn.Channel()
		if err != nil {
			log.Error("open RabbitMQ channel", "error", err)
			os.Exit(1)
		}
		defer amqpCh.Close()

		if err := worker.SetupRabbitMQ(amqpCh); err != nil {
			log.Error("setup RabbitMQ", "error", err)
			os.Exit(1)
		}
		publisher = worker.NewPublisher(amqpCh)
		log.Info("connected to RabbitMQ")
	}

	// Services
	authSvc := service.NewAuthService(st.users, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Auth.AllowAdminSignup, redisClient)
	productSvc := service.NewProductService(st.prods, redisClient)
	cartSvc := service.NewCartService(st.cart, st.prods)
	orderSvc := service.NewOrderService(st.tx, st.order, st.cart, st.prods, st.users, publisher, redisClient, log)
	greenSvc := service.NewSustainabilityService(st.tx, st.users, st.order, st.cart, st.prefs, redisClient)

	// Worker
	var fulfillment *worker.FulfillmentWorker
	if amqpConn != nil {
		consumeCh, err := amqpConn.Channel()
		if err != nil {
			log.Error("open consumer channel", "error", err)
			os.Exit(1)
		}
		defer consumeCh.Close()
		if err := consumeCh.Qos(1, 0, false); err != nil {
			log.Error("set QoS", "error", err)
			os.Exit(1)
		}

		fulfillment = worker.NewFulfillmentWorker(consumeCh, orderSvc, redisClient, cfg.Orders.AutoComplete, log)
		if err := fulfillment.Start(ctx); err != nil {
			log.Error("start fulfillment worker", "error", err)
			os.Exit(1)
		}
	}

	health := handler.NewHealthHandler(db, redisClient, amqpConn)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.Handlers{
		Auth:           handler.NewAuthHandler(authSvc),
		Product:        handler.NewProductHandler(productSvc),
		Cart:           handler.NewCartHandler(cartSvc),
		Order:          handler.NewOrderHandler(orderSvc),
		Sustainability: handler.NewSustainabilityHandler(greenSvc),
		Health:         health,
	}, handler.RouterConfig{
		JWTSecret:    cfg.JWT.Secret,
		AllowOrigins: cfg.CORS.AllowOrigins,
		Log:          log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port, "driver", cfg.DB.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if fulfillment != nil {
		fulfillment.Stop()
		time.Sleep(500 * time.Millisecond)
	}
	cancel()
	log.Info("server stopped")
}

func connectPostgres(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
