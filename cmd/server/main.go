package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/imonsheikh/women-three-piece-server/internal/analytics"
	cartcache "github.com/imonsheikh/women-three-piece-server/internal/cart/cache"
	cartrepo "github.com/imonsheikh/women-three-piece-server/internal/cart/repository"
	cartservice "github.com/imonsheikh/women-three-piece-server/internal/cart/service"
	catalogrepo "github.com/imonsheikh/women-three-piece-server/internal/catalog/repository"
	"github.com/imonsheikh/women-three-piece-server/internal/events"
	"github.com/imonsheikh/women-three-piece-server/internal/gate"
	httpapi "github.com/imonsheikh/women-three-piece-server/internal/http"
	"github.com/imonsheikh/women-three-piece-server/internal/inventory"
	orderrepo "github.com/imonsheikh/women-three-piece-server/internal/order/repository"
	"github.com/imonsheikh/women-three-piece-server/internal/settlement"
	"github.com/imonsheikh/women-three-piece-server/internal/storage"
	"github.com/imonsheikh/women-three-piece-server/pkg/logger"
)

type Config struct {
	Env      string
	LogLevel string

	HTTPPort string
	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers string // comma separated; empty disables event publishing
	KafkaTopic   string

	JWTSecret string
	JWTTTL    time.Duration

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		Env:             getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnv("PORT", "5000"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB_NAME", "WomenDB"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "order-events"),
		JWTSecret:       getEnv("ACCESS_TOKEN_SECRET", ""),
		JWTTTL:          5 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logger.New(logger.Options{
		Service: "women-three-piece-server",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	if cfg.JWTSecret == "" {
		log.Error("ACCESS_TOKEN_SECRET is required")
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	log.Info("connected to MongoDB", "uri", cfg.MongoURI, "db", cfg.MongoDB)

	if err := cartrepo.EnsureIndexes(ctx, db); err != nil {
		log.Error("failed to create cart indexes", "error", err)
		os.Exit(1)
	}
	if err := orderrepo.EnsureIndexes(ctx, db); err != nil {
		log.Error("failed to create order indexes", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis", "addr", cfg.RedisAddr)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaTopic, strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info("order events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	cartRepository := cartrepo.NewMongoRepository(db)
	cartService := cartservice.NewCartService(cartRepository, cartcache.NewRedisCache(redisClient), log)
	productRepository := catalogrepo.NewMongoRepository(db)
	orderRepository := orderrepo.NewMongoRepository(db)
	ledger := inventory.NewMongoLedger(db)
	settlementService := settlement.NewService(cartService, orderRepository, ledger, publisher, log)
	analyticsService := analytics.NewService(analytics.NewMongoRepository(db), ledger)

	tokens := gate.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	accessGate := gate.New(tokens, gate.NewMongoUserRepository(db), log)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Gate:           accessGate,
		Auth:           httpapi.NewAuthHandler(tokens, log),
		Cart:           httpapi.NewCartHandler(cartService, productRepository, log),
		Order:          httpapi.NewOrderHandler(settlementService, log),
		Analytics:      httpapi.NewAnalyticsHandler(analyticsService, log),
		Product:        httpapi.NewProductHandler(productRepository, log),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		log.Error("mongo disconnect failed", "error", err)
	}
	log.Info("server stopped")
}
