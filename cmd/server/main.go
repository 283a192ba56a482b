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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	cartpkg "github.com/kslmndz/bakery_shop/internal/cart"
	"github.com/kslmndz/bakery_shop/internal/config"
	"github.com/kslmndz/bakery_shop/internal/es"
	"github.com/kslmndz/bakery_shop/internal/events"
	"github.com/kslmndz/bakery_shop/internal/handlers"
	carthandlers "github.com/kslmndz/bakery_shop/internal/handlers/cart"
	"github.com/kslmndz/bakery_shop/internal/logging"
	"github.com/kslmndz/bakery_shop/internal/service/search"
	"github.com/kslmndz/bakery_shop/internal/service/token"
	httpserver "github.com/kslmndz/bakery_shop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		brokers := []string{configuration.KAFKA_ADDRESS}
		topics := []string{
			events.TopicUserEvents,
			events.TopicCartEvents,
			events.TopicProductEvents,
			events.TopicOrderEvents,
		}
		producer, err = events.NewProducer(brokers, topics)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		logger.Warn("KAFKA_ADDRESS not set, event publishing disabled")
	}

	var searchSvc *search.Service
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchSvc = search.NewService(esClient, "products")
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	var cartStore cartpkg.Store
	if configuration.REDIS_ADDR != "" {
		redisStore, err := cartpkg.NewRedisStore(configuration.REDIS_ADDR)
		if err != nil {
			log.Fatal(err)
		}
		defer redisStore.Close()
		cartStore = redisStore
	} else {
		logger.Warn("REDIS_ADDR not set, using in-memory cart store")
		cartStore = cartpkg.NewMemoryStore()
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	// Carry the logger in the request context so deeper layers log
	// through slog without reaching for echo.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), logger)))
			return next(c)
		}
	})

	tokenService := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	deps := httpserver.Deps{
		DB:          db,
		AuthHandler: &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: producer},
		ProductHandler: &handlers.ProductHandler{
			DB: db, Producer: producer, Search: searchSvc,
			DefaultBakerID: configuration.DEFAULT_BAKER_ID,
		},
		CategoryHandler:  &handlers.CategoryHandler{DB: db, Producer: producer},
		UserHandler:      &handlers.UserHandler{DB: db, Producer: producer},
		OrderHandler:     &handlers.OrderHandler{DB: db, Producer: producer},
		DeliveryHandler:  &handlers.DeliveryHandler{DB: db, Producer: producer},
		DashboardHandler: &handlers.DashboardHandler{DB: db},
		SearchHandler:    &handlers.SearchHandler{Service: searchSvc},
		CartHandler:      &carthandlers.CartHandler{DB: db, Store: cartStore, Producer: producer},
		TokenService:     tokenService,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "err", err)
		}
	} else {
		logger.Error("db() error", "err", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "err", err)
		}
	}

	logger.Info("shutdown complete")
}
