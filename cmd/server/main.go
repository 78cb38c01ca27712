package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minetrack/internal/activity"
	activityhandler "minetrack/internal/activity/handler"
	"minetrack/internal/activity/publisher"
	"minetrack/internal/auth"
	"minetrack/internal/auth/revocation"
	"minetrack/internal/enrichment"
	"minetrack/internal/enrichment/weatherapi"
	"minetrack/internal/mine"
	minehandler "minetrack/internal/mine/handler"
	mineservice "minetrack/internal/mine/service"
	"minetrack/internal/platform/config"
	"minetrack/internal/platform/httpserver"
	"minetrack/internal/platform/logger"
	"minetrack/internal/platform/metrics"
	"minetrack/internal/platform/mongo"
	"minetrack/internal/platform/redis"
	httptransport "minetrack/internal/transport/http"
	"minetrack/internal/user"
	userhandler "minetrack/internal/user/handler"
	userservice "minetrack/internal/user/service"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("failed to connect to mongodb", "error", err.Error())
		os.Exit(1)
	}
	db := mongoClient.Database()

	// Redis is optional. Without it logout revocation falls back to an
	// in-process list, which is fine for a single instance.
	var revocationList revocation.List
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		revocationList = revocation.NewRedisList(redisClient.Client)
		log.Info("token revocation backed by redis")
	} else {
		revocationList = revocation.NewInMemoryList()
		log.Info("token revocation backed by in-process store")
	}

	kafkaPublisher, err := publisher.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		log.Error("failed to connect to kafka", "error", err.Error())
		os.Exit(1)
	}

	m := metrics.New()

	mineStore := mine.NewMongoStore(db)
	userStore, err := user.NewMongoStore(ctx, db)
	if err != nil {
		log.Error("failed to prepare user store", "error", err.Error())
		os.Exit(1)
	}
	activityStore := activity.NewMongoStore(db)

	recorderOpts := []activity.Option{}
	if kafkaPublisher != nil {
		recorderOpts = append(recorderOpts, activity.WithPublisher(kafkaPublisher))
	}
	recorder := activity.NewRecorder(activityStore, log, recorderOpts...)

	jwtService := auth.NewJWTService(cfg.JWTSigningKey, cfg.TokenTTL)

	mineSvc := mineservice.New(mineStore, log,
		mineservice.WithMetrics(m),
		mineservice.WithActivity(recorder),
	)
	userSvc := userservice.New(userStore, jwtService, log,
		userservice.WithMetrics(m),
		userservice.WithActivity(recorder),
	)

	var enricher *enrichment.Service
	if cfg.WeatherAPIKey != "" {
		mode := enrichment.ModeFallback
		if !cfg.EnrichFallback {
			mode = enrichment.ModeOmit
		}
		provider := weatherapi.New(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
		enricher = enrichment.New(provider, log,
			enrichment.WithMode(mode),
			enrichment.WithMetrics(m),
		)
	} else {
		log.Warn("no weather api key configured, responses will not be enriched")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Mines:      minehandler.New(mineSvc, enricher, log),
		Users:      userhandler.New(userSvc, revocationList, log),
		Activity:   activityhandler.New(activityStore, log),
		Validator:  jwtService,
		Revocation: revocationList,
		Health: func(r *http.Request) error {
			return mongoClient.Health(r.Context())
		},
		Logger: log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting minetrack", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
	}
	if kafkaPublisher != nil {
		kafkaPublisher.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("failed to close redis", "error", err.Error())
		}
	}
	if err := mongoClient.Close(shutdownCtx); err != nil {
		log.Error("failed to close mongodb", "error", err.Error())
	}
}
