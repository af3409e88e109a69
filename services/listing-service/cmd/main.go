package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/config"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/handler"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/media"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/model"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/notifier"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/repository"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/storage"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/usecase"
	"github.com/vasapolrittideah/property-listing-api/services/listing-service/internal/validation"
	"github.com/vasapolrittideah/property-listing-api/shared/auth"
	"github.com/vasapolrittideah/property-listing-api/shared/cache"
	"github.com/vasapolrittideah/property-listing-api/shared/database"
	"github.com/vasapolrittideah/property-listing-api/shared/events"
	"github.com/vasapolrittideah/property-listing-api/shared/mailer"
	"github.com/vasapolrittideah/property-listing-api/shared/utilities"
)

func main() {
	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		bootLogger.Warn().Err(err).Msg("failed to load .env file")
	}

	cfg := config.NewListingServiceConfig(&bootLogger)
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()
	db := mongoClient.Database(cfg.Mongo.Database)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	assets, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open upload directory")
	}

	var publisher events.Publisher = events.Nop{}
	if redisClient != nil {
		publisher = events.NewRedisPublisher(redisClient, cfg.EventsMaxLen)
	}

	var dealerNotifier notifier.DealerNotifier = notifier.NopDealerNotifier{}
	if cfg.SMTP.Enabled() {
		m, err := mailer.NewMailer(cfg.SMTP)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure mailer")
		}
		dealerNotifier = notifier.NewMailDealerNotifier(m)
	}

	var codeSender notifier.CodeSender = notifier.NewLogCodeSender(logger, cfg.IsDevelopment())
	if cfg.SMS.Enabled() {
		codeSender = notifier.NewSMSLocalSender(cfg.SMS)
	}

	var tokens *auth.JWTAuthenticator
	if cfg.JWT.Secret != "" {
		tokens = auth.NewJWTAuthenticator(cfg.JWT)
	}

	validator := validation.New()
	defaults := media.NewRandomDefaults()

	newListingHandler := func(variant model.Variant, labels handler.ListingLabels) *handler.ListingHandler {
		var listingCache cache.Cache[model.Listing] = cache.Nop[model.Listing]{}
		if redisClient != nil {
			listingCache = cache.NewViewCache[model.Listing](
				redisClient,
				"listing:"+variant.Name,
				cfg.ListingCacheTTL,
				logger,
			)
		}

		listingUsecase := usecase.NewListingUsecase(
			variant,
			repository.NewListingMongoRepository(ctx, logger, db, variant),
			defaults,
			validator,
			usecase.ListingDeps{Cache: listingCache, Publisher: publisher, Notifier: dealerNotifier},
			logger,
		)

		return handler.NewListingHandler(listingUsecase, assets, labels, logger)
	}

	userDeps := usecase.UserDeps{CodeSender: codeSender, Publisher: publisher}
	routerDeps := handler.RouterDeps{
		CompanyListings: newListingHandler(model.CompanyListings, handler.ListingLabels{
			Singular: "Company property",
			Plural:   "Company properties",
		}),
		PrivateListings: newListingHandler(model.PrivateListings, handler.ListingLabels{
			Singular: "Private property",
			Plural:   "Private properties",
		}),
		Uploads: assets.FileSystem("/"),
		Logos:   assets.FileSystem("/logos"),
		Logger:  logger,
	}
	if tokens != nil {
		userDeps.Tokens = tokens
		routerDeps.Tokens = tokens
	}

	userUsecase := usecase.NewUserUsecase(repository.NewUserMongoRepository(ctx, logger, db), assets, validator, userDeps, logger)
	routerDeps.Users = handler.NewUserHandler(userUsecase, assets, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewRouter(routerDeps),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	var healthServer *utilities.HealthServer
	if cfg.GRPCHealthAddr != "" {
		healthServer = startHealthServer(cfg.GRPCHealthAddr, logger)
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server forced to shut down")
	}
	if healthServer != nil {
		healthServer.Stop()
	}

	logger.Info().Msg("server exited")
}

func newLogger(cfg *config.ListingServiceConfig) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	logger = logger.Level(level).With().Timestamp().Str("service", "listing-service").Logger()

	return &logger
}

func startHealthServer(addr string, logger *zerolog.Logger) *utilities.HealthServer {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", addr).Msg("failed to listen for grpc health")
	}

	healthServer := utilities.NewHealthServer()
	go func() {
		logger.Info().Str("addr", addr).Msg("grpc health server listening")
		if err := healthServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc health server stopped")
		}
	}()

	return healthServer
}
