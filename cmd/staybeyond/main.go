package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"staybeyond/internal/app/commands"
	"staybeyond/internal/app/flow"
	bookingapp "staybeyond/internal/app/handlers/booking"
	catalogapp "staybeyond/internal/app/handlers/catalog"
	hostapp "staybeyond/internal/app/handlers/host"
	transportapp "staybeyond/internal/app/handlers/transport"
	"staybeyond/internal/app/middleware"
	appoutbox "staybeyond/internal/app/outbox"
	"staybeyond/internal/app/queries"
	authsvc "staybeyond/internal/app/services/auth"
	domainauth "staybeyond/internal/domain/auth"
	domainbooking "staybeyond/internal/domain/booking"
	domaincatalog "staybeyond/internal/domain/catalog"
	"staybeyond/internal/infra/broker/kafka"
	"staybeyond/internal/infra/config"
	mongodb "staybeyond/internal/infra/db/mongo"
	ginserver "staybeyond/internal/infra/http/gin"
	"staybeyond/internal/infra/obs"
	infraoutbox "staybeyond/internal/infra/outbox"
	"staybeyond/internal/infra/payment/razorpay"
	"staybeyond/internal/infra/security"
	"staybeyond/internal/infra/storage/fixtures"
	"staybeyond/internal/infra/storage/memory"
	redistore "staybeyond/internal/infra/storage/redis"
	"staybeyond/internal/infra/storage/s3"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	loaded, err := fixtures.LoadStays(ctx, cfg.FixturesDir, cfg.Currency, app.stays)
	if err != nil {
		logger.Warn("stay fixtures load failed", "error", err, "dir", cfg.FixturesDir)
	} else {
		logger.Info("stay fixtures loaded", "count", loaded)
	}
	loaded, err = fixtures.LoadTransport(ctx, cfg.FixturesDir, cfg.Currency, app.transport)
	if err != nil {
		logger.Warn("transport fixtures load failed", "error", err, "dir", cfg.FixturesDir)
	} else {
		logger.Info("transport fixtures loaded", "count", loaded)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers  ginserver.Handlers
	stays     domaincatalog.StayRepository
	transport domaincatalog.TransportRepository
	worker    *infraoutbox.Worker
	ready     func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	staysRepo := memory.NewStayRepository()
	transportRepo := memory.NewTransportRepository()
	usersRepo := memory.NewUserRepository()

	var (
		bookings      domainbooking.Repository
		transportBkgs domainbooking.TransportRepository
		idemStore     middleware.IdempotencyStore
		outboxAdd     appoutbox.Outbox
		outboxSrc     infraoutbox.Store
		ready         = func() error { return nil }
	)
	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, err
		}
		if err := client.Ping(ctx); err != nil {
			return application{}, err
		}
		bookings = mongodb.NewBookingRepository(client.DB)
		transportBkgs = mongodb.NewTransportBookingRepository(client.DB)
		idemStore = mongodb.NewIdempotencyStore(client.DB, idempotencyTTL)
		store := infraoutbox.NewMongoStore(client.DB)
		outboxAdd, outboxSrc = store, store
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		logger.Info("mongo storage enabled", "database", cfg.MongoDB)
	} else {
		bookings = memory.NewBookingRepository()
		transportBkgs = memory.NewTransportBookingRepository()
		idemStore = memory.NewIdempotencyStore()
		store := memory.NewOutboxStore()
		outboxAdd, outboxSrc = store, store
		logger.Info("in-memory storage enabled")
	}

	var sessions domainauth.SessionStore
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return application{}, err
		}
		sessions = redistore.NewSessionStore(client)
		logger.Info("redis sessions enabled", "addr", cfg.RedisAddr)
	} else {
		sessions = memory.NewSessionStore()
	}

	var uploader s3.Uploader = s3.NoopUploader{}
	if cfg.S3Endpoint != "" {
		client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
		if err != nil {
			return application{}, err
		}
		uploader = client
		logger.Info("s3 uploads enabled", "bucket", cfg.S3Bucket)
	}

	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.SessionTokens{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		Stays:    staysRepo,
		Bookings: bookings,
		Outbox:   outboxAdd,
		Encoder:  encoder,
		Logger:   logger,
	})
	commands.RegisterHandler(commandBus, transportapp.BookTransportCommand{}.Key(), &transportapp.BookTransportHandler{
		Transport: transportRepo,
		Bookings:  transportBkgs,
		Outbox:    outboxAdd,
		Encoder:   encoder,
		Logger:    logger,
	})
	commands.RegisterHandler(commandBus, hostapp.AttachStayPhotoCommand{}.Key(), &hostapp.AttachStayPhotoHandler{
		Stays:    staysRepo,
		Uploader: uploader,
		Logger:   logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.ListMyBookingsQuery{}.Key(), &bookingapp.ListMyBookingsHandler{
		Bookings: bookings,
		Logger:   logger,
	})
	queries.RegisterHandler(queryBus, transportapp.ListMyTransportQuery{}.Key(), &transportapp.ListMyTransportHandler{
		Bookings: transportBkgs,
		Logger:   logger,
	})
	queries.RegisterHandler(queryBus, catalogapp.SearchStaysQuery{}.Key(), &catalogapp.SearchStaysHandler{
		Stays:  staysRepo,
		Logger: logger,
	})
	queries.RegisterHandler(queryBus, catalogapp.GetStayQuery{}.Key(), &catalogapp.GetStayHandler{
		Stays: staysRepo,
	})
	queries.RegisterHandler(queryBus, catalogapp.ListTransportQuery{}.Key(), &catalogapp.ListTransportHandler{
		Transport: transportRepo,
	})
	queries.RegisterHandler(queryBus, catalogapp.GetTransportQuery{}.Key(), &catalogapp.GetTransportHandler{
		Transport: transportRepo,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidator{}),
		middleware.Idempotency(idemStore, nil),
		middleware.OutboxFlush(outboxAdd),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	gatewayOpts := []razorpay.Option{razorpay.WithLogger(logger)}
	if cfg.RazorpayScriptURL != "" {
		gatewayOpts = append(gatewayOpts, razorpay.WithScriptURL(cfg.RazorpayScriptURL))
	}
	gateway := razorpay.New(cfg.RazorpayKeyID, gatewayOpts...)

	// The checkout flows drive the payment reconciliation: a gateway
	// booking suspends in its flow until the provider callback resolves the
	// open checkout, and only then does the booking persist.
	flows := flow.NewRegistry(flow.RegistryConfig{
		Backend:  authService.SessionBackend,
		Stays:    staysRepo,
		Gateway:  gateway,
		Bookings: bookings,
		Outbox:   outboxAdd,
		Encoder:  encoder,
		Logger:   logger,
	})
	authService.OnChange = flows.HandleAuthChange

	var worker *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, err
		}
		producer.WithLogger(logger)
		worker = &infraoutbox.Worker{
			Store:       outboxSrc,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka not configured, outbox events stay queued")
	}

	return application{
		handlers: ginserver.Handlers{
			Auth:    ginserver.AuthHandler{Service: authService, Logger: logger},
			Booking: ginserver.BookingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Flows: flows, Logger: logger},
			Transport: ginserver.TransportHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Catalog:        ginserver.CatalogHandler{Queries: queryBusWithMiddleware, Logger: logger},
			Host:           ginserver.HostHandler{Commands: commandBusWithMiddleware, Logger: logger},
			Payment:        ginserver.PaymentHandler{Gateway: gateway, Logger: logger},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		stays:     staysRepo,
		transport: transportRepo,
		worker:    worker,
		ready:     ready,
	}, nil
}
