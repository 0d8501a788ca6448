package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/rims-inventory-service/config"
	"github.com/fekuna/rims-inventory-service/internal/auth"
	"github.com/fekuna/rims-inventory-service/internal/broker"
	"github.com/fekuna/rims-inventory-service/internal/cache"
	"github.com/fekuna/rims-inventory-service/internal/database"
	"github.com/fekuna/rims-inventory-service/internal/i18n"
	"github.com/fekuna/rims-inventory-service/internal/logger"
	"github.com/fekuna/rims-inventory-service/internal/notification"
	"github.com/fekuna/rims-inventory-service/internal/numbering"
	"github.com/fekuna/rims-inventory-service/internal/scheduler"
	"github.com/fekuna/rims-inventory-service/internal/search"
	"github.com/fekuna/rims-inventory-service/internal/server"

	ledgerH "github.com/fekuna/rims-inventory-service/internal/ledger/handler"
	ledgerRepoPkg "github.com/fekuna/rims-inventory-service/internal/ledger/repository"
	ledgerUCPkg "github.com/fekuna/rims-inventory-service/internal/ledger/usecase"

	outH "github.com/fekuna/rims-inventory-service/internal/outgoing/handler"
	outRepoPkg "github.com/fekuna/rims-inventory-service/internal/outgoing/repository"
	outUCPkg "github.com/fekuna/rims-inventory-service/internal/outgoing/usecase"

	partH "github.com/fekuna/rims-inventory-service/internal/part/handler"
	partRepoPkg "github.com/fekuna/rims-inventory-service/internal/part/repository"
	partUCPkg "github.com/fekuna/rims-inventory-service/internal/part/usecase"

	recH "github.com/fekuna/rims-inventory-service/internal/receiving/handler"
	recRepoPkg "github.com/fekuna/rims-inventory-service/internal/receiving/repository"
	recUCPkg "github.com/fekuna/rims-inventory-service/internal/receiving/usecase"

	reqH "github.com/fekuna/rims-inventory-service/internal/request/handler"
	reqListenerPkg "github.com/fekuna/rims-inventory-service/internal/request/listener"
	reqRepoPkg "github.com/fekuna/rims-inventory-service/internal/request/repository"
	reqUCPkg "github.com/fekuna/rims-inventory-service/internal/request/usecase"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Printf("Unknown timezone %q, using UTC: %v", cfg.Scheduler.Timezone, err)
		loc = time.UTC
	}

	// 1.5 Initialize i18n
	i18n.Init()
	i18n.SetDefault(cfg.Locale.Default)

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.NewDatabase(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		appLogger.Fatal("Could not migrate database", zap.Error(err))
	}
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("db_name", cfg.Database.DBName))

	// 4. Initialize Repositories
	partRepo := partRepoPkg.NewSQLRepository(db)
	ledgerRepo := ledgerRepoPkg.NewSQLRepository(db)
	reqRepo := reqRepoPkg.NewSQLRepository(db)
	outRepo := outRepoPkg.NewSQLRepository(db)
	recRepo := recRepoPkg.NewSQLRepository(db)

	// 5. Initialize Redis. Batch numbering and search caching degrade without it.
	var redisClient *cache.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, numbering falls back to stored batches", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// 5.5 Initialize Kafka
	var notifier notification.Notifier = notification.Nop{}
	var kafkaConsumer *broker.KafkaConsumer
	if cfg.Kafka.Enabled {
		kafkaConsumer = broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.RequisitionTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()

		kafkaProducer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.NotificationTopic,
		})
		defer kafkaProducer.Close()
		notifier = notification.NewKafkaNotifier(kafkaProducer)
		appLogger.Info("Connected to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("requisitions", cfg.Kafka.RequisitionTopic),
			zap.String("notifications", cfg.Kafka.NotificationTopic))
	}

	// 5.8 Initialize Elasticsearch
	var esClient *search.Client
	if cfg.Elastic.Enabled {
		esClient, err = search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch (part search uses the database)", zap.Error(err))
			esClient = nil
		} else {
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 6. Initialize UseCases
	numbers := numbering.NewGenerator(redisClient, cfg.Numbering.CounterTTL, appLogger.Named("numbering"))
	tracker := reqUCPkg.NewTracker(reqRepo, appLogger)

	partUC := partUCPkg.NewPartUseCase(partRepo, redisClient, esClient, appLogger)
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerRepo, appLogger)
	reqUC := reqUCPkg.NewRequestUseCase(db, reqRepo, partRepo, notifier, cfg.Scheduler.DelayedAfter, appLogger)
	outUC := outUCPkg.NewOutgoingUseCase(db, outRepo, partRepo, ledgerRepo, reqRepo, tracker, numbers, loc, appLogger)
	recUC := recUCPkg.NewReceivingUseCase(db, recRepo, partRepo, ledgerRepo, numbers, loc, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6.5 Initialize Listeners
	if kafkaConsumer != nil {
		reqListener := reqListenerPkg.NewRequestListener(kafkaConsumer, reqUC, partUC, appLogger)
		go reqListener.Start(ctx)
	}

	// 6.8 Start Scheduler
	sched := scheduler.NewScheduler(scheduler.Config{
		DelayedSweepCron: cfg.Scheduler.DelayedSweepCron,
		Location:         loc,
	}, reqUC, notifier, redisClient, appLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		appLogger.Fatal("Could not start scheduler", zap.Error(err))
	}

	// 7. Initialize Handlers
	handlers := []server.Registrar{
		partH.NewPartHandler(partUC, appLogger),
		ledgerH.NewLedgerHandler(ledgerUC, appLogger),
		reqH.NewRequestHandler(reqUC, appLogger),
		outH.NewOutgoingHandler(outUC, appLogger),
		recH.NewReceivingHandler(recUC, appLogger),
	}

	// 8. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ForceServerCodec(server.Codec{}),
		grpc.ChainUnaryInterceptor(
			server.ContextInterceptor(auth.NewTokenParser(cfg.JWT.SecretKey)),
			server.ErrorInterceptor(appLogger.Named("grpc")),
		),
	)

	// Register Services
	server.RegisterAll(grpcServer, handlers...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// 9. Start HTTP Server
	if cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpPort := cfg.Server.HTTPPort
	if !strings.HasPrefix(httpPort, ":") {
		httpPort = ":" + httpPort
	}
	httpServer := &http.Server{
		Addr: httpPort,
		Handler: server.NewRouter(server.RouterConfig{
			AllowedOrigins: cfg.Server.CORSAllowedOrigins,
			Requests:       reqUC,
			Ledger:         ledgerUC,
			Parts:          partUC,
			Ping:           db.PingContext,
			Logger:         appLogger.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", httpPort))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
