package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/ordersystem/archive"
	"github.com/yeremiapane/ordersystem/config"
	"github.com/yeremiapane/ordersystem/database"
	"github.com/yeremiapane/ordersystem/router"
	"github.com/yeremiapane/ordersystem/services"
	"github.com/yeremiapane/ordersystem/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.Database)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}

	if cfg.SeedDemoData {
		if err := database.Seed(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	sink, err := newArchiveSink(cfg.Archive)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up order archive: %v", err)
	}

	svc := services.New(db, services.Options{
		Schedule:        cfg.Schedule,
		Sink:            sink,
		ArchiveTimeout:  cfg.Archive.Timeout,
		StrictDiscounts: cfg.DiscountStrict,
	})

	r := router.SetupRouter(db, svc, router.Options{
		AllowedOrigin:  cfg.AllowedOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	// Let in-flight archive writes finish before the process exits.
	svc.Archiver.Wait()
	utils.InfoLogger.Println("Server exited")
}

func newArchiveSink(cfg config.ArchiveConfig) (archive.Sink, error) {
	switch cfg.Backend {
	case config.ArchiveRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		utils.InfoLogger.Printf("Archiving orders to redis at %s", cfg.RedisAddr)
		return archive.NewRedisSink(client, "order:", cfg.TTL), nil
	case config.ArchiveDynamoDB:
		sink, err := archive.NewDynamoSink(context.Background(), archive.DynamoConfig{
			Region:          cfg.AWSRegion,
			Table:           cfg.DynamoTable,
			Endpoint:        cfg.DynamoEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		utils.InfoLogger.Printf("Archiving orders to DynamoDB table %s", cfg.DynamoTable)
		return sink, nil
	default:
		return archive.NoopSink{}, nil
	}
}
