package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"socialgraph/backend/internal/api"
	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/identity"
	"socialgraph/backend/internal/media"
	"socialgraph/backend/internal/metrics"
	"socialgraph/backend/internal/social"
	"socialgraph/backend/pkg/config"
	"socialgraph/backend/pkg/logger"
)

var (
	_ social.Repository    = (*graph.Repository)(nil)
	_ social.Relationships = (*graph.Relationships)(nil)
	_ social.Tokens        = (*identity.JWTResolver)(nil)
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting HTTP API server...")

	ctx := context.Background()
	m := metrics.New(prometheus.DefaultRegisterer)

	// Connect to Neo4j and make sure the constraints exist
	store, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword,
		graph.WithDatabase(cfg.Neo4jDatabase),
		graph.WithTxTimeout(cfg.Neo4jTxTimeout),
		graph.WithObserver(m),
	)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := graph.EnsureSchema(ctx, store); err != nil {
		log.Fatal("Failed to apply graph schema", zap.Error(err))
	}

	repo := graph.NewRepository(store)
	edges := graph.NewRelationships(store)

	// Token revocation is only available with Redis
	var revocations identity.Revocations
	if cfg.RedisURL != "" {
		client, err := identity.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close()
		revocations = identity.NewRedisRevocations(client)
	} else {
		log.Warn("REDIS_URL not set, logout will not revoke tokens")
	}
	resolver := identity.NewJWTResolver(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, repo, revocations)

	// Media backend
	opts := api.Options{
		Resolver:       resolver,
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	uploads, mediaDir, closeMedia, err := openMedia(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open media backend", zap.Error(err))
	}
	defer closeMedia()
	if mediaDir != "" {
		opts.MediaDir = mediaDir
		opts.MediaRoute = cfg.MediaBaseURL
	}
	log.Info("Media backend ready", zap.String("backend", cfg.MediaBackend))

	opts.Service = social.NewService(repo, edges, uploads, resolver)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(opts)

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// openMedia builds the configured upload backend. dir is set when uploads
// land on local disk and must be served by this process.
func openMedia(ctx context.Context, cfg *config.Config) (store media.Store, dir string, closeFn func() error, err error) {
	switch cfg.MediaBackend {
	case config.MediaBackendGCS:
		gcs, err := media.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, "", nil, err
		}
		return gcs, "", gcs.Close, nil
	default:
		disk, err := media.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return disk, disk.Dir(), func() error { return nil }, nil
	}
}
