package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/blendora/shopsense/backend/internal/adapters/cache"
	"github.com/blendora/shopsense/backend/internal/adapters/database"
	"github.com/blendora/shopsense/backend/internal/adapters/events"
	"github.com/blendora/shopsense/backend/internal/adapters/search"
	"github.com/blendora/shopsense/backend/internal/api/handlers"
	"github.com/blendora/shopsense/backend/internal/api/routes"
	"github.com/blendora/shopsense/backend/internal/application/services"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/domain/repositories"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/openai"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/postgres"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/redis"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/typesense"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
	"github.com/blendora/shopsense/backend/pkg/config"
)

func main() {

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
				log.Printf("Warning: Failed to start runtime instrumentation: %v", err)
			}
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize analytics database client. The API degrades to running
	// without interpretation analytics when Postgres is unreachable.
	var analyticsRepo repositories.InterpretationAnalyticsRepository
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Printf("Warning: Failed to initialize PostgreSQL client: %v", err)
	} else {
		defer pgClient.Close()
		analyticsRepo = database.NewInterpretationAdapter(pgClient)
		log.Println("PostgreSQL client initialized successfully")
	}

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - sessions fall back to per-request state
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for profile updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize vector index backend
	var vectorIndex providers.VectorIndexProvider
	switch cfg.Vector.Provider {
	case "typesense":
		typesenseClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatalf("Failed to initialize Typesense client: %v", err)
		}
		adapter := search.NewTypesenseAdapter(typesenseClient, cfg.Vector.Collection, cfg.OpenAI.EmbeddingDimensions)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		vectorIndex = adapter
		log.Println("Typesense vector index initialized successfully")
	default:
		var adapter *search.ChromemAdapter
		if cfg.Vector.PersistDir != "" {
			adapter, err = search.NewPersistentChromemAdapter(cfg.Vector.PersistDir, cfg.Vector.Collection)
		} else {
			adapter, err = search.NewChromemAdapter(cfg.Vector.Collection)
		}
		if err != nil {
			log.Fatalf("Failed to initialize chromem vector index: %v", err)
		}
		vectorIndex = adapter
		log.Println("Embedded chromem vector index initialized successfully")
	}

	// Initialize reasoning/embedding client
	var reasoningProvider providers.ReasoningProvider
	var embeddingProvider providers.EmbeddingProvider
	if cfg.OpenAI.APIKey == "" {
		log.Println("Warning: OPENAI_API_KEY is not set; running with fallback interpretation only")
	} else {
		openaiClient, err := openai.NewClient(&cfg.OpenAI)
		if err != nil {
			log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
		} else {
			reasoningProvider = openaiClient
			embeddingProvider = openaiClient
		}
	}

	// Initialize services
	compactor := services.NewEventCompactor()
	gapAnalyzer := services.NewGapAnalyzer()
	flags := services.NewFeatureFlags()

	interpreter := services.NewIntentInterpreter(
		reasoningProvider,
		services.NewFallbackInterpreter(),
		analyticsRepo,
		eventBus,
		flags,
		metrics,
	)

	indexingService := services.NewIndexingService(embeddingProvider, vectorIndex, &cfg.Vector)

	sessionFactory := func(sessionID string) handlers.SessionStore {
		return services.NewSessionStore(cacheProvider, gapAnalyzer, sessionID, &cfg.Session)
	}

	// Initialize handlers
	indexHandler := handlers.NewIndexHandler(indexingService)
	interpretHandler := handlers.NewInterpretHandler(interpreter, compactor, sessionFactory)
	sessionHandler := handlers.NewSessionHandler(sessionFactory)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsRepo)

	// Set up router
	router := routes.NewRouter(
		indexHandler,
		interpretHandler,
		sessionHandler,
		analyticsHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	log.Println("Server stopped")
}
