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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/audit"
	"github.com/m2m-works/scld/api/config"
	"github.com/m2m-works/scld/api/controller"
	"github.com/m2m-works/scld/api/dao"
	"github.com/m2m-works/scld/api/db"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/notifier"
	"github.com/m2m-works/scld/api/router"
	"github.com/m2m-works/scld/api/service"
	"github.com/m2m-works/scld/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger("logging")
	defer logger.Sync()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize the resource store
	var store dao.Store
	switch backend := config.GetString("store.backend"); backend {
	case "neo4j":
		if err := db.InitNeo4j(); err != nil {
			logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
		}
		defer db.CloseNeo4j()
		neo4jStore, err := dao.NewNeo4jStore(db.Neo4jDriver)
		if err != nil {
			logger.Fatal("Failed to initialize Neo4j store", zap.Error(err))
		}
		store = neo4jStore
	case "memory":
		store = dao.NewMemStore()
	default:
		logger.Fatal("Unknown store backend", zap.String("backend", backend))
	}

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize audit recording
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)
	eventBus.Subscribe(controller.OperationEvent, func(ctx context.Context, event util.Event) error {
		record, ok := event.Payload.(audit.OperationRecord)
		if !ok {
			return fmt.Errorf("unexpected payload for %s event: %T", event.Type, event.Payload)
		}
		return auditService.Record(ctx, record)
	})

	// Initialize notification delivery
	var sender notifier.Sender
	switch backend := config.GetString("notifier.backend"); backend {
	case "redis":
		sender = notifier.NewRedisSender(db.RedisClient)
	case "log":
		sender = notifier.LogSender{}
	default:
		logger.Fatal("Unknown notifier backend", zap.String("backend", backend))
	}
	queue := notifier.NewQueue(sender)
	defer queue.Close()
	dispatcher := notifier.NewDispatcher(queue)

	// Initialize the lifecycle engine
	cacheService := util.NewCacheService()
	lifecycle := service.NewLifecycle(store, dispatcher, cacheService)

	// Provision the root descriptor, guarded so two instances sharing a store
	// do not both seed it. The loser of the lock skips seeding; Provision is a
	// no-op once the root exists, so a later restart fills any gap.
	locked, err := db.LockResource(ctx, "provision", 30*time.Second)
	if err != nil {
		logger.Fatal("Failed to acquire provisioning lock", zap.Error(err))
	}
	if locked {
		provisionErr := service.Provision(ctx, store)
		db.UnlockResource(ctx, "provision")
		if provisionErr != nil {
			logger.Fatal("Failed to provision root descriptor", zap.Error(provisionErr))
		}
	} else {
		logger.Info("Provisioning lock held by another instance, skipping")
	}

	// Initialize controllers
	controllers := &controller.Controllers{
		Resource: controller.NewResourceController(lifecycle, eventBus),
		Audit:    controller.NewAuditController(auditService),
	}

	// Set up Gin
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		controllers,
		config.GetInt("ratelimit.requestsPerMinute"),
		time.Minute,
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
