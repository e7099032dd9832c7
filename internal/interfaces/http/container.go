package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	accountUsecases "github.com/quillstore/quill/internal/application/account/usecases"
	fulfillmentUsecases "github.com/quillstore/quill/internal/application/fulfillment/usecases"
	libraryUsecases "github.com/quillstore/quill/internal/application/library/usecases"
	productUsecases "github.com/quillstore/quill/internal/application/product/usecases"
	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	"github.com/quillstore/quill/internal/infrastructure/auth"
	"github.com/quillstore/quill/internal/infrastructure/config"
	"github.com/quillstore/quill/internal/infrastructure/pubsub"
	"github.com/quillstore/quill/internal/infrastructure/repository"
	"github.com/quillstore/quill/internal/infrastructure/services"
	"github.com/quillstore/quill/internal/infrastructure/webhook"
	"github.com/quillstore/quill/internal/interfaces/http/handlers"
	adminHandlers "github.com/quillstore/quill/internal/interfaces/http/handlers/admin"
	"github.com/quillstore/quill/internal/interfaces/http/middleware"
	"github.com/quillstore/quill/internal/shared/goroutine"
	"github.com/quillstore/quill/internal/shared/logger"
	markdownService "github.com/quillstore/quill/internal/shared/services/markdown"
)

// Container holds all infrastructure components, repositories, use
// cases, handlers and background services. It wires everything together
// and provides Shutdown() for graceful termination.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Repositories
	accountRepo     account.Repository
	productRepo     product.Repository
	entitlementRepo entitlement.Repository

	// Infrastructure services
	sessionSvc      *auth.SessionService
	webhookVerifier *webhook.Verifier
	markdownSvc     markdownService.Service
	libraryHub      *services.LibraryHub
	notifier        *services.EntitlementNotifier

	// Cross-instance event relay
	eventBus         pubsub.EntitlementEventBus
	eventBusCancel   context.CancelFunc
	eventBusCancelMu sync.Mutex

	// Use cases
	ensureAccountUC  *accountUsecases.EnsureAccountUseCase
	processOrderUC   *fulfillmentUsecases.ProcessOrderEventUseCase
	grantUC          *fulfillmentUsecases.GrantEntitlementUseCase
	revokeUC         *fulfillmentUsecases.RevokeEntitlementUseCase
	restoreUC        *fulfillmentUsecases.RestoreEntitlementUseCase
	listLibraryUC    *libraryUsecases.ListLibraryUseCase
	checkOwnershipUC *libraryUsecases.CheckOwnershipUseCase
	listAccountUC    *libraryUsecases.ListAccountLibraryUseCase
	listCatalogUC    *productUsecases.ListCatalogUseCase
	getCatalogUC     *productUsecases.GetCatalogProductUseCase
	createProductUC  *productUsecases.CreateProductUseCase
	updateProductUC  *productUsecases.UpdateProductUseCase
	deleteProductUC  *productUsecases.DeleteProductUseCase
	setPublishedUC   *productUsecases.SetProductPublishedUseCase
	linkProviderUC   *productUsecases.LinkProviderUseCase
	listProductsUC   *productUsecases.ListProductsUseCase
	getProductUC     *productUsecases.GetProductUseCase

	// Handlers
	webhookHandler      *handlers.WebhookHandler
	productHandler      *handlers.ProductHandler
	libraryHandler      *handlers.LibraryHandler
	realtimeHandler     *handlers.RealtimeHandler
	healthHandler       *handlers.HealthHandler
	adminProductHandler *adminHandlers.ProductHandler
	adminEntHandler     *adminHandlers.EntitlementHandler

	// Middlewares
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
}

// NewContainer creates a Container with all dependencies wired together.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) *Container {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	c.initInfrastructure()
	c.initUseCases()
	c.initHandlers()
	c.startEventRelay()

	return c
}

func (c *Container) initInfrastructure() {
	cfg := c.cfg
	log := c.log

	c.redis = initRedis(cfg, log)

	c.accountRepo = repository.NewAccountRepository(c.db, log)
	c.productRepo = repository.NewProductRepository(c.db, log)
	c.entitlementRepo = repository.NewEntitlementRepository(c.db, log)

	// Config validation already rejected an empty signing secret, but
	// the constructors keep their own guard for other callers.
	verifier, err := webhook.NewVerifier(cfg.Checkout.SigningSecret)
	if err != nil {
		log.Fatal("webhook signing secret missing", "error", err)
	}
	c.webhookVerifier = verifier

	sessionSvc, err := auth.NewSessionService(cfg.Auth.JWT.Secret)
	if err != nil {
		log.Fatal("session token secret missing", "error", err)
	}
	c.sessionSvc = sessionSvc

	c.markdownSvc = markdownService.NewService()

	c.libraryHub = services.NewLibraryHub(log, &services.LibraryHubConfig{
		MaxConnsPerAccount: cfg.Realtime.MaxConnsPerAccount,
		SendBufferSize:     cfg.Realtime.SendBufferSize,
	})

	c.eventBus = pubsub.NewRedisEntitlementEventBus(c.redis, log)
	c.notifier = services.NewEntitlementNotifier(c.libraryHub, c.eventBus, log)

	c.rateLimiter = middleware.NewRateLimiter(c.redis, 100, 1*time.Minute)
}

func (c *Container) initUseCases() {
	log := c.log

	c.ensureAccountUC = accountUsecases.NewEnsureAccountUseCase(c.accountRepo, log)

	c.processOrderUC = fulfillmentUsecases.NewProcessOrderEventUseCase(c.accountRepo, c.productRepo, c.entitlementRepo, log)
	c.processOrderUC.SetNotifier(c.notifier)

	c.grantUC = fulfillmentUsecases.NewGrantEntitlementUseCase(c.accountRepo, c.productRepo, c.entitlementRepo, log)
	c.grantUC.SetNotifier(c.notifier)

	c.revokeUC = fulfillmentUsecases.NewRevokeEntitlementUseCase(c.accountRepo, c.productRepo, c.entitlementRepo, log)
	c.revokeUC.SetNotifier(c.notifier)

	c.restoreUC = fulfillmentUsecases.NewRestoreEntitlementUseCase(c.accountRepo, c.productRepo, c.entitlementRepo, log)
	c.restoreUC.SetNotifier(c.notifier)

	c.listLibraryUC = libraryUsecases.NewListLibraryUseCase(c.entitlementRepo, c.productRepo, log)
	c.checkOwnershipUC = libraryUsecases.NewCheckOwnershipUseCase(c.entitlementRepo, c.productRepo, log)
	c.listAccountUC = libraryUsecases.NewListAccountLibraryUseCase(c.accountRepo, c.listLibraryUC, log)

	c.listCatalogUC = productUsecases.NewListCatalogUseCase(c.productRepo, log)
	c.getCatalogUC = productUsecases.NewGetCatalogProductUseCase(c.productRepo, c.markdownSvc, log)
	c.createProductUC = productUsecases.NewCreateProductUseCase(c.productRepo, log)
	c.updateProductUC = productUsecases.NewUpdateProductUseCase(c.productRepo, log)
	c.deleteProductUC = productUsecases.NewDeleteProductUseCase(c.productRepo, log)
	c.setPublishedUC = productUsecases.NewSetProductPublishedUseCase(c.productRepo, log)
	c.linkProviderUC = productUsecases.NewLinkProviderUseCase(c.productRepo, log)
	c.listProductsUC = productUsecases.NewListProductsUseCase(c.productRepo, log)
	c.getProductUC = productUsecases.NewGetProductUseCase(c.productRepo, log)
}

func (c *Container) initHandlers() {
	cfg := c.cfg
	log := c.log

	processTimeout := time.Duration(cfg.Checkout.ProcessTimeout) * time.Second

	c.webhookHandler = handlers.NewWebhookHandler(c.webhookVerifier, c.processOrderUC, processTimeout, log)
	c.productHandler = handlers.NewProductHandler(c.listCatalogUC, c.getCatalogUC, log)
	c.libraryHandler = handlers.NewLibraryHandler(c.listLibraryUC, c.checkOwnershipUC, log)
	c.realtimeHandler = handlers.NewRealtimeHandler(c.libraryHub, log)
	c.healthHandler = handlers.NewHealthHandler()

	c.adminProductHandler = adminHandlers.NewProductHandler(
		c.createProductUC,
		c.updateProductUC,
		c.deleteProductUC,
		c.setPublishedUC,
		c.linkProviderUC,
		c.listProductsUC,
		c.getProductUC,
		log,
	)
	c.adminEntHandler = adminHandlers.NewEntitlementHandler(c.grantUC, c.revokeUC, c.restoreUC, c.listAccountUC, log)

	c.authMiddleware = middleware.NewAuthMiddleware(c.sessionSvc, c.ensureAccountUC, log)
}

// startEventRelay subscribes the local hub to the cross-instance event
// bus so grants made on another instance still reach buyers connected
// here. The subscribe loop blocks until the context is canceled, so it
// runs on its own goroutine.
func (c *Container) startEventRelay() {
	ctx, cancel := context.WithCancel(context.Background())

	c.eventBusCancelMu.Lock()
	c.eventBusCancel = cancel
	c.eventBusCancelMu.Unlock()

	goroutine.SafeGo(c.log, "entitlement-event-relay", func() {
		if err := services.StartEntitlementEventRelay(ctx, c.eventBus, c.libraryHub, c.log); err != nil {
			logSubscriberExit(c.log, "entitlement event relay", err)
		}
	})
}

func logSubscriberExit(log logger.Interface, name string, err error) {
	if errors.Is(err, context.Canceled) {
		log.Infow(name+" stopped", "reason", "context canceled")
		return
	}
	log.Errorw(name+" failed", "error", err)
}

// initRedis creates and tests the Redis client connection.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", "error", err)
	}
	log.Infow("Redis connection established successfully")

	return redisClient
}

// GetEngine returns the underlying Gin engine.
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// Shutdown gracefully stops background services and closes connections.
func (c *Container) Shutdown() {
	c.eventBusCancelMu.Lock()
	if c.eventBusCancel != nil {
		c.eventBusCancel()
		c.eventBusCancel = nil
	}
	c.eventBusCancelMu.Unlock()

	if c.libraryHub != nil {
		c.libraryHub.Shutdown()
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close Redis client", "error", err)
		}
	}

	c.log.Infow("container shutdown complete")
}
