// main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farm-market/controllers"
	"farm-market/middleware"
	"farm-market/models"
	"farm-market/routes"
	"farm-market/services"
	"farm-market/store"
	"farm-market/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type backends struct {
	buyers   store.IdentityBackend
	farmers  store.IdentityBackend
	carts    store.CartStore
	products store.ProductStore
}

func main() {
	cfg := utils.LoadConfig()

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStore, err := openBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer closeStore()

	issuer := utils.NewSessionIssuer([]byte(cfg.JWTSecret), cfg.SessionTTL)

	// Initialize EmailService
	var notifier services.Notifier
	if emailService := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender); emailService != nil {
		notifier = emailService
	} else {
		logger.Info("POSTMARK_API_TOKEN not set, welcome emails disabled")
	}

	identities := services.NewIdentityService(stores.buyers, stores.farmers, issuer, notifier, logger)
	carts := services.NewCartService(stores.carts, stores.products, logger)
	products := services.NewProductService(stores.products)

	// Initialize controllers
	userController := controllers.NewUserController(identities, logger)
	productController := controllers.NewProductController(products, logger)
	cartController := controllers.NewCartController(carts, logger)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, middleware.NewAuth(identities, logger), userController, productController, cartController)

	handler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server is running", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("listen", zap.Error(err))
	}
}

// openBackends connects the configured store driver and returns a func
// releasing it.
func openBackends(ctx context.Context, cfg utils.Config, logger *zap.Logger) (backends, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		return backends{
			buyers:   store.NewMemoryIdentities(models.RoleBuyer),
			farmers:  store.NewMemoryIdentities(models.RoleFarmer),
			carts:    store.NewMemoryCarts(),
			products: store.NewMemoryProducts(),
		}, func() {}, nil
	}

	// Connect to MongoDB
	client, err := utils.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		return backends{}, nil, err
	}
	db := client.Database(cfg.MongoDB)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(indexCtx, db); err != nil {
		// existing duplicate records block the unique indexes; the
		// service layer still checks uniqueness on every write
		logger.Warn("ensure indexes", zap.Error(err))
	}

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("disconnect mongo", zap.Error(err))
		}
	}
	return backends{
		buyers:   store.NewMongoBuyers(db),
		farmers:  store.NewMongoFarmers(db),
		carts:    store.NewMongoCarts(db),
		products: store.NewMongoProducts(db),
	}, closeFn, nil
}
