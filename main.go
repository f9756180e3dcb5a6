package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appaccess "github.com/plantnet/backend/internal/application/access"
	appcatalog "github.com/plantnet/backend/internal/application/catalog"
	appinventory "github.com/plantnet/backend/internal/application/inventory"
	apporder "github.com/plantnet/backend/internal/application/order"
	"github.com/plantnet/backend/internal/application/orderview"
	domcatalog "github.com/plantnet/backend/internal/domain/catalog"
	domorder "github.com/plantnet/backend/internal/domain/order"
	domuser "github.com/plantnet/backend/internal/domain/user"
	"github.com/plantnet/backend/internal/infrastructure/bus"
	"github.com/plantnet/backend/internal/infrastructure/eventlog"
	"github.com/plantnet/backend/internal/infrastructure/id"
	"github.com/plantnet/backend/internal/infrastructure/memory"
	"github.com/plantnet/backend/internal/infrastructure/mongodb"
	"github.com/plantnet/backend/internal/pkg/logging"
	"github.com/plantnet/backend/internal/platform/config"
	"github.com/plantnet/backend/internal/platform/token"
	httppresentation "github.com/plantnet/backend/internal/presentation/http"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg, err := config.ParseEnv()
	if err != nil {
		panic(err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		userRepo  domuser.Repository
		itemRepo  domcatalog.Repository
		orderRepo domorder.Repository
	)
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		store, err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			logger.Fatal("mongodb_connect_failed", zap.Error(err))
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()
			_ = store.Close(closeCtx)
		}()
		logger.Info("connected_to_mongodb", zap.String("database", cfg.MongoDB))

		userRepo = mongodb.NewUserRepository(store)
		itemRepo = mongodb.NewItemRepository(store)
		orderRepo = mongodb.NewOrderRepository(store)
	} else {
		items := memory.NewItemRepository()
		userRepo = memory.NewUserRepository()
		itemRepo = items
		orderRepo = memory.NewOrderRepository(items)
		logger.Info("using_in_memory_store")
	}

	registry := prometheus.DefaultRegisterer

	eventBus := bus.New(logger)
	eventBus.Start(ctx)
	defer eventBus.Stop()

	eventWorker := eventlog.New(eventBus, logger, registry)
	eventWorker.Start()

	idGen := id.NewUUIDGenerator()
	accessSvc := appaccess.NewService(userRepo, eventBus)
	ledger := appinventory.NewService(itemRepo, eventBus)
	catalogSvc := appcatalog.NewService(itemRepo, idGen)
	orderSvc := apporder.NewService(orderRepo, itemRepo, ledger, idGen, eventBus)
	viewSvc := orderview.NewService(orderRepo)

	tokens := token.NewManager(cfg.TokenSecret, cfg.TokenTTL)
	metrics := httppresentation.NewMetrics(registry)
	handler := httppresentation.NewHandler(
		accessSvc, catalogSvc, orderSvc, viewSvc,
		tokens, logger, metrics,
		cfg.Env == "production",
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}
