package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/shelflife/internal/catalog/store"
	"github.com/MrJamesThe3rd/shelflife/internal/config"
	"github.com/MrJamesThe3rd/shelflife/internal/cooked"
	"github.com/MrJamesThe3rd/shelflife/internal/database"
	"github.com/MrJamesThe3rd/shelflife/internal/export"
	shelfHttp "github.com/MrJamesThe3rd/shelflife/internal/http"
	cookedHandler "github.com/MrJamesThe3rd/shelflife/internal/http/cooked"
	expiryHandler "github.com/MrJamesThe3rd/shelflife/internal/http/expiry"
	exportHandler "github.com/MrJamesThe3rd/shelflife/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/shelflife/internal/http/importcsv"
	itemsHandler "github.com/MrJamesThe3rd/shelflife/internal/http/items"
	productsHandler "github.com/MrJamesThe3rd/shelflife/internal/http/products"
	sessionsHandler "github.com/MrJamesThe3rd/shelflife/internal/http/sessions"
	"github.com/MrJamesThe3rd/shelflife/internal/importer"
	"github.com/MrJamesThe3rd/shelflife/internal/item"
	itemStore "github.com/MrJamesThe3rd/shelflife/internal/item/store"
	"github.com/MrJamesThe3rd/shelflife/internal/logging"
	"github.com/MrJamesThe3rd/shelflife/internal/ocr"
	"github.com/MrJamesThe3rd/shelflife/internal/product"
)

const sessionTTL = 30 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DB.Driver, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		items    = itemStore.New(db, cfg.DB.Driver)
		products = catalogStore.New(db, cfg.DB.Driver)
	)

	if err := items.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if err := products.Migrate(ctx); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		itemService    = item.NewService(items)
		productClient  = product.NewClient(cfg.Products.BaseURL, cfg.Products.UserAgent, cfg.Products.Timeout)
		catalogService = catalog.NewService(products, productClient)
		ocrClient      = ocr.NewClient(cfg.OCR.BaseURL, cfg.OCR.Timeout)
		registry       = sessionsHandler.NewRegistry(sessionTTL, time.Now)
	)
	defer registry.Close()

	router := shelfHttp.New(shelfHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthSecret:     cfg.Auth.Secret,
		Timeout:        cfg.Server.Timeout,
	}, shelfHttp.Handlers{
		Expiry:   expiryHandler.NewHandler(time.Now),
		Items:    itemsHandler.NewHandler(itemService, time.Now),
		Sessions: sessionsHandler.NewHandler(registry, catalogService, ocrClient, itemService, time.Now),
		Products: productsHandler.NewHandler(catalogService),
		Import:   importHandler.NewHandler(importer.NewService(itemService, nil)),
		Export:   exportHandler.NewHandler(export.NewService(itemService), time.Now),
		Cooked:   cookedHandler.NewHandler(cooked.NewService(ocrClient, itemService), time.Now),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", srv.Addr, "driver", cfg.DB.Driver, "auth", cfg.Auth.Secret != "")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
