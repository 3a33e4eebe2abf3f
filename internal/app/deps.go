package app

import (
	"context"
	"log/slog"
	"net/http"

	klipy "github.com/klipy/klipy-go"
	"github.com/klipy/klipy-go/device"
	"github.com/klipy/klipy-go/internal/catalog"
	"github.com/klipy/klipy-go/internal/config"
	"github.com/klipy/klipy-go/internal/handlers"
	"github.com/klipy/klipy-go/internal/middleware"
	"github.com/klipy/klipy-go/tracking"
)

// serverUserAgent identifies the preview server to the Klipy API.
var serverUserAgent device.UserAgentStore

func newSDK(cfg config.Config, logger *slog.Logger) (*klipy.SDK, error) {
	serverUserAgent.Set("")

	var customerID *string
	if cfg.CustomerID != "" {
		id := cfg.CustomerID
		customerID = &id
	}

	info := device.InfoFromUserAgent(serverUserAgent.UserAgent())
	info.ScreenWidth = cfg.ScreenWidth
	info.ScreenHeight = cfg.ScreenHeight
	info.PixelRatio = cfg.PixelRatio

	return klipy.Setup(klipy.Config{
		APIKey:       cfg.APIKey,
		CustomerID:   customerID,
		BaseURL:      cfg.BaseURL,
		HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		AdParameters: device.NewAdParameters(info),
		UserAgent:    &serverUserAgent,
		Logger:       logger,
	})
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the tracking dispatcher.
func buildDependencies(cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	sdk, err := newSDK(cfg, logger)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	dispatcher := tracking.NewDispatcher(tracking.Config{
		QueueSize: cfg.TrackingQueue,
		Workers:   cfg.TrackingWorkers,
		Timeout:   cfg.HTTPTimeout,
	}, logger)

	deps := handlers.Dependencies{
		Feeds:       sdk,
		Categories:  catalog.NewCache(catalog.ResolverSource{Resolver: sdk}, cfg.CategoryCacheTTL),
		Tracking:    dispatcher,
		Metrics:     middleware.NewMetrics(),
		RowHeight:   cfg.RowHeight,
		CORSOrigins: cfg.CORSOrigins,
		Configured: func() bool {
			_, ok := sdk.CustomerID()
			return ok
		},
	}
	return deps, dispatcher.Shutdown, nil
}
