package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/netpath/internal/adapters/dns"
	"github.com/lcalzada-xor/netpath/internal/adapters/fixture"
	"github.com/lcalzada-xor/netpath/internal/adapters/localnet"
	"github.com/lcalzada-xor/netpath/internal/adapters/reporting"
	"github.com/lcalzada-xor/netpath/internal/adapters/storage"
	"github.com/lcalzada-xor/netpath/internal/adapters/unifi"
	webserver "github.com/lcalzada-xor/netpath/internal/adapters/web/server"
	"github.com/lcalzada-xor/netpath/internal/config"
	"github.com/lcalzada-xor/netpath/internal/core/ports"
	"github.com/lcalzada-xor/netpath/internal/core/services/analysis"
	"github.com/lcalzada-xor/netpath/internal/core/services/topology"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

// Application holds the core components of the service.
type Application struct {
	Config    *config.Config
	Snapshots *topology.CachedSource
	Service   *analysis.Service
	Store     *storage.SQLiteAdapter
	WebServer *webserver.Server

	logger *slog.Logger
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{Config: cfg, logger: logger}

	if err := app.bootstrap(); err != nil {
		if app.Store != nil {
			_ = app.Store.Close()
		}
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation
	telemetry.InitMetrics()

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Store = store

	// 2. Inventory and path engine
	inventory, err := NewInventory(app.Config, app.logger)
	if err != nil {
		return err
	}
	svc, snapshots, err := NewPathService(app.Config, inventory, store, app.logger)
	if err != nil {
		return err
	}
	app.Service = svc
	app.Snapshots = snapshots

	// 3. Servers
	app.WebServer = webserver.NewServer(webserver.Options{
		Addr:       app.Config.Addr,
		APIKeyHash: app.Config.APIKeyHash,
	}, svc, reporting.NewPDFExporter(), app.logger)
	svc.SetPublisher(app.WebServer.WSManager)

	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init analysis storage: %w", err)
	}
	return store, nil
}

// NewInventory picks the controller client or the YAML fixture, whichever is configured.
func NewInventory(cfg *config.Config, logger *slog.Logger) (ports.InventorySource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FixturePath != "" {
		src, err := fixture.Load(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using fixture inventory", "path", cfg.FixturePath)
		return src, nil
	}

	client, err := unifi.NewClient(unifi.Config{
		URL:         cfg.Controller.URL,
		Site:        cfg.Controller.Site,
		Username:    cfg.Controller.Username,
		Password:    cfg.Controller.Password,
		UnifiOS:     cfg.Controller.UnifiOS,
		InsecureTLS: cfg.Controller.InsecureTLS,
		Timeout:     cfg.Controller.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("controller client: %w", err)
	}
	logger.Info("Using UniFi controller", "url", cfg.Controller.URL, "site", cfg.Controller.Site)
	return client, nil
}

// NewPathService wires the snapshot cache, resolvers and address provider around an inventory.
// repo may be nil for one-shot use.
func NewPathService(cfg *config.Config, inventory ports.InventorySource, repo ports.AnalysisRepository, logger *slog.Logger) (*analysis.Service, *topology.CachedSource, error) {
	addrs, err := localnet.NewProvider(cfg.ServerIPs)
	if err != nil {
		return nil, nil, err
	}

	snapshots := topology.NewCachedSource(topology.NewCollector(inventory, logger), cfg.Cache.SnapshotTTL)
	resolver := topology.NewTargetResolver(dns.NewResolver())

	svc := analysis.NewService(snapshots, resolver, addrs, repo, logger)
	svc.SetServerTTL(cfg.Cache.ServerTTL)
	return svc, snapshots, nil
}

// Run serves the HTTP API until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("Starting netpath", "addr", app.Config.Addr)

	if pos, err := app.Service.ServerPosition(ctx); err != nil {
		app.logger.Warn("Measurement server not located yet", "error", err)
	} else {
		app.logger.Info("Measurement server located", "ip", pos.IP, "device", pos.DeviceName, "port", pos.SwitchPort)
	}

	return app.WebServer.Run(ctx)
}

// Close releases storage.
func (app *Application) Close() error {
	if app.Store == nil {
		return nil
	}
	return app.Store.Close()
}
