package main

import (
	"context"
	"net/http"

	"github.com/luno/jettison/j"
	jlog "github.com/luno/jettison/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stefanfredik/openaccess-sub000/internal/cache"
	"github.com/stefanfredik/openaccess-sub000/internal/config"
	"github.com/stefanfredik/openaccess-sub000/internal/observability"
	"github.com/stefanfredik/openaccess-sub000/internal/repository/sqlite"
	"github.com/stefanfredik/openaccess-sub000/internal/service"
)

// app holds the wired services of one process
type app struct {
	cfg    *config.Config
	repo   *sqlite.Repository
	bus    *service.EventBus
	tenant int64

	metrics   *observability.Metrics
	events    http.Handler
	topology  *service.TopologyService
	fiber     *service.FiberService
	inventory *service.InventoryService
}

func (a *app) Topology() *service.TopologyService   { return a.topology }
func (a *app) Fiber() *service.FiberService         { return a.fiber }
func (a *app) Inventory() *service.InventoryService { return a.inventory }
func (a *app) Metrics() *observability.Metrics      { return a.metrics }
func (a *app) Events() http.Handler                 { return a.events }
func (a *app) DefaultTenant() int64                 { return a.tenant }

// openApp loads the config and wires the store, cache and services. reg may
// be nil for commands that do not serve metrics.
func openApp(ctx context.Context, g *Globals, reg prometheus.Registerer) (*app, error) {
	cfg, path, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if path != "" {
		jlog.Info(ctx, "config loaded", j.KV("path", path))
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		repo:   repo,
		bus:    service.NewEventBus(),
		tenant: cfg.Tenant.DefaultID,
	}
	if g.Tenant > 0 {
		a.tenant = g.Tenant
	}
	if reg != nil {
		a.metrics = observability.NewMetrics(reg)
	}

	deps := service.Deps{
		Cache:   cache.Open(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL.Duration()),
		Events:  a.bus,
		Metrics: a.metrics,
	}
	a.topology = service.NewTopologyService(repo, deps, cfg.Topology.MaxNodes)
	a.fiber = service.NewFiberService(repo, deps)
	a.inventory = service.NewInventoryService(repo, deps)

	return a, nil
}

func (a *app) Close() error {
	return a.repo.Close()
}
