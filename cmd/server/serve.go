package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	jlog "github.com/luno/jettison/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/stefanfredik/openaccess-sub000/internal/handler"
	"github.com/stefanfredik/openaccess-sub000/internal/hub"
	"github.com/stefanfredik/openaccess-sub000/internal/observability"
	"github.com/stefanfredik/openaccess-sub000/internal/service"
	"github.com/stefanfredik/openaccess-sub000/internal/watcher"
)

// ServeCmd runs the API and debug listeners until interrupted
type ServeCmd struct {
	Watch bool `short:"w" help:"Re-import the inventory file when it changes"`
}

// Run executes the serve command
func (c *ServeCmd) Run(g *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp(ctx, g, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownTracing, err := observability.InitTracing(ctx, a.cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing)

	sse := hub.New()
	a.events = sse
	events := make(chan service.Event, 100)
	a.bus.Subscribe(events)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sse.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Forward[service.Event](ctx, sse, events)
	}()

	if path := a.cfg.Inventory.Path; path != "" {
		if _, err := a.inventory.ImportFile(ctx, a.tenant, path); err != nil {
			return err
		}

		if c.Watch || a.cfg.Inventory.Watch {
			w := watcher.New(path, func(ctx context.Context) error {
				_, err := a.inventory.ImportFile(ctx, a.tenant, path)
				return err
			})
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
					jlog.Error(ctx, errors.Wrap(err, "inventory watcher stopped"))
				}
			}()
		}
	}

	api := handler.Chain(handler.CreateRouter(a),
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runWebServer(ctx, cancel, api, a.cfg.Server.Addr)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runWebServer(ctx, cancel, handler.CreateDebugRouter(a.metrics, a.repo.Ping), a.cfg.Server.DebugAddr)
	}()

	wg.Wait()
	return nil
}

func runWebServer(ctx context.Context, cancel context.CancelFunc, h http.Handler, addr string) {
	srv := &http.Server{
		BaseContext:       func(listener net.Listener) context.Context { return ctx },
		Handler:           h,
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go shutdownOnCancel(ctx, srv)
	jlog.Info(ctx, "server listening", j.KV("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		jlog.Error(ctx, errors.Wrap(err, "server failed", j.KV("addr", addr)))
		cancel()
	}
	jlog.Info(ctx, "server terminated", j.KV("addr", addr))
}

func shutdownOnCancel(ctx context.Context, server *http.Server) {
	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	jlog.Info(ctx, "shutting down http server")
	_ = server.Shutdown(ctx)
}
