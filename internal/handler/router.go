package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/stefanfredik/openaccess-sub000/internal/observability"
	"github.com/stefanfredik/openaccess-sub000/internal/service"
)

// Deps are the collaborators the API handlers need
type Deps interface {
	Topology() *service.TopologyService
	Fiber() *service.FiberService
	Inventory() *service.InventoryService
	Metrics() *observability.Metrics
	// Events serves the server-sent event stream
	Events() http.Handler
	// DefaultTenant is used when a request carries no tenant header
	DefaultTenant() int64
}

type Router interface {
	GET(path string, handle httprouter.Handle)
	POST(path string, handle httprouter.Handle)
}

type subRouter struct {
	r       Router
	base    string
	metrics *observability.Metrics
}

func SubRouter(r Router, basePath string, m *observability.Metrics) Router {
	return subRouter{r: r, base: basePath, metrics: m}
}

func (r subRouter) GET(path string, handle httprouter.Handle) {
	p := r.base + path
	r.r.GET(p, wrap(p, r.metrics, handle))
}

func (r subRouter) POST(path string, handle httprouter.Handle) {
	p := r.base + path
	r.r.POST(p, wrap(p, r.metrics, handle))
}

func wrap(path string, m *observability.Metrics, handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		t0 := time.Now()
		handle(w, r, p)
		m.ObserveHTTP(path, time.Since(t0))
	}
}

// CreateRouter registers every API route
func CreateRouter(d Deps) *httprouter.Router {
	r := httprouter.New()
	api := SubRouter(r, "/api", d.Metrics())

	api.GET("/topology", GetTopologyHandler(d))
	api.GET("/topology/node", GetNodeDetailsHandler(d))
	api.POST("/topology/positions", UpdatePositionsHandler(d))
	api.GET("/positions", GetPositionsHandler(d))

	api.POST("/fiber/splices", SpliceCoresHandler(d))
	api.GET("/fiber/cores/:id/trace", TraceSignalHandler(d))

	api.POST("/inventory/import", ImportInventoryHandler(d))

	if events := d.Events(); events != nil {
		r.Handler(http.MethodGet, "/events", events)
	}

	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, ErrorResponse{Error: "Not found", Details: r.URL.Path}, http.StatusNotFound)
	})
	r.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		recovered(w, r, v)
	}

	return r
}

// CreateDebugRouter serves metrics and a readiness check backed by ready
func CreateDebugRouter(m *observability.Metrics, ready func(ctx context.Context) error) *httprouter.Router {
	r := httprouter.New()
	r.Handler(http.MethodGet, "/debug/metrics", m.Handler())
	r.HandlerFunc(http.MethodGet, "/debug/ready", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				http.Error(w, "Not Ready", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
