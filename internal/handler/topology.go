package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/stefanfredik/openaccess-sub000/internal/service"
	"github.com/stefanfredik/openaccess-sub000/internal/topology"
)

// GetTopologyHandler returns the tenant's topology forest
func GetTopologyHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		forest, err := d.Topology().GetTopology(ctx, tenant)
		if err != nil {
			writeError(ctx, w, "Failed to get topology", err)
			return
		}
		if forest == nil {
			forest = []*topology.Node{}
		}

		writeJSON(ctx, w, forest, http.StatusOK)
	}
}

// GetNodeDetailsHandler returns one device and its connections, addressed by
// the uid query parameter
func GetNodeDetailsHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		details, err := d.Topology().GetNodeDetails(ctx, tenant, r.URL.Query().Get("uid"))
		if err != nil {
			writeError(ctx, w, "Failed to get node details", err)
			return
		}

		writeJSON(ctx, w, details, http.StatusOK)
	}
}

// UpdatePositionsHandler saves layout positions posted as {uid: {x, y}}
func UpdatePositionsHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		var points map[string]service.Point
		if err := decodeJSON(w, r, &points); err != nil {
			writeError(ctx, w, "Invalid request body", err)
			return
		}

		if err := d.Topology().UpdatePositions(ctx, tenant, points); err != nil {
			writeError(ctx, w, "Failed to update positions", err)
			return
		}

		writeJSON(ctx, w, map[string]any{"status": "ok", "updated": len(points)}, http.StatusOK)
	}
}

// GetPositionsHandler lists saved positions
func GetPositionsHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		positions, err := d.Topology().GetPositions(ctx, tenant)
		if err != nil {
			writeError(ctx, w, "Failed to get positions", err)
			return
		}

		writeJSON(ctx, w, positions, http.StatusOK)
	}
}
