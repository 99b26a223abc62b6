package handler

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// ImportInventoryHandler replaces the tenant inventory with the posted YAML
// document
func ImportInventoryHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(ctx, w, "Invalid request body",
				errors.Wrap(domain.ErrBadRequest, "failed to read body", j.KV("cause", err.Error())))
			return
		}

		counts, err := d.Inventory().ImportYAML(ctx, tenant, data)
		if err != nil {
			writeError(ctx, w, "Failed to import inventory", err)
			return
		}

		writeJSON(ctx, w, map[string]any{"status": "imported", "counts": counts}, http.StatusOK)
	}
}
