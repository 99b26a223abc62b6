package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
	"github.com/stefanfredik/openaccess-sub000/internal/service"
)

// SpliceCoresHandler joins two cores inside an enclosure
func SpliceCoresHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		var req service.SpliceRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(ctx, w, "Invalid request body", err)
			return
		}
		if err := validateStruct(req); err != nil {
			writeError(ctx, w, "Invalid splice", err)
			return
		}

		splice, err := d.Fiber().SpliceCores(ctx, tenant, req)
		if err != nil {
			writeError(ctx, w, "Failed to splice cores", err)
			return
		}

		writeJSON(ctx, w, splice, http.StatusCreated)
	}
}

// TraceSignalHandler returns the signal path starting at the :id core
func TraceSignalHandler(d Deps) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		ctx := r.Context()
		tenant, err := tenantID(r, d.DefaultTenant())
		if err != nil {
			writeError(ctx, w, "Invalid tenant", err)
			return
		}

		coreID, err := strconv.ParseInt(p.ByName("id"), 10, 64)
		if err != nil {
			writeError(ctx, w, "Invalid core id",
				errors.Wrap(domain.ErrBadRequest, "core id is not numeric", j.KV("id", p.ByName("id"))))
			return
		}

		res, err := d.Fiber().TraceSignal(ctx, tenant, coreID)
		if err != nil {
			writeError(ctx, w, "Failed to trace signal", err)
			return
		}

		writeJSON(ctx, w, res, http.StatusOK)
	}
}
