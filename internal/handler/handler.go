package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"github.com/luno/jettison/log"

	"github.com/stefanfredik/openaccess-sub000/internal/domain"
)

// TenantHeader selects the tenant a request operates on
const TenantHeader = "X-Tenant-ID"

// maxBodyBytes bounds request bodies, inventory documents included
const maxBodyBytes = 16 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// tenantID reads the tenant header, falling back to the default tenant
func tenantID(r *http.Request, fallback int64) (int64, error) {
	v := strings.TrimSpace(r.Header.Get(TenantHeader))
	if v == "" {
		return fallback, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Wrap(domain.ErrBadRequest, "invalid tenant id", j.KV("tenant", v))
	}
	return id, nil
}

// decodeJSON reads a JSON body into dst and validates it
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(domain.ErrBadRequest, "invalid request body", j.KV("cause", err.Error()))
	}
	return nil
}

// validateStruct runs the struct's validate tags
func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			f := verrs[0]
			return errors.Wrap(domain.ErrBadRequest, "invalid field",
				j.KV("field", f.Field()), j.KV("rule", f.Tag()))
		}
		return errors.Wrap(domain.ErrBadRequest, "invalid request", j.KV("cause", err.Error()))
	}
	return nil
}

// errorStatus maps domain sentinels onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(ctx, errors.Wrap(err, "failed to encode response"))
	}
}

// writeError reports err with the status its sentinel maps to. Internal
// errors are logged and their details withheld.
func writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := errorStatus(err)
	resp := ErrorResponse{Error: msg}
	if status == http.StatusInternalServerError {
		log.Error(ctx, errors.Wrap(err, msg))
	} else {
		resp.Details = err.Error()
	}
	writeJSON(ctx, w, resp, status)
}
