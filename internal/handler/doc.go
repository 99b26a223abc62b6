// Package handler exposes the inventory services over JSON HTTP.
//
// Routes are registered on an httprouter.Router through SubRouter, which
// records a latency histogram per route. The tenant is read from the
// X-Tenant-ID header and defaults to the configured tenant.
//
// Failures are returned as {error, details}. Not found maps to 404, bad
// requests to 400 and conflicts to 409; anything else is logged and returned
// as 500 without details.
//
// CreateDebugRouter serves /debug/metrics and /debug/ready on a separate
// listener.
package handler
