// Package http implements the HTTP handlers of the sales dashboard. Handlers
// stay thin: they parse and validate query parameters, call the dashboard or
// health service and shape the response.
//
// # Routes
//
// The JSON API is mounted under /api by the app package:
//
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//	GET /api/pages                     page registry with the effective params
//	GET /api/pages/{page}              every view of a page, failures embedded
//	GET /api/views                     view registry
//	GET /api/views/{view}              one view
//	GET /api/views/{view}/export.csv   the view's summary table as CSV
//
// The HTML dashboard is served from / and /pages/{page}.
//
// # Parameters
//
// location, product, months and qty_cap override the configured focus for a
// single request. They are validated with go-playground/validator and
// rejected with 400 when out of range.
//
// # Errors
//
// Errors are written as RFC 7807 problem details by the errors package. A
// view that fails on its data answers 422 with the error_kind extension; an
// internal failure answers 500. On page requests a failed view never fails
// the page, it is reported inline.
package http
