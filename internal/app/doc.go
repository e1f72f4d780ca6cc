// Package app wires the sales dashboard together: configuration, logging,
// OpenTelemetry, the two source tables, the dashboard and health services,
// the chi router and the HTTP server.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, .env, SALES_* variables)
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Load the workbook and enriched CSV concurrently; an unreadable file is fatal
//	4. Build the services and register routes behind the middleware chain
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    os.Exit(1)
//	}
//	if err := application.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down within
// the configured shutdown timeout. Export writes every view's summary table
// to a directory without starting the server.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
