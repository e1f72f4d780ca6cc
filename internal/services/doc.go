// Package services implements the dashboard layer between the HTTP handlers
// and the aggregation pipeline.
//
// DashboardService owns the view registry and the page layout. Each view
// names the source table it reads, the pipeline operation it runs and how
// its result is presented. Views run one at a time; a failing or panicking
// view is captured into its result so the rest of the page still renders.
//
// HealthService reports liveness, readiness (both source tables loaded) and
// build information.
package services
