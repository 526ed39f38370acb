// Package telemetry provides OpenTelemetry initialization and helpers
// for tracing, logs and metrics of the thermochef server.
//
// The package configures OTLP HTTP export with support for
// Grafana Cloud style "/otlp" base paths and plain collectors.
package telemetry
