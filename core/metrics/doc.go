// Package metrics exposes Prometheus instrumentation for reconciliation cycles.
//
// A Recorder is registered once at startup and handed to the reconcile engine.
// All Recorder methods are safe on a nil receiver, so components can run
// without metrics in tests and CLI commands.
//
// # Series
//
//   - postcard_reconcile_cycles_total{direction,outcome}
//   - postcard_reconcile_duration_seconds{direction}
//   - postcard_field_type_errors_total{key}
//   - postcard_reconcile_conflicts_total
package metrics
