// Package filterhelper provides test doubles for the conditionalfilter packages:
// a capturing slog.Handler, a MetricsCollector spy and attribute sources with controllable timing.
package filterhelper
