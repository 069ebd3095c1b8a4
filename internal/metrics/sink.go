// Package metrics defines the abstract sink the archival pipeline emits
// named counters/gauges/histograms to. Wiring a concrete exporter
// (Prometheus, statsd, OTel metrics, ...) is explicitly out of scope here;
// callers hand in whichever Sink implementation they want. NoopSink is a
// zero-dependency default for tests and for running without metrics.
package metrics

// Sink receives named measurements from every component of the pipeline.
// Labels are passed as alternating key/value strings, e.g.
// sink.IncCounter("http_404", 1, "board", "g").
type Sink interface {
	IncCounter(name string, delta float64, labels ...string)
	SetGauge(name string, value float64, labels ...string)
	ObserveHistogram(name string, value float64, labels ...string)
}

// NoopSink discards every measurement.
type NoopSink struct{}

func (NoopSink) IncCounter(name string, delta float64, labels ...string)        {}
func (NoopSink) SetGauge(name string, value float64, labels ...string)         {}
func (NoopSink) ObserveHistogram(name string, value float64, labels ...string) {}

var _ Sink = NoopSink{}
