package servermetrics

import (
	"fmt"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// PlainKind is the kind label used for lines that are not device events.
const PlainKind = "plain"

// VictoriaMetrics implements Metrics with the VictoriaMetrics default set.
type VictoriaMetrics struct {
	activeConns int64

	activeConnsGauge *metrics.Gauge
	acceptedConns    *metrics.Counter
	failedConns      *metrics.Counter
	blankLines       *metrics.Counter
}

// NewVictoriaMetrics returns the Victoria Metrics implementation of Metrics.
func NewVictoriaMetrics() *VictoriaMetrics {
	var m VictoriaMetrics

	m.activeConnsGauge = metrics.GetOrCreateGauge("active_connections_count", func() float64 {
		return float64(m.ActiveConns())
	})
	m.acceptedConns = metrics.GetOrCreateCounter("connection_accepted_total")
	m.failedConns = metrics.GetOrCreateCounter("connection_fail_total")
	m.blankLines = metrics.GetOrCreateCounter("blank_lines_total")

	return &m
}

// ActiveConns gets the number of connections being served.
func (m *VictoriaMetrics) ActiveConns() int64 {
	return atomic.LoadInt64(&m.activeConns)
}

// RecordConn implements Metrics.
func (m *VictoriaMetrics) RecordConn(delta DeltaType) {
	switch delta {
	case DeltaFailed:
		m.failedConns.Inc()
	case DeltaConnect:
		m.acceptedConns.Inc()
		atomic.AddInt64(&m.activeConns, 1)
	case DeltaDisconnect:
		atomic.AddInt64(&m.activeConns, -1)
	default:
		panic(fmt.Errorf("invalid delta: %d", delta))
	}
}

// RecordEvent implements Metrics.
func (m *VictoriaMetrics) RecordEvent(kind string) {
	if kind == "" {
		kind = PlainKind
	}
	metrics.GetOrCreateCounter(fmt.Sprintf(`events_total{kind=%q}`, kind)).Inc()
}

// RecordBlank implements Metrics.
func (m *VictoriaMetrics) RecordBlank() {
	m.blankLines.Inc()
}
