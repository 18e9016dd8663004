// Package metrics owns the Prometheus registry and the collectors exposed on
// /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	ActiveConnections *prometheus.GaugeVec
	Commands          *prometheus.CounterVec
	CommandErrors     *prometheus.CounterVec
	Broadcasts        *prometheus.CounterVec
	RoomsCreated      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quorum_ws_active_connections",
			Help: "Currently open websocket connections.",
		}, []string{"kind"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_ws_commands_total",
			Help: "Inbound websocket commands by event name.",
		}, []string{"kind", "event"}),
		CommandErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_ws_command_errors_total",
			Help: "Commands that ended in an exception event.",
		}, []string{"kind", "error"}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_ws_broadcasts_total",
			Help: "Full-snapshot broadcasts sent to rooms.",
		}, []string{"kind"}),
		RoomsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quorum_rooms_created_total",
			Help: "Rooms created over HTTP.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ActiveConnections,
		m.Commands,
		m.CommandErrors,
		m.Broadcasts,
		m.RoomsCreated,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
