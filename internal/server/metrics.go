package server

import "github.com/prometheus/client_golang/prometheus"

var opsCommitted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gopad",
	Name:      "ops_committed_total",
	Help:      "Operations sequenced by the authority, by type",
}, []string{"type"})

var resyncsSent = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "gopad",
	Name:      "resyncs_sent_total",
	Help:      "Full resyncs sent to clients",
})

var activeClients = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "gopad",
	Name:      "active_clients",
	Help:      "Connected clients across all documents",
})

func init() {
	prometheus.MustRegister(opsCommitted, resyncsSent, activeClients)
}
