package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	broadcasts = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "broadcasts_total",
			Help: "Broadcast dispatches by result",
		},
		[]string{"result"},
	)
	broadcastRecipients = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "broadcast_recipients_total",
			Help: "Per-recipient broadcast send outcomes",
		},
		[]string{"result"},
	)
	broadcastDuration = prom.NewHistogram(
		prom.HistogramOpts{
			Name:    "broadcast_duration_seconds",
			Help:    "Wall time of a full broadcast fan-out",
			Buckets: prom.DefBuckets,
		},
	)
)

func init() {
	prom.MustRegister(broadcasts, broadcastRecipients, broadcastDuration)
}

func BroadcastTimer() *prom.Timer {
	return prom.NewTimer(broadcastDuration)
}

func BroadcastDone(result string) {
	broadcasts.WithLabelValues(result).Inc()
}

func BroadcastRecipient(result string) {
	broadcastRecipients.WithLabelValues(result).Inc()
}
