package metrics

import (
	"context"

	prom "github.com/prometheus/client_golang/prometheus"
)

var (
	senderSends = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "sender_sends_total",
			Help: "Count of outbound message send attempts",
		},
		[]string{"provider", "result"},
	)
	senderDuration = prom.NewHistogramVec(
		prom.HistogramOpts{
			Name:    "sender_send_duration_seconds",
			Help:    "Duration of outbound message send attempts",
			Buckets: prom.DefBuckets,
		},
		[]string{"provider"},
	)
)

func init() {
	prom.MustRegister(senderSends, senderDuration)
}

func SendObserver(provider string, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		timer := prom.NewTimer(senderDuration.WithLabelValues(provider))
		err := fn(ctx)
		timer.ObserveDuration()
		result := "success"
		if err != nil {
			result = "error"
		}
		senderSends.WithLabelValues(provider, result).Inc()
		return err
	}
}
