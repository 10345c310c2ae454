package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/caretrack/caretrack_backend/internal/model"
)

var (
	deliveryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caretrack",
		Subsystem: "dispatch",
		Name:      "delivery_attempts_total",
		Help:      "Channel delivery attempts by channel and result.",
	}, []string{"channel", "result"})

	dispatchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "caretrack",
		Subsystem: "dispatch",
		Name:      "notifications_total",
		Help:      "Dispatched notifications by terminal status.",
	}, []string{"status"})
)

func observeDelivery(c model.Channel, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	deliveryAttempts.WithLabelValues(string(c), result).Inc()
}

func observeDispatch(status model.NotificationStatus) {
	dispatchOutcomes.WithLabelValues(string(status)).Inc()
}
