package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketwire"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"service", "method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "route", "status"},
	)
	sessionPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "packets_total",
			Help:      "Session packets by direction and message type.",
		},
		[]string{"role", "direction", "type"},
	)
	sessionBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "bytes_total",
			Help:      "Session transport bytes by direction.",
		},
		[]string{"role", "direction"},
	)
	sessionHeartbeatTimeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "heartbeat_timeouts_total",
			Help:      "Receive heartbeat timeouts.",
		},
		[]string{"role"},
	)
	sessionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "errors_total",
			Help:      "Fatal session errors by reason.",
		},
		[]string{"role", "reason"},
	)
	decodedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "messages_total",
			Help:      "Decoded market data messages by protocol and type.",
		},
		[]string{"protocol", "type"},
	)
	activeSessions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Open sessions.",
		},
		[]string{"role"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			sessionPackets,
			sessionBytes,
			sessionHeartbeatTimeouts,
			sessionErrors,
			decodedMessages,
			activeSessions,
		)
	})
}

func RecordHTTPRequest(service, method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, route, statusLabel).Observe(duration.Seconds())
}

// RecordPacket counts one session packet. direction is "rx" or "tx".
func RecordPacket(role, direction string, messageType byte) {
	RegisterMetrics()
	sessionPackets.WithLabelValues(role, direction, string(rune(messageType))).Inc()
}

func RecordBytes(role, direction string, n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	sessionBytes.WithLabelValues(role, direction).Add(float64(n))
}

func RecordHeartbeatTimeout(role string) {
	RegisterMetrics()
	sessionHeartbeatTimeouts.WithLabelValues(role).Inc()
}

func RecordSessionError(role, reason string) {
	RegisterMetrics()
	sessionErrors.WithLabelValues(role, reason).Inc()
}

func RecordDecoded(protocol string, messageType byte) {
	RegisterMetrics()
	decodedMessages.WithLabelValues(protocol, string(rune(messageType))).Inc()
}

func SessionOpened(role string) {
	RegisterMetrics()
	activeSessions.WithLabelValues(role).Inc()
}

func SessionClosed(role string) {
	RegisterMetrics()
	activeSessions.WithLabelValues(role).Dec()
}
