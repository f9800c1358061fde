package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: доставленные уведомления по политике, виду и исходу
	DispatchTotal *prometheus.CounterVec

	// Latency: время обработки уведомления всеми политиками
	DispatchDuration *prometheus.HistogramVec

	// Errors: отказы обработчиков и хуков
	ErrorTotal *prometheus.CounterVec

	// Переговоры с платформой (grant/withdraw, ok/failed)
	NegotiationTotal *prometheus.CounterVec

	// Переходы жизненного цикла
	TransitionTotal *prometheus.CounterVec

	// Текущее состояние каждой политики (1 для текущего состояния, 0 для остальных)
	PolicyState *prometheus.GaugeVec

	// Подписки на уровне платформы (после подсчёта ссылок)
	PlatformSubscriptions prometheus.Gauge

	// Saturation: состояние Circuit Breaker (0 - закрыт, 1 - полуоткрыт, 2 - открыт)
	CircuitBreakerState *prometheus.GaugeVec

	// Журнал: заполненность буфера (backpressure)
	JournalBufferFill prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		DispatchTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "policyhost_dispatch_total",
			Help: "Notifications delivered to policies.",
		}, []string{"policy", "kind", "outcome"}),

		DispatchDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "policyhost_dispatch_duration_seconds",
			Help:    "Histogram of fan-out latencies per notification kind.",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),

		ErrorTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "policyhost_errors_total",
			Help: "Total number of errors by type.",
		}, []string{"type"}), // типы: handler, hook, negotiation, source

		NegotiationTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "policyhost_negotiations_total",
			Help: "Capability negotiation attempts.",
		}, []string{"policy", "grant", "result"}),

		TransitionTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "policyhost_transitions_total",
			Help: "Policy lifecycle transitions.",
		}, []string{"policy", "transition", "result"}),

		PolicyState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "policyhost_policy_state",
			Help: "Current lifecycle state of each policy.",
		}, []string{"policy", "state"}),

		PlatformSubscriptions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "policyhost_platform_subscriptions",
			Help: "Notification kinds currently requested from the platform.",
		}),

		CircuitBreakerState: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "policyhost_circuit_breaker_state",
			Help: "Current state of the circuit breaker (0=closed, 1=half-open, 2=open).",
		}, []string{"channel"}),

		JournalBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "policyhost_journal_buffer_utilization",
			Help: "Current number of entries in the journal buffer.",
		}),
	}
}
