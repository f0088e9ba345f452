package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rocketscienceinc/minigames-backend/internal/entity"
)

const namespace = "minigames"

type Metrics struct {
	SessionsCreated  *prometheus.CounterVec
	SessionsFinished *prometheus.CounterVec
	Moves            *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
	RewardFailures   prometheus.Counter
}

// New - creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	that := &Metrics{
		SessionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_created_total",
				Help:      "Sessions created, by game kind.",
			},
			[]string{"kind"},
		),
		SessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_finished_total",
				Help:      "Sessions finished, by game kind and outcome.",
			},
			[]string{"kind", "result"},
		),
		Moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moves_total",
				Help:      "Submitted moves, by game kind and result.",
			},
			[]string{"kind", "result"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently held in the registry.",
			},
		),
		RewardFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reward_delivery_failures_total",
				Help:      "Outcomes whose rewards could not be fully delivered.",
			},
		),
	}

	reg.MustRegister(
		that.SessionsCreated,
		that.SessionsFinished,
		that.Moves,
		that.ActiveSessions,
		that.RewardFailures,
	)

	return that
}

func (that *Metrics) Created(kind entity.Kind) {
	that.SessionsCreated.WithLabelValues(string(kind)).Inc()
	that.ActiveSessions.Inc()
}

func (that *Metrics) Finished(outcome *entity.Outcome) {
	that.SessionsFinished.WithLabelValues(string(outcome.Game), string(outcome.Result)).Inc()
	that.ActiveSessions.Dec()
}

// Move - result is "applied" or the rejection reason.
func (that *Metrics) Move(kind entity.Kind, result string) {
	that.Moves.WithLabelValues(string(kind), result).Inc()
}

func (that *Metrics) RewardFailed() {
	that.RewardFailures.Inc()
}
