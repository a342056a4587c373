// Package metrics exposes prometheus collectors for plays and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	BetsTotal       *prometheus.CounterVec
	WageredTotal    *prometheus.CounterVec
	PaidOutTotal    *prometheus.CounterVec
	ForcedOutcomes  *prometheus.CounterVec
	ActiveRounds    prometheus.Gauge
	JobRuns         *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New builds the collectors and registers them on reg
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bets_total",
			Help:      "Settled plays by game and result",
		}, []string{"game", "result"}),
		WageredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wagered_total",
			Help:      "Sum of stakes by game",
		}, []string{"game"}),
		PaidOutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "paid_out_total",
			Help:      "Sum of gross payouts by game",
		}, []string{"game"}),
		ForcedOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forced_outcomes_total",
			Help:      "Plays whose outcome was changed by the balance policy",
		}, []string{"game", "bias"}),
		ActiveRounds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mine_rounds_started",
			Help:      "Mine rounds started minus rounds settled since boot",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by job and outcome",
		}, []string{"job", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.BetsTotal,
		m.WageredTotal,
		m.PaidOutTotal,
		m.ForcedOutcomes,
		m.ActiveRounds,
		m.JobRuns,
		m.RequestDuration,
	)

	return m
}

// A nil *Metrics is valid and records nothing.

func (m *Metrics) ObservePlay(game, result string, bet, payout int64, bias string) {
	if m == nil {
		return
	}
	m.BetsTotal.WithLabelValues(game, result).Inc()
	m.WageredTotal.WithLabelValues(game).Add(float64(bet))
	m.PaidOutTotal.WithLabelValues(game).Add(float64(payout))
	if bias != "" && bias != "none" {
		m.ForcedOutcomes.WithLabelValues(game, bias).Inc()
	}
}

func (m *Metrics) RoundStarted() {
	if m == nil {
		return
	}
	m.ActiveRounds.Inc()
}

func (m *Metrics) RoundSettled() {
	if m == nil {
		return
	}
	m.ActiveRounds.Dec()
}

func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
