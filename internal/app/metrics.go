package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "duet_sessions_active",
		Help: "Live sessions in the store",
	})

	metricSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duet_sessions_created_total",
		Help: "Sessions created",
	})

	metricSessionsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duet_sessions_expired_total",
		Help: "Sessions removed by the idle sweeper",
	})

	metricCreateErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duet_create_errors_total",
		Help: "Rejected create-session requests",
	}, []string{"reason"})

	metricJoinErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duet_join_errors_total",
		Help: "Rejected join-session requests",
	}, []string{"reason"})

	metricRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duet_relayed_events_total",
		Help: "Content events delivered to a peer",
	}, []string{"kind"})

	metricRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "duet_rejected_events_total",
		Help: "Content events rejected by content policy",
	}, []string{"kind"})

	metricBackpressure = promauto.NewCounter(prometheus.CounterOpts{
		Name: "duet_backpressure_total",
		Help: "Frames that could not be queued for a slow connection",
	})
)
