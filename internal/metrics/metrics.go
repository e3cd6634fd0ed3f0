// Package metrics defines Prometheus counters for the button contest.
// They are registered on the default registry and served by the admin API
// under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PushesTotal counts accepted button pushes.
	PushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycobot_button_pushes_total",
		Help: "Number of accepted button pushes.",
	})

	// PushesRejectedTotal counts pushes rejected by the cooldown.
	PushesRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycobot_button_pushes_rejected_total",
		Help: "Number of button pushes rejected while on cooldown.",
	})

	// MirrorFailuresTotal counts failed attempts to mirror a push to the store.
	MirrorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycobot_push_mirror_failures_total",
		Help: "Number of failed durable-store mirror attempts.",
	})

	// WinnersArchivedTotal counts daily winner entries archived.
	WinnersArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mycobot_daily_winners_archived_total",
		Help: "Number of daily winner entries archived.",
	})
)
