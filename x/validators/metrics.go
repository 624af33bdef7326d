package validators

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "poa",
		Name:      "votes_total",
		Help:      "Number of accepted votes on validator proposals.",
	}, []string{"kind"})

	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "poa",
		Name:      "resolutions_total",
		Help:      "Number of validator admissions and removals.",
	}, []string{"kind", "path"})

	validatorsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "poa",
		Name:      "validators",
		Help:      "Size of the validator set scheduled for the next session.",
	})
)

// Resolution paths reported by resolutionsTotal.
const (
	pathVote  = "vote"
	pathAdmin = "admin"
)
