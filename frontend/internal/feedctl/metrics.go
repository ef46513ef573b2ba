package feedctl

import (
	"github.com/itchan-dev/blogfeed/shared/middleware/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Events folded into the post feed, by kind",
		},
		[]string{"kind"},
	)

	postsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: "feed",
			Name:      "posts",
			Help:      "Number of posts currently in the feed",
		},
	)
)
