package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "calbot_messages_received_total",
		Help: "Total number of chat messages received from the gateway.",
	})

	MessagesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calbot_messages_rejected_total",
		Help: "Total number of messages rejected before processing, labelled by reason.",
	}, []string{"reason"})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calbot_transitions_total",
		Help: "Total number of handled messages, labelled by source state and outcome.",
	}, []string{"from", "outcome"})

	ParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calbot_parse_failures_total",
		Help: "Total number of messages that didn't follow the grammar, labelled by locale.",
	}, []string{"locale"})

	CalendarRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "calbot_calendar_requests_total",
		Help: "Total number of calendar API calls, labelled by operation and status.",
	}, []string{"op", "status"})

	HandleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "calbot_message_handling_duration_seconds",
		Help:    "Time spent handling a message, external calls included.",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	QueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "calbot_dispatcher_queued_messages",
		Help: "Messages waiting in the dispatcher queues.",
	})
)

func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
