// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slate_api_request_duration_seconds",
			Help:    "Total time taken for requests in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60},
		},
		[]string{"path"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slate_api_model_call_duration_seconds",
			Help:    "Time spent waiting on the vision model in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 15, 20, 25, 30, 45, 60},
		},
		[]string{"provider", "model"},
	)

	ModelCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_api_model_call_errors_total",
			Help: "Vision model call failures by classification",
		},
		[]string{"provider", "code"},
	)

	ImagesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_api_images_rejected_total",
			Help: "Images rejected by validation before any model call",
		},
		[]string{"reason"},
	)

	ExpressionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slate_api_expressions_returned",
			Help:    "Expressions parsed out of a single model reply",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 13, 21},
		},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slate_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)
)
