package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts speech provider calls by provider, operation and
	// outcome ("ok" or "error").
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subtitler",
		Name:      "provider_calls_total",
		Help:      "Speech provider calls by provider, operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	// EncodeAttempts counts ffmpeg encode attempts by preset and outcome
	// ("ok", "timeout" or "error").
	EncodeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subtitler",
		Name:      "encode_attempts_total",
		Help:      "ffmpeg encode attempts by preset and outcome.",
	}, []string{"preset", "outcome"})

	// EncodeDuration observes wall time of successful encodes per preset.
	EncodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "subtitler",
		Name:      "encode_duration_seconds",
		Help:      "Wall time of successful ffmpeg encodes.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"preset"})

	// QuotaRejections counts admissions refused by the ledger, by reason
	// ("extension", "size", "count" or "duration").
	QuotaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "subtitler",
		Name:      "quota_rejections_total",
		Help:      "Upload admissions refused by the quota ledger.",
	}, []string{"reason"})

	// UploadsAdmitted counts uploads that passed admission.
	UploadsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "subtitler",
		Name:      "uploads_admitted_total",
		Help:      "Uploads recorded in the ledger.",
	})
)
