package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enroll_registrations_total",
		Help: "Students registered",
	})

	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enroll_logins_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	AssessmentsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enroll_assessments_submitted_total",
			Help: "Assessment submissions by storage mode",
		},
		[]string{"mode"},
	)

	AssessmentScores = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "enroll_assessment_score",
		Help:    "Distribution of submitted assessment scores",
		Buckets: prometheus.LinearBuckets(0, 1, 7),
	})
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			RegistrationsTotal,
			LoginsTotal,
			AssessmentsSubmitted,
			AssessmentScores,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
