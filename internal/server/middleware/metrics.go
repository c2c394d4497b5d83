package middleware

import (
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const notFoundPath = "/not-found"

type MetricsConfig struct {
	// Skipper excludes requests from the histogram. /metrics is served either way.
	Skipper     Skipper
	Namespace   string
	MetricsPath string
	Buckets     []float64
}

var DefaultMetricsConfig = MetricsConfig{
	Skipper:     DefaultSkipper,
	Namespace:   "storefront",
	MetricsPath: "/metrics",
	// pages render from memory, the tail covers a cold catalog fetch
	Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

// Metrics records the duration of every routed request by status, method and
// route pattern, and serves the prometheus registry on config.MetricsPath.
func Metrics(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultMetricsConfig.Skipper
	}
	if config.Buckets == nil {
		config.Buckets = DefaultMetricsConfig.Buckets
	}

	durations := registerHTTPMetrics(config)

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if promHandler != nil && req.URL.Path == config.MetricsPath {
				return promHandler(c)
			}
			if config.Skipper(c) {
				return next(c)
			}

			// unmatched paths share one label
			path := c.Path()
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				// commit the error response so its status is the one recorded
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			durations.WithLabelValues(status, req.Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func registerHTTPMetrics(config MetricsConfig) *prometheus.HistogramVec {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: config.Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Time spent serving storefront pages and API calls.",
		Buckets:   config.Buckets,
	}, []string{"code", "method", "path"})

	if err := prometheus.Register(durations); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		return are.ExistingCollector.(*prometheus.HistogramVec)
	}
	return durations
}
