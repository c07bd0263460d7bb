package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

const (
	securityMiddlewareNameConstant = "SecurityMiddleware"
	metricsMiddlewareNameConstant  = "MetricsMiddleware"

	defaultMetricsPathConstant   = "/metrics"
	rateLimitWindowConstant      = time.Minute
	forbiddenHostMessageConstant = "host not allowed"
	rateLimitedMessageConstant   = "rate limit exceeded"

	errorFieldNameConstant = "error"
)

type securityMiddlewareOptions struct {
	Enabled      bool                     `mapstructure:"enabled"`
	AllowedHosts []string                 `mapstructure:"allowed_hosts"`
	RateLimit    securityRateLimitOptions `mapstructure:"rate_limit"`
}

type securityRateLimitOptions struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
}

type metricsMiddlewareOptions struct {
	Enabled        bool   `mapstructure:"enabled"`
	EnableTiming   bool   `mapstructure:"enable_timing"`
	TrackEndpoints bool   `mapstructure:"track_endpoints"`
	MetricsPath    string `mapstructure:"metrics_path"`
}

// securityMiddleware rejects requests from hosts outside the configured
// allow-list and applies a fixed-window request rate limit.
type securityMiddleware struct {
	options      securityMiddlewareOptions
	allowedHosts map[string]struct{}

	windowGuard sync.Mutex
	windowStart time.Time
	windowCount int
}

func newSecurityMiddleware(rawOptions map[string]any) (*securityMiddleware, error) {
	options := securityMiddlewareOptions{Enabled: true}
	if decodeError := mapstructure.Decode(rawOptions, &options); decodeError != nil {
		return nil, decodeError
	}

	allowedHosts := make(map[string]struct{}, len(options.AllowedHosts))
	for _, allowedHost := range options.AllowedHosts {
		allowedHosts[allowedHost] = struct{}{}
	}

	return &securityMiddleware{options: options, allowedHosts: allowedHosts}, nil
}

func (middleware *securityMiddleware) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if !middleware.options.Enabled {
			next.ServeHTTP(responseWriter, request)
			return
		}

		if len(middleware.allowedHosts) > 0 && !middleware.hostAllowed(request.Host) {
			respondJSON(responseWriter, http.StatusForbidden, map[string]any{errorFieldNameConstant: forbiddenHostMessageConstant})
			return
		}

		if middleware.options.RateLimit.Enabled && !middleware.admitRequest() {
			respondJSON(responseWriter, http.StatusTooManyRequests, map[string]any{errorFieldNameConstant: rateLimitedMessageConstant})
			return
		}

		next.ServeHTTP(responseWriter, request)
	})
}

func (middleware *securityMiddleware) hostAllowed(requestHost string) bool {
	hostName := requestHost
	if splitHost, _, splitError := net.SplitHostPort(requestHost); splitError == nil {
		hostName = splitHost
	}
	_, allowed := middleware.allowedHosts[hostName]
	return allowed
}

func (middleware *securityMiddleware) admitRequest() bool {
	requestLimit := middleware.options.RateLimit.RequestsPerMinute
	if requestLimit <= 0 {
		return true
	}

	middleware.windowGuard.Lock()
	defer middleware.windowGuard.Unlock()

	now := time.Now()
	if now.Sub(middleware.windowStart) >= rateLimitWindowConstant {
		middleware.windowStart = now
		middleware.windowCount = 0
	}

	if middleware.windowCount >= requestLimit {
		return false
	}

	middleware.windowCount++
	return true
}

// metricsMiddleware counts requests, optionally accumulates handler timings,
// and serves a snapshot at the configured metrics path.
type metricsMiddleware struct {
	options metricsMiddlewareOptions

	snapshotGuard  sync.Mutex
	requestCounts  map[string]int64
	totalDurations map[string]time.Duration
}

func newMetricsMiddleware(rawOptions map[string]any) (*metricsMiddleware, error) {
	options := metricsMiddlewareOptions{Enabled: true, MetricsPath: defaultMetricsPathConstant}
	if decodeError := mapstructure.Decode(rawOptions, &options); decodeError != nil {
		return nil, decodeError
	}
	if len(options.MetricsPath) == 0 {
		options.MetricsPath = defaultMetricsPathConstant
	}

	return &metricsMiddleware{
		options:        options,
		requestCounts:  map[string]int64{},
		totalDurations: map[string]time.Duration{},
	}, nil
}

func (middleware *metricsMiddleware) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		if !middleware.options.Enabled {
			next.ServeHTTP(responseWriter, request)
			return
		}

		requestStart := time.Now()
		next.ServeHTTP(responseWriter, request)

		metricKey := request.Method
		if middleware.options.TrackEndpoints {
			metricKey = request.Method + " " + request.URL.Path
		}

		middleware.snapshotGuard.Lock()
		middleware.requestCounts[metricKey]++
		if middleware.options.EnableTiming {
			middleware.totalDurations[metricKey] += time.Since(requestStart)
		}
		middleware.snapshotGuard.Unlock()
	})
}

func (middleware *metricsMiddleware) serveSnapshot(responseWriter http.ResponseWriter, request *http.Request) {
	middleware.snapshotGuard.Lock()
	requestCounts := make(map[string]int64, len(middleware.requestCounts))
	for metricKey, requestCount := range middleware.requestCounts {
		requestCounts[metricKey] = requestCount
	}
	timingsMilliseconds := make(map[string]int64, len(middleware.totalDurations))
	for metricKey, totalDuration := range middleware.totalDurations {
		timingsMilliseconds[metricKey] = totalDuration.Milliseconds()
	}
	middleware.snapshotGuard.Unlock()

	snapshot := map[string]any{"requests": requestCounts}
	if middleware.options.EnableTiming {
		snapshot["timings_ms"] = timingsMilliseconds
	}

	respondJSON(responseWriter, http.StatusOK, snapshot)
}

func respondJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	_ = json.NewEncoder(responseWriter).Encode(payload)
}
