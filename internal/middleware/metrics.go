package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	AnalysesFailed     uint64
	CacheHits          uint64
	CacheMisses        uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// IncrementAnalyses increments total analyses counter
func IncrementAnalyses() {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
}

// IncrementAnalysesFailed increments failed analyses counter
func IncrementAnalysesFailed() {
	atomic.AddUint64(&globalMetrics.AnalysesFailed, 1)
}

// IncrementCacheHits increments the fingerprint cache hit counter
func IncrementCacheHits() {
	atomic.AddUint64(&globalMetrics.CacheHits, 1)
}

// IncrementCacheMisses increments the fingerprint cache miss counter
func IncrementCacheMisses() {
	atomic.AddUint64(&globalMetrics.CacheMisses, 1)
}

// MetricsMiddleware counts requests and their outcome status
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler exposes the counters plus basic runtime stats
func MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		out := map[string]any{
			"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
			"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
			"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
			"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
			"analyses_total":       atomic.LoadUint64(&globalMetrics.AnalysesTotal),
			"analyses_failed":      atomic.LoadUint64(&globalMetrics.AnalysesFailed),
			"cache_hits":           atomic.LoadUint64(&globalMetrics.CacheHits),
			"cache_misses":         atomic.LoadUint64(&globalMetrics.CacheMisses),
			"uptime_seconds":       int64(time.Since(globalMetrics.StartTime).Seconds()),
			"goroutines":           runtime.NumGoroutine(),
			"heap_alloc_bytes":     mem.HeapAlloc,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
