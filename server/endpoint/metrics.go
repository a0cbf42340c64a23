package endpoint

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

const mb = 1 << 20

// Metrics returns a handler with a runtime snapshot. Request and pipeline
// metrics are exported over OTLP; this is for a quick look at memory while
// large videos are in flight.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(http.StatusOK, gin.H{
			"goroutines": runtime.NumGoroutine(),
			"cpus":       runtime.NumCPU(),
			"heap": gin.H{
				"in_use_mb":   m.HeapInuse / mb,
				"released_mb": m.HeapReleased / mb,
				"objects":     m.HeapObjects,
			},
			"gc": gin.H{
				"runs":           m.NumGC,
				"pause_total_ms": m.PauseTotalNs / 1e6,
			},
		})
	}
}
