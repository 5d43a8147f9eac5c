package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder records completed inbound requests.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, duration time.Duration)
	IncActiveRequests()
	DecActiveRequests()
}

// Metrics returns a middleware that records request count, latency, and
// in-flight requests. Requests are labelled by matched route pattern.
func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if recorder == nil {
			c.Next()
			return
		}

		start := time.Now()
		recorder.IncActiveRequests()
		defer recorder.DecActiveRequests()

		c.Next()

		recorder.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
