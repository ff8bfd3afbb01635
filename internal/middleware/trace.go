package middleware

import (
	"myArtMarket/business/bandit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const HeaderTraceID = "X-Trace-Id"

// TraceID reuses the caller's X-Trace-Id or mints one, and puts it on the
// request context so every log line of the request carries it.
func TraceID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			tid := req.Header.Get(HeaderTraceID)
			if tid == "" {
				tid = uuid.NewString()
			}

			c.SetRequest(req.WithContext(bandit.WithTraceID(req.Context(), tid)))
			c.Response().Header().Set(HeaderTraceID, tid)
			c.Set("trace_id", tid)

			return next(c)
		}
	}
}
