// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/metrics"
	"github.com/telekom/notification-service/pkg/system"
)

// RequestIDHeader carries the correlation ID of a request.
const RequestIDHeader = "X-Request-ID"

// RequestLogger stores a request-scoped logger carrying a correlation ID.
// A valid incoming X-Request-ID is reused, otherwise a new one is generated.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(cid); err != nil {
			cid = uuid.New().String()
		}
		c.Set("cid", cid)
		c.Writer.Header().Set(RequestIDHeader, cid)
		c.Set(system.ReqLoggerKey, log.With("cid", cid, "method", c.Request.Method, "path", c.FullPath()))
		c.Next()
	}
}

// InstrumentedHandler counts responses of handler by route and status code.
func InstrumentedHandler(route string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler(c)
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
