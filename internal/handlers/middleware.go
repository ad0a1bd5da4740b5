package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/persona"
	"github.com/LingByte/LingReception/pkg/twilio"
	"github.com/LingByte/LingReception/pkg/utils"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// RequestID tags every request with an id, reusing the caller's when given.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = utils.RandText(16)
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs each request and counts it per route and status.
func AccessLog(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.Request(route, strconv.Itoa(status))

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", c.GetString(requestIDKey)),
		}
		if sid := c.PostForm("CallSid"); sid != "" {
			fields = append(fields, zap.String("callSid", sid))
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}

func fallbackTwiML() string {
	return twilio.NewResponse().
		Say(persona.TechnicalDifficulties, twilio.SayOptions{Voice: twilio.DefaultSayVoice}).
		String()
}

// TwiMLRecovery turns a panic inside a webhook into the technical
// difficulties line so the caller hears something instead of Twilio's
// application error message.
func TwiMLRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("webhook panicked",
			zap.Any("error", err),
			zap.String("path", c.Request.URL.Path),
			zap.String("callSid", c.PostForm("CallSid")))
		c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(fallbackTwiML()))
		c.Abort()
	})
}

// TwilioSignature rejects webhooks whose X-Twilio-Signature does not match.
// baseURL overrides the scheme and host used to rebuild the signed URL,
// which matters behind tunnels and proxies.
func TwilioSignature(authToken, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		fullURL := requestBaseURL(c, baseURL) + c.Request.URL.RequestURI()
		if !twilio.ValidSignature(authToken, fullURL, c.Request.PostForm, c.GetHeader(twilio.SignatureHeader)) {
			logger.Warn("rejected unsigned webhook", zap.String("url", fullURL))
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
