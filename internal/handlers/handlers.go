// Package handlers exposes the receptionist over HTTP: Twilio webhooks, the
// media stream socket, the web call widget endpoint and a few read-only
// status routes.
package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/interactions"
	"github.com/LingByte/LingReception/pkg/knowledge"
	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/media"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/receptionist"
	"github.com/LingByte/LingReception/pkg/speech"
	"github.com/LingByte/LingReception/pkg/twilio"
)

// Deps are the services behind the routes. Everything but Config and
// Receptionist may be nil; the matching feature is then reported unavailable.
type Deps struct {
	Config       *config.Config
	Receptionist *receptionist.Receptionist
	Twilio       *twilio.Client
	Media        *media.Manager
	Knowledge    *knowledge.Base
	Interactions *interactions.Log
	Metrics      *metrics.Metrics
	Synthesizer  *speech.CachedSynthesizer
	Transcriber  speech.Transcriber
	DB           *gorm.DB
	LLMAvailable bool
}

type Handlers struct {
	cfg          *config.Config
	rec          *receptionist.Receptionist
	twilio       *twilio.Client
	media        *media.Manager
	kb           *knowledge.Base
	interactions *interactions.Log
	metrics      *metrics.Metrics
	synth        *speech.CachedSynthesizer
	stt          speech.Transcriber
	db           *gorm.DB
	llm          bool
	started      time.Time
}

func New(d Deps) *Handlers {
	return &Handlers{
		cfg:          d.Config,
		rec:          d.Receptionist,
		twilio:       d.Twilio,
		media:        d.Media,
		kb:           d.Knowledge,
		interactions: d.Interactions,
		metrics:      d.Metrics,
		synth:        d.Synthesizer,
		stt:          d.Transcriber,
		db:           d.DB,
		llm:          d.LLMAvailable,
		started:      time.Now(),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("index").Parse(indexPage)))
	r.Use(RequestID(), AccessLog(h.metrics))

	hooks := r.Group("/", TwiMLRecovery())
	if h.cfg.Twilio.ValidateSignature {
		hooks.Use(TwilioSignature(h.cfg.Twilio.AuthToken, h.cfg.Server.WebhookBaseURL))
	}
	hooks.POST("/incoming-call", h.IncomingCall)
	hooks.POST("/handle-speech", h.HandleSpeech)
	hooks.POST("/call-status", h.CallStatus)
	hooks.POST("/test-simple", h.TestSimple)

	r.GET("/call-status/:callSid", h.GetCallStatus)
	r.POST("/web-call", h.WebCall)
	r.GET("/media-stream/:callSid", h.MediaStream)
	r.GET("/audio/:id", h.Audio)

	r.GET("/health", h.Health)
	r.GET("/", h.Index)
	r.GET("/interactions/recent", h.RecentInteractions)
	r.GET("/interactions/funny", h.FunnyInteractions)
	r.GET("/interactions/call/:callSid", h.CallInteractions)
	r.GET("/calls/recent", h.RecentCalls)
	r.GET("/knowledge/search", h.SearchKnowledge)

	prefix := h.cfg.Server.MonitorPrefix
	if prefix == "" {
		prefix = "/metrics"
	}
	r.GET(prefix, gin.WrapH(h.metrics.Handler()))
}

// baseURL is where Twilio reaches us: the configured webhook base, or the
// scheme and host of the current request.
func (h *Handlers) baseURL(c *gin.Context) string {
	return requestBaseURL(c, h.cfg.Server.WebhookBaseURL)
}

// requestBaseURL is the public scheme and host Twilio used to reach us:
// configured when set, otherwise rebuilt from the forwarding headers.
func requestBaseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "https"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS == nil {
		scheme = "http"
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + host
}

func (h *Handlers) streamURL(c *gin.Context, callSid string) string {
	base := h.baseURL(c)
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/media-stream/" + callSid
}

func writeTwiML(c *gin.Context, resp *twilio.Response) {
	body, err := resp.Render()
	if err != nil {
		logger.Error("failed to render twiml", zap.Error(err))
		body = []byte(fallbackTwiML())
	}
	c.Data(http.StatusOK, "text/xml; charset=utf-8", body)
}
