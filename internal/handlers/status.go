package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/internal/models"
	"github.com/LingByte/LingReception/pkg/logger"
)

const defaultRecentCount = 50

func (h *Handlers) mode() string {
	if h.cfg.Media.StreamEnabled && h.media != nil {
		return "stream"
	}
	return "gather"
}

func (h *Handlers) activeStreams() int {
	if h.media == nil {
		return 0
	}
	return h.media.ActiveCount()
}

// Health reports that the service works, reluctantly.
func (h *Handlers) Health(c *gin.Context) {
	p := h.rec.Persona()
	mood := p.CurrentMood()

	speechInfo := gin.H{"stt": "none", "tts": "none", "playInline": h.cfg.Services.Speech.PlayInline}
	if h.stt != nil {
		speechInfo["stt"] = h.stt.Name()
	}
	if h.synth != nil {
		speechInfo["tts"] = h.synth.Name()
	}

	body := gin.H{
		"status":              "unfortunately operational",
		"mode":                h.mode(),
		"mood":                mood.Name,
		"moodTraits":          mood.Traits,
		"activeConversations": h.rec.Store().ActiveCount(),
		"activeStreams":       h.activeStreams(),
		"serverUptime":        time.Since(h.started).Seconds(),
		"currentTime":         p.Now().UTC().Format(time.RFC3339Nano),
		"sarcasmLevel":        "maximum",
		"willToLive":          "depleting",
		"speech":              speechInfo,
		"llm":                 gin.H{"available": h.llm, "model": h.cfg.Services.LLM.Model},
		"twilio":              gin.H{"available": h.twilio.Available()},
		"message":             "Yes, it's working. No, I'm not happy about it.",
	}
	if h.kb != nil {
		body["knowledgeBase"] = h.kb.Stats()
	} else {
		body["knowledgeBase"] = gin.H{"initialized": false}
	}
	c.JSON(http.StatusOK, body)
}

type endpoint struct {
	Method, Path, Description string
}

var endpoints = []endpoint{
	{"POST", "/incoming-call", "Main receptionist"},
	{"POST", "/handle-speech", "Conversation turns"},
	{"POST", "/call-status", "Twilio status callback"},
	{"GET", "/call-status/:callSid", "Poll a call's status"},
	{"POST", "/web-call", "Have the receptionist call you"},
	{"POST", "/test-simple", "Simple test"},
	{"WS", "/media-stream/:callSid", "Real-time media stream"},
	{"GET", "/health", "Health, such as it is"},
	{"GET", "/interactions/recent", "Recent interactions"},
	{"GET", "/interactions/funny", "Stored funny interactions"},
	{"GET", "/interactions/call/:callSid", "Stored interactions of one call"},
	{"GET", "/calls/recent", "Recent call records"},
	{"GET", "/knowledge/search?q=", "Ask the knowledge base"},
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>{{.Name}}</title></head>
<body>
<h1>Sarcastic Receptionist</h1>
<p><strong>Status:</strong> Working, unfortunately<br>
<strong>Mood:</strong> {{.Mood}}<br>
<strong>Mode:</strong> {{.Mode}}<br>
<strong>Active calls:</strong> {{.ActiveCalls}}</p>
<h3>Endpoints</h3>
<ul>
{{range .Endpoints}}<li><code>{{.Method}} {{.Path}}</code> - {{.Description}}</li>
{{end}}</ul>
<p><a href="/health">Check Health Status</a></p>
</body>
</html>
`

// Index is the info page.
func (h *Handlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{
		"Name":        h.cfg.Server.Name,
		"Mood":        h.rec.Persona().CurrentMood().Name,
		"Mode":        h.mode(),
		"ActiveCalls": h.rec.Store().ActiveCount(),
		"Endpoints":   endpoints,
	})
}

// RecentInteractions returns the newest interaction log entries.
func (h *Handlers) RecentInteractions(c *gin.Context) {
	if h.interactions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "interaction log is disabled"})
		return
	}
	entries, err := h.interactions.Recent(recentCount(c))
	if err != nil {
		logger.Warn("failed to read interactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read interactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(entries), "interactions": entries})
}

// recentCount reads ?count=, falling back to defaultRecentCount.
func recentCount(c *gin.Context) int {
	count := cast.ToInt(c.Query("count"))
	if count <= 0 {
		count = defaultRecentCount
	}
	return count
}

// FunnyInteractions lists stored exchanges flagged as funny, newest first.
func (h *Handlers) FunnyInteractions(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database is not configured"})
		return
	}
	rows, err := models.GetFunnyInteractions(h.db, recentCount(c))
	if err != nil {
		logger.Warn("failed to load funny interactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "interactions": rows})
}

// CallInteractions lists the stored exchanges of one call in order.
func (h *Handlers) CallInteractions(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database is not configured"})
		return
	}
	callSid := c.Param("callSid")
	rows, err := models.GetInteractionsByCallSid(h.db, callSid)
	if err != nil {
		logger.Warn("failed to load call interactions", zap.String("callSid", callSid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interactions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"callSid": callSid, "count": len(rows), "interactions": rows})
}

// RecentCalls lists call records, newest first.
func (h *Handlers) RecentCalls(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database is not configured"})
		return
	}
	rows, err := models.GetRecentCallRecords(h.db, recentCount(c))
	if err != nil {
		logger.Warn("failed to load call records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load calls"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "calls": rows})
}

// SearchKnowledge runs a knowledge base search and returns the answer the
// receptionist would give.
func (h *Handlers) SearchKnowledge(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	if !h.kb.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "knowledge base is not configured"})
		return
	}
	res := h.kb.Search(q)
	c.JSON(http.StatusOK, gin.H{
		"query":      q,
		"confidence": res.Confidence,
		"answer":     h.kb.Answer(res),
		"results":    res,
	})
}
