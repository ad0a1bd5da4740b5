package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/persona"
	"github.com/LingByte/LingReception/pkg/session"
	"github.com/LingByte/LingReception/pkg/speech"
	"github.com/LingByte/LingReception/pkg/twilio"
	"github.com/LingByte/LingReception/pkg/voice"
)

const streamTrack = "both_tracks"

// IncomingCall answers a new call, either with a speech Gather around the
// greeting or by connecting the call to the media stream.
func (h *Handlers) IncomingCall(c *gin.Context) {
	callSid := c.PostForm("CallSid")
	from := c.PostForm("From")
	to := c.PostForm("To")
	logger.Info("incoming call", zap.String("callSid", callSid), zap.String("from", from))

	if h.cfg.Media.StreamEnabled && h.media != nil {
		// the stream greets the caller once it starts
		writeTwiML(c, twilio.NewResponse().ConnectStream(h.streamURL(c, callSid), streamTrack,
			twilio.Parameter{Name: "from", Value: from},
			twilio.Parameter{Name: "to", Value: to}))
		return
	}

	g := h.rec.StartCall(c.Request.Context(), callSid, from, to)
	resp := twilio.NewResponse().Pause(1)
	gather := resp.Gather(twilio.GatherOptions{})
	opts := twilio.SayOptions{Voice: g.Enhanced.Voice, Rate: g.Enhanced.Rate, Volume: g.Enhanced.Volume}
	if url, ok := h.render(c, g.Enhanced.Text, g.Voice); ok {
		gather.Play(url, 0)
	} else {
		gather.Say(g.Enhanced.Text, opts)
	}
	writeTwiML(c, resp)
}

// HandleSpeech answers one Gather result.
func (h *Handlers) HandleSpeech(c *gin.Context) {
	callSid := c.PostForm("CallSid")
	speechResult := c.PostForm("SpeechResult")
	logger.Info("caller said", zap.String("callSid", callSid), zap.String("speech", speechResult))

	turn := h.rec.Reply(c.Request.Context(), callSid, speechResult)
	callVoice := turn.Voice.Voice
	resp := twilio.NewResponse()

	if turn.Farewell {
		if url, ok := h.render(c, voice.Clean(turn.Goodbye), turn.Voice); ok {
			resp.Play(url, 0)
		} else {
			resp.Say(turn.Goodbye, twilio.SayOptions{Voice: callVoice, Rate: twilio.DefaultSayRate})
		}
		resp.Hangup()
		h.rec.EndCall(c.Request.Context(), callSid, "completed")
		writeTwiML(c, resp)
		return
	}

	if turn.Hold {
		resp.Say(persona.HoldAnnouncement, twilio.SayOptions{Voice: callVoice, Rate: twilio.DefaultSayRate, Volume: "soft"})
		resp.Play(turn.HoldMusic, 1)
		resp.Say(persona.HoldReturn, twilio.SayOptions{Voice: callVoice, Rate: twilio.DefaultSayRate})
	}

	gather := resp.Gather(twilio.GatherOptions{})
	// the call keeps its voice; the style only changes rate, volume and text
	if url, ok := h.render(c, turn.Enhanced.Text, turn.Voice); ok {
		gather.Play(url, 0)
	} else {
		gather.Say(turn.Enhanced.Text, twilio.SayOptions{Voice: callVoice, Rate: turn.Enhanced.Rate, Volume: turn.Enhanced.Volume})
	}
	if turn.FollowUp {
		gather.Pause(1)
		gather.Say(persona.FollowUp, twilio.SayOptions{Voice: callVoice, Rate: twilio.DefaultSayRate})
	}
	writeTwiML(c, resp)
}

// render synthesizes text when inline playback is on and returns the URL
// Twilio should <Play>. ok is false when the caller should fall back to <Say>.
func (h *Handlers) render(c *gin.Context, text string, a voice.Assignment) (string, bool) {
	if h.synth == nil || !h.cfg.Services.Speech.PlayInline || text == "" {
		return "", false
	}
	ctx := c.Request.Context()
	if d := h.cfg.Services.Speech.Timeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	opts := speech.SynthOptions{Style: string(a.Style), Voice: a.Voice}
	if _, err := h.synth.Synthesize(ctx, text, opts); err != nil {
		h.metrics.SynthesisFailed(h.synth.Name())
		logger.Warn("inline synthesis failed, using <Say>", zap.String("provider", h.synth.Name()), zap.Error(err))
		return "", false
	}
	return h.baseURL(c) + "/audio/" + speech.CacheKey(h.synth.Name(), text, opts), true
}

// Audio serves synthesized µ-law audio for <Play>.
func (h *Handlers) Audio(c *gin.Context) {
	if h.synth == nil {
		c.Status(http.StatusNotFound)
		return
	}
	audio, ok := h.synth.Lookup(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "audio/basic", audio)
}

// CallStatus records a status callback.
func (h *Handlers) CallStatus(c *gin.Context) {
	callSid := c.PostForm("CallSid")
	status := c.PostForm("CallStatus")
	logger.Info("call status", zap.String("callSid", callSid), zap.String("status", status))
	if callSid != "" {
		h.rec.UpdateStatus(c.Request.Context(), callSid, status)
	}
	c.Status(http.StatusOK)
}

// GetCallStatus lets the web widget poll a call it started.
func (h *Handlers) GetCallStatus(c *gin.Context) {
	callSid := c.Param("callSid")
	st := h.rec.Store().Status(callSid)
	// calls already swept from memory are looked up at Twilio
	if st.Status == session.StatusUnknown && h.twilio.Available() {
		call, err := h.twilio.FetchCall(c.Request.Context(), callSid)
		if err == nil && call.Status != "" {
			st.Status = call.Status
		} else if err != nil {
			logger.Debug("twilio call lookup failed", zap.String("callSid", callSid), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    st.Status,
		"timestamp": st.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handlers) TestSimple(c *gin.Context) {
	writeTwiML(c, twilio.NewResponse().Say(persona.TestLine, twilio.SayOptions{
		Voice:  twilio.DefaultSayVoice,
		Rate:   "95%",
		Volume: "soft",
	}))
}

// MediaStream upgrades to the Twilio media socket.
func (h *Handlers) MediaStream(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "media streams are disabled"})
		return
	}
	callSid := c.Param("callSid")
	if err := h.media.Handle(c.Writer, c.Request, callSid); err != nil {
		logger.Warn("media stream upgrade failed", zap.String("callSid", callSid), zap.Error(err))
	}
}
