package media

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/llm"
	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/speech"
	"github.com/LingByte/LingReception/pkg/voice"
)

// Stream is one Twilio media socket. The read loop owns the connection's
// reader and the transcriber session; the write loop owns the writer; a
// conversation goroutine turns transcripts into replies.
type Stream struct {
	m       *Manager
	conn    *websocket.Conn
	callSid string

	ctx    context.Context
	cancel context.CancelFunc
	out    chan outboundMessage
	wg     sync.WaitGroup

	mu        sync.RWMutex
	streamSid string

	started atomic.Bool
	playing atomic.Bool
	ending  atomic.Bool

	session speech.Session
}

func (s *Stream) StreamSid() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamSid
}

func (s *Stream) run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.writeLoop()
	}()

	s.readLoop()

	s.cancel()
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			logger.Debug("transcriber close", zap.String("callSid", s.callSid), zap.Error(err))
		}
	}
	s.wg.Wait()

	if s.ending.Load() && s.m.cfg.Hangup != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.m.cfg.WriteTimeout)
		if err := s.m.cfg.Hangup(ctx, s.callSid); err != nil {
			logger.Warn("hangup after farewell failed", zap.String("callSid", s.callSid), zap.Error(err))
		}
		cancel()
	}

	s.m.rec.EndCall(context.Background(), s.callSid, "completed")
	s.m.unregister(s)
	s.m.metrics.StreamClosed()
	logger.Info("media stream closed", zap.String("callSid", s.callSid), zap.String("streamSid", s.StreamSid()))
}

func (s *Stream) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("media stream read failed", zap.String("callSid", s.callSid), zap.Error(err))
			}
			return
		}

		var msg inboundMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			logger.Debug("bad media stream message", zap.String("callSid", s.callSid), zap.Error(err))
			continue
		}

		switch msg.Event {
		case EventConnected:
			logger.Debug("media stream handshake", zap.String("callSid", s.callSid))
		case EventStart:
			if msg.Start != nil {
				s.start(msg.Start)
			}
		case EventMedia:
			if msg.Media != nil {
				s.forward(msg.Media)
			}
		case EventMark:
			if msg.Mark == nil {
				continue
			}
			switch msg.Mark.Name {
			case MarkSpeechDone:
				s.playing.Store(false)
			case MarkGoodbye:
				return
			}
		case EventDTMF:
			if msg.DTMF != nil {
				logger.Info("caller pressed a key, ignoring it", zap.String("callSid", s.callSid), zap.String("digit", msg.DTMF.Digit))
			}
		case EventStop:
			return
		}
	}
}

func (s *Stream) writeLoop() {
	defer s.conn.Close()
	timeout := s.m.cfg.WriteTimeout
	for {
		select {
		case <-s.ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(timeout))
			return
		case msg := <-s.out:
			data, err := sonic.Marshal(msg)
			if err != nil {
				logger.Warn("encode media stream message", zap.Error(err))
				continue
			}
			if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
				s.cancel()
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Warn("media stream write failed", zap.String("callSid", s.callSid), zap.Error(err))
				s.cancel()
				return
			}
		}
	}
}

func (s *Stream) start(p *startPayload) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.mu.Lock()
	s.streamSid = p.StreamSid
	s.mu.Unlock()

	logger.Info("media stream started",
		zap.String("callSid", s.callSid),
		zap.String("streamSid", p.StreamSid),
		zap.String("encoding", p.MediaFormat.Encoding),
		zap.Int("sampleRate", p.MediaFormat.SampleRate))

	if s.m.stt != nil {
		sess, err := s.m.stt.Start(s.ctx)
		if err != nil {
			logger.Warn("transcriber unavailable", zap.String("callSid", s.callSid), zap.String("provider", s.m.stt.Name()), zap.Error(err))
		} else {
			s.session = sess
		}
	}

	s.wg.Add(1)
	go s.converse(s.session, p.CustomParameters["from"], p.CustomParameters["to"])
}

func (s *Stream) forward(p *mediaPayload) {
	if s.session == nil || (p.Track != "" && p.Track != "inbound") {
		return
	}
	audio, err := base64.StdEncoding.DecodeString(p.Payload)
	if err != nil || len(audio) == 0 {
		return
	}
	if err := s.session.SendAudio(audio); err != nil {
		logger.Debug("transcriber rejected audio", zap.String("callSid", s.callSid), zap.Error(err))
	}
}

func (s *Stream) converse(sess speech.Session, from, to string) {
	defer s.wg.Done()

	if d := s.m.cfg.GreetingDelay; d > 0 {
		t := time.NewTimer(d)
		select {
		case <-s.ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	g := s.m.rec.StartCall(s.ctx, s.callSid, from, to)
	opts := speech.SynthOptions{Style: string(g.Voice.Style), Voice: g.Voice.Voice}
	s.speak(g.Enhanced.Text, opts, MarkSpeechDone)

	if sess == nil {
		return
	}
	var pending []string
	for {
		select {
		case <-s.ctx.Done():
			return
		case t, ok := <-sess.Transcripts():
			if !ok {
				return
			}
			pending = s.handle(t, opts, pending)
		}
	}
}

// handle collects final transcript pieces until the provider reports the
// end of the utterance, then answers the whole utterance at once.
func (s *Stream) handle(t speech.Transcript, opts speech.SynthOptions, pending []string) []string {
	if s.ending.Load() {
		return nil
	}
	if t.SpeechStarted && s.playing.Load() {
		s.clear()
	}
	if t.IsFinal {
		if text := strings.TrimSpace(t.Text); text != "" {
			pending = append(pending, text)
		}
	}
	if !t.UtteranceEnd || len(pending) == 0 {
		return pending
	}

	utterance := strings.Join(pending, " ")
	logger.Info("caller said", zap.String("callSid", s.callSid), zap.String("speech", utterance))
	turn := s.m.rec.Reply(s.ctx, s.callSid, utterance)
	if turn.Farewell {
		s.ending.Store(true)
		n := s.speak(voice.Clean(turn.Goodbye), opts, MarkGoodbye)
		playback := time.Duration(n) * time.Second / speech.SampleRate
		time.AfterFunc(playback+s.m.cfg.HangupGrace, s.cancel)
		return nil
	}
	text := turn.Enhanced.Text
	if text == "" {
		text = voice.Clean(turn.Text)
	}
	s.speak(text, opts, MarkSpeechDone)
	return nil
}

// speak synthesizes text, queues it in frames followed by mark and returns
// the number of audio bytes queued.
func (s *Stream) speak(text string, opts speech.SynthOptions, mark string) int {
	if s.m.tts == nil || text == "" {
		return 0
	}

	sid := s.StreamSid()
	size := s.m.cfg.FrameSize
	total := 0
	// sentences go out as soon as each is synthesized
	for _, segment := range llm.Segments(text) {
		audio, err := s.m.tts.Synthesize(s.ctx, strings.TrimSpace(segment), opts)
		if err != nil {
			s.m.metrics.SynthesisFailed(s.m.tts.Name())
			logger.Warn("synthesis failed", zap.String("callSid", s.callSid), zap.String("provider", s.m.tts.Name()), zap.Error(err))
			break
		}
		s.playing.Store(true)
		for off := 0; off < len(audio); off += size {
			chunk := audio[off:min(off+size, len(audio))]
			if !s.send(outboundMessage{
				Event:     EventMedia,
				StreamSid: sid,
				Media:     &mediaPayload{Payload: base64.StdEncoding.EncodeToString(chunk)},
			}) {
				return total + off
			}
		}
		total += len(audio)
	}
	if total == 0 {
		return 0
	}
	s.send(outboundMessage{Event: EventMark, StreamSid: sid, Mark: &markPayload{Name: mark}})
	return total
}

// clear drops whatever Twilio still has buffered for playback.
func (s *Stream) clear() {
	s.playing.Store(false)
	s.send(outboundMessage{Event: EventClear, StreamSid: s.StreamSid()})
	logger.Debug("caller barged in", zap.String("callSid", s.callSid))
}

func (s *Stream) send(msg outboundMessage) bool {
	select {
	case s.out <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}
