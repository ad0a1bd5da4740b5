// Package media bridges Twilio Media Streams to the receptionist: caller
// audio goes to a transcriber, final transcripts get a reply and the reply
// is synthesized back onto the socket as µ-law frames.
package media

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/metrics"
	"github.com/LingByte/LingReception/pkg/receptionist"
	"github.com/LingByte/LingReception/pkg/speech"
)

// Receptionist is the part of the front desk a stream talks to.
type Receptionist interface {
	StartCall(ctx context.Context, callSid, from, to string) receptionist.Greeting
	Reply(ctx context.Context, callSid, speech string) receptionist.Turn
	EndCall(ctx context.Context, callSid, status string)
}

type Config struct {
	// GreetingDelay is how long to wait after start before greeting.
	GreetingDelay time.Duration
	// FrameSize is the number of µ-law bytes per outbound media message.
	FrameSize    int
	WriteTimeout time.Duration
	// HangupGrace is added to the goodbye's playback time before the
	// socket is closed when Twilio never acknowledges the goodbye mark.
	HangupGrace time.Duration
	// Hangup, when set, ends the call on the carrier side after a farewell
	// so the caller is not left on a dead line.
	Hangup func(ctx context.Context, callSid string) error
}

func (c Config) withDefaults() Config {
	if c.FrameSize <= 0 {
		c.FrameSize = 6000
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.HangupGrace <= 0 {
		c.HangupGrace = 2 * time.Second
	}
	return c
}

// Manager upgrades media stream sockets and tracks the live ones by call sid.
type Manager struct {
	cfg      Config
	rec      Receptionist
	stt      speech.Transcriber
	tts      speech.Synthesizer
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	streams map[string]*Stream
}

// NewManager builds a Manager. stt and tts may be nil: without a transcriber
// the caller is only greeted, without a synthesizer nothing is played.
func NewManager(cfg Config, rec Receptionist, stt speech.Transcriber, tts speech.Synthesizer, m *metrics.Metrics) *Manager {
	return &Manager{
		cfg:     cfg.withDefaults(),
		rec:     rec,
		stt:     stt,
		tts:     tts,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		streams: make(map[string]*Stream),
	}
}

// Handle upgrades the request and serves the stream until it ends.
func (m *Manager) Handle(w http.ResponseWriter, r *http.Request, callSid string) error {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Stream{
		m:       m,
		conn:    conn,
		callSid: callSid,
		ctx:     ctx,
		cancel:  cancel,
		out:     make(chan outboundMessage, 64),
	}
	m.register(s)
	m.metrics.StreamOpened()
	logger.Info("media stream connected", zap.String("callSid", callSid), zap.String("remote", r.RemoteAddr))

	s.run()
	return nil
}

// ActiveCount is the number of open streams.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.streams)
}

// Close ends every open stream.
func (m *Manager) Close() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.streams {
		s.cancel()
	}
}

func (m *Manager) register(s *Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.streams[s.callSid]; ok {
		logger.Warn("replacing media stream", zap.String("callSid", s.callSid))
		old.cancel()
	}
	m.streams[s.callSid] = s
}

func (m *Manager) unregister(s *Stream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streams[s.callSid] == s {
		delete(m.streams, s.callSid)
	}
}
