package speech

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	speakapi "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/rest"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
)

const (
	DefaultDeepgramURL = "https://api.deepgram.com"
	defaultAuraModel   = "aura-2-athena-en"
)

var auraModels = map[string]string{
	"british_female":     "aura-2-thalia-en",
	"british_male":       "aura-2-orion-en",
	"american_female":    "aura-2-luna-en",
	"american_male":      "aura-2-zeus-en",
	"australian_female":  "aura-2-stella-en",
	"sarcastic":          "aura-2-athena-en",
	"condescending":      "aura-2-thalia-en",
	"bored":              "aura-2-luna-en",
	"exhausted":          "aura-2-hera-en",
	"dramatic":           "aura-2-athena-en",
	"passive_aggressive": "aura-2-stella-en",
}

// AuraModel maps a delivery style to a Deepgram Aura voice.
func AuraModel(style string) string {
	if m, ok := auraModels[style]; ok {
		return m
	}
	return defaultAuraModel
}

// liveConn is the slice of the SDK live client a session drives.
type liveConn interface {
	Connect() bool
	Write(p []byte) (int, error)
	Stop()
}

// Deepgram implements both Transcriber (live listen client) and Synthesizer
// (Aura speak client).
type Deepgram struct {
	apiKey   string
	host     string
	language string

	dial  func(ctx context.Context, cb *liveCallback) (liveConn, error)
	speak func(ctx context.Context, text string, opts *interfaces.SpeakOptions) ([]byte, error)
}

func NewDeepgram(apiKey, baseURL, language string) (*Deepgram, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if language == "" {
		language = "en-US"
	}
	d := &Deepgram{
		apiKey:   apiKey,
		host:     deepgramHost(baseURL),
		language: language,
	}
	d.dial = d.dialLive
	d.speak = d.speakREST
	return d, nil
}

// deepgramHost returns the host override for the SDK, or "" for the default.
func deepgramHost(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" || baseURL == DefaultDeepgramURL {
		return ""
	}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}

func (d *Deepgram) Name() string { return "deepgram" }

func (d *Deepgram) clientOptions() *interfaces.ClientOptions {
	return &interfaces.ClientOptions{
		Host:            d.host,
		EnableKeepAlive: true,
	}
}

func (d *Deepgram) liveOptions() *interfaces.LiveTranscriptionOptions {
	return &interfaces.LiveTranscriptionOptions{
		Model:          "nova-2",
		Language:       d.language,
		SmartFormat:    true,
		Encoding:       "mulaw",
		SampleRate:     SampleRate,
		Channels:       1,
		InterimResults: true,
		UtteranceEndMs: "1000",
		VadEvents:      true,
		Endpointing:    "300",
	}
}

func speakOptions(style string) *interfaces.SpeakOptions {
	return &interfaces.SpeakOptions{
		Model:      AuraModel(style),
		Encoding:   "mulaw",
		SampleRate: SampleRate,
		Container:  "none",
	}
}

func (d *Deepgram) speakREST(ctx context.Context, text string, opts *interfaces.SpeakOptions) ([]byte, error) {
	var buf interfaces.RawResponse
	client := speakapi.New(speak.NewREST(d.apiKey, d.clientOptions()))
	if _, err := client.ToStream(ctx, text, opts, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Synthesize renders raw µ-law with no container.
func (d *Deepgram) Synthesize(ctx context.Context, text string, opts SynthOptions) ([]byte, error) {
	audio, err := d.speak(ctx, text, speakOptions(opts.Style))
	if err != nil {
		return nil, fmt.Errorf("deepgram speak: %w", err)
	}
	return audio, nil
}

func (d *Deepgram) dialLive(ctx context.Context, cb *liveCallback) (liveConn, error) {
	c, err := listen.NewWSUsingCallback(ctx, d.apiKey, d.clientOptions(), d.liveOptions(), cb)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Start opens a live transcription stream. The SDK client keeps the socket
// alive between utterances and sends CloseStream on Stop.
func (d *Deepgram) Start(ctx context.Context) (Session, error) {
	cb := newLiveCallback()
	conn, err := d.dial(ctx, cb)
	if err != nil {
		return nil, fmt.Errorf("deepgram listen: %w", err)
	}
	if !conn.Connect() {
		return nil, fmt.Errorf("deepgram listen: connect failed")
	}
	return &deepgramSession{conn: conn, cb: cb}, nil
}

// liveCallback receives SDK events and turns them into Transcripts.
type liveCallback struct {
	transcripts chan Transcript
	stop        chan struct{}
	mu          sync.Mutex
	finished    bool
	stopOnce    sync.Once
}

var _ msginterfaces.LiveMessageCallback = (*liveCallback)(nil)

func newLiveCallback() *liveCallback {
	return &liveCallback{
		transcripts: make(chan Transcript, 64),
		stop:        make(chan struct{}),
	}
}

func (c *liveCallback) emit(t Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		return
	}
	select {
	case c.transcripts <- t:
	case <-c.stop:
	}
}

func (c *liveCallback) finish() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finished {
		c.finished = true
		close(c.transcripts)
	}
}

func (c *liveCallback) Open(*msginterfaces.OpenResponse) error { return nil }

func (c *liveCallback) Message(mr *msginterfaces.MessageResponse) error {
	if len(mr.Channel.Alternatives) == 0 {
		return nil
	}
	text := strings.TrimSpace(mr.Channel.Alternatives[0].Transcript)
	if text == "" {
		return nil
	}
	c.emit(Transcript{Text: text, IsFinal: mr.IsFinal})
	// endpointing closes the utterance before the UtteranceEnd event arrives
	if mr.IsFinal && mr.SpeechFinal {
		c.emit(Transcript{UtteranceEnd: true})
	}
	return nil
}

func (c *liveCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }

func (c *liveCallback) SpeechStarted(*msginterfaces.SpeechStartedResponse) error {
	c.emit(Transcript{SpeechStarted: true})
	return nil
}

func (c *liveCallback) UtteranceEnd(*msginterfaces.UtteranceEndResponse) error {
	c.emit(Transcript{UtteranceEnd: true})
	return nil
}

func (c *liveCallback) Close(*msginterfaces.CloseResponse) error {
	c.finish()
	return nil
}

func (c *liveCallback) Error(er *msginterfaces.ErrorResponse) error {
	logger.Warn("deepgram listen error", zap.Any("error", er))
	return nil
}

func (c *liveCallback) UnhandledEvent(data []byte) error {
	logger.Debug("deepgram unhandled event", zap.ByteString("event", data))
	return nil
}

type deepgramSession struct {
	conn      liveConn
	cb        *liveCallback
	closed    atomic.Bool
	closeOnce sync.Once
}

func (s *deepgramSession) Transcripts() <-chan Transcript { return s.cb.transcripts }

func (s *deepgramSession) SendAudio(mulaw []byte) error {
	if s.closed.Load() {
		return fmt.Errorf("deepgram session closed")
	}
	_, err := s.conn.Write(mulaw)
	return err
}

// Close flushes the stream with CloseStream and ends the transcript channel.
func (s *deepgramSession) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.conn.Stop()
		s.cb.finish()
	})
	return nil
}
