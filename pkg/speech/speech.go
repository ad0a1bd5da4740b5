// Package speech holds the speech-to-text and text-to-speech providers used
// by the real-time media bridge and the inline <Play> renderer. All audio in
// and out of this package is 8 kHz mono G.711 µ-law, the format Twilio
// Media Streams carry.
package speech

import (
	"context"
	"errors"
)

const SampleRate = 8000

// ErrNotConfigured means the selected provider has no credentials.
var ErrNotConfigured = errors.New("speech: provider not configured")

// Transcript is one recognition event.
type Transcript struct {
	Text          string
	IsFinal       bool
	SpeechStarted bool
	UtteranceEnd  bool
}

// Session is a live recognition stream. Transcripts is closed once the
// provider connection ends.
type Session interface {
	SendAudio(mulaw []byte) error
	Transcripts() <-chan Transcript
	Close() error
}

// Transcriber opens recognition sessions.
type Transcriber interface {
	Name() string
	Start(ctx context.Context) (Session, error)
}

// SynthOptions selects how a line should sound.
type SynthOptions struct {
	// Style is a delivery style such as "sarcastic" or "bored".
	Style string
	// Voice is the call's Polly voice, e.g. "Polly.Amy-Neural".
	Voice string
}

// Synthesizer renders text to raw µ-law audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, opts SynthOptions) ([]byte, error)
}
