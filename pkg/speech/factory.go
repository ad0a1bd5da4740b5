package speech

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/config"
	"github.com/LingByte/LingReception/pkg/logger"
)

func googleCredentials() bool {
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
}

func awsCredentials() bool {
	return os.Getenv("AWS_ACCESS_KEY_ID") != "" || os.Getenv("AWS_PROFILE") != "" ||
		os.Getenv("AWS_WEB_IDENTITY_TOKEN_FILE") != ""
}

// NewTranscriber builds the configured speech-to-text provider.
func NewTranscriber(ctx context.Context, cfg config.SpeechConfig) (Transcriber, error) {
	var (
		t   Transcriber
		err error
	)
	switch strings.ToLower(cfg.STTProvider) {
	case "", "deepgram":
		var d *Deepgram
		if d, err = NewDeepgram(cfg.DeepgramAPIKey, cfg.DeepgramURL, cfg.Language); err == nil {
			t = d
		}
	case "google":
		if !googleCredentials() {
			return nil, ErrNotConfigured
		}
		var g *GoogleTranscriber
		if g, err = NewGoogleTranscriber(ctx, cfg.Language); err == nil {
			t = g
		}
	case "aws":
		if !awsCredentials() {
			return nil, ErrNotConfigured
		}
		var a *AWSTranscriber
		if a, err = NewAWSTranscriber(ctx, cfg.AWSRegion, cfg.Language); err == nil {
			t = a
		}
	default:
		return nil, fmt.Errorf("unknown stt provider %q", cfg.STTProvider)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// NewSynthesizer builds the configured text-to-speech provider.
func NewSynthesizer(ctx context.Context, cfg config.SpeechConfig) (Synthesizer, error) {
	var (
		s   Synthesizer
		err error
	)
	switch strings.ToLower(cfg.TTSProvider) {
	case "", "deepgram":
		var d *Deepgram
		if d, err = NewDeepgram(cfg.DeepgramAPIKey, cfg.DeepgramURL, cfg.Language); err == nil {
			s = d
		}
	case "google":
		if !googleCredentials() {
			return nil, ErrNotConfigured
		}
		var g *GoogleSynthesizer
		if g, err = NewGoogleSynthesizer(ctx, cfg.GoogleVoice); err == nil {
			s = g
		}
	case "polly":
		if !awsCredentials() {
			return nil, ErrNotConfigured
		}
		var p *PollySynthesizer
		if p, err = NewPollySynthesizer(ctx, cfg.AWSRegion); err == nil {
			s = p
		}
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.TTSProvider)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Providers resolves both directions, logging and swallowing missing
// credentials so the server still starts in <Say>-only mode.
func Providers(ctx context.Context, cfg config.SpeechConfig) (Transcriber, Synthesizer) {
	var (
		stt Transcriber
		tts Synthesizer
	)
	if t, err := NewTranscriber(ctx, cfg); err != nil {
		logger.Info("speech-to-text disabled", zap.String("provider", cfg.STTProvider), zap.Error(err))
	} else {
		stt = t
	}
	if s, err := NewSynthesizer(ctx, cfg); err != nil {
		logger.Info("text-to-speech disabled", zap.String("provider", cfg.TTSProvider), zap.Error(err))
	} else {
		tts = s
	}
	return stt, tts
}
