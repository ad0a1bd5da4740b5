package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	speechapi "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
)

const DefaultGoogleVoice = "en-GB-Neural2-A"

// GoogleTranscriber streams µ-law audio to Cloud Speech-to-Text.
type GoogleTranscriber struct {
	client   *speechapi.Client
	language string
}

func NewGoogleTranscriber(ctx context.Context, language string) (*GoogleTranscriber, error) {
	client, err := speechapi.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google speech client: %w", err)
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleTranscriber{client: client, language: language}, nil
}

func (g *GoogleTranscriber) Name() string { return "google" }

func (g *GoogleTranscriber) Start(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := g.client.StreamingRecognize(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("google streaming recognize: %w", err)
	}
	err = stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_MULAW,
					SampleRateHertz:            SampleRate,
					AudioChannelCount:          1,
					LanguageCode:               g.language,
					Model:                      "phone_call",
					UseEnhanced:                true,
					EnableAutomaticPunctuation: true,
				},
				InterimResults: true,
			},
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("google streaming config: %w", err)
	}

	s := &googleSession{
		stream:      stream,
		cancel:      cancel,
		transcripts: make(chan Transcript, 64),
		stop:        make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (g *GoogleTranscriber) Close() error {
	return g.client.Close()
}

type googleSession struct {
	stream      speechpb.Speech_StreamingRecognizeClient
	cancel      context.CancelFunc
	transcripts chan Transcript
	stop        chan struct{}
	sendMu      sync.Mutex
	closeOnce   sync.Once
	speaking    bool
}

func (s *googleSession) emit(t Transcript) bool {
	select {
	case s.transcripts <- t:
		return true
	case <-s.stop:
		return false
	}
}

func (s *googleSession) Transcripts() <-chan Transcript { return s.transcripts }

func (s *googleSession) SendAudio(mulaw []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{AudioContent: mulaw},
	})
}

func (s *googleSession) readLoop() {
	defer close(s.transcripts)
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			if !strings.Contains(err.Error(), "context canceled") {
				logger.Warn("google recognize stream ended", zap.Error(err))
			}
			return
		}
		for _, result := range resp.GetResults() {
			alts := result.GetAlternatives()
			if len(alts) == 0 || alts[0].GetTranscript() == "" {
				continue
			}
			// Google has no separate VAD event; the first interim result of
			// an utterance stands in for it.
			if !s.speaking && !result.GetIsFinal() {
				s.speaking = true
				if !s.emit(Transcript{SpeechStarted: true}) {
					return
				}
			}
			if !s.emit(Transcript{Text: alts[0].GetTranscript(), IsFinal: result.GetIsFinal()}) {
				return
			}
			if result.GetIsFinal() {
				s.speaking = false
				if !s.emit(Transcript{UtteranceEnd: true}) {
					return
				}
			}
		}
	}
}

func (s *googleSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.sendMu.Lock()
		err = s.stream.CloseSend()
		s.sendMu.Unlock()
		close(s.stop)
		s.cancel()
	})
	return err
}

// GoogleSynthesizer renders speech with Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	voice  string
}

func NewGoogleSynthesizer(ctx context.Context, voice string) (*GoogleSynthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("google tts client: %w", err)
	}
	if voice == "" {
		voice = DefaultGoogleVoice
	}
	return &GoogleSynthesizer{client: client, voice: voice}, nil
}

func (g *GoogleSynthesizer) Name() string { return "google" }

// languageOf turns "en-GB-Neural2-A" into "en-GB".
func languageOf(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return "en-US"
	}
	return parts[0] + "-" + parts[1]
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string, opts SynthOptions) ([]byte, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageOf(g.voice),
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_MULAW,
			SampleRateHertz: SampleRate,
			SpeakingRate:    speakingRate(opts.Style),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google synthesize: %w", err)
	}
	return StripWAVHeader(resp.GetAudioContent()), nil
}

func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

// speakingRate mirrors the 115% <prosody> rate, slowed down for tired styles.
func speakingRate(style string) float64 {
	switch style {
	case "exhausted", "bored":
		return 0.95
	}
	return 1.15
}
