package speech

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	pollytypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/aws-sdk-go-v2/service/transcribestreaming"
	tstypes "github.com/aws/aws-sdk-go-v2/service/transcribestreaming/types"
	"go.uber.org/zap"

	"github.com/LingByte/LingReception/pkg/logger"
)

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// PollyVoiceID turns "Polly.Amy-Neural" into "Amy".
func PollyVoiceID(voice string) string {
	id := strings.TrimPrefix(voice, "Polly.")
	id = strings.TrimSuffix(id, "-Neural")
	if id == "" {
		return "Amy"
	}
	return id
}

// PollySynthesizer renders speech with Amazon Polly neural voices.
type PollySynthesizer struct {
	client *polly.Client
}

func NewPollySynthesizer(ctx context.Context, region string) (*PollySynthesizer, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &PollySynthesizer{client: polly.NewFromConfig(cfg)}, nil
}

func (p *PollySynthesizer) Name() string { return "polly" }

// Synthesize asks Polly for 8 kHz PCM and converts it to µ-law.
func (p *PollySynthesizer) Synthesize(ctx context.Context, text string, opts SynthOptions) ([]byte, error) {
	out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
		Text:         aws.String(text),
		OutputFormat: pollytypes.OutputFormatPcm,
		SampleRate:   aws.String("8000"),
		VoiceId:      pollytypes.VoiceId(PollyVoiceID(opts.Voice)),
		Engine:       pollytypes.EngineNeural,
		TextType:     pollytypes.TextTypeText,
	})
	if err != nil {
		return nil, fmt.Errorf("polly synthesize: %w", err)
	}
	defer out.AudioStream.Close()

	pcm, err := io.ReadAll(out.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("polly read audio: %w", err)
	}
	return PCM16ToMulaw(pcm), nil
}

// AWSTranscriber streams audio to Amazon Transcribe.
type AWSTranscriber struct {
	client   *transcribestreaming.Client
	language string
}

func NewAWSTranscriber(ctx context.Context, region, language string) (*AWSTranscriber, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	if language == "" {
		language = "en-US"
	}
	return &AWSTranscriber{client: transcribestreaming.NewFromConfig(cfg), language: language}, nil
}

func (a *AWSTranscriber) Name() string { return "aws" }

func (a *AWSTranscriber) Start(ctx context.Context) (Session, error) {
	ctx, cancel := context.WithCancel(ctx)
	resp, err := a.client.StartStreamTranscription(ctx, &transcribestreaming.StartStreamTranscriptionInput{
		LanguageCode:         tstypes.LanguageCode(a.language),
		MediaEncoding:        tstypes.MediaEncodingPcm,
		MediaSampleRateHertz: aws.Int32(SampleRate),
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("aws start transcription: %w", err)
	}

	s := &awsSession{
		ctx:         ctx,
		cancel:      cancel,
		stream:      resp.GetStream(),
		transcripts: make(chan Transcript, 64),
	}
	go s.readLoop()
	return s, nil
}

type awsSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	stream      *transcribestreaming.StartStreamTranscriptionEventStream
	transcripts chan Transcript
	sendMu      sync.Mutex
	closeOnce   sync.Once
	speaking    bool
}

func (s *awsSession) Transcripts() <-chan Transcript { return s.transcripts }

// SendAudio decodes µ-law to PCM16 since Transcribe has no µ-law input.
func (s *awsSession) SendAudio(mulaw []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.stream.Send(s.ctx, &tstypes.AudioStreamMemberAudioEvent{
		Value: tstypes.AudioEvent{AudioChunk: MulawToPCM16(mulaw)},
	})
}

func (s *awsSession) emit(t Transcript) bool {
	select {
	case s.transcripts <- t:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *awsSession) readLoop() {
	defer close(s.transcripts)
	for event := range s.stream.Events() {
		te, ok := event.(*tstypes.TranscriptResultStreamMemberTranscriptEvent)
		if !ok || te.Value.Transcript == nil {
			continue
		}
		for _, result := range te.Value.Transcript.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			text := aws.ToString(result.Alternatives[0].Transcript)
			if text == "" {
				continue
			}
			final := !result.IsPartial
			if !s.speaking && !final {
				s.speaking = true
				if !s.emit(Transcript{SpeechStarted: true}) {
					return
				}
			}
			if !s.emit(Transcript{Text: text, IsFinal: final}) {
				return
			}
			if final {
				s.speaking = false
				if !s.emit(Transcript{UtteranceEnd: true}) {
					return
				}
			}
		}
	}
	if err := s.stream.Err(); err != nil && s.ctx.Err() == nil {
		logger.Warn("aws transcribe stream ended", zap.Error(err))
	}
}

func (s *awsSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.stream.Close()
		s.cancel()
	})
	return err
}
