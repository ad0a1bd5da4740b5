package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/LingByte/LingReception/pkg/logger"
	"github.com/LingByte/LingReception/pkg/utils"
	"github.com/spf13/cast"
)

// Config main configuration structure
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          logger.LogConfig   `mapstructure:"log"`
	Twilio       TwilioConfig       `mapstructure:"twilio"`
	Services     ServicesConfig     `mapstructure:"services"`
	Media        MediaConfig        `mapstructure:"media"`
	Persona      PersonaConfig      `mapstructure:"persona"`
	Interactions InteractionsConfig `mapstructure:"interactions"`
	Knowledge    KnowledgeConfig    `mapstructure:"knowledge"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Name           string `env:"SERVER_NAME"`
	Addr           string `env:"PORT"`
	Mode           string `env:"MODE"`
	WebhookBaseURL string `env:"WEBHOOK_BASE_URL"`
	MonitorPrefix  string `env:"MONITOR_PREFIX"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER"`
	DSN    string `env:"DSN"`
}

// TwilioConfig telephony provider credentials
type TwilioConfig struct {
	Skip              bool   `env:"SKIP_TWILIO"`
	AccountSID        string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken         string `env:"TWILIO_AUTH_TOKEN"`
	PhoneNumber       string `env:"TWILIO_PHONE_NUMBER"`
	APIBaseURL        string `env:"TWILIO_API_BASE_URL"`
	ValidateSignature bool   `env:"TWILIO_VALIDATE_SIGNATURE"`
}

// Enabled reports whether the REST client can be built from these credentials.
func (t TwilioConfig) Enabled() bool {
	return !t.Skip && t.AuthToken != "" && strings.HasPrefix(t.AccountSID, "AC")
}

// ServicesConfig services configuration
type ServicesConfig struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Speech SpeechConfig `mapstructure:"speech"`
}

// LLMConfig LLM service configuration
type LLMConfig struct {
	Provider         string        `env:"LLM_PROVIDER"`
	APIKey           string        `env:"OPENAI_API_KEY"`
	BaseURL          string        `env:"LLM_BASE_URL"`
	Model            string        `env:"LLM_MODEL"`
	Temperature      float32       `env:"LLM_TEMPERATURE"`
	MaxTokens        int           `env:"LLM_MAX_TOKENS"`
	PresencePenalty  float32       `env:"LLM_PRESENCE_PENALTY"`
	FrequencyPenalty float32       `env:"LLM_FREQUENCY_PENALTY"`
	Timeout          time.Duration `env:"LLM_TIMEOUT"`
}

// SpeechConfig STT / TTS provider selection
type SpeechConfig struct {
	STTProvider    string        `env:"STT_PROVIDER"` // deepgram, google, aws
	TTSProvider    string        `env:"TTS_PROVIDER"` // deepgram, google, polly
	DeepgramAPIKey string        `env:"DEEPGRAM_API_KEY"`
	DeepgramURL    string        `env:"DEEPGRAM_API_URL"`
	AWSRegion      string        `env:"AWS_REGION"`
	GoogleVoice    string        `env:"GOOGLE_TTS_VOICE"`
	Language       string        `env:"SPEECH_LANGUAGE"`
	Timeout        time.Duration `env:"TTS_TIMEOUT"`
	PlayInline     bool          `env:"TTS_PLAY_INLINE"`
	CacheSize      int           `env:"TTS_CACHE_SIZE"`
	CacheTTL       time.Duration `env:"TTS_CACHE_TTL"`
}

// MediaConfig real-time media stream configuration
type MediaConfig struct {
	StreamEnabled bool          `env:"MEDIA_STREAM_ENABLED"`
	GreetingDelay time.Duration `env:"MEDIA_GREETING_DELAY"`
	FrameSize     int           `env:"MEDIA_FRAME_SIZE"`
}

// PersonaConfig receptionist behaviour knobs
type PersonaConfig struct {
	StatusCleanupDelay   time.Duration `env:"STATUS_CLEANUP_DELAY"`
	InterruptProbability float64       `env:"INTERRUPT_PROBABILITY"`
	TemplateProbability  float64       `env:"TEMPLATE_PROBABILITY"`
	HoldProbability      float64       `env:"HOLD_PROBABILITY"`
	FollowUpProbability  float64       `env:"FOLLOW_UP_PROBABILITY"`
}

// InteractionsConfig interaction log files
type InteractionsConfig struct {
	LogFile      string `env:"INTERACTIONS_LOG"`
	FunnyLogFile string `env:"FUNNY_INTERACTIONS_LOG"`
	MaxSize      int    `env:"INTERACTIONS_MAX_SIZE"`
}

// KnowledgeConfig knowledge base source and cache
type KnowledgeConfig struct {
	SourceURL       string        `env:"KNOWLEDGE_BASE_URL"`
	UpdateInterval  time.Duration `env:"KNOWLEDGE_UPDATE_INTERVAL"`
	MatchThreshold  float64       `env:"KNOWLEDGE_MATCH_THRESHOLD"`
	CacheBackend    string        `env:"KNOWLEDGE_CACHE"` // file, database
	CacheFile       string        `env:"KNOWLEDGE_CACHE_FILE"`
	AnswerThreshold float64       `env:"KNOWLEDGE_ANSWER_THRESHOLD"`
}

var GlobalConfig *Config

func Load() error {
	// 1. Load .env file based on environment (don't error if it doesn't exist, use default values)
	env := os.Getenv("APP_ENV")
	if err := utils.LoadEnv(env); err != nil {
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	// 2. Load global configuration
	GlobalConfig = &Config{
		Server: ServerConfig{
			Name:           getStringOrDefault("SERVER_NAME", "LingReception"),
			Addr:           normalizeAddr(getStringOrDefault("PORT", "3000")),
			Mode:           getStringOrDefault("MODE", "development"),
			WebhookBaseURL: strings.TrimRight(getStringOrDefault("WEBHOOK_BASE_URL", ""), "/"),
			MonitorPrefix:  getStringOrDefault("MONITOR_PREFIX", "/metrics"),
		},
		Database: DatabaseConfig{
			Driver: getStringOrDefault("DB_DRIVER", "sqlite"),
			DSN:    getStringOrDefault("DSN", "./reception.db"),
		},
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		Twilio: TwilioConfig{
			Skip:              getBoolOrDefault("SKIP_TWILIO", false),
			AccountSID:        getStringOrDefault("TWILIO_ACCOUNT_SID", ""),
			AuthToken:         getStringOrDefault("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber:       getStringOrDefault("TWILIO_PHONE_NUMBER", "+1234567890"),
			APIBaseURL:        getStringOrDefault("TWILIO_API_BASE_URL", "https://api.twilio.com"),
			ValidateSignature: getBoolOrDefault("TWILIO_VALIDATE_SIGNATURE", false),
		},
		Services: ServicesConfig{
			LLM: LLMConfig{
				Provider:         getStringOrDefault("LLM_PROVIDER", "openai"),
				APIKey:           getStringOrDefault("OPENAI_API_KEY", ""),
				BaseURL:          getStringOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
				Model:            getStringOrDefault("LLM_MODEL", "gpt-4"),
				Temperature:      float32(getFloatOrDefault("LLM_TEMPERATURE", 0.85)),
				MaxTokens:        getIntOrDefault("LLM_MAX_TOKENS", 120),
				PresencePenalty:  float32(getFloatOrDefault("LLM_PRESENCE_PENALTY", 0.6)),
				FrequencyPenalty: float32(getFloatOrDefault("LLM_FREQUENCY_PENALTY", 0.3)),
				Timeout:          parseDuration(getStringOrDefault("LLM_TIMEOUT", ""), 20*time.Second),
			},
			Speech: SpeechConfig{
				STTProvider:    strings.ToLower(getStringOrDefault("STT_PROVIDER", "deepgram")),
				TTSProvider:    strings.ToLower(getStringOrDefault("TTS_PROVIDER", "deepgram")),
				DeepgramAPIKey: getStringOrDefault("DEEPGRAM_API_KEY", ""),
				DeepgramURL:    strings.TrimRight(getStringOrDefault("DEEPGRAM_API_URL", "https://api.deepgram.com"), "/"),
				AWSRegion:      getStringOrDefault("AWS_REGION", "us-east-1"),
				GoogleVoice:    getStringOrDefault("GOOGLE_TTS_VOICE", "en-GB-Neural2-A"),
				Language:       getStringOrDefault("SPEECH_LANGUAGE", "en-US"),
				Timeout:        parseDuration(getStringOrDefault("TTS_TIMEOUT", ""), 10*time.Second),
				PlayInline:     getBoolOrDefault("TTS_PLAY_INLINE", false),
				CacheSize:      getIntOrDefault("TTS_CACHE_SIZE", 1024),
				CacheTTL:       parseDuration(getStringOrDefault("TTS_CACHE_TTL", ""), 5*time.Minute),
			},
		},
		Media: MediaConfig{
			StreamEnabled: getBoolOrDefault("MEDIA_STREAM_ENABLED", false),
			GreetingDelay: parseDuration(getStringOrDefault("MEDIA_GREETING_DELAY", ""), 500*time.Millisecond),
			FrameSize:     getIntOrDefault("MEDIA_FRAME_SIZE", 6000),
		},
		Persona: PersonaConfig{
			StatusCleanupDelay:   parseDuration(getStringOrDefault("STATUS_CLEANUP_DELAY", ""), 60*time.Second),
			InterruptProbability: getFloatOrDefault("INTERRUPT_PROBABILITY", 0.15),
			TemplateProbability:  getFloatOrDefault("TEMPLATE_PROBABILITY", 0.7),
			HoldProbability:      getFloatOrDefault("HOLD_PROBABILITY", 0.1),
			FollowUpProbability:  getFloatOrDefault("FOLLOW_UP_PROBABILITY", 0.2),
		},
		Interactions: InteractionsConfig{
			LogFile:      getStringOrDefault("INTERACTIONS_LOG", "./interactions.jsonl"),
			FunnyLogFile: getStringOrDefault("FUNNY_INTERACTIONS_LOG", "./funny-interactions.log"),
			MaxSize:      getIntOrDefault("INTERACTIONS_MAX_SIZE", 50),
		},
		Knowledge: KnowledgeConfig{
			SourceURL:       getStringOrDefault("KNOWLEDGE_BASE_URL", ""),
			UpdateInterval:  parseDuration(getStringOrDefault("KNOWLEDGE_UPDATE_INTERVAL", ""), time.Hour),
			MatchThreshold:  getFloatOrDefault("KNOWLEDGE_MATCH_THRESHOLD", 0.6),
			CacheBackend:    strings.ToLower(getStringOrDefault("KNOWLEDGE_CACHE", "file")),
			CacheFile:       getStringOrDefault("KNOWLEDGE_CACHE_FILE", "./knowledge-cache/knowledge-base.json"),
			AnswerThreshold: getFloatOrDefault("KNOWLEDGE_ANSWER_THRESHOLD", 0.9),
		},
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("database DSN is required")
	}
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	probabilities := []struct {
		name  string
		value float64
	}{
		{"interrupt", c.Persona.InterruptProbability},
		{"template", c.Persona.TemplateProbability},
		{"hold", c.Persona.HoldProbability},
		{"follow-up", c.Persona.FollowUpProbability},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s probability must be between 0 and 1", p.name)
		}
	}
	return nil
}

// normalizeAddr accepts a bare port ("3000") or a listen address (":3000", "0.0.0.0:3000").
func normalizeAddr(v string) string {
	if v == "" || strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}

// getStringOrDefault gets environment variable value, returns default if empty
func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getBoolOrDefault gets boolean environment variable value, returns default if empty
func getBoolOrDefault(key string, defaultValue bool) bool {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getIntOrDefault gets integer environment variable value, returns default if empty
func getIntOrDefault(key string, defaultValue int) int {
	value := utils.GetIntEnv(key)
	if value == 0 {
		return defaultValue
	}
	return int(value)
}

// getFloatOrDefault gets float environment variable value, returns default if empty
func getFloatOrDefault(key string, defaultValue float64) float64 {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return defaultValue
	}
	return f
}

// parseDuration parses duration string with default fallback
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}
