package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LingByte/LingReception/pkg/config"
	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("llm: api key is not configured")

// Config holds the configuration for LLM service
type Config struct {
	Provider         string        `json:"provider" yaml:"provider"`
	APIKey           string        `json:"api_key" yaml:"api_key"`
	BaseURL          string        `json:"base_url" yaml:"base_url"`
	Model            string        `json:"model" yaml:"model"`
	Temperature      float32       `json:"temperature" yaml:"temperature"`
	MaxTokens        int           `json:"max_tokens" yaml:"max_tokens"`
	PresencePenalty  float32       `json:"presence_penalty" yaml:"presence_penalty"`
	FrequencyPenalty float32       `json:"frequency_penalty" yaml:"frequency_penalty"`
	Timeout          time.Duration `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a default configuration using global config
func DefaultConfig() *Config {
	if config.GlobalConfig == nil {
		return &Config{
			Provider:         "openai",
			BaseURL:          "https://api.openai.com/v1",
			Model:            "gpt-4",
			Temperature:      0.85,
			MaxTokens:        120,
			PresencePenalty:  0.6,
			FrequencyPenalty: 0.3,
			Timeout:          20 * time.Second,
		}
	}

	llmConfig := config.GlobalConfig.Services.LLM
	return &Config{
		Provider:         llmConfig.Provider,
		APIKey:           llmConfig.APIKey,
		BaseURL:          llmConfig.BaseURL,
		Model:            llmConfig.Model,
		Temperature:      llmConfig.Temperature,
		MaxTokens:        llmConfig.MaxTokens,
		PresencePenalty:  llmConfig.PresencePenalty,
		FrequencyPenalty: llmConfig.FrequencyPenalty,
		Timeout:          llmConfig.Timeout,
	}
}

// Service represents the LLM service
type Service struct {
	config  *Config
	handler *LLMHandler
	logger  *logrus.Logger
}

// NewService creates a new LLM service
func NewService(config *Config, logger *logrus.Logger) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		config: config,
		logger: logger,
	}
}

// Initialize builds the completion client. Without an API key the service
// stays unavailable and callers fall back to canned replies.
func (s *Service) Initialize() error {
	if s.config.APIKey == "" {
		s.logger.Info("Running without OpenAI (OPENAI_API_KEY not set)")
		return ErrNotConfigured
	}
	if s.config.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	s.handler = NewLLMHandler(s.config.APIKey, s.config.BaseURL, s.logger)

	s.logger.WithFields(logrus.Fields{
		"provider": s.config.Provider,
		"base_url": s.config.BaseURL,
		"model":    s.config.Model,
	}).Info("LLM service initialized")

	return nil
}

// Available reports whether completions can be requested.
func (s *Service) Available() bool {
	return s != nil && s.handler != nil
}

// Complete asks the model to continue a conversation.
func (s *Service) Complete(ctx context.Context, systemPrompt string, history []Message, userInput string) (string, error) {
	if !s.Available() {
		return "", ErrNotConfigured
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: userInput})

	return s.handler.Query(ctx, Request{
		Model:            s.config.Model,
		Messages:         messages,
		Temperature:      s.config.Temperature,
		MaxTokens:        s.config.MaxTokens,
		PresencePenalty:  s.config.PresencePenalty,
		FrequencyPenalty: s.config.FrequencyPenalty,
	})
}
