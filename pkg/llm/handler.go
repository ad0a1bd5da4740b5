package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single chat completion call.
type Request struct {
	Model            string
	Messages         []Message
	Temperature      float32
	MaxTokens        int
	PresencePenalty  float32
	FrequencyPenalty float32
}

func (r Request) toOpenAI(stream bool) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	model := r.Model
	if model == "" {
		model = openai.GPT4
	}
	return openai.ChatCompletionRequest{
		Model:            model,
		Messages:         messages,
		Temperature:      r.Temperature,
		MaxTokens:        r.MaxTokens,
		PresencePenalty:  r.PresencePenalty,
		FrequencyPenalty: r.FrequencyPenalty,
		Stream:           stream,
	}
}

// LLMHandler manages interactions with OpenAI
type LLMHandler struct {
	client *openai.Client
	logger *logrus.Logger
}

// NewLLMHandler creates a new LLM handler
func NewLLMHandler(apiKey, endpoint string, logger *logrus.Logger) *LLMHandler {
	config := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		config.BaseURL = endpoint
	}
	return &LLMHandler{
		client: openai.NewClientWithConfig(config),
		logger: logger,
	}
}

// Query processes a simple LLM query without streaming
func (h *LLMHandler) Query(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	response, err := h.client.CreateChatCompletion(ctx, req.toOpenAI(false))
	if err != nil {
		return "", fmt.Errorf("error creating chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	content := response.Choices[0].Message.Content
	h.logger.WithFields(logrus.Fields{
		"model":    response.Model,
		"tokens":   response.Usage.TotalTokens,
		"duration": time.Since(start).String(),
	}).Info("LLM query completed")

	return content, nil
}
