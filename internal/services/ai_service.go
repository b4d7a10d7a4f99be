package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const defaultAIModel = "gpt-4o-mini"

// ChatCompleter is the slice of the OpenAI client the proxy needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService forwards validated survey input to an OpenAI-compatible chat
// completion endpoint and hands back the model's JSON object untouched.
// There is no retry or caching; every upstream failure becomes a bad-gateway
// ServiceError whose detail is logged, never returned to clients.
type AIService struct {
	client      ChatCompleter
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewAIService binds the proxy to a client. A nil client yields a service
// whose calls fail with ai.not_configured.
func NewAIService(client ChatCompleter, model string, logger *zap.Logger) *AIService {
	if strings.TrimSpace(model) == "" {
		model = defaultAIModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{client: client, model: model, temperature: 0.7, logger: logger}
}

// NewOpenAIClient builds a go-openai client against baseURL (empty means api.openai.com).
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = normalizeOpenAIBaseURL(baseURL)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// GeneratePreview rewrites req.Content following the survey preferences.
func (s *AIService) GeneratePreview(ctx context.Context, req PreviewRequest) (json.RawMessage, error) {
	user, err := previewUserMessage(req)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, "preview", previewPrompt(), user)
}

// AnalyzeWritingStyle infers survey answers from the user's writing samples.
func (s *AIService) AnalyzeWritingStyle(ctx context.Context, req StyleAnalysisRequest) (json.RawMessage, error) {
	user, err := styleAnalysisUserMessage(req)
	if err != nil {
		return nil, err
	}
	return s.complete(ctx, "analyze_style", styleAnalysisPrompt(), user)
}

func (s *AIService) complete(ctx context.Context, op, system, user string) (json.RawMessage, error) {
	if s.client == nil {
		return nil, s.fail(op, NewBadGatewayError("ai.not_configured", nil))
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, s.fail(op, NewBadGatewayError("ai.upstream_failed", err))
	}
	if len(resp.Choices) == 0 {
		return nil, s.fail(op, NewBadGatewayError("ai.empty_response", nil))
	}
	content := bytes.TrimSpace([]byte(resp.Choices[0].Message.Content))
	if len(content) == 0 || content[0] != '{' || !json.Valid(content) {
		return nil, s.fail(op, NewBadGatewayError("ai.invalid_response", errors.New(truncate(string(content), 200))))
	}
	s.logger.Debug("ai completion finished",
		zap.String("operation", op),
		zap.String("model", s.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return json.RawMessage(content), nil
}

func (s *AIService) fail(op string, err error) error {
	s.logger.Error("ai completion failed", zap.String("operation", op), zap.String("model", s.model), zap.Error(err))
	return err
}

// normalizeOpenAIBaseURL accepts a bare host, a /v1 root, or a full
// chat/completions endpoint and returns the /v1 root go-openai expects.
func normalizeOpenAIBaseURL(base string) string {
	endpoint := strings.TrimRight(strings.TrimSpace(base), "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com"
	}
	endpoint = strings.TrimSuffix(endpoint, "/chat/completions")
	if strings.HasSuffix(endpoint, "/v1") {
		return endpoint
	}
	return endpoint + "/v1"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
