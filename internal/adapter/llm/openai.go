package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/config"
	"sourcehound/internal/infra/tracer"
)

// OpenAIProvider implements domain.LLMProvider for any OpenAI-compatible API.
type OpenAIProvider struct {
	name    string
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAIProvider creates a provider with configured timeouts.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &OpenAIProvider{
		name:    cfg.Name,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  NewHTTPClient(cfg),
		logger:  logger,
	}
}

// Chat implements domain.LLMProvider.
func (p *OpenAIProvider) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.chat",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.name),
			tracer.StringAttr("llm.model", req.Model),
		),
	)
	defer span.End()

	if req.Model == "" {
		req.Model = p.model
	}

	body, err := json.Marshal(toOpenAIRequest(req))
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	var oaiResp openaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	result := fromOpenAIResponse(oaiResp)
	span.SetAttributes(
		tracer.IntAttr("llm.usage.prompt_tokens", result.Usage.PromptTokens),
		tracer.IntAttr("llm.usage.completion_tokens", result.Usage.CompletionTokens),
	)
	tracer.SetOK(span)
	p.logger.Debug("chat completion",
		"provider", p.name,
		"model", result.Model,
		"prompt_tokens", result.Usage.PromptTokens,
		"completion_tokens", result.Usage.CompletionTokens,
	)

	return result, nil
}

// Name implements domain.LLMProvider.
func (p *OpenAIProvider) Name() string { return p.name }

// --- OpenAI API wire types ---

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
	Created int64          `json:"created"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func toOpenAIRequest(req domain.ChatRequest) openaiRequest {
	msgs := make([]openaiMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openaiMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	oaiReq := openaiRequest{
		Model:     req.Model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature > 0 {
		oaiReq.Temperature = &req.Temperature
	}
	return oaiReq
}

func fromOpenAIResponse(resp openaiResponse) *domain.ChatResponse {
	result := &domain.ChatResponse{
		Model: resp.Model,
		Usage: domain.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 {
		result.Content = resp.Choices[0].Message.Content
	}
	return result
}

// Compile-time interface check.
var _ domain.LLMProvider = (*OpenAIProvider)(nil)
