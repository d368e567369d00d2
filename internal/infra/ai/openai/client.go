package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/trustlens/trustlens/internal/domain/analysis"
	"github.com/trustlens/trustlens/internal/infra/ai/prompt"
)

const (
	textMaxTokens  = 500
	imageMaxTokens = 1500
	defaultTimeout = 30 * time.Second
)

// Config holds the connection settings for the risk-analysis services.
// AzureEndpoint switches the client to Azure OpenAI; BaseURL points at
// any other OpenAI-compatible endpoint.
type Config struct {
	APIKey        string
	Model         string
	VisionModel   string
	AzureEndpoint string
	BaseURL       string
	Timeout       time.Duration
}

// Client implements analysis.TextAnalyzer and analysis.ImageAnalyzer
// against an OpenAI-compatible chat-completions endpoint.
type Client struct {
	api         *openai.Client
	model       string
	visionModel string
	timeout     time.Duration
}

// NewClient creates a risk-analysis client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	var clientConfig openai.ClientConfig
	switch {
	case cfg.AzureEndpoint != "":
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
	case cfg.BaseURL != "":
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		clientConfig.BaseURL = cfg.BaseURL
	default:
		clientConfig = openai.DefaultConfig(cfg.APIKey)
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		api:         openai.NewClientWithConfig(clientConfig),
		model:       model,
		visionModel: visionModel,
		timeout:     timeout,
	}, nil
}

// AnalyzeText runs the text-risk assessment. The response must carry
// every required contract field or the call counts as failed.
func (c *Client) AnalyzeText(ctx context.Context, text string) (*analysis.TextFindings, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.TextSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.TextUserPrompt(text)},
		},
		MaxTokens:   textMaxTokens,
		Temperature: 0.2,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("text analysis request: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("text analysis: empty response")
	}

	return parseTextFindings(resp.Choices[0].Message.Content)
}

// AnalyzeImage runs the image-risk assessment on raw bytes. The image
// travels inline as a data URL with the sniffed MIME type.
func (c *Client) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (*analysis.ImageFindings, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image analysis: empty image buffer")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	req := openai.ChatCompletionRequest{
		Model: c.visionModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.ImageSystemPrompt()},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.ImageUserPrompt()},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
		MaxTokens:   imageMaxTokens,
		Temperature: 0.1,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("image analysis request: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("image analysis: empty response")
	}

	return parseImageFindings(resp.Choices[0].Message.Content)
}
