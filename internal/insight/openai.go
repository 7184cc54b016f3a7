package insight

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Classifier and Synthesizer for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Classify identifies anatomy using a vision-capable chat model
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	if req.Study == nil {
		return nil, &ClassificationError{Provider: p.Name(), Err: fmt.Errorf("no study to classify")}
	}

	model := req.Model
	if model == "" {
		model = p.config.VisionModel
	}
	if model == "" {
		model = openai.GPT4o
	}

	ctxWithTimeout, cancel := p.timeoutContext(ctx)
	defer cancel()

	dataURL := fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(req.Study.PNG))
	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: BuildClassifyPrompt(req)},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   300,
		Temperature: 0.3, // Lower temperature for more focused, factual output
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, &ClassificationError{Provider: p.Name(), Err: fmt.Errorf("OpenAI API error: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &ClassificationError{Provider: p.Name(), Err: fmt.Errorf("no response from OpenAI")}
	}

	reply, err := parseJSON[classificationReply]([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, &ClassificationError{Provider: p.Name(), Err: err}
	}

	return &Classification{
		Anatomy:    canonicalAnatomy(reply.Anatomy),
		Findings:   reply.Findings,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

// Synthesize generates the analysis using OpenAI's Chat Completions API
func (p *OpenAIProvider) Synthesize(ctx context.Context, req SynthesisRequest) (*Synthesis, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildSynthesisPrompt(req)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini // Default to gpt-4o-mini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}

	ctxWithTimeout, cancel := p.timeoutContext(ctx)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a clinical decision support assistant that synthesizes reference cases with strict adherence to the provided material.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3, // Lower temperature for more focused, factual output
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, &SynthesisError{Provider: p.Name(), Err: fmt.Errorf("OpenAI API error: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return nil, &SynthesisError{Provider: p.Name(), Err: fmt.Errorf("no response from OpenAI")}
	}

	reply, err := parseJSON[synthesisReply]([]byte(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if err != nil {
		return nil, &SynthesisError{Provider: p.Name(), Err: err}
	}

	return &Synthesis{
		Result:     toResult(reply, req),
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func (p *OpenAIProvider) timeoutContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
