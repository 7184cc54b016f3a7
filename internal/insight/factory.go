package insight

import (
	"fmt"
	"strings"

	"github.com/tkordic/anamnesis/internal/model"
)

// NewProviders creates the vision classifier and synthesizer for the
// configured provider. OpenAI, Anthropic and Ollama providers serve
// both roles from one client.
func NewProviders(config Config) (Classifier, Synthesizer, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "", "demo":
		return DemoClassifier{}, DemoSynthesizer{}, nil

	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil

	case "anthropic", "claude":
		p, err := NewAnthropicProvider(config)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil

	case "ollama":
		p, err := NewOllamaProvider(config)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil

	default:
		return nil, nil, fmt.Errorf("unknown insight provider: %s (supported: demo, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application config into an insight Config
func ConfigFromModel(cfg model.InsightConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:    cfg.Provider,
		Model:       cfg.Model,
		VisionModel: cfg.VisionModel,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxTokens,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}
}
