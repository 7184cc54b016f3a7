package insight

import (
	"strings"
	"testing"
)

func TestNewProviders_Demo(t *testing.T) {
	for _, provider := range []string{"", "demo", "DEMO"} {
		classifier, synthesizer, err := NewProviders(Config{Provider: provider})
		if err != nil {
			t.Fatalf("NewProviders(%q) error = %v", provider, err)
		}
		if classifier.Name() != "demo" || synthesizer.Name() != "demo" {
			t.Errorf("NewProviders(%q) = %s/%s, want demo/demo", provider, classifier.Name(), synthesizer.Name())
		}
	}
}

func TestNewProviders_OpenAIRequiresKey(t *testing.T) {
	_, _, err := NewProviders(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("NewProviders() expected error for openai without API key")
	}
}

func TestNewProviders_AnthropicAlias(t *testing.T) {
	classifier, synthesizer, err := NewProviders(Config{Provider: "claude", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	if classifier.Name() != "anthropic" || synthesizer.Name() != "anthropic" {
		t.Errorf("provider names = %s/%s, want anthropic/anthropic", classifier.Name(), synthesizer.Name())
	}
}

func TestNewProviders_Ollama(t *testing.T) {
	classifier, synthesizer, err := NewProviders(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("NewProviders() error = %v", err)
	}
	if classifier.Name() != "ollama" || synthesizer.Name() != "ollama" {
		t.Errorf("provider names = %s/%s, want ollama/ollama", classifier.Name(), synthesizer.Name())
	}
}

func TestNewProviders_Unknown(t *testing.T) {
	_, _, err := NewProviders(Config{Provider: "bard"})
	if err == nil {
		t.Fatal("NewProviders() expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unknown insight provider") {
		t.Errorf("error = %v, want unknown provider message", err)
	}
}
