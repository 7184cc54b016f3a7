package insight

import (
	"context"
	"fmt"

	"github.com/tkordic/anamnesis/internal/imaging"
	"github.com/tkordic/anamnesis/internal/model"
)

// Classifier derives anatomy context from a patient imaging study.
type Classifier interface {
	// Name returns the provider name
	Name() string

	// Classify identifies the anatomical region shown in the study
	Classify(ctx context.Context, req ClassifyRequest) (*Classification, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Synthesizer produces the diagnostic analysis from retrieved cases.
type Synthesizer interface {
	// Name returns the provider name
	Name() string

	// Synthesize generates the analysis for a query and its ranked cases
	Synthesize(ctx context.Context, req SynthesisRequest) (*Synthesis, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ClassifyRequest contains the input for anatomy classification
type ClassifyRequest struct {
	// Study is the normalized imaging study, nil when loading failed
	Study *imaging.Study

	// AnatomyHint is the clinician-supplied region, if any
	AnatomyHint string

	// Model overrides the configured vision model (provider-specific)
	Model string
}

// Classification contains the vision stage output
type Classification struct {
	// Anatomy is the canonical anatomical region label (e.g. "Lung")
	Anatomy string

	// Findings are brief visual observations from the study
	Findings []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// SynthesisRequest contains the input for diagnostic synthesis
type SynthesisRequest struct {
	// Query is the validated patient query
	Query model.PatientQuery

	// RetrievalQuery is the composed query text after anatomy tagging
	RetrievalQuery string

	// AnatomyContext is the vision stage output, empty when skipped or failed
	AnatomyContext string

	// RankedCases is the STRICT allowlist of cases the analysis can cite.
	// Citations are derived from these cases, never from model output.
	RankedCases []model.RankedCase

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Synthesis contains the synthesizer's analysis output
type Synthesis struct {
	// Result is the structured analysis
	Result model.AnalysisResult

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// ClassificationError reports a failed vision classification. The
// analysis continues without anatomy context when this is returned.
type ClassificationError struct {
	Provider string
	Err      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("anatomy classification failed (%s): %v", e.Provider, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// SynthesisError reports a failed synthesis. This aborts the analysis.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("diagnostic synthesis failed (%s): %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Config holds insight provider configuration
type Config struct {
	// Provider name: "demo", "openai", "anthropic", "ollama"
	Provider string

	// Model name for synthesis (provider-specific)
	Model string

	// VisionModel name for anatomy classification (provider-specific)
	VisionModel string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "demo",
		Timeout:   30,
		MaxTokens: 1500,
	}
}

// buildCitations derives the citation list from ranked cases. Cases
// without a source URL are skipped; duplicates collapse to one entry.
func buildCitations(cases []model.RankedCase) []model.Citation {
	seen := make(map[string]bool)
	var citations []model.Citation
	for _, rc := range cases {
		if rc.SourceURL == "" || seen[rc.SourceURL] {
			continue
		}
		seen[rc.SourceURL] = true
		citations = append(citations, model.Citation{
			URI:   rc.SourceURL,
			Title: rc.SourceName,
		})
	}
	return citations
}

// clampScore bounds a model-reported score to [0, 100].
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
