package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tkordic/anamnesis/internal/model"
)

// classificationReply is the JSON object vision providers are asked to return.
type classificationReply struct {
	Anatomy  string   `json:"anatomy"`
	Findings []string `json:"findings"`
}

// synthesisReply is the JSON object synthesis providers are asked to return.
type synthesisReply struct {
	RiskScore          int      `json:"risk_score"`
	ConfidenceScore    int      `json:"confidence_score"`
	PotentialDiagnoses []string `json:"potential_diagnoses"`
	Reasoning          string   `json:"reasoning"`
	RecommendedTests   []string `json:"recommended_tests"`
	VisualEvidence     string   `json:"visual_evidence"`
}

// cleanJSON strips markdown code fences that models wrap around JSON output.
func cleanJSON(data []byte) []byte {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

// parseJSON unmarshals a provider reply into T, tolerating fenced output.
func parseJSON[T any](data []byte) (T, error) {
	var out T
	if err := json.Unmarshal(cleanJSON(data), &out); err != nil {
		return out, fmt.Errorf("parse provider reply: %w", err)
	}
	return out, nil
}

// toResult maps a synthesis reply onto the analysis result. Scores are
// clamped to [0, 100] and citations come from the ranked cases only.
func toResult(reply synthesisReply, req SynthesisRequest) model.AnalysisResult {
	var visual []string
	if v := strings.TrimSpace(reply.VisualEvidence); v != "" {
		visual = []string{v}
	}
	return model.AnalysisResult{
		RiskScore:          clampScore(reply.RiskScore),
		ConfidenceScore:    clampScore(reply.ConfidenceScore),
		PotentialDiagnoses: reply.PotentialDiagnoses,
		Reasoning:          strings.TrimSpace(reply.Reasoning),
		RecommendedTests:   reply.RecommendedTests,
		VisualEvidence:     visual,
		CitedSources:       buildCitations(req.RankedCases),
	}
}
