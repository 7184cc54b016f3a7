package insight

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"anatomy": "Lung"}`,
			want:  `{"anatomy": "Lung"}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"anatomy\": \"Lung\"}\n```",
			want:  `{"anatomy": "Lung"}`,
		},
		{
			name:  "bare fence",
			input: "```\n{\"anatomy\": \"Skin\"}\n```",
			want:  `{"anatomy": "Skin"}`,
		},
		{
			name:  "surrounding whitespace",
			input: "\n\n  {\"anatomy\": \"Head\"}  \n",
			want:  `{"anatomy": "Head"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(cleanJSON([]byte(tt.input)))
			if got != tt.want {
				t.Errorf("cleanJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON_SynthesisReply(t *testing.T) {
	input := "```json\n" + `{
  "risk_score": 82,
  "confidence_score": 71,
  "potential_diagnoses": ["Melanoma"],
  "reasoning": "The presentation aligns with case cs-1.",
  "recommended_tests": ["Dermoscopy"],
  "visual_evidence": "Irregular pigmented lesion."
}` + "\n```"

	got, err := parseJSON[synthesisReply]([]byte(input))
	if err != nil {
		t.Fatalf("parseJSON() error = %v", err)
	}

	want := synthesisReply{
		RiskScore:          82,
		ConfidenceScore:    71,
		PotentialDiagnoses: []string{"Melanoma"},
		Reasoning:          "The presentation aligns with case cs-1.",
		RecommendedTests:   []string{"Dermoscopy"},
		VisualEvidence:     "Irregular pigmented lesion.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	if _, err := parseJSON[classificationReply]([]byte("the lung looks fine")); err == nil {
		t.Fatal("parseJSON() expected error for non-JSON reply")
	}
}
