package insight

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tkordic/anamnesis/internal/imaging"
	"github.com/tkordic/anamnesis/internal/model"
)

func rankedCase(id, diagnosis string, relevance float64, sourceURL, sourceName string) model.RankedCase {
	return model.RankedCase{
		CaseRecord: model.CaseRecord{
			ID:             id,
			Title:          "Case " + id,
			Diagnosis:      diagnosis,
			OutcomeSummary: "Documented outcome for " + id + ".",
			SourceURL:      sourceURL,
			SourceName:     sourceName,
		},
		Relevance: relevance,
	}
}

func TestDemoClassifier_Classify_PrefersHint(t *testing.T) {
	study := &imaging.Study{Width: 512, Height: 512, Format: imaging.FormatDICOM, BodyPart: "CHEST"}

	got, err := DemoClassifier{}.Classify(context.Background(), ClassifyRequest{
		Study:       study,
		AnatomyHint: "lung",
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Anatomy != "Lung" {
		t.Errorf("Anatomy = %q, want Lung (hint outranks study metadata)", got.Anatomy)
	}
	if len(got.Findings) == 0 {
		t.Error("expected findings describing the study")
	}
}

func TestDemoClassifier_Classify_UsesStudyBodyPart(t *testing.T) {
	study := &imaging.Study{Width: 64, Height: 64, Format: imaging.FormatDICOM, BodyPart: "CHEST", Modality: "CT"}

	got, err := DemoClassifier{}.Classify(context.Background(), ClassifyRequest{Study: study})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got.Anatomy != "Chest" {
		t.Errorf("Anatomy = %q, want Chest", got.Anatomy)
	}
}

func TestDemoClassifier_Classify_FailsWithoutContext(t *testing.T) {
	_, err := DemoClassifier{}.Classify(context.Background(), ClassifyRequest{})
	if err == nil {
		t.Fatal("Classify() expected error with no hint and no study")
	}
	var cerr *ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error type = %T, want *ClassificationError", err)
	}
	if cerr.Provider != "demo" {
		t.Errorf("Provider = %q, want demo", cerr.Provider)
	}
}

func TestCanonicalAnatomy(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CHEST", "Chest"},
		{"THORAX", "Chest"},
		{"lung", "Lung"},
		{"BRAIN", "Head"},
		{"forearm", "Forearm"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := canonicalAnatomy(tt.input); got != tt.want {
			t.Errorf("canonicalAnatomy(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDemoSynthesizer_Synthesize_EmptyCases(t *testing.T) {
	got, err := DemoSynthesizer{}.Synthesize(context.Background(), SynthesisRequest{
		Query: model.PatientQuery{Age: 44, Gender: model.GenderFemale, Symptoms: "fatigue"},
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got.Result.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0 with no reference cases", got.Result.RiskScore)
	}
	if got.Result.ConfidenceScore >= 50 {
		t.Errorf("ConfidenceScore = %d, want low value with no reference cases", got.Result.ConfidenceScore)
	}
	if !strings.Contains(got.Result.Reasoning, "No sufficiently similar") {
		t.Errorf("Reasoning = %q, want explicit statement of missing references", got.Result.Reasoning)
	}
	if len(got.Result.CitedSources) != 0 {
		t.Errorf("CitedSources = %v, want none", got.Result.CitedSources)
	}
}

func TestDemoSynthesizer_Synthesize_DerivesFromCases(t *testing.T) {
	req := SynthesisRequest{
		Query: model.PatientQuery{Age: 61, Gender: model.GenderMale, Symptoms: "irregular mole"},
		RankedCases: []model.RankedCase{
			rankedCase("cs-1", "Melanoma", 80, "https://example.org/a", "Case Library A"),
			rankedCase("cs-2", "Benign Melanocytic Nevus", 47, "https://example.org/b", "Case Library B"),
			rankedCase("cs-3", "Melanoma", 40, "https://example.org/a", "Case Library A"),
		},
	}

	got, err := DemoSynthesizer{}.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if got.Result.RiskScore != 73 {
		t.Errorf("RiskScore = %d, want 73 (malignant top case at relevance 80)", got.Result.RiskScore)
	}
	if got.Result.ConfidenceScore != 66 {
		t.Errorf("ConfidenceScore = %d, want 66", got.Result.ConfidenceScore)
	}

	wantDiagnoses := []string{"Melanoma", "Benign Melanocytic Nevus"}
	if diff := cmp.Diff(wantDiagnoses, got.Result.PotentialDiagnoses); diff != "" {
		t.Errorf("PotentialDiagnoses mismatch (-want +got):\n%s", diff)
	}

	wantCitations := []model.Citation{
		{URI: "https://example.org/a", Title: "Case Library A"},
		{URI: "https://example.org/b", Title: "Case Library B"},
	}
	if diff := cmp.Diff(wantCitations, got.Result.CitedSources); diff != "" {
		t.Errorf("CitedSources mismatch (-want +got):\n%s", diff)
	}

	foundDermoscopy := false
	for _, test := range got.Result.RecommendedTests {
		if test == "Dermoscopy" {
			foundDermoscopy = true
		}
	}
	if !foundDermoscopy {
		t.Errorf("RecommendedTests = %v, want Dermoscopy for melanoma references", got.Result.RecommendedTests)
	}

	if !strings.Contains(got.Result.Reasoning, "cs-1") {
		t.Errorf("Reasoning = %q, want reference to the top case ID", got.Result.Reasoning)
	}
}

func TestDemoSynthesizer_Synthesize_AnatomyContext(t *testing.T) {
	req := SynthesisRequest{
		Query:          model.PatientQuery{Age: 58, Gender: model.GenderFemale, Symptoms: "cough"},
		AnatomyContext: "Lung",
		RankedCases: []model.RankedCase{
			rankedCase("cs-9", "Community-Acquired Pneumonia", 62, "https://example.org/p", "Pulmonology Archive"),
		},
	}

	got, err := DemoSynthesizer{}.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(got.Result.VisualEvidence) != 1 || !strings.Contains(got.Result.VisualEvidence[0], "lung") {
		t.Errorf("VisualEvidence = %q, want one entry mentioning the anatomy context", got.Result.VisualEvidence)
	}
	if !strings.Contains(got.Result.Reasoning, "Lung") {
		t.Errorf("Reasoning = %q, want anatomy context sentence", got.Result.Reasoning)
	}
}

func TestDemoSynthesizer_Synthesize_Deterministic(t *testing.T) {
	req := SynthesisRequest{
		Query: model.PatientQuery{Age: 61, Gender: model.GenderMale, Symptoms: "irregular mole"},
		RankedCases: []model.RankedCase{
			rankedCase("cs-1", "Melanoma", 80, "https://example.org/a", "Case Library A"),
			rankedCase("cs-2", "Benign Melanocytic Nevus", 47, "https://example.org/b", "Case Library B"),
		},
	}

	first, err := DemoSynthesizer{}.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("first Synthesize() error = %v", err)
	}
	second, err := DemoSynthesizer{}.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("second Synthesize() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated synthesis differs (-first +second):\n%s", diff)
	}
}
