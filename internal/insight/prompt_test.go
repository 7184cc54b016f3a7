package insight

import (
	"strings"
	"testing"

	"github.com/tkordic/anamnesis/internal/imaging"
	"github.com/tkordic/anamnesis/internal/model"
)

func TestBuildClassifyPrompt_IncludesHintAndMetadata(t *testing.T) {
	prompt := BuildClassifyPrompt(ClassifyRequest{
		Study:       &imaging.Study{Modality: "CT", BodyPart: "CHEST"},
		AnatomyHint: "Lung",
	})

	for _, want := range []string{"Lung", "CT", "CHEST", `"anatomy"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "diagnose the patient") {
		t.Error("classification prompt must not request a diagnosis")
	}
}

func TestBuildSynthesisPrompt_ListsCasesAndRules(t *testing.T) {
	prompt := BuildSynthesisPrompt(SynthesisRequest{
		Query: model.PatientQuery{
			Age:      61,
			Gender:   model.GenderMale,
			Symptoms: "irregular mole, pruritus",
		},
		AnatomyContext: "Skin",
		RankedCases: []model.RankedCase{
			rankedCase("cs-1", "Melanoma", 80, "https://example.org/a", "Case Library A"),
			rankedCase("cs-2", "Benign Melanocytic Nevus", 47, "https://example.org/b", "Case Library B"),
		},
	})

	for _, want := range []string{
		"cs-1", "cs-2",
		"Melanoma",
		"irregular mole, pruritus",
		"Skin",
		"MUST ONLY reason from the reference cases",
		`"risk_score"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSynthesisPrompt_EmptyCases(t *testing.T) {
	prompt := BuildSynthesisPrompt(SynthesisRequest{
		Query: model.PatientQuery{Age: 30, Gender: model.GenderOther, Symptoms: "fatigue"},
	})
	if !strings.Contains(prompt, "none retrieved") {
		t.Error("prompt must state that no reference cases were retrieved")
	}
}
