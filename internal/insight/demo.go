package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/tkordic/anamnesis/internal/model"
)

// DemoClassifier resolves anatomy context deterministically without
// contacting any model. It prefers the clinician hint, then the DICOM
// body part metadata.
type DemoClassifier struct{}

// Name returns the provider name
func (DemoClassifier) Name() string { return "demo" }

// IsAvailable always reports true; the demo provider has no dependencies
func (DemoClassifier) IsAvailable(ctx context.Context) bool { return true }

// Classify derives the anatomy label from the hint or study metadata
func (DemoClassifier) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	anatomy := strings.TrimSpace(req.AnatomyHint)
	if anatomy == "" && req.Study != nil {
		anatomy = canonicalAnatomy(req.Study.BodyPart)
	}
	if anatomy == "" {
		return nil, &ClassificationError{
			Provider: "demo",
			Err:      fmt.Errorf("no anatomy hint and no body part metadata in study"),
		}
	}

	var findings []string
	if req.Study != nil {
		findings = append(findings, fmt.Sprintf("%dx%d %s study reviewed", req.Study.Width, req.Study.Height, req.Study.Format))
		if req.Study.Modality != "" {
			findings = append(findings, fmt.Sprintf("%s acquisition", req.Study.Modality))
		}
	}

	return &Classification{
		Anatomy:  canonicalAnatomy(anatomy),
		Findings: findings,
		Model:    "demo",
	}, nil
}

// canonicalAnatomy maps DICOM body part codes and free-text hints to a
// title-case region label.
func canonicalAnatomy(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	switch strings.ToUpper(s) {
	case "CHEST", "THORAX":
		return "Chest"
	case "LUNG", "LUNGS":
		return "Lung"
	case "HEAD", "SKULL", "BRAIN":
		return "Head"
	case "ABDOMEN", "STOMACH":
		return "Abdomen"
	case "BREAST":
		return "Breast"
	case "NECK", "THYROID":
		return "Neck"
	case "SKIN", "DERMIS":
		return "Skin"
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// DemoSynthesizer derives a deterministic analysis from the ranked
// cases so the full flow runs without provider credentials.
type DemoSynthesizer struct{}

// Name returns the provider name
func (DemoSynthesizer) Name() string { return "demo" }

// IsAvailable always reports true; the demo provider has no dependencies
func (DemoSynthesizer) IsAvailable(ctx context.Context) bool { return true }

// Synthesize builds the analysis from ranked-case metadata alone
func (DemoSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (*Synthesis, error) {
	if len(req.RankedCases) == 0 {
		return &Synthesis{
			Result: model.AnalysisResult{
				RiskScore:       0,
				ConfidenceScore: 15,
				Reasoning:       "No sufficiently similar documented cases were found for this presentation. Reference material is lacking; clinical correlation is required.",
				RecommendedTests: []string{
					"Clinical correlation",
					"Broaden symptom history and re-run retrieval",
				},
				CitedSources: nil,
			},
			Model: "demo",
		}, nil
	}

	top := req.RankedCases[0]
	diagnoses := distinctDiagnoses(req.RankedCases)

	base := int(top.Relevance)
	risk := base * 6 / 10
	if hasMalignantDiagnosis(diagnoses) {
		risk += 25
	}
	confidence := base * 7 / 10
	if len(req.RankedCases) >= 3 {
		confidence += 10
	}

	reasoning := fmt.Sprintf(
		"The presentation aligns with %d documented reference cases, led by case %s (%s) at relevance %.0f/100. Outcome on record: %s",
		len(req.RankedCases), top.ID, top.Diagnosis, top.Relevance, top.OutcomeSummary,
	)
	if req.AnatomyContext != "" {
		reasoning += fmt.Sprintf(" Imaging anatomy context (%s) was used to focus retrieval.", req.AnatomyContext)
	}

	var visualEvidence []string
	if req.AnatomyContext != "" {
		visualEvidence = []string{fmt.Sprintf("Imaging review is consistent with %s involvement.", strings.ToLower(req.AnatomyContext))}
	}

	return &Synthesis{
		Result: model.AnalysisResult{
			RiskScore:          clampScore(risk),
			ConfidenceScore:    clampScore(confidence),
			PotentialDiagnoses: diagnoses,
			Reasoning:          reasoning,
			RecommendedTests:   suggestedTests(diagnoses),
			VisualEvidence:     visualEvidence,
			CitedSources:       buildCitations(req.RankedCases),
		},
		Model: "demo",
	}, nil
}

func distinctDiagnoses(cases []model.RankedCase) []string {
	seen := make(map[string]bool)
	var out []string
	for _, rc := range cases {
		if rc.Diagnosis == "" || seen[rc.Diagnosis] {
			continue
		}
		seen[rc.Diagnosis] = true
		out = append(out, rc.Diagnosis)
	}
	return out
}

func hasMalignantDiagnosis(diagnoses []string) bool {
	for _, d := range diagnoses {
		lower := strings.ToLower(d)
		for _, kw := range []string{"melanoma", "carcinoma", "glioblastoma", "malignan", "sarcoma", "lymphoma"} {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// suggestedTests maps diagnosis keywords to standard next steps. The
// list stays short and deduplicated.
func suggestedTests(diagnoses []string) []string {
	rules := []struct {
		keyword string
		tests   []string
	}{
		{"melanoma", []string{"Dermoscopy", "Excisional biopsy with histopathology"}},
		{"nevus", []string{"Dermoscopy", "Serial photographic surveillance"}},
		{"lung", []string{"Chest CT with contrast", "Tissue biopsy"}},
		{"pneumonia", []string{"Chest radiograph", "Sputum culture"}},
		{"carcinoma", []string{"Tissue biopsy", "Contrast-enhanced CT staging"}},
		{"glioblastoma", []string{"Brain MRI with contrast", "Neurosurgical consult"}},
		{"colitis", []string{"Colonoscopy with biopsies", "Fecal calprotectin"}},
		{"thyroid", []string{"Thyroid ultrasound", "Fine-needle aspiration"}},
	}

	seen := make(map[string]bool)
	var tests []string
	for _, d := range diagnoses {
		lower := strings.ToLower(d)
		for _, rule := range rules {
			if !strings.Contains(lower, rule.keyword) {
				continue
			}
			for _, test := range rule.tests {
				if !seen[test] {
					seen[test] = true
					tests = append(tests, test)
				}
			}
		}
	}
	if len(tests) == 0 {
		tests = []string{"Clinical correlation"}
	}
	return tests
}
