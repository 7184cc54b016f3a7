package model

// AnalysisResult is the completed diagnostic report for one run.
// The synthesizer fills every field except RankedCases, which the
// pipeline attaches from the retrieval stage.
type AnalysisResult struct {
	RiskScore          int          `json:"risk_score"`                // 0-100, overall malignancy/severity risk
	ConfidenceScore    int          `json:"confidence_score"`          // 0-100, confidence in the assessment
	PotentialDiagnoses []string     `json:"potential_diagnoses"`       // Ordered, most likely first
	Reasoning          string       `json:"reasoning"`                 // Narrative diagnostic reasoning
	RecommendedTests   []string     `json:"recommended_tests"`         // Suggested follow-up investigations
	VisualEvidence     []string     `json:"visual_evidence,omitempty"` // Imaging observations supporting the assessment
	CitedSources       []Citation   `json:"cited_sources,omitempty"`   // Reference-case sources backing the reasoning
	RankedCases        []RankedCase `json:"ranked_cases,omitempty"`    // Reference cases the reasoning drew on
}
