package model

import "time"

// Report is the complete output of one analysis run.
// Rendering layers consume this struct as-is.
type Report struct {
	RunID       string    `json:"run_id"`       // Unique run identifier
	GeneratedAt time.Time `json:"generated_at"` // When the analysis finished
	Mode        Mode      `json:"mode"`         // demo or live
	DurationMs  int64     `json:"duration_ms"`  // Wall-clock run duration

	Query          PatientQuery `json:"query"`                     // Validated input
	AnatomyContext string       `json:"anatomy_context,omitempty"` // Vision stage output, empty when skipped or failed

	Nodes []NodeStatus `json:"nodes,omitempty"` // Registry node health at run time

	Analysis AnalysisResult `json:"analysis"` // Synthesis output with ranked cases attached

	Provider   string `json:"provider"`              // Insight provider that synthesized the analysis
	Model      string `json:"model,omitempty"`       // Model that generated the analysis
	TokensUsed int    `json:"tokens_used,omitempty"` // Token consumption across stages
}
