package model

// CaseRecord is one reference case in the registry snapshot.
// Records are immutable once loaded; the retriever only reads them.
type CaseRecord struct {
	ID             string   `json:"id" yaml:"id"`                                   // Unique within a snapshot
	Title          string   `json:"title" yaml:"title"`                             // Short human-readable case title
	Age            int      `json:"age" yaml:"age"`                                 // Patient age at presentation
	Gender         Gender   `json:"gender" yaml:"gender"`                           // female, male, other
	SymptomTags    []string `json:"symptom_tags" yaml:"symptom_tags"`               // Set of presenting-symptom tags
	Diagnosis      string   `json:"diagnosis" yaml:"diagnosis"`                     // Confirmed diagnosis
	OutcomeSummary string   `json:"outcome_summary" yaml:"outcome_summary"`         // Treatment and outcome in one or two sentences
	VisualFindings string   `json:"visual_findings" yaml:"visual_findings"`         // Imaging/dermatoscopy findings free text
	SourceName     string   `json:"source_name" yaml:"source_name"`                 // Publication or registry the case came from
	SourceURL      string   `json:"source_url,omitempty" yaml:"source_url,omitempty"` // Optional link to the published case report
}

// RankedCase pairs a reference case with its relevance to one retrieval query.
// Produced only by the retriever and never written back to the registry.
type RankedCase struct {
	CaseRecord `json:"case"`
	Relevance  float64 `json:"relevance"` // Similarity score in [0,100]
}

// Citation is one source reference attached to an analysis result
type Citation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}
