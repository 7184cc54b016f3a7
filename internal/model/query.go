package model

import "fmt"

// PatientQuery describes one patient case submitted for analysis
type PatientQuery struct {
	Age         int    `json:"age" yaml:"age"`                                       // Patient age in years (must be positive)
	Gender      Gender `json:"gender" yaml:"gender"`                                 // female, male, other
	Symptoms    string `json:"symptoms" yaml:"symptoms"`                             // Free-text symptom description (may be empty when imagery is attached)
	AnatomyHint string `json:"anatomy_hint,omitempty" yaml:"anatomy_hint,omitempty"` // Optional operator hint for the imaged body region
	HasImagery  bool   `json:"has_imagery" yaml:"has_imagery"`                       // Whether a primary study accompanies the query
	ImagePath   string `json:"image_path,omitempty" yaml:"image_path,omitempty"`     // Path to the primary study (DICOM, PNG, or JPEG)
}

// Gender is the patient gender as recorded on the query
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
	GenderOther  Gender = "other"
)

// Validate checks the preconditions an analysis run requires.
// A query must carry a positive age and either free-text symptoms or imagery.
func (q PatientQuery) Validate() error {
	if q.Age <= 0 {
		return &ValidationError{Field: "age", Reason: "must be a positive integer"}
	}
	switch q.Gender {
	case GenderFemale, GenderMale, GenderOther:
	default:
		return &ValidationError{Field: "gender", Reason: fmt.Sprintf("unrecognized value %q (expected female, male, or other)", string(q.Gender))}
	}
	if q.Symptoms == "" && !q.HasImagery {
		return &ValidationError{Field: "symptoms", Reason: "free-text symptoms required when no imagery is attached"}
	}
	return nil
}

// ValidationError reports a query that fails its preconditions.
// It is surfaced before any pipeline stage executes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}
