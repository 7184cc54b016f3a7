package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tkordic/anamnesis/internal/model"
)

func TestLoadEmbedded(t *testing.T) {
	reg, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}

	if reg.Len() < 8 {
		t.Errorf("expected at least 8 demo cases, got %d", reg.Len())
	}

	seen := make(map[string]bool)
	for _, c := range reg.Cases() {
		if c.ID == "" {
			t.Error("demo case with empty id")
		}
		if seen[c.ID] {
			t.Errorf("duplicate demo case id %q", c.ID)
		}
		seen[c.ID] = true
		if c.Diagnosis == "" {
			t.Errorf("case %s has no diagnosis", c.ID)
		}
		if len(c.SymptomTags) == 0 {
			t.Errorf("case %s has no symptom tags", c.ID)
		}
	}
}

func TestLoadEmbedded_ContainsScenarioAnchors(t *testing.T) {
	reg, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}

	var melanoma, lung bool
	for _, c := range reg.Cases() {
		if c.Diagnosis == "Melanoma" {
			melanoma = true
		}
		if c.Diagnosis == "Non-Small Cell Lung Carcinoma" {
			lung = true
		}
	}
	if !melanoma {
		t.Error("demo snapshot has no melanoma reference case")
	}
	if !lung {
		t.Error("demo snapshot has no lung carcinoma reference case")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.yaml")
	content := `cases:
  - id: t-001
    title: <b>Test case</b> with   markup
    age: 40
    gender: male
    symptom_tags:
      - "  chest pain  "
      - shortness of breath
    diagnosis: "<p>Stable Angina</p>"
    outcome_summary: Managed medically.
    visual_findings: Normal resting ECG.
    source_name: Test Registry
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	c, ok := reg.Get("t-001")
	if !ok {
		t.Fatal("expected case t-001 to be loaded")
	}
	if c.Title != "Test case with markup" {
		t.Errorf("title not normalized: %q", c.Title)
	}
	if c.Diagnosis != "Stable Angina" {
		t.Errorf("diagnosis not normalized: %q", c.Diagnosis)
	}
	if c.SymptomTags[0] != "chest pain" {
		t.Errorf("tag not trimmed: %q", c.SymptomTags[0])
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/snapshot.yaml")
	if err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New(
		model.CaseRecord{ID: "a", Diagnosis: "X", SymptomTags: []string{"t"}},
		model.CaseRecord{ID: "a", Diagnosis: "Y", SymptomTags: []string{"t"}},
	)
	if err == nil {
		t.Fatal("expected error for duplicate case ids")
	}
}

func TestNew_RejectsMissingDiagnosis(t *testing.T) {
	_, err := New(model.CaseRecord{ID: "a", SymptomTags: []string{"t"}})
	if err == nil {
		t.Fatal("expected error for missing diagnosis")
	}
}

func TestRegistry_CasesReturnsCopy(t *testing.T) {
	reg, err := New(
		model.CaseRecord{ID: "a", Diagnosis: "X", SymptomTags: []string{"t"}},
		model.CaseRecord{ID: "b", Diagnosis: "Y", SymptomTags: []string{"t"}},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	cases := reg.Cases()
	cases[0] = model.CaseRecord{ID: "mutated"}

	if _, ok := reg.Get("a"); !ok {
		t.Error("mutating the returned slice affected the registry")
	}
}

func TestRegistry_Diagnoses(t *testing.T) {
	reg, err := New(
		model.CaseRecord{ID: "a", Diagnosis: "Melanoma", SymptomTags: []string{"t"}},
		model.CaseRecord{ID: "b", Diagnosis: "Melanoma", SymptomTags: []string{"t"}},
		model.CaseRecord{ID: "c", Diagnosis: "Asthma", SymptomTags: []string{"t"}},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := reg.Diagnoses()
	if len(got) != 2 || got[0] != "Asthma" || got[1] != "Melanoma" {
		t.Errorf("unexpected diagnoses: %v", got)
	}
}
