package retrieval

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercase and split", "Irregular Mole", []string{"irregular", "mole"}},
		{"punctuation stripped", "non-healing ulcer, with telangiectasia.", []string{"non", "healing", "ulcer", "telangiectasia"}},
		{"stopwords dropped", "patient presents with a persistent cough", []string{"persistent", "cough"}},
		{"dedupe preserves order", "cough fever cough", []string{"cough", "fever"}},
		{"short fragments dropped", "x y chest pain", []string{"chest", "pain"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.in)); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseAnatomyTag(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		wantAnatomy   string
		wantRemainder string
	}{
		{"no tag", "irregular mole", "", "irregular mole"},
		{"tagged", "[PATIENT IMAGING ANATOMY: Lung] visual anomaly suspected malignancy", "Lung", "visual anomaly suspected malignancy"},
		{"multiword label", "[PATIENT IMAGING ANATOMY: Left Breast] palpable mass", "Left Breast", "palpable mass"},
		{"tag only", "[PATIENT IMAGING ANATOMY: Skin] ", "Skin", ""},
		{"tag not at start", "mole [PATIENT IMAGING ANATOMY: Skin]", "", "mole [PATIENT IMAGING ANATOMY: Skin]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anatomy, remainder := ParseAnatomyTag(tt.query)
			if anatomy != tt.wantAnatomy {
				t.Errorf("anatomy = %q, want %q", anatomy, tt.wantAnatomy)
			}
			if remainder != tt.wantRemainder {
				t.Errorf("remainder = %q, want %q", remainder, tt.wantRemainder)
			}
		})
	}
}

func TestAnatomyPrefix(t *testing.T) {
	got := AnatomyPrefix("Lung")
	want := "[PATIENT IMAGING ANATOMY: Lung] "
	if got != want {
		t.Errorf("AnatomyPrefix = %q, want %q", got, want)
	}

	// Round-trips through the parser.
	anatomy, remainder := ParseAnatomyTag(got + "free text")
	if anatomy != "Lung" || remainder != "free text" {
		t.Errorf("round-trip failed: anatomy=%q remainder=%q", anatomy, remainder)
	}
}

func TestContainsSequence(t *testing.T) {
	hay := []string{"irregular", "mole", "recent", "change"}

	if !containsSequence(hay, []string{"irregular", "mole"}) {
		t.Error("expected contiguous match at start")
	}
	if !containsSequence(hay, []string{"recent", "change"}) {
		t.Error("expected contiguous match at end")
	}
	if containsSequence(hay, []string{"mole", "change"}) {
		t.Error("non-contiguous tokens must not match")
	}
	if containsSequence(hay, nil) {
		t.Error("empty needle must not match")
	}
}
