package registry

import (
	"fmt"
	"os"
	"sort"

	"github.com/tkordic/anamnesis/internal/model"
	"gopkg.in/yaml.v3"
)

// Registry is an immutable snapshot of reference case records.
// Loaded once, then shared read-only across runs.
type Registry struct {
	cases  []model.CaseRecord
	byID   map[string]int
	source string
}

// snapshot is the on-disk YAML shape of a registry snapshot
type snapshot struct {
	Cases []model.CaseRecord `yaml:"cases"`
}

// Load builds the registry from configuration: an operator-supplied snapshot
// file when one is set, the bundled demo snapshot otherwise.
func Load(cfg model.RegistryConfig) (*Registry, error) {
	if cfg.SnapshotPath != "" {
		return LoadFile(cfg.SnapshotPath)
	}
	return LoadEmbedded()
}

// LoadEmbedded loads the demo snapshot bundled into the binary
func LoadEmbedded() (*Registry, error) {
	reg, err := parseSnapshot("embedded", demoSnapshot)
	if err != nil {
		return nil, fmt.Errorf("embedded snapshot: %w", err)
	}
	return reg, nil
}

// LoadFile loads a registry snapshot from a YAML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	reg, err := parseSnapshot(path, data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return reg, nil
}

// New builds a registry from records already in memory.
// Records are validated and normalized the same way file snapshots are.
func New(cases ...model.CaseRecord) (*Registry, error) {
	return newRegistry("memory", cases)
}

func parseSnapshot(source string, data []byte) (*Registry, error) {
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return newRegistry(source, snap.Cases)
}

func newRegistry(source string, cases []model.CaseRecord) (*Registry, error) {
	byID := make(map[string]int, len(cases))
	normalized := make([]model.CaseRecord, 0, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return nil, fmt.Errorf("case %d: missing id", i)
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("case %q: duplicate id", c.ID)
		}
		if c.Diagnosis == "" {
			return nil, fmt.Errorf("case %q: missing diagnosis", c.ID)
		}
		if len(c.SymptomTags) == 0 && c.VisualFindings == "" {
			return nil, fmt.Errorf("case %q: no symptom tags or visual findings to rank against", c.ID)
		}

		c.Title = CleanText(c.Title)
		c.Diagnosis = CleanText(c.Diagnosis)
		c.OutcomeSummary = CleanText(c.OutcomeSummary)
		c.VisualFindings = CleanText(c.VisualFindings)
		tags := make([]string, 0, len(c.SymptomTags))
		for _, tag := range c.SymptomTags {
			if t := CleanText(tag); t != "" {
				tags = append(tags, t)
			}
		}
		c.SymptomTags = tags

		byID[c.ID] = len(normalized)
		normalized = append(normalized, c)
	}

	return &Registry{cases: normalized, byID: byID, source: source}, nil
}

// Cases returns the records in snapshot order. The returned slice is a copy;
// the records themselves are shared and must not be mutated.
func (r *Registry) Cases() []model.CaseRecord {
	out := make([]model.CaseRecord, len(r.cases))
	copy(out, r.cases)
	return out
}

// Len returns the number of records in the snapshot
func (r *Registry) Len() int {
	return len(r.cases)
}

// Get looks up a record by id
func (r *Registry) Get(id string) (model.CaseRecord, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return model.CaseRecord{}, false
	}
	return r.cases[idx], true
}

// Source identifies where the snapshot was loaded from
func (r *Registry) Source() string {
	return r.source
}

// Diagnoses returns the distinct diagnoses in the snapshot, sorted
func (r *Registry) Diagnoses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.cases {
		if !seen[c.Diagnosis] {
			seen[c.Diagnosis] = true
			out = append(out, c.Diagnosis)
		}
	}
	sort.Strings(out)
	return out
}
