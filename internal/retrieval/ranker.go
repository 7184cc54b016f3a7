package retrieval

import (
	"fmt"
	"sort"

	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/registry"
)

// Score weights. Symptom-tag coverage dominates; the phrase and anatomy
// bonuses reward exact tag hits and a matching imaged body region. The sum
// is clamped to 100.
const (
	tagWeight       = 55.0
	phraseBonus     = 20.0
	diagnosisWeight = 15.0
	findingsWeight  = 10.0
	anatomyBonus    = 15.0
	maxRelevance    = 100.0
)

// EmptyRegistryError reports a ranking attempt against a registry with no
// cases. It is fatal to an analysis run.
type EmptyRegistryError struct {
	Source string
}

func (e *EmptyRegistryError) Error() string {
	return fmt.Sprintf("case registry is empty (source: %s)", e.Source)
}

// Ranker scores reference cases against a retrieval query.
// Ranking is a pure function of its inputs: no randomness, no side effects.
type Ranker struct {
	topK  int
	floor float64
}

// NewRanker creates a ranker from retrieval configuration.
// Zero values fall back to the built-in defaults.
func NewRanker(cfg model.RetrievalConfig) *Ranker {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	floor := cfg.RelevanceFloor
	if floor <= 0 {
		floor = 35
	}
	return &Ranker{topK: topK, floor: floor}
}

// Rank scores every registry case against the query and returns up to TopK
// cases ordered by descending relevance, ties broken by ascending case id.
// Cases scoring at or above the relevance floor are preferred; when fewer
// than TopK clear the floor it relaxes to admit lower-scoring cases rather
// than returning nothing. Cases with zero relevance are never returned, so
// a query sharing no terms with the registry legitimately yields an empty
// result. An empty registry is an error.
func (r *Ranker) Rank(query string, reg *registry.Registry) ([]model.RankedCase, error) {
	if reg.Len() == 0 {
		return nil, &EmptyRegistryError{Source: reg.Source()}
	}

	anatomy, remainder := ParseAnatomyTag(query)
	queryTokens := Tokenize(remainder)
	anatomyTokens := Tokenize(anatomy)

	cases := reg.Cases()
	ranked := make([]model.RankedCase, 0, len(cases))
	for _, c := range cases {
		ranked = append(ranked, model.RankedCase{
			CaseRecord: c,
			Relevance:  scoreCase(queryTokens, anatomyTokens, c),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Relevance != ranked[j].Relevance {
			return ranked[i].Relevance > ranked[j].Relevance
		}
		return ranked[i].ID < ranked[j].ID
	})

	out := make([]model.RankedCase, 0, r.topK)
	for _, rc := range ranked {
		if len(out) == r.topK {
			break
		}
		if rc.Relevance >= r.floor {
			out = append(out, rc)
		}
	}
	// Relax the floor rather than return an empty set.
	if len(out) < r.topK {
		for _, rc := range ranked {
			if len(out) == r.topK {
				break
			}
			if rc.Relevance < r.floor && rc.Relevance > 0 {
				out = append(out, rc)
			}
		}
	}

	return out, nil
}

// scoreCase computes the relevance of one case to the query terms
func scoreCase(queryTokens, anatomyTokens []string, c model.CaseRecord) float64 {
	tagTokens := tokenSet(c.SymptomTags...)
	diagTokens := tokenSet(c.Diagnosis)
	findTokens := tokenSet(c.VisualFindings)

	score := tagWeight * coverage(queryTokens, tagTokens)

	for _, tag := range c.SymptomTags {
		if containsSequence(queryTokens, Tokenize(tag)) {
			score += phraseBonus
			break
		}
	}

	score += diagnosisWeight * coverage(queryTokens, diagTokens)
	score += findingsWeight * coverage(queryTokens, findTokens)

	if len(anatomyTokens) > 0 && anatomyMatches(anatomyTokens, c, tagTokens, diagTokens, findTokens) {
		score += anatomyBonus
	}

	if score > maxRelevance {
		score = maxRelevance
	}
	return score
}

// anatomyMatches reports whether the imaged body region appears anywhere in
// the case's tags, diagnosis, findings, or title.
func anatomyMatches(anatomyTokens []string, c model.CaseRecord, tagTokens, diagTokens, findTokens map[string]struct{}) bool {
	titleTokens := tokenSet(c.Title)
	for _, tok := range anatomyTokens {
		if _, ok := tagTokens[tok]; ok {
			return true
		}
		if _, ok := diagTokens[tok]; ok {
			return true
		}
		if _, ok := findTokens[tok]; ok {
			return true
		}
		if _, ok := titleTokens[tok]; ok {
			return true
		}
	}
	return false
}
