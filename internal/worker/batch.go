package worker

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tkordic/anamnesis/internal/model"
)

// Analyzer runs one diagnostic analysis end to end.
type Analyzer interface {
	Analyze(ctx context.Context, query model.PatientQuery) (*model.Report, error)
}

// AnalyzerFunc adapts a function to the Analyzer interface
type AnalyzerFunc func(ctx context.Context, query model.PatientQuery) (*model.Report, error)

// Analyze calls f
func (f AnalyzerFunc) Analyze(ctx context.Context, query model.PatientQuery) (*model.Report, error) {
	return f(ctx, query)
}

// AnalysisJob is one patient query queued for the pool
type AnalysisJob struct {
	Index    int
	Query    model.PatientQuery
	Analyzer Analyzer
}

// Execute runs the analysis for this job's query
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	report, err := j.Analyzer.Analyze(ctx, j.Query)
	return &AnalysisOutcome{
		Index:  j.Index,
		Query:  j.Query,
		Report: report,
		Error:  err,
	}
}

// AnalysisOutcome is the result of one batch entry. Index preserves
// the position of the query in the input file.
type AnalysisOutcome struct {
	Index  int
	Query  model.PatientQuery
	Report *model.Report
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalysisOutcome) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple patient queries concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessQueries analyzes the queries concurrently. Outcomes come back
// in input order regardless of completion order.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []model.PatientQuery) []*AnalysisOutcome {
	if len(queries) == 0 {
		return []*AnalysisOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, query := range queries {
		pool.Submit(&AnalysisJob{
			Index:    i,
			Query:    query,
			Analyzer: b.analyzer,
		})
	}

	results := pool.Wait()

	outcomes := make([]*AnalysisOutcome, len(results))
	for i, result := range results {
		outcomes[i] = result.(*AnalysisOutcome)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].Index < outcomes[j].Index
	})

	return outcomes
}

// ProcessFile reads queries from a YAML file and analyzes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisOutcome, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile loads patient queries from a YAML batch file:
//
//	queries:
//	  - age: 61
//	    gender: male
//	    symptoms: irregular mole, pruritus
func ReadQueriesFromFile(filePath string) ([]model.PatientQuery, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var batch struct {
		Queries []model.PatientQuery `yaml:"queries"`
	}
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(batch.Queries) == 0 {
		return nil, fmt.Errorf("batch file %s contains no queries", filePath)
	}

	return batch.Queries, nil
}
