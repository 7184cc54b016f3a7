package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tkordic/anamnesis/internal/cache"
	"github.com/tkordic/anamnesis/internal/imaging"
	"github.com/tkordic/anamnesis/internal/insight"
	"github.com/tkordic/anamnesis/internal/logging"
	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/probe"
	"github.com/tkordic/anamnesis/internal/progress"
	"github.com/tkordic/anamnesis/internal/registry"
	"github.com/tkordic/anamnesis/internal/retrieval"
	"github.com/tkordic/anamnesis/internal/worker"
)

// ErrRunInFlight is returned when Run is called while another run is
// active on the same runner. A runner drives one case at a time.
var ErrRunInFlight = errors.New("an analysis is already in progress on this runner")

// DefaultRetrievalQuery substitutes for empty free-text symptoms when
// imagery is attached: the clinician submitted the study itself as the
// presenting complaint.
const DefaultRetrievalQuery = "visual anomaly suspected malignancy"

// Progress checkpoints per stage. Each stage ends at its checkpoint;
// the runner clamps raw values so percent never regresses.
const (
	percentVisionActive    = 10
	percentVisionDone      = 30
	percentRegistryActive  = 35
	percentRegistryDone    = 45
	percentRetrievalActive = 55
	percentRetrievalDone   = 75
	percentSynthesisActive = 80
	percentSynthesisDone   = 100
)

// transitions is the allowed state machine of a run. Entering a stage
// not listed for the current state is a programmer error.
var transitions = map[progress.Stage][]progress.Stage{
	progress.StageIdle:      {progress.StageVision},
	progress.StageVision:    {progress.StageRegistry, progress.StageFailed},
	progress.StageRegistry:  {progress.StageRetrieval, progress.StageFailed},
	progress.StageRetrieval: {progress.StageSynthesis, progress.StageFailed},
	progress.StageSynthesis: {progress.StageDone, progress.StageFailed},
	progress.StageDone:      {},
	progress.StageFailed:    {},
}

// stageFatal is the failure policy per stage. Vision is the only stage
// a run survives: imaging is supplementary evidence, and retrieval
// still works from the free-text symptoms alone. Every other stage
// feeds the next one directly.
var stageFatal = map[progress.Stage]bool{
	progress.StageVision:    false,
	progress.StageRegistry:  true,
	progress.StageRetrieval: true,
	progress.StageSynthesis: true,
}

// Runner drives one diagnostic analysis through the fixed stage order:
// vision, registry health, case retrieval, synthesis. It is the single
// writer of its progress tracker; readers poll Snapshot or register a
// Reporter. One run is in flight at a time.
type Runner struct {
	config      *model.Config
	registry    *registry.Registry
	ranker      *retrieval.Ranker
	loader      *imaging.Loader
	classifier  insight.Classifier
	synthesizer insight.Synthesizer
	probe       probe.HealthProbe
	tracker     *progress.Tracker
	logger      *slog.Logger

	state   progress.Stage
	running atomic.Bool
}

// New wires a runner from configuration: the case registry, the ranker,
// and mode-appropriate collaborators (demo wires the deterministic
// offline providers, live the configured LLM provider and HTTP probe).
func New(cfg *model.Config, observers ...progress.Reporter) (*Runner, error) {
	reg, err := registry.Load(cfg.Registry)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	classifier, synthesizer, healthProbe, err := buildCollaborators(cfg)
	if err != nil {
		return nil, err
	}

	return NewRunner(cfg, reg, classifier, synthesizer, healthProbe, observers...), nil
}

// NewRunner wires a runner from explicit collaborators. New is the
// production path; this constructor exists for composition and tests.
func NewRunner(cfg *model.Config, reg *registry.Registry, classifier insight.Classifier, synthesizer insight.Synthesizer, healthProbe probe.HealthProbe, observers ...progress.Reporter) *Runner {
	return &Runner{
		config:      cfg,
		registry:    reg,
		ranker:      retrieval.NewRanker(cfg.Retrieval),
		loader:      imaging.NewLoader(cfg.Imaging),
		classifier:  classifier,
		synthesizer: synthesizer,
		probe:       healthProbe,
		tracker:     progress.NewTracker(observers...),
		logger:      logging.New("pipeline"),
		state:       progress.StageIdle,
	}
}

// buildCollaborators constructs the mode-appropriate classifier,
// synthesizer, and health probe. Mode is explicit configuration; the
// pipeline never infers it from ambient credentials mid-run.
func buildCollaborators(cfg *model.Config) (insight.Classifier, insight.Synthesizer, probe.HealthProbe, error) {
	if ModeOf(cfg) == model.ModeDemo {
		return insight.DemoClassifier{}, insight.DemoSynthesizer{}, probe.NewDemoProbe(cfg.Probe.Nodes), nil
	}

	classifier, synthesizer, err := insight.NewProviders(insight.ConfigFromModel(cfg.Insight, cfg.HTTP))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build insight provider: %w", err)
	}
	if store := cache.FromConfig(cfg.Cache); store != nil {
		classifier = insight.NewCachedClassifier(classifier, store, cfg.Cache.MemoryTTL)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	healthProbe := probe.NewLiveProbe(cfg.Probe, cfg.HTTP, cfg.Concurrency.ProbeWorkers, limiter)
	return classifier, synthesizer, healthProbe, nil
}

// ModeOf normalizes the configured mode, defaulting to demo.
func ModeOf(cfg *model.Config) model.Mode {
	if cfg.Mode == model.ModeLive {
		return model.ModeLive
	}
	return model.ModeDemo
}

// Tracker exposes the runner's progress state for polling readers
func (r *Runner) Tracker() *progress.Tracker {
	return r.tracker
}

// Registry exposes the loaded case snapshot
func (r *Runner) Registry() *registry.Registry {
	return r.registry
}

// Run executes one analysis. It returns either a completed report or
// the error of the first fatal stage, never both. The query is read
// only: on failure the caller can resubmit it unchanged. Progress is
// left frozen at its last values after a failure for inspection.
func (r *Runner) Run(ctx context.Context, query model.PatientQuery) (*model.Report, error) {
	// Validation precedes any stage or progress change.
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInFlight
	}
	defer r.running.Store(false)

	start := time.Now()
	r.tracker.Reset()
	r.state = progress.StageIdle

	report := &model.Report{
		RunID:    uuid.NewString(),
		Mode:     ModeOf(r.config),
		Query:    query,
		Provider: r.synthesizer.Name(),
	}

	// Vision: the only stage whose failure the run survives.
	r.enter(progress.StageVision)
	r.runVision(ctx, query, report)
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Registry: the downstream stages need the registry reachable.
	r.enter(progress.StageRegistry)
	r.advance(progress.StageRegistry, "Checking registry health", percentRegistryActive)
	nodes, err := r.probe.Check(ctx)
	if err != nil {
		return nil, r.fail(progress.StageRegistry, err)
	}
	report.Nodes = nodes
	r.tracker.Append(fmt.Sprintf("registry: %d/%d nodes reachable", reachableNodes(nodes), len(nodes)))
	r.advance(progress.StageRegistry, "Registry reachable", percentRegistryDone)
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Retrieval over the composed query.
	retrievalQuery := ComposeRetrievalQuery(query.Symptoms, report.AnatomyContext)
	r.enter(progress.StageRetrieval)
	r.advance(progress.StageRetrieval, "Searching reference cases", percentRetrievalActive)
	ranked, err := r.ranker.Rank(retrievalQuery, r.registry)
	if err != nil {
		return nil, r.fail(progress.StageRetrieval, err)
	}
	r.tracker.Append(fmt.Sprintf("retrieval: %d reference cases matched", len(ranked)))
	r.advance(progress.StageRetrieval, "Reference cases ranked", percentRetrievalDone)
	if err := r.checkpoint(ctx); err != nil {
		return nil, err
	}

	// Synthesis over the original query and the ranked cases.
	r.enter(progress.StageSynthesis)
	r.advance(progress.StageSynthesis, "Synthesizing diagnostic analysis", percentSynthesisActive)
	synthesis, err := r.synthesizer.Synthesize(ctx, insight.SynthesisRequest{
		Query:          query,
		RetrievalQuery: retrievalQuery,
		AnatomyContext: report.AnatomyContext,
		RankedCases:    ranked,
		Model:          r.config.Insight.Model,
		MaxTokens:      r.config.Insight.MaxTokens,
	})
	if err != nil {
		return nil, r.fail(progress.StageSynthesis, err)
	}

	report.Analysis = synthesis.Result
	report.Analysis.RankedCases = ranked
	report.Model = synthesis.Model
	report.TokensUsed += synthesis.TokensUsed
	report.GeneratedAt = time.Now().UTC()
	report.DurationMs = time.Since(start).Milliseconds()

	r.enter(progress.StageDone)
	r.tracker.Append("analysis complete")
	r.advance(progress.StageDone, "Analysis complete", percentSynthesisDone)
	r.logger.Info("analysis complete",
		slog.String("run_id", report.RunID),
		slog.Int("ranked_cases", len(ranked)),
		slog.Int("risk_score", report.Analysis.RiskScore),
		slog.Int64("duration_ms", report.DurationMs))

	return report, nil
}

// Analyze satisfies the batch analyzer contract: each call runs on a
// fresh runner sharing this runner's registry and collaborators, so
// concurrent batch entries do not trip the in-flight guard.
func (r *Runner) Analyze(ctx context.Context, query model.PatientQuery) (*model.Report, error) {
	clone := NewRunner(r.config, r.registry, r.classifier, r.synthesizer, r.probe)
	return clone.Run(ctx, query)
}

// runVision classifies the primary study when imagery is attached.
// Failures here are logged and swallowed: the run continues with an
// empty anatomy context.
func (r *Runner) runVision(ctx context.Context, query model.PatientQuery, report *model.Report) {
	if !query.HasImagery {
		r.advance(progress.StageVision, "No imagery attached", percentVisionDone)
		r.tracker.Append("bypassing vision stack")
		return
	}

	r.advance(progress.StageVision, "Analyzing patient imagery", percentVisionActive)
	r.tracker.Append("vision: classifying primary study")

	classification, err := r.classify(ctx, query)
	if err != nil {
		r.logger.Warn("vision classification failed, continuing without anatomy context", slog.Any("error", err))
		r.tracker.Append("vision: classification failed, continuing without anatomy context")
	} else {
		report.AnatomyContext = classification.Anatomy
		report.TokensUsed += classification.TokensUsed
		r.tracker.Append(fmt.Sprintf("vision: anatomy identified as %s", classification.Anatomy))
	}
	r.advance(progress.StageVision, "Vision stage complete", percentVisionDone)
}

// classify loads the study from disk when a path is set and hands it
// to the classifier. A load failure is a classification failure.
func (r *Runner) classify(ctx context.Context, query model.PatientQuery) (*insight.Classification, error) {
	var study *imaging.Study
	if query.ImagePath != "" {
		loaded, err := r.loader.Load(query.ImagePath)
		if err != nil {
			return nil, &insight.ClassificationError{Provider: "imaging", Err: err}
		}
		study = loaded
	}
	return r.classifier.Classify(ctx, insight.ClassifyRequest{
		Study:       study,
		AnatomyHint: query.AnatomyHint,
		Model:       r.config.Insight.VisionModel,
	})
}

// ComposeRetrievalQuery builds the retrieval query: free-text symptoms
// (or the default phrase when empty) prefixed with the bracketed
// anatomy tag when the vision stage produced one.
func ComposeRetrievalQuery(symptoms, anatomyContext string) string {
	query := symptoms
	if query == "" {
		query = DefaultRetrievalQuery
	}
	if anatomyContext != "" {
		query = retrieval.AnatomyPrefix(anatomyContext) + query
	}
	return query
}

// enter validates and applies a controller state transition
func (r *Runner) enter(next progress.Stage) {
	for _, allowed := range transitions[r.state] {
		if allowed == next {
			r.logger.Info("stage transition", slog.String("from", string(r.state)), slog.String("to", string(next)))
			r.state = next
			return
		}
	}
	panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", r.state, next))
}

// advance writes tracker progress, clamping the raw checkpoint so the
// percent never regresses even when a stage reports a lower value.
func (r *Runner) advance(stage progress.Stage, label string, percent int) {
	if current := r.tracker.Snapshot().Percent; percent < current {
		percent = current
	}
	r.tracker.Advance(stage, label, percent)
}

// fail records a fatal stage failure. The tracker keeps its last stage
// and percent for diagnostic inspection; only the controller state
// moves to Failed.
func (r *Runner) fail(stage progress.Stage, err error) error {
	if !stageFatal[stage] {
		panic(fmt.Sprintf("pipeline: fail called for non-fatal stage %s", stage))
	}
	r.state = progress.StageFailed
	r.tracker.Append(fmt.Sprintf("%s: %v", stage, err))
	r.logger.Error("analysis failed", slog.String("stage", string(stage)), slog.Any("error", err))
	return fmt.Errorf("%s stage: %w", stage, err)
}

// checkpoint aborts between stages when the context is done
func (r *Runner) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		r.state = progress.StageFailed
		r.tracker.Append(fmt.Sprintf("run aborted: %v", err))
		return err
	}
	return nil
}

func reachableNodes(nodes []model.NodeStatus) int {
	reachable := 0
	for _, node := range nodes {
		if node.Status != model.NodeOffline {
			reachable++
		}
	}
	return reachable
}
