package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/pipeline"
	"github.com/tkordic/anamnesis/internal/progress"
)

var (
	age          int
	gender       string
	symptoms     string
	anatomyHint  string
	imagePath    string
	queryFile    string
	outJSON      string
	outMD        string
	timeout      time.Duration
	mode         string
	provider     string
	providerMod  string
	snapshotPath string
	topK         int
	noCache      bool
	showProgress bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one patient case against the reference registry",
	Long: `Analyze runs the full diagnostic flow for a single patient case:
- Classify attached imagery to an anatomical region (optional)
- Check registry health
- Rank reference cases by relevance to the presentation
- Synthesize the ranked material into a transparent report

The case comes from flags, or from a YAML file via --query.

Example:
  anamnesis analyze --age 55 --gender female --symptoms "irregular mole"
  anamnesis analyze --query case.yaml --json report.json --md report.md
  anamnesis analyze --age 40 --gender male --image study.dcm --mode live --provider openai`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Case flags
	analyzeCmd.Flags().IntVar(&age, "age", 0, "patient age in years")
	analyzeCmd.Flags().StringVar(&gender, "gender", "other", "patient gender (female, male, other)")
	analyzeCmd.Flags().StringVar(&symptoms, "symptoms", "", "free-text symptom description")
	analyzeCmd.Flags().StringVar(&anatomyHint, "anatomy-hint", "", "hint for the imaged body region")
	analyzeCmd.Flags().StringVar(&imagePath, "image", "", "primary study path (.dcm, .png, .jpg)")
	analyzeCmd.Flags().StringVar(&queryFile, "query", "", "YAML file describing the case (overrides case flags)")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&showProgress, "progress", false, "echo stage progress to stderr")

	// Pipeline flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().StringVar(&mode, "mode", "", "collaborator mode (demo, live); default from config")
	analyzeCmd.Flags().StringVar(&provider, "provider", "", "insight provider for live mode (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&providerMod, "model", "", "model name for live synthesis")
	analyzeCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "registry snapshot YAML (default: bundled demo snapshot)")
	analyzeCmd.Flags().IntVar(&topK, "top-k", 0, "max reference cases to retrieve")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable classification caching")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalyzeFlags(cfg)
	setupLogging(cfg)
	if err := resolveProviderKey(cfg); err != nil {
		return err
	}

	query, err := buildQuery()
	if err != nil {
		return err
	}

	var observers []progress.Reporter
	if showProgress || verbose {
		observers = append(observers, progress.ReporterFunc(echoProgress))
	}

	runner, err := pipeline.New(cfg, observers...)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Mode: %s\n", pipeline.ModeOf(cfg))
		fmt.Fprintf(os.Stderr, "Registry: %s (%d cases)\n", runner.Registry().Source(), runner.Registry().Len())
		fmt.Fprintln(os.Stderr)
	}

	report, err := runner.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	return renderReport(cfg, report, outJSON, outMD)
}

// applyAnalyzeFlags overlays analyze flags onto the configuration
func applyAnalyzeFlags(cfg *model.Config) {
	if mode != "" {
		cfg.Mode = model.Mode(mode)
	}
	if provider != "" {
		cfg.Insight.Provider = provider
	}
	if providerMod != "" {
		cfg.Insight.Model = providerMod
	}
	if snapshotPath != "" {
		cfg.Registry.SnapshotPath = snapshotPath
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

// buildQuery assembles the patient query from the YAML file or flags
func buildQuery() (model.PatientQuery, error) {
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return model.PatientQuery{}, fmt.Errorf("read query file: %w", err)
		}
		var query model.PatientQuery
		if err := yaml.Unmarshal(data, &query); err != nil {
			return model.PatientQuery{}, fmt.Errorf("parse query file: %w", err)
		}
		if query.ImagePath != "" {
			query.HasImagery = true
		}
		return query, nil
	}

	return model.PatientQuery{
		Age:         age,
		Gender:      model.Gender(gender),
		Symptoms:    symptoms,
		AnatomyHint: anatomyHint,
		HasImagery:  imagePath != "",
		ImagePath:   imagePath,
	}, nil
}

// echoProgress prints tracker snapshots to stderr
func echoProgress(snap progress.Snapshot) {
	if snap.Label == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[%3d%%] %-10s %s\n", snap.Percent, snap.Stage, snap.Label)
}

// renderReport writes the configured outputs and the stdout summary
func renderReport(cfg *model.Config, report *model.Report, jsonPath, mdPath string) error {
	renderer := pipeline.NewRenderer(cfg.Analysis.HighRiskThreshold)

	if jsonPath != "" {
		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	renderer.RenderSummary(report)
	return nil
}
