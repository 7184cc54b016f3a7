package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkordic/anamnesis/internal/model"
	"github.com/tkordic/anamnesis/internal/pipeline"
	"github.com/tkordic/anamnesis/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple patient cases from a file in parallel",
	Long: `Batch analyzes multiple patient cases concurrently:
- Read cases from a YAML file (queries: [...])
- Run each case through the full diagnostic flow on its own runner
- Generate individual JSON and Markdown reports per case

Example:
  anamnesis batch cases.yaml
  anamnesis batch cases.yaml --concurrency 8 --output-dir ./reports
  anamnesis batch cases.yaml --mode live --provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./anamnesis-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	batchCmd.Flags().StringVar(&mode, "mode", "", "collaborator mode (demo, live); default from config")
	batchCmd.Flags().StringVar(&provider, "provider", "", "insight provider for live mode (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&providerMod, "model", "", "model name for live synthesis")
	batchCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "registry snapshot YAML (default: bundled demo snapshot)")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable classification caching")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalyzeFlags(cfg)
	cfg.Concurrency.Workers = concurrency
	setupLogging(cfg)
	if err := resolveProviderKey(cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Anamnesis Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Mode:         %s\n", pipeline.ModeOf(cfg))
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runner, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	queries, err := worker.ReadQueriesFromFile(file)
	if err != nil {
		return fmt.Errorf("read cases: %w", err)
	}
	fmt.Fprintf(os.Stderr, "⚙️  Analyzing %d cases with %d workers...\n\n", len(queries), concurrency)

	processor := worker.NewBatchProcessor(runner, concurrency)
	outcomes := processor.ProcessQueries(ctx, queries)

	renderer := pipeline.NewRenderer(cfg.Analysis.HighRiskThreshold)
	successCount := 0
	failureCount := 0

	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ case %d: %v\n", outcome.Index+1, outcome.Error)
			continue
		}

		successCount++

		slug := caseSlug(outcome.Index, outcome.Query)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(outcome.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ case %d: failed to write JSON: %v\n", outcome.Index+1, err)
			continue
		}
		if err := renderer.RenderMarkdown(outcome.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ case %d: failed to write Markdown: %v\n", outcome.Index+1, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ case %d (risk: %d/100, cases: %d)\n",
			outcome.Index+1, outcome.Report.Analysis.RiskScore, len(outcome.Report.Analysis.RankedCases))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d cases\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// caseSlug builds a stable filename for one batch entry
func caseSlug(index int, query model.PatientQuery) string {
	slug := fmt.Sprintf("case-%03d", index+1)
	if query.Symptoms != "" {
		words := strings.Fields(strings.ToLower(query.Symptoms))
		if len(words) > 3 {
			words = words[:3]
		}
		cleaned := make([]string, 0, len(words))
		for _, w := range words {
			var b strings.Builder
			for _, r := range w {
				if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
					b.WriteRune(r)
				}
			}
			if b.Len() > 0 {
				cleaned = append(cleaned, b.String())
			}
		}
		if len(cleaned) > 0 {
			slug += "-" + strings.Join(cleaned, "-")
		}
	}
	return slug
}
