package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tkordic/anamnesis/internal/model"
)

// Renderer writes completed reports as JSON, Markdown, and a compact
// stdout summary.
type Renderer struct {
	highRiskThreshold int
}

// NewRenderer creates a renderer. The threshold marks reports whose
// risk score exceeds it as high risk.
func NewRenderer(highRiskThreshold int) *Renderer {
	if highRiskThreshold <= 0 {
		highRiskThreshold = 50
	}
	return &Renderer{highRiskThreshold: highRiskThreshold}
}

// RenderJSON writes the canonical report to a JSON file
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the human-readable report to a Markdown file
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	analysis := report.Analysis

	b.WriteString("# Diagnostic Analysis Report\n\n")
	fmt.Fprintf(&b, "Run `%s` · mode %s · provider %s", report.RunID, report.Mode, report.Provider)
	if report.Model != "" {
		fmt.Fprintf(&b, " (%s)", report.Model)
	}
	b.WriteString("\n\n")

	b.WriteString("## Patient\n\n")
	fmt.Fprintf(&b, "- Age: %d\n", report.Query.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", report.Query.Gender)
	if report.Query.Symptoms != "" {
		fmt.Fprintf(&b, "- Symptoms: %s\n", report.Query.Symptoms)
	}
	if report.AnatomyContext != "" {
		fmt.Fprintf(&b, "- Imaging anatomy: %s\n", report.AnatomyContext)
	}
	b.WriteString("\n")

	b.WriteString("## Assessment\n\n")
	fmt.Fprintf(&b, "**%s** · risk %d/100 · confidence %d/100\n\n",
		r.riskBadge(analysis.RiskScore), analysis.RiskScore, analysis.ConfidenceScore)
	if len(analysis.PotentialDiagnoses) > 0 {
		b.WriteString("Potential diagnoses, most likely first:\n\n")
		for i, d := range analysis.PotentialDiagnoses {
			fmt.Fprintf(&b, "%d. %s\n", i+1, d)
		}
		b.WriteString("\n")
	}
	if analysis.Reasoning != "" {
		fmt.Fprintf(&b, "%s\n\n", analysis.Reasoning)
	}

	if len(analysis.RankedCases) > 0 {
		b.WriteString("## Similar Documented Cases\n\n")
		b.WriteString("| Relevance | Case | Diagnosis | Source |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, rc := range analysis.RankedCases {
			fmt.Fprintf(&b, "| %.0f/100 | %s (%s) | %s | %s |\n",
				rc.Relevance, rc.Title, rc.ID, rc.Diagnosis, rc.SourceName)
		}
		b.WriteString("\n")
	}

	if len(analysis.VisualEvidence) > 0 {
		b.WriteString("## Visual Evidence\n\n")
		for _, v := range analysis.VisualEvidence {
			fmt.Fprintf(&b, "- %s\n", v)
		}
		b.WriteString("\n")
	}

	if len(analysis.RecommendedTests) > 0 {
		b.WriteString("## Recommended Tests\n\n")
		for _, t := range analysis.RecommendedTests {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}

	if len(report.Nodes) > 0 {
		b.WriteString("## Registry Health\n\n")
		b.WriteString("| Node | Status | Latency |\n")
		b.WriteString("|---|---|---|\n")
		for _, node := range report.Nodes {
			fmt.Fprintf(&b, "| %s | %s | %dms |\n", node.NodeName, node.Status, node.LatencyMs)
		}
		b.WriteString("\n")
	}

	if len(analysis.CitedSources) > 0 {
		b.WriteString("## Sources\n\n")
		for _, c := range analysis.CitedSources {
			fmt.Fprintf(&b, "- [%s](%s)\n", c.Title, c.URI)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n")
	b.WriteString("This report surfaces documented reference material. It is not a diagnosis.\n")
	return b.String()
}

// RenderSummary prints the compact stdout summary
func (r *Renderer) RenderSummary(report *model.Report) {
	analysis := report.Analysis

	fmt.Printf("\n%s\n", strings.Repeat("─", 60))
	fmt.Printf("  %s · risk %d/100 · confidence %d/100\n",
		r.riskBadge(analysis.RiskScore), analysis.RiskScore, analysis.ConfidenceScore)
	if len(analysis.PotentialDiagnoses) > 0 {
		fmt.Printf("  Leading consideration: %s\n", analysis.PotentialDiagnoses[0])
	}
	fmt.Printf("  Reference cases: %d", len(analysis.RankedCases))
	if len(analysis.RankedCases) > 0 {
		top := analysis.RankedCases[0]
		fmt.Printf(" (top: %s at %.0f/100)", top.ID, top.Relevance)
	}
	fmt.Printf("\n%s\n", strings.Repeat("─", 60))
}

// riskBadge maps the risk score to its display band
func (r *Renderer) riskBadge(riskScore int) string {
	switch {
	case riskScore > r.highRiskThreshold:
		return "HIGH RISK"
	case riskScore > r.highRiskThreshold/2:
		return "MODERATE RISK"
	default:
		return "LOW RISK"
	}
}
