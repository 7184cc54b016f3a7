package insight

import (
	"fmt"
	"strings"
)

// BuildClassifyPrompt constructs the default vision prompt for anatomy
// classification.
func BuildClassifyPrompt(req ClassifyRequest) string {
	prompt := `You are reviewing a single medical imaging study to identify the anatomical region it shows.

CRITICAL RULES:
1. Identify only what is visible in the image. Do NOT diagnose.
2. Use a single canonical region label (e.g. "Lung", "Skin", "Head", "Abdomen").
3. List at most 3 brief visual findings, each under 15 words.
4. If the region cannot be determined, set "anatomy" to "".
`

	if req.AnatomyHint != "" {
		prompt += fmt.Sprintf("\nThe clinician indicated the region may be: %s. Confirm or correct it from the image.\n", req.AnatomyHint)
	}
	if req.Study != nil {
		if req.Study.Modality != "" {
			prompt += fmt.Sprintf("\nStudy modality: %s.\n", req.Study.Modality)
		}
		if req.Study.BodyPart != "" {
			prompt += fmt.Sprintf("Study metadata lists body part: %s.\n", req.Study.BodyPart)
		}
	}

	prompt += `
Respond with a single JSON object and nothing else:
{"anatomy": "<region label>", "findings": ["<finding>", ...]}`

	return prompt
}

// BuildSynthesisPrompt constructs the default prompt for diagnostic
// synthesis over the retrieved reference cases.
func BuildSynthesisPrompt(req SynthesisRequest) string {
	prompt := fmt.Sprintf(`You are assisting a clinician by synthesizing reference material. You surface similar documented cases and tests to consider - you NEVER issue a diagnosis or treatment decision.

CRITICAL RULES:
1. You MUST ONLY reason from the reference cases listed below.
2. DO NOT infer, speculate, or cite external sources beyond this list.
3. If the reference material is insufficient, state that explicitly and keep confidence low.
4. Describe alignment with documented cases. Use phrases like:
   - "The presentation aligns with case <case-id>..."
   - "Reference material is lacking for..."
5. Never say "the patient has X" - only describe similarity and next steps.

Patient Summary:
- Age: %d
- Gender: %s
- Symptoms: %s
`, req.Query.Age, req.Query.Gender, describeSymptoms(req.Query.Symptoms))

	if req.AnatomyContext != "" {
		prompt += fmt.Sprintf("- Imaging anatomy context: %s\n", req.AnatomyContext)
	}

	if len(req.RankedCases) == 0 {
		prompt += "\nReference Cases: none retrieved. State that no sufficiently similar documented cases were found.\n"
	} else {
		prompt += "\nReference Cases:\n"
		for _, rc := range req.RankedCases {
			prompt += fmt.Sprintf("- [%s] %s | diagnosis: %s | relevance: %.0f/100 | outcome: %s\n",
				rc.ID, rc.Title, rc.Diagnosis, rc.Relevance, rc.OutcomeSummary)
		}
	}

	prompt += `
Respond with a single JSON object and nothing else:
{
  "risk_score": <0-100, urgency of clinical follow-up>,
  "confidence_score": <0-100, how well the references cover this presentation>,
  "potential_diagnoses": ["<diagnosis to consider>", ...],
  "reasoning": "<3-4 sentences referencing the cases by ID>",
  "recommended_tests": ["<test or consult>", ...],
  "visual_evidence": "<one sentence on imaging findings, or empty string>"
}`

	return prompt
}

// describeSymptoms renders the free-text symptoms for the prompt,
// marking imaging-led presentations that carry none.
func describeSymptoms(symptoms string) string {
	if strings.TrimSpace(symptoms) == "" {
		return "(none recorded; imaging-led presentation)"
	}
	return symptoms
}
