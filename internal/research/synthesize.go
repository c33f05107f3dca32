package research

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/pkg/anthropic"
)

// Synthesizer turns an evidence document into a structured research report
// using a single fast-tier completion. No web search: everything the model
// needs is already in the document.
type Synthesizer struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.Profile
}

// NewSynthesizer creates a Synthesizer bound to a model and token budget.
func NewSynthesizer(llm anthropic.Client, modelID string, maxTokens int64, retry resilience.Profile) *Synthesizer {
	return &Synthesizer{llm: llm, model: modelID, maxTokens: maxTokens, retry: retry}
}

// Synthesize runs the synthesis completion and extracts the named fields
// from the report. Unlike evidence gathering, a provider failure here is
// fatal to the run: there is nothing to degrade to.
func (s *Synthesizer) Synthesize(ctx context.Context, companyName, website string, ev Evidence) (string, model.ResearchFields, error) {
	prompt := fmt.Sprintf(
		"Synthesize the following pre-gathered research data into a structured report.\n\nCompany: %s\nWebsite: %s\n\n%s\n\n%s",
		companyName, website, ev.Document, SynthesisPrompt,
	)

	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return "", model.ResearchFields{}, eris.Wrap(err, "research: synthesis completion")
	}
	resp.Usage.LogCost(s.model, "research")

	text := resp.Text()
	fields := ExtractResearchFields(text)
	zap.L().Info("research synthesized",
		zap.String("company", companyName),
		zap.Int("report_chars", len(text)),
	)
	return text, fields, nil
}
