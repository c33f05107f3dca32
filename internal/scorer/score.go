// Package scorer implements the scoring stage: a single rubric-driven
// completion against a company's research report, a defensive parse of the
// model's JSON, and the flatten/rehydrate mapping between the nested scoring
// object and the relational column set.
package scorer

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/pkg/anthropic"
)

// Scorer runs the scoring completion.
type Scorer struct {
	llm       anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.Profile
}

// NewScorer creates a Scorer bound to a model and token budget.
func NewScorer(llm anthropic.Client, modelID string, maxTokens int64, retry resilience.Profile) *Scorer {
	return &Scorer{llm: llm, model: modelID, maxTokens: maxTokens, retry: retry}
}

// Score evaluates a company's research report against the rubric and parses
// the response. A provider failure is an error; a malformed response is not —
// Parse always yields a tagged result.
func (s *Scorer) Score(ctx context.Context, companyName, website, researchText string, examples []model.TrainingExample) (model.ParsedScore, error) {
	prompt := fmt.Sprintf(
		"Score this company's narrative gap using the research provided.\n\nCompany: %s\nWebsite: %s\n\n=== RESEARCH RESULTS ===\n%s\n=== END RESEARCH ===\n\n%s%s",
		companyName, website, researchText, RubricPrompt, RenderCalibration(examples),
	)

	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.model,
			MaxTokens: s.maxTokens,
			System:    anthropic.BuildCachedSystemBlocks(JSONOnlySystemPrompt),
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return model.ParsedScore{}, eris.Wrap(err, "scorer: scoring completion")
	}
	resp.Usage.LogCost(s.model, "scoring")

	parsed := Parse(resp.Text())
	zap.L().Info("company scored",
		zap.String("company", companyName),
		zap.Int("parse_kind", int(parsed.Kind)),
	)
	return parsed, nil
}
