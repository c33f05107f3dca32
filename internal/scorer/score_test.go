package scorer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/pkg/anthropic"
)

type fakeLLM struct {
	lastReq anthropic.MessageRequest
	resp    *anthropic.MessageResponse
	err     error
}

func (f *fakeLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func testScorer(llm anthropic.Client) *Scorer {
	return NewScorer(llm, "claude-sonnet-4-5-20250929", 8096,
		resilience.Profile{Service: "completion", MaxAttempts: 1, BaseDelay: time.Millisecond})
}

func TestScore(t *testing.T) {
	llm := &fakeLLM{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: structuredScoring}},
		},
	}
	s := testScorer(llm)

	parsed, err := s.Score(context.Background(), "Acme", "https://acme.io", "PRODUCT_SUMMARY: Scheduling.", nil)
	require.NoError(t, err)
	require.Equal(t, model.ParseStructured, parsed.Kind)
	assert.Equal(t, 16, parsed.Structured.TotalScore)

	assert.Equal(t, "claude-sonnet-4-5-20250929", llm.lastReq.Model)
	require.Len(t, llm.lastReq.System, 1)
	assert.Equal(t, JSONOnlySystemPrompt, llm.lastReq.System[0].Text)
	require.NotNil(t, llm.lastReq.System[0].CacheControl)

	require.Len(t, llm.lastReq.Messages, 1)
	prompt := llm.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "Company: Acme\nWebsite: https://acme.io")
	assert.Contains(t, prompt, "=== RESEARCH RESULTS ===\nPRODUCT_SUMMARY: Scheduling.\n=== END RESEARCH ===")
	assert.Contains(t, prompt, "FACTOR A — DIFFERENTIATION")
	assert.NotContains(t, prompt, "=== CALIBRATION EXAMPLES ===")
}

// The rubric's closed vocabularies drive what the normalizer persists into
// the per-section type/orientation and product tag columns; losing a rule
// line lets the model drift to arbitrary strings.
func TestRubricPrompt_RuleVocabularies(t *testing.T) {
	rules := []string{
		`- status values for factor_a: "hit" (differentiator found) or "miss" (absent/generic)`,
		`- outcome_type values for factor_b: "strategic", "tactical", or "none"`,
		`- orientation values for factor_c: "product-centric", "customer-centric", "mixed", or "excluded" (for testimonial sections)`,
		`- For factor_d changes array: empty array [] if no changes. Include date as "Month YYYY" or "Early/Mid/Late YYYY".`,
		`- For factor_f tag values: "module" (capability within one product), "product" (distinct product), or "suite" (separate product line)`,
		`- All string values must be properly escaped for JSON.`,
	}
	for _, rule := range rules {
		assert.Contains(t, RubricPrompt, rule)
	}
	assert.True(t, strings.HasSuffix(RubricPrompt,
		"REMEMBER: Output ONLY the JSON object. No text before it. No text after it. No markdown fences. Start your response with { and end with }."))
}

func TestScore_IncludesCalibration(t *testing.T) {
	llm := &fakeLLM{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: structuredScoring}},
		},
	}
	s := testScorer(llm)

	examples := []model.TrainingExample{
		{Domain: "beta.co", CompanyName: "Beta", Factor: "B", Score: 1, Justification: "Strong hero outcomes."},
	}
	_, err := s.Score(context.Background(), "Acme", "https://acme.io", "research", examples)
	require.NoError(t, err)

	prompt := llm.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "=== CALIBRATION EXAMPLES ===")
	assert.Contains(t, prompt, "--- Beta (beta.co) ---")
	assert.Contains(t, prompt, "Now score the following company using the same standards:")
}

func TestScore_ProviderErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: errors.New("overloaded")}
	s := testScorer(llm)

	_, err := s.Score(context.Background(), "Acme", "https://acme.io", "research", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestScore_MalformedResponseIsNotAnError(t *testing.T) {
	llm := &fakeLLM{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "cannot comply"}},
		},
	}
	s := testScorer(llm)

	parsed, err := s.Score(context.Background(), "Acme", "https://acme.io", "research", nil)
	require.NoError(t, err)
	assert.Equal(t, model.ParseUnparseable, parsed.Kind)
	assert.Equal(t, "cannot comply", parsed.Raw)
}
