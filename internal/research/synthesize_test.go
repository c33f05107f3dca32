package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestSynthesize(t *testing.T) {
	llm := &fakeLLM{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{
				Type: "text",
				Text: "PRODUCT_SUMMARY: Scheduling for clinics.\nTARGET_CUSTOMER: Mid-market healthcare.\nCEO_FOUNDER_NAME: Jordan Reyes, CEO.",
			}},
		},
	}
	s := NewSynthesizer(llm, "claude-haiku-4-5-20251001", 8096, resilience.Profile{Service: "completion", MaxAttempts: 1, BaseDelay: time.Millisecond})

	ev := Evidence{Document: "=== HOMEPAGE CONTENT ===\nNever miss an appointment.\n=== END HOMEPAGE CONTENT ==="}
	text, fields, err := s.Synthesize(context.Background(), "Acme", "https://acme.io", ev)
	require.NoError(t, err)

	assert.Equal(t, "claude-haiku-4-5-20251001", llm.lastReq.Model)
	assert.Equal(t, int64(8096), llm.lastReq.MaxTokens)
	assert.Zero(t, llm.lastReq.WebSearchMaxUses)
	require.Len(t, llm.lastReq.Messages, 1)
	prompt := llm.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "Company: Acme\nWebsite: https://acme.io")
	assert.Contains(t, prompt, ev.Document)
	assert.Contains(t, prompt, "You are a B2B research analyst")

	assert.Contains(t, text, "PRODUCT_SUMMARY")
	assert.Equal(t, "Scheduling for clinics.", fields.ProductSummary)
	assert.Equal(t, "Mid-market healthcare.", fields.TargetCustomer)
	assert.Equal(t, "Jordan Reyes, CEO.", fields.CEOFounderName)
}

func TestSynthesize_ProviderErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model unavailable")}
	s := NewSynthesizer(llm, "claude-haiku-4-5-20251001", 8096, resilience.Profile{Service: "completion", MaxAttempts: 1, BaseDelay: time.Millisecond})

	_, _, err := s.Synthesize(context.Background(), "Acme", "https://acme.io", Evidence{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}
