package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/icp-screener/internal/pipeline"
	"github.com/sells-group/icp-screener/internal/research"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/internal/scorer"
	"github.com/sells-group/icp-screener/internal/store"
	anthropicpkg "github.com/sells-group/icp-screener/pkg/anthropic"
	"github.com/sells-group/icp-screener/pkg/exa"
)

// screenEnv bundles everything the screening commands need.
type screenEnv struct {
	Store  store.Store
	Runner *pipeline.Runner
}

func (e *screenEnv) Close() {
	_ = e.Store.Close()
}

func initScreen(ctx context.Context) (*screenEnv, error) {
	st, err := openStore(ctx, "screen")
	if err != nil {
		return nil, err
	}

	completion := resilience.CompletionProfile()
	if cfg.Anthropic.RetryBaseMs > 0 {
		completion.BaseDelay = time.Duration(cfg.Anthropic.RetryBaseMs) * time.Millisecond
	}
	completion.Breaker = resilience.NewBreaker("completion", 5, completion.BaseDelay)

	search := resilience.SearchProfile("exa")
	if cfg.Exa.RetryBaseMs > 0 {
		search.BaseDelay = time.Duration(cfg.Exa.RetryBaseMs) * time.Millisecond
	}
	search.Breaker = resilience.NewBreaker("exa", 5, search.BaseDelay)

	thresholds, err := scorer.LoadThresholds(cfg.Scorer.ThresholdsFile)
	if err != nil {
		st.Close()
		return nil, eris.Wrap(err, "load fit thresholds")
	}

	llm := anthropicpkg.NewClient(cfg.Anthropic.Key)
	exaClient := exa.NewClient(cfg.Exa.Key, exa.WithBaseURL(cfg.Exa.BaseURL))

	runner := pipeline.NewRunner(
		st,
		research.NewGatherer(exaClient, cfg.Research, search),
		research.NewSynthesizer(llm, cfg.Anthropic.HaikuModel, int64(cfg.Anthropic.MaxTokens), completion),
		scorer.NewScorer(llm, cfg.Anthropic.SonnetModel, int64(cfg.Anthropic.MaxTokens), completion),
		thresholds,
	)
	return &screenEnv{Store: st, Runner: runner}, nil
}
