// Package pipeline orchestrates the screening of companies: gather evidence,
// synthesize research, score, and persist each phase as it completes.
package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/research"
	"github.com/sells-group/icp-screener/internal/scorer"
	"github.com/sells-group/icp-screener/internal/store"
)

// Step labels shown while a company is processing.
const (
	StepGathering    = "Gathering data via Exa..."
	StepSynthesizing = "Step 1b: Synthesizing research..."
	StepScoring      = "Step 2: Scoring..."
)

// EvidenceGatherer collects raw provider evidence for a company.
type EvidenceGatherer interface {
	Gather(ctx context.Context, companyName, website string) (research.Evidence, error)
}

// ResearchSynthesizer turns evidence into a structured research report.
type ResearchSynthesizer interface {
	Synthesize(ctx context.Context, companyName, website string, ev research.Evidence) (string, model.ResearchFields, error)
}

// CompanyScorer scores a research report against the rubric.
type CompanyScorer interface {
	Score(ctx context.Context, companyName, website, researchText string, examples []model.TrainingExample) (model.ParsedScore, error)
}

// Runner drives the per-company screening pipeline.
type Runner struct {
	store      store.Store
	gatherer   EvidenceGatherer
	synth      ResearchSynthesizer
	scorer     CompanyScorer
	thresholds scorer.Thresholds
}

// NewRunner creates a Runner with all stage dependencies.
func NewRunner(st store.Store, g EvidenceGatherer, syn ResearchSynthesizer, sc CompanyScorer, th scorer.Thresholds) *Runner {
	return &Runner{
		store:      st,
		gatherer:   g,
		synth:      syn,
		scorer:     sc,
		thresholds: th,
	}
}

// ProcessCompany screens one company end to end. Research and score are
// persisted in separate phases, so an interrupted run keeps its research.
// On failure both the run and the company are marked errored; the error is
// returned for the caller to count, not to abort a batch.
func (r *Runner) ProcessCompany(ctx context.Context, company *model.Company) error {
	log := zap.L().With(zap.String("domain", company.Domain), zap.String("company", company.Name))
	log.Info("screening company")

	if err := r.store.UpdateCompanyProgress(ctx, company.ID, model.CompanyStatusProcessing, StepGathering); err != nil {
		return eris.Wrap(err, "pipeline: mark processing")
	}

	run, err := r.store.CreateRun(ctx, company.ID)
	if err != nil {
		return r.fail(ctx, company, "", eris.Wrap(err, "pipeline: create run"))
	}

	ev, err := r.gatherer.Gather(ctx, company.Name, company.Website)
	if err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: gather evidence"))
	}

	if err := r.store.UpdateCompanyProgress(ctx, company.ID, model.CompanyStatusProcessing, StepSynthesizing); err != nil {
		log.Warn("failed to update step", zap.Error(err))
	}

	researchRaw, fields, err := r.synth.Synthesize(ctx, company.Name, company.Website, ev)
	if err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: synthesize research"))
	}

	if err := r.store.SaveResearch(ctx, run.ID, store.ResearchUpdate{ResearchRaw: researchRaw, Fields: fields}); err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: save research"))
	}

	if err := r.store.UpdateCompanyProgress(ctx, company.ID, model.CompanyStatusProcessing, StepScoring); err != nil {
		log.Warn("failed to update step", zap.Error(err))
	}

	// Calibration examples are additive; scoring proceeds without them.
	examples, err := r.store.ListTrainingExamples(ctx)
	if err != nil {
		log.Warn("failed to load training examples", zap.Error(err))
		examples = nil
	}

	parsed, err := r.scorer.Score(ctx, company.Name, company.Website, researchRaw, examples)
	if err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: score"))
	}

	outcome := scorer.Resolve(parsed, r.thresholds)
	update := store.ScoreUpdate{
		ScoringRaw:             parsed.Raw,
		TotalScore:             outcome.TotalScore,
		ICPFit:                 outcome.Fit,
		ScoreSummary:           outcome.Summary,
		DisqualificationReason: outcome.DisqualificationReason,
		Columns:                outcome.Columns,
	}
	if err := r.store.SaveScore(ctx, run.ID, update); err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: save score"))
	}

	if err := r.store.MarkCompanyScreened(ctx, company.ID); err != nil {
		return r.fail(ctx, company, run.ID, eris.Wrap(err, "pipeline: mark screened"))
	}

	log.Info("company screened",
		zap.String("run_id", run.ID),
		zap.Int("total_score", outcome.TotalScore),
		zap.String("fit", outcome.Fit),
		zap.Stringer("parse_kind", parsed.Kind),
	)
	return nil
}

// fail records the error on both the run and the company. Recording failures
// must not mask the original error, so store errors here are only logged.
func (r *Runner) fail(ctx context.Context, company *model.Company, runID string, err error) error {
	log := zap.L().With(zap.String("domain", company.Domain))
	log.Error("screening failed", zap.Error(err))

	if runID != "" {
		if runErr := r.store.SetRunError(ctx, runID, err.Error()); runErr != nil {
			log.Warn("failed to record run error", zap.Error(runErr))
		}
	}
	if cErr := r.store.SetCompanyError(ctx, company.ID, err.Error()); cErr != nil {
		log.Warn("failed to record company error", zap.Error(cErr))
	}
	return err
}

// BatchSummary reports the outcome of a batch screen.
type BatchSummary struct {
	Processed int64 `json:"processed"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Skipped   int64 `json:"skipped"`
}

// ProcessPending screens every pending or previously-errored company with a
// bounded worker pool. The stop flag is checked before each dispatch and
// again as each worker starts, so no new company begins after a stop while
// in-flight companies always finish; a per-company failure marks that
// company errored and the batch continues.
func (r *Runner) ProcessPending(ctx context.Context, limit, concurrency int, stop *atomic.Bool) (BatchSummary, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	companies, err := r.store.ListCompanies(ctx, store.CompanyFilter{
		Statuses: []model.CompanyStatus{model.CompanyStatusPending, model.CompanyStatusError},
		Limit:    limit,
	})
	if err != nil {
		return BatchSummary{}, eris.Wrap(err, "pipeline: list pending companies")
	}

	var summary BatchSummary
	if len(companies) == 0 {
		zap.L().Info("no pending companies")
		return summary, nil
	}

	zap.L().Info("processing batch",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed, skipped atomic.Int64
	for i := range companies {
		if stop != nil && stop.Load() {
			skipped.Add(int64(len(companies) - i))
			zap.L().Info("stop requested, skipping remaining companies",
				zap.Int("remaining", len(companies)-i))
			break
		}
		company := companies[i]
		g.Go(func() error {
			// Re-checked here: g.Go blocks while the pool is full, and a
			// stop raised during that wait must not start this company.
			if stop != nil && stop.Load() {
				skipped.Add(1)
				return nil
			}
			if err := r.ProcessCompany(gctx, &company); err != nil {
				failed.Add(1)
				return nil // already recorded, keep the batch going
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "pipeline: batch")
	}

	summary = BatchSummary{
		Processed: succeeded.Load() + failed.Load(),
		Succeeded: succeeded.Load(),
		Failed:    failed.Load(),
		Skipped:   skipped.Load(),
	}
	zap.L().Info("batch complete",
		zap.Int64("succeeded", summary.Succeeded),
		zap.Int64("failed", summary.Failed),
		zap.Int64("skipped", summary.Skipped),
	)
	return summary, nil
}
