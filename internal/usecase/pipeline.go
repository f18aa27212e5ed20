package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sourcehound/internal/domain"
	"sourcehound/internal/infra/tracer"
)

// Progress notification texts sent between stages.
const (
	NotifySearching = "Searching for sources..."
	NotifyAnalyzing = "Analyzing relevance..."
)

const defaultStageTimeout = 15 * time.Second

// Pipeline sequences normalize, search, score and select into one run with
// exactly one terminal outcome. It holds no per-request state; concurrent
// runs are independent.
type Pipeline struct {
	normalizer *Normalizer
	search     *SearchClient
	scorer     *RelevanceScorer

	desiredResults int
	topN           int
	stageTimeout   time.Duration

	logger *slog.Logger
}

// NewPipeline wires the pipeline stages together. desiredResults and topN
// fall back to 10 and 3; stageTimeout bounds each outbound provider call.
func NewPipeline(normalizer *Normalizer, search *SearchClient, scorer *RelevanceScorer,
	desiredResults, topN int, stageTimeout time.Duration, logger *slog.Logger) *Pipeline {
	if desiredResults <= 0 {
		desiredResults = 10
	}
	if topN <= 0 {
		topN = 3
	}
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &Pipeline{
		normalizer:     normalizer,
		search:         search,
		scorer:         scorer,
		desiredResults: desiredResults,
		topN:           topN,
		stageTimeout:   stageTimeout,
		logger:         logger,
	}
}

// Run executes the pipeline for one piece of user input. notify, if non-nil,
// receives user-visible progress texts between stages; delivery failures are
// the transport's concern and never affect the outcome. Run never panics and
// never returns more than one terminal outcome.
func (p *Pipeline) Run(ctx context.Context, rawText, caption string, notify func(string)) (out domain.Outcome) {
	ctx, span := tracer.StartSpan(ctx, "pipeline.run")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("pipeline panic recovered", "panic", r)
			tracer.RecordError(span, fmt.Errorf("panic: %v", r))
			out = domain.Unexpected(fmt.Sprintf("panic: %v", r))
		}
	}()

	if notify == nil {
		notify = func(string) {}
	}

	query, err := p.normalize(ctx, rawText, caption)
	if err != nil {
		span.SetAttributes(tracer.StringAttr("pipeline.outcome", string(domain.OutcomeEmptyInput)))
		return domain.EmptyInput()
	}
	span.SetAttributes(tracer.IntAttr("pipeline.query_len", len(query)))

	notify(NotifySearching)

	results, err := p.runSearch(ctx, query)
	if err != nil {
		p.logger.Error("search stage failed", "error", err)
		tracer.RecordError(span, err)
		return domain.SearchError(err.Error())
	}
	if len(results) == 0 {
		span.SetAttributes(tracer.StringAttr("pipeline.outcome", string(domain.OutcomeNoSources)))
		return domain.NoSources()
	}
	span.SetAttributes(tracer.IntAttr("pipeline.search_results", len(results)))

	notify(NotifyAnalyzing)

	scored := p.runScore(ctx, query, results)
	top := SelectTop(scored, p.topN)
	if len(top) == 0 {
		span.SetAttributes(tracer.StringAttr("pipeline.outcome", string(domain.OutcomeNoRelevantSources)))
		return domain.NoRelevantSources()
	}

	span.SetAttributes(
		tracer.StringAttr("pipeline.outcome", string(domain.OutcomeSuccess)),
		tracer.IntAttr("pipeline.top_results", len(top)),
	)
	tracer.SetOK(span)
	p.logger.Info("pipeline completed", "results", len(top), "best_confidence", top[0].Confidence)
	return domain.Success(top)
}

func (p *Pipeline) normalize(ctx context.Context, rawText, caption string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.normalizer.Normalize(ctx, rawText, caption)
}

func (p *Pipeline) runSearch(ctx context.Context, query string) ([]domain.SearchResult, error) {
	ctx, span := tracer.StartSpan(ctx, "pipeline.search", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.search.Search(ctx, query, p.desiredResults)
}

func (p *Pipeline) runScore(ctx context.Context, query string, results []domain.SearchResult) []domain.ScoredResult {
	ctx, span := tracer.StartSpan(ctx, "pipeline.score", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()
	return p.scorer.Score(ctx, query, results)
}
