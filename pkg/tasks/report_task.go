// Package tasks orchestrates the per-project report pipeline: cache check,
// billing fetch, aggregation, trend analysis, rendering and delivery.
// One project's failure never aborts the run; the summary carries every
// outcome.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"costwatch/pkg/aggregate"
	"costwatch/pkg/billing"
	"costwatch/pkg/cache"
	"costwatch/pkg/config"
	"costwatch/pkg/delivery"
	"costwatch/pkg/logger"
	"costwatch/pkg/models"
	"costwatch/pkg/normalize"
	"costwatch/pkg/report"
)

// LineItemSource is the billing collaborator: dry-run first, then fetch
type LineItemSource interface {
	EstimateScanCost(ctx context.Context, projectID string, start, end time.Time) (*billing.Estimate, error)
	FetchLineItems(ctx context.Context, projectID string, start, end time.Time) ([]models.LineItem, error)
}

// Deliverer posts a rendered report to a channel
type Deliverer interface {
	Deliver(ctx context.Context, channel string, rendered *report.Rendered) (*delivery.Result, error)
}

// ReportExecutor runs the full report pipeline for every configured project
type ReportExecutor struct {
	cfg        *config.Config
	source     LineItemSource
	store      *cache.Store
	deliverer  Deliverer
	aggregator *aggregate.Aggregator
	assembler  *report.Assembler
	renderer   report.Renderer

	// now is stubbed in tests
	now func() time.Time
}

// NewReportExecutor wires the pipeline stages together
func NewReportExecutor(cfg *config.Config, source LineItemSource, store *cache.Store, deliverer Deliverer) *ReportExecutor {
	normalizer := normalize.NewNormalizer()
	for service, rules := range cfg.GetReportConfig().CategoryRules {
		normalizer.AddRules(service, rules)
	}

	return &ReportExecutor{
		cfg:        cfg,
		source:     source,
		store:      store,
		deliverer:  deliverer,
		aggregator: aggregate.NewAggregator(normalizer),
		assembler:  report.NewAssembler(cfg.GetReportConfig()),
		renderer:   report.NewRenderer(),
		now:        time.Now,
	}
}

// Run processes every configured project, bounded by the configured
// concurrency. Results land in a RunSummary regardless of outcome.
func (e *ReportExecutor) Run(ctx context.Context, forceRefresh bool) *RunSummary {
	projects := e.cfg.Report.Projects
	concurrency := e.cfg.Report.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	summary := &RunSummary{
		StartedAt: e.now(),
		Projects:  make([]ProjectResult, len(projects)),
	}

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for i, project := range projects {
		wg.Add(1)
		go func(i int, project config.ProjectConfig) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			summary.Projects[i] = e.runProject(ctx, project, forceRefresh)
		}(i, project)
	}
	wg.Wait()

	summary.CompletedAt = e.now()
	summary.Duration = summary.CompletedAt.Sub(summary.StartedAt)
	summary.tally()

	logger.Info("report run finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration))
	return summary
}

// runProject executes the pipeline for one project
func (e *ReportExecutor) runProject(ctx context.Context, project config.ProjectConfig, forceRefresh bool) ProjectResult {
	result := ProjectResult{
		TaskID:    uuid.New().String(),
		ProjectID: project.ID,
		StartedAt: e.now(),
	}

	today := e.now()
	currentStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	priorEnd := currentStart.AddDate(0, 0, -1)
	priorStart := time.Date(priorEnd.Year(), priorEnd.Month(), 1, 0, 0, 0, 0, priorEnd.Location())

	dates := aggregate.DateRange(priorStart, today)
	totals, degraded, stage, err := e.collectTotals(ctx, project.ID, dates, today, forceRefresh)
	result.CacheDegraded = degraded
	if err != nil {
		return e.fail(result, stage, err)
	}

	currentMonth := today.Format("2006-01")
	priorMonth := priorStart.Format("2006-01")
	current := aggregate.FromTotals(project.ID, filterByMonth(totals, currentMonth), currentStart, today)
	prior := aggregate.FromTotals(project.ID, filterByMonth(totals, priorMonth), priorStart, priorEnd)

	channel := e.cfg.Report.ChannelFor(project, e.cfg.GetSlackConfig().DefaultChannelID)
	assembled := e.assembler.Assemble(report.Input{
		Project: project,
		Channel: channel,
		Current: current,
		Prior:   prior,
		Today:   today,
	})

	if assembled.Negligible {
		result.Status = TaskStatusSkipped
		result.Message = "negligible spend, report skipped"
		return e.finish(result)
	}

	if !e.cfg.GetSlackConfig().Enabled {
		result.Status = TaskStatusCompleted
		result.Message = "report generated, delivery disabled"
		return e.finish(result)
	}

	rendered := e.renderer.Render(assembled)
	delivered, err := e.deliverer.Deliver(ctx, channel, rendered)
	if delivered != nil {
		result.RepliesSent = delivered.RepliesSent
	}
	if err != nil {
		return e.fail(result, StageDeliver, err)
	}

	result.Status = TaskStatusCompleted
	result.Message = fmt.Sprintf("delivered %d services to %s", len(rendered.Details), channel)
	return e.finish(result)
}

// collectTotals assembles the full date range from cache hits plus one
// billing fetch covering the stale dates. Cache write failures degrade to
// an uncached run instead of failing the project.
func (e *ReportExecutor) collectTotals(ctx context.Context, projectID string, dates []string, today time.Time, forceRefresh bool) ([]models.DailyServiceTotal, bool, Stage, error) {
	fresh := map[string][]models.DailyServiceTotal{}
	var missing []string
	for _, date := range dates {
		entry := e.store.Get(projectID, date)
		if cache.IsStale(entry, today, forceRefresh) {
			missing = append(missing, date)
		} else {
			fresh[date] = entry.Payload
		}
	}

	degraded := false
	fetchedByDate := map[string][]models.DailyServiceTotal{}
	if len(missing) > 0 {
		spanStart, _ := time.Parse(models.DateLayout, missing[0])
		spanEnd, _ := time.Parse(models.DateLayout, missing[len(missing)-1])

		estimate, err := e.source.EstimateScanCost(ctx, projectID, spanStart, spanEnd)
		if err != nil {
			return nil, false, StageEstimate, err
		}
		limit := decimal.NewFromFloat(e.cfg.Report.QueryCostLimitUSD)
		if estimate.CostUSD.GreaterThan(limit) {
			if !forceRefresh {
				return nil, false, StageEstimate, fmt.Errorf("%w: estimated $%s, limit $%s",
					billing.ErrCostLimitExceeded, estimate.CostUSD.StringFixed(2), limit.StringFixed(2))
			}
			logger.Warn("query cost over limit, proceeding under force-refresh",
				zap.String("project_id", projectID),
				zap.String("estimated_usd", estimate.CostUSD.StringFixed(2)))
		}

		items, err := e.source.FetchLineItems(ctx, projectID, spanStart, spanEnd)
		if err != nil {
			return nil, false, StageFetch, err
		}
		fetched := e.aggregator.Aggregate(projectID, items, spanStart, spanEnd)
		for _, t := range fetched.DailyTotals() {
			fetchedByDate[t.UsageDate] = append(fetchedByDate[t.UsageDate], t)
		}

		for _, date := range missing {
			if degraded {
				break
			}
			if err := e.store.Put(projectID, date, fetchedByDate[date], today); err != nil {
				degraded = true
			}
		}
	}

	var totals []models.DailyServiceTotal
	for _, date := range dates {
		if payload, ok := fresh[date]; ok {
			totals = append(totals, payload...)
		} else {
			totals = append(totals, fetchedByDate[date]...)
		}
	}
	return totals, degraded, "", nil
}

func (e *ReportExecutor) fail(result ProjectResult, stage Stage, err error) ProjectResult {
	result.Status = TaskStatusFailed
	result.Stage = stage
	result.ErrorKind = classifyError(stage, err)
	result.Error = err.Error()
	logger.Error("project report failed",
		zap.String("project_id", result.ProjectID),
		zap.String("stage", string(stage)),
		zap.String("error_kind", string(result.ErrorKind)),
		zap.Error(err))
	return e.finish(result)
}

func (e *ReportExecutor) finish(result ProjectResult) ProjectResult {
	result.CompletedAt = e.now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	return result
}

func filterByMonth(totals []models.DailyServiceTotal, month string) []models.DailyServiceTotal {
	var out []models.DailyServiceTotal
	for _, t := range totals {
		if strings.HasPrefix(t.UsageDate, month) {
			out = append(out, t)
		}
	}
	return out
}
