package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/analyze"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/chart"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/export"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/extract"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/runlog"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/source"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/tabulate"
)

// Request describes one batch run.
type Request struct {
	Kind      constants.DocKind
	InputDir  string
	OutputDir string
}

// Result summarizes one batch run. NoData means the batch produced zero
// records and halted before tabulation; that is an outcome, not an error.
type Result struct {
	RunID       uuid.UUID
	DocCount    int
	FailedCount int
	NoData      bool
	Records     []*entity.Record
	Dataset     *entity.Dataset
	Insights    *entity.Insights
	OutputFiles map[string]string
	Charts      []string
}

// Pipeline wires the batch stages together: list, extract, tabulate,
// analyze, export, chart. The run log is optional; a nil store disables
// journaling without changing behavior.
type Pipeline struct {
	Logger   *slog.Logger
	Cfg      *common.Config
	Source   source.DocumentSource
	Exporter *export.Service
	Charts   *chart.Service
	RunLog   *runlog.Store
}

func New(cfg *common.Config, logger *slog.Logger, src source.DocumentSource, exporter *export.Service, charts *chart.Service, store *runlog.Store) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Logger:   logger,
		Cfg:      cfg,
		Source:   src,
		Exporter: exporter,
		Charts:   charts,
		RunLog:   store,
	}
}

func (p *Pipeline) validate(req Request) error {
	return common.NewValidator().
		Field("type", string(req.Kind), common.Required, common.OneOf(string(constants.KindInvoice), string(constants.KindReport))).
		Field("input", req.InputDir, common.Required, common.ExistingDir).
		Field("output", req.OutputDir, common.Required).
		Error()
}

// Run executes one batch end to end.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if err := p.validate(req); err != nil {
		return nil, err
	}

	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	log := p.Logger.With("run_id", runID.String(), "kind", req.Kind)
	res := &Result{RunID: runID}

	p.journalStart(ctx, runID, req)

	paths, err := source.ListDocuments(req.InputDir)
	if err != nil {
		p.journalFinish(ctx, runID, runlog.StatusFailed, res, err)
		return nil, err
	}
	log.Info("pipeline.listed", "documents", len(paths))

	queue := newExtractQueue(p.Source, extract.ForKind(req.Kind, p.Logger), p.Logger,
		withWorkers(p.Cfg.Extraction.Workers),
		withDocTimeout(p.Cfg.Extraction.DocTimeout),
	)
	for _, r := range queue.run(ctx, paths) {
		res.DocCount++
		if r.err != nil {
			res.FailedCount++
			p.journalDocument(ctx, runID, r, "FAILED")
			continue
		}
		p.journalDocument(ctx, runID, r, "OK")
		res.Records = append(res.Records, r.record)
	}
	if err := ctx.Err(); err != nil {
		p.journalFinish(ctx, runID, runlog.StatusFailed, res, err)
		return nil, err
	}

	if len(res.Records) == 0 {
		log.Warn("pipeline.no_data", "documents", res.DocCount, "failed", res.FailedCount)
		res.NoData = true
		p.journalFinish(ctx, runID, runlog.StatusNoData, res, nil)
		return res, nil
	}

	res.Dataset = tabulate.NewTabulator(p.Logger).Tabulate(req.Kind, res.Records)

	analyzer := analyze.NewAnalyzer(p.Logger, p.Cfg.Analysis.AnomalyThreshold, p.Cfg.Analysis.TopVendors)
	res.Insights, err = analyzer.Analyze(req.Kind, res.Dataset)
	if err != nil {
		p.journalFinish(ctx, runID, runlog.StatusFailed, res, err)
		return nil, err
	}

	res.OutputFiles, err = p.Exporter.WriteAll(req.Kind, res.Dataset, res.Records, res.Insights, req.OutputDir)
	if err != nil {
		p.journalFinish(ctx, runID, runlog.StatusFailed, res, err)
		return nil, err
	}

	// Charts are best-effort output; a render problem is reported but never
	// fails a batch whose data artifacts are already on disk.
	if p.Charts != nil {
		charts, chartErr := p.Charts.WriteAll(req.Kind, res.Dataset, res.Insights, req.OutputDir)
		if chartErr != nil {
			log.Warn("pipeline.charts_failed", "error", chartErr)
		}
		res.Charts = charts
	}

	p.journalFinish(ctx, runID, runlog.StatusOK, res, nil)
	log.Info("pipeline.ok",
		"documents", res.DocCount,
		"failed", res.FailedCount,
		"rows", len(res.Dataset.Rows),
		"anomalies", len(res.Insights.Anomalies),
	)
	return res, nil
}

// Journal helpers. Run log writes are advisory: a journaling error is logged
// and swallowed so batch output never depends on the journal database.

func (p *Pipeline) journalStart(ctx context.Context, runID uuid.UUID, req Request) {
	if p.RunLog == nil {
		return
	}
	if err := p.RunLog.StartRun(ctx, runID, string(req.Kind), req.InputDir, req.OutputDir); err != nil {
		p.Logger.Warn("pipeline.journal_failed", "run_id", runID, "error", err)
	}
}

func (p *Pipeline) journalDocument(ctx context.Context, runID uuid.UUID, r extractResult, status string) {
	if p.RunLog == nil {
		return
	}
	if err := p.RunLog.RecordDocument(ctx, runID, r.path, status, r.err, r.took); err != nil {
		p.Logger.Warn("pipeline.journal_failed", "run_id", runID, "error", err)
	}
}

func (p *Pipeline) journalFinish(ctx context.Context, runID uuid.UUID, status string, res *Result, runErr error) {
	if p.RunLog == nil {
		return
	}
	if err := p.RunLog.FinishRun(ctx, runID, status, res.DocCount, res.FailedCount, runErr); err != nil {
		p.Logger.Warn("pipeline.journal_failed", "run_id", runID, "error", err)
	}
}
