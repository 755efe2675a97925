// Package organizer drives the categorize-and-rename pipeline: scan the
// directory, then for each file classify, parse and rename, one file at a
// time. Per-file failures are recorded and never abort the batch.
package organizer

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/kno2gether/screenshot-organizer/internal/classifier"
	"github.com/kno2gether/screenshot-organizer/internal/history"
	"github.com/kno2gether/screenshot-organizer/internal/parser"
	"github.com/kno2gether/screenshot-organizer/internal/renamer"
	"github.com/kno2gether/screenshot-organizer/internal/scanner"
)

// Stage identifies where in the pipeline a file ended up.
type Stage string

const (
	StageScan     Stage = "scan"
	StageClassify Stage = "classify"
	StageParse    Stage = "parse"
	StageRename   Stage = "rename"
)

// Outcome is the final state of one file. Exactly one of the following holds:
// Skipped is set, NewName is set (renamed, possibly Degraded), or Err is set
// with NewName empty (hard failure, file keeps its name).
type Outcome struct {
	File        string
	NewName     string
	Category    string
	Subcategory string
	Stage       Stage
	Skipped     bool
	Degraded    bool
	Err         error
}

// Summary aggregates a run. Renamed counts clean successes only; Degraded
// counts files renamed under the sentinel category.
type Summary struct {
	Renamed  int
	Degraded int
	Failed   int
	Skipped  int
	Outcomes []Outcome
}

// HistorySink receives one record per processed file. The concrete
// implementation is the SQLite history store; tests use a fake.
type HistorySink interface {
	Add(history.Record) error
}

// Processor runs the pipeline over a directory.
type Processor struct {
	classifier classifier.Classifier
	history    HistorySink
	logger     *slog.Logger
}

// NewProcessor creates a processor. The history sink may be nil, in which
// case outcomes are only logged.
func NewProcessor(c classifier.Classifier, h HistorySink, logger *slog.Logger) *Processor {
	return &Processor{
		classifier: c,
		history:    h,
		logger:     logger,
	}
}

// Run processes every image in dir sequentially. Only a scan failure (bad
// directory) is returned as an error; everything else lands in the summary.
// If the context is cancelled mid-batch, already-renamed files stay renamed
// and the remaining files are left untouched.
func (p *Processor) Run(ctx context.Context, dir string) (*Summary, error) {
	shots, err := scanner.Scan(dir)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, shot := range shots {
		if ctx.Err() != nil {
			break
		}

		outcome := p.processOne(ctx, shot)
		summary.record(outcome)
		p.logOutcome(outcome)
		p.saveHistory(dir, outcome)
	}

	p.logger.Info("run complete",
		"dir", dir,
		"renamed", summary.Renamed,
		"degraded", summary.Degraded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return summary, nil
}

func (p *Processor) processOne(ctx context.Context, shot scanner.Screenshot) Outcome {
	if scanner.IsOrganizedName(shot.Name) {
		return Outcome{File: shot.Name, Stage: StageScan, Skipped: true}
	}

	raw, err := p.classifier.Classify(ctx, shot.Path)
	if err != nil {
		// Transport failure: the file is skipped and reported, distinct from
		// a parse failure which assigns the sentinel category.
		return Outcome{File: shot.Name, Stage: StageClassify, Err: err}
	}

	c, parseErr := parser.Parse(raw)
	degraded := false
	if parseErr != nil {
		c = parser.Classification{Category: parser.SentinelCategory}
		degraded = true
	}

	plan := renamer.NewPlan(shot, c.Category)
	if err := renamer.Apply(plan); err != nil {
		return Outcome{File: shot.Name, Category: c.Category, Stage: StageRename, Err: err}
	}

	return Outcome{
		File:        shot.Name,
		NewName:     filepath.Base(plan.NewPath),
		Category:    c.Category,
		Subcategory: c.Subcategory,
		Stage:       StageRename,
		Degraded:    degraded,
		Err:         parseErr,
	}
}

func (s *Summary) record(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch {
	case o.Skipped:
		s.Skipped++
	case o.NewName == "":
		s.Failed++
	case o.Degraded:
		s.Degraded++
	default:
		s.Renamed++
	}
}

func (p *Processor) logOutcome(o Outcome) {
	switch {
	case o.Skipped:
		p.logger.Debug("already organized, skipping", "file", o.File)
	case o.NewName == "":
		p.logger.Error("file failed", "file", o.File, "stage", string(o.Stage), "err", o.Err)
	case o.Degraded:
		p.logger.Warn("unparseable response, using sentinel category", "file", o.File, "newName", o.NewName, "err", o.Err)
	default:
		p.logger.Info("renamed", "file", o.File, "newName", o.NewName, "category", o.Category)
	}
}

func (p *Processor) saveHistory(dir string, o Outcome) {
	if p.history == nil {
		return
	}

	rec := history.Record{
		Dir:         dir,
		OldName:     o.File,
		NewName:     o.NewName,
		Category:    o.Category,
		Subcategory: o.Subcategory,
		Outcome:     o.outcomeLabel(),
	}
	if o.Err != nil {
		rec.Reason = o.Err.Error()
	}

	if err := p.history.Add(rec); err != nil {
		p.logger.Warn("failed to record history", "file", o.File, "err", err)
	}
}

func (o Outcome) outcomeLabel() string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.NewName == "":
		return "failed"
	case o.Degraded:
		return "degraded"
	default:
		return "renamed"
	}
}

// IsFatal reports whether a run error means the directory itself was bad.
func IsFatal(err error) bool {
	return errors.Is(err, scanner.ErrNotFound)
}
