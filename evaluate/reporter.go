package evaluate

import (
	"context"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/sigrepeat/mask"
	"github.com/grailbio/sigrepeat/overlap"
)

// Result describes one freshly evaluated sample.
type Result struct {
	ID     string
	Window mask.Window
	Stats  overlap.Stats
	// Totals and Processed are the corpus state right after this sample was
	// committed.
	Totals    overlap.Stats
	Processed int
}

// Reporter receives progress from Run.  Calls may come from several
// goroutines at once.
type Reporter interface {
	// SampleDone is called after a sample's stats have been committed.
	SampleDone(r Result)
	// SampleSkipped is called for samples that were not counted, with the
	// reason.
	SampleSkipped(id string, reason error)
}

// LogReporter reports through the log package.
type LogReporter struct{}

// SampleDone implements Reporter.
func (LogReporter) SampleDone(r Result) {
	s, t := r.Stats, r.Totals
	log.Printf("%s: aligned part is %d - %d", r.ID, r.Window.Start, r.Window.End)
	log.Printf("%s: iou %v [computed %d, ground %d, intersection %d, union %d], sensitivity %v, specificity %v",
		r.ID, s.IoU(), s.Computed, s.GT, s.Intersection, s.Union, s.Sensitivity(), s.Specificity())
	log.Printf("cumulative over %d sample(s): iou %v, sensitivity %v, specificity %v",
		r.Processed, t.IoU(), t.Sensitivity(), t.Specificity())
}

// SampleSkipped implements Reporter.
func (LogReporter) SampleSkipped(id string, reason error) {
	log.Error.Printf("%s: skipped: %v", id, reason)
}

// reportRow is one line of the TSV report.
type reportRow struct {
	ID             string `tsv:"#SAMPLE"`
	WindowStart    int    `tsv:"WINDOW_START"`
	WindowEnd      int    `tsv:"WINDOW_END"`
	GT             int64  `tsv:"GT"`
	Computed       int64  `tsv:"COMPUTED"`
	Intersection   int64  `tsv:"INTERSECTION"`
	Union          int64  `tsv:"UNION"`
	IoU            string `tsv:"IOU"`
	Sensitivity    string `tsv:"SENSITIVITY"`
	Specificity    string `tsv:"SPECIFICITY"`
	CumIoU         string `tsv:"CUM_IOU"`
	CumSensitivity string `tsv:"CUM_SENSITIVITY"`
	CumSpecificity string `tsv:"CUM_SPECIFICITY"`
}

// TSVReporter writes one row per evaluated sample.  Skipped samples are not
// written.
type TSVReporter struct {
	out file.File

	mu  sync.Mutex
	w   *tsv.RowWriter
	err errors.Once
}

// NewTSVReporter creates the report at path.  The caller must Close it.
func NewTSVReporter(ctx context.Context, path string) (*TSVReporter, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create report", path)
	}
	return &TSVReporter{out: out, w: tsv.NewRowWriter(out.Writer(ctx))}, nil
}

// SampleDone implements Reporter.
func (r *TSVReporter) SampleDone(res Result) {
	s, t := res.Stats, res.Totals
	row := reportRow{
		ID:             res.ID,
		WindowStart:    res.Window.Start,
		WindowEnd:      res.Window.End,
		GT:             s.GT,
		Computed:       s.Computed,
		Intersection:   s.Intersection,
		Union:          s.Union,
		IoU:            s.IoU().String(),
		Sensitivity:    s.Sensitivity().String(),
		Specificity:    s.Specificity().String(),
		CumIoU:         t.IoU().String(),
		CumSensitivity: t.Sensitivity().String(),
		CumSpecificity: t.Specificity().String(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err.Set(r.w.Write(&row))
}

// SampleSkipped implements Reporter.
func (r *TSVReporter) SampleSkipped(string, error) {}

// Close flushes and closes the report, returning the first error seen.
func (r *TSVReporter) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err.Set(r.w.Flush())
	r.err.Set(r.out.Close(ctx))
	return r.err.Err()
}

// multiReporter fans reports out to several reporters.
type multiReporter []Reporter

func (m multiReporter) SampleDone(r Result) {
	for _, rep := range m {
		rep.SampleDone(r)
	}
}

func (m multiReporter) SampleSkipped(id string, reason error) {
	for _, rep := range m {
		rep.SampleSkipped(id, reason)
	}
}
