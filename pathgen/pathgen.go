// Package pathgen implements the toolpath generation strategies.
//
// A generator probes a model with a cutter along the lines of a
// motion.Grid, or along the polygons of a contour model, and feeds the
// resulting cutter locations into a pathproc.Processor. Lines are
// computed concurrently but always reach the processor in grid order.
//
// Geometric failures never abort a run: a sample without a valid
// position falls back to a safe point and the failure is reported once
// in the result warnings.
package pathgen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/soypat/cam"
	"github.com/soypat/cam/motion"
	"github.com/soypat/cam/pathproc"
	"gonum.org/v1/gonum/spatial/r3"
)

// Warnings reported by generators. Each is reported at most once per run.
const (
	WarnHeightExceeded   = "no collision free height below the upper bound: safety height used"
	WarnSelfIntersection = "contour model intersects itself"
	WarnDegenerateLoop   = "waterline loop collapsed while offsetting and was dropped"
	WarnVanishedSegment  = "waterline segment vanished while offsetting, its neighbours were joined"
	WarnOffsetCollapsed  = "contour polygon collapsed while offsetting and was dropped"
)

// ErrUnsupported is returned for combinations of strategy and path
// processor that cannot produce meaningful paths.
var ErrUnsupported = errors.New("unsupported")

var (
	errNoModel  = errors.New("nil model")
	errNoCutter = errors.New("nil cutter")
)

// Generator produces toolpaths into a processor. Cancelation through
// progress is not an error: the result then holds the partial paths and
// has Canceled set.
type Generator interface {
	Generate(proc pathproc.Processor, progress cam.ProgressFunc) (cam.Result, error)
}

var (
	_ Generator = (*DropCutter)(nil)
	_ Generator = (*PushCutter)(nil)
	_ Generator = (*ContourFollow)(nil)
	_ Generator = (*EngraveCutter)(nil)
)

// Strategy enumerates the generators.
type Strategy int

const (
	StrategyDrop Strategy = iota
	StrategyPush
	StrategyContour
	StrategyEngrave
)

func (s Strategy) String() string {
	switch s {
	case StrategyDrop:
		return "drop"
	case StrategyPush:
		return "push"
	case StrategyContour:
		return "contour"
	case StrategyEngrave:
		return "engrave"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy returns the Strategy named s.
func ParseStrategy(s string) (Strategy, error) {
	for st := StrategyDrop; st <= StrategyEngrave; st++ {
		if strings.EqualFold(s, st.String()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// Processors returns the processors able to assemble the output of s.
func (s Strategy) Processors() []pathproc.Kind {
	switch s {
	case StrategyDrop:
		return []pathproc.Kind{pathproc.KindAccumulator, pathproc.KindSimple, pathproc.KindZigZag}
	case StrategyPush:
		return []pathproc.Kind{pathproc.KindSimple, pathproc.KindZigZag, pathproc.KindPolygon, pathproc.KindContour}
	case StrategyContour, StrategyEngrave:
		return []pathproc.Kind{pathproc.KindSimple}
	}
	return nil
}

// CheckProcessor returns an error wrapping ErrUnsupported if k cannot
// be used with s.
func (s Strategy) CheckProcessor(k pathproc.Kind) error {
	for _, ok := range s.Processors() {
		if ok == k {
			return nil
		}
	}
	return fmt.Errorf("%w: %v processor with %v strategy", ErrUnsupported, k, s)
}

func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}

// run tracks the state shared by all generators while feeding a processor.
type run struct {
	proc     pathproc.Processor
	progress cam.ProgressFunc
	log      logrus.FieldLogger
	text     string
	total    int
	done     int
	res      cam.Result

	open  bool
	layer int
	dir   motion.Direction
}

func newRun(text string, proc pathproc.Processor, progress cam.ProgressFunc, log logrus.FieldLogger, total int) *run {
	return &run{text: text, proc: proc, progress: progress, log: logger(log), total: total}
}

// warn records msg in the result and logs it the first time it is seen.
func (r *run) warn(msg string) {
	n := len(r.res.Warnings)
	r.res.Warn(msg)
	if len(r.res.Warnings) > n {
		r.log.Warn(msg)
	}
}

// pass starts a new processor direction if layer or dir differ from the
// current pass.
func (r *run) pass(layer int, dir motion.Direction) {
	if r.open && layer == r.layer && dir == r.dir {
		return
	}
	if r.open {
		r.proc.EndDirection()
	}
	r.proc.NewDirection(dir)
	r.open = true
	r.layer, r.dir = layer, dir
}

// scanline feeds one scan line. Segments are separated by gaps.
func (r *run) scanline(segs ...[]r3.Vec) {
	r.proc.NewScanline()
	first := true
	for _, seg := range segs {
		if len(seg) == 0 {
			continue
		}
		if !first {
			r.proc.Gap()
		}
		first = false
		for _, p := range seg {
			r.proc.Append(p)
		}
	}
	r.proc.EndScanline()
}

// step counts one finished unit of work and reports progress. It returns
// false when cancelation was requested.
func (r *run) step(tool *r3.Vec) bool {
	r.done++
	pct := -1.0
	if r.total > 0 {
		pct = 100 * float64(r.done) / float64(r.total)
	}
	if r.progress.Report(cam.Progress{Text: r.text, Percent: pct, Tool: tool}) {
		r.res.Canceled = true
		return false
	}
	return true
}

func (r *run) finish() cam.Result {
	if r.open {
		r.proc.EndDirection()
		r.open = false
	}
	r.proc.Finish()
	r.res.Paths = r.proc.Paths()
	entry := r.log.WithFields(logrus.Fields{
		"paths":  len(r.res.Paths),
		"points": r.res.NumPoints(),
		"steps":  r.done,
	})
	if r.res.Canceled {
		entry.Info(r.text + " canceled")
	} else {
		entry.Debug(r.text + " done")
	}
	return r.res
}
