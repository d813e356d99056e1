package feedback

import (
	"context"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// Feedback threads progress reporting and cooperative cancellation through a
// pipeline run. A nil *Feedback is valid and silent, which keeps call sites
// and tests free of guards.
type Feedback struct {
	ctx context.Context
	bar *progressbar.ProgressBar
}

func New(ctx context.Context) *Feedback {
	return &Feedback{ctx: ctx}
}

// Canceled reports whether the caller asked the run to stop.
func (f *Feedback) Canceled() bool {
	if f == nil || f.ctx == nil {
		return false
	}
	select {
	case <-f.ctx.Done():
		return true
	default:
		return false
	}
}

func (f *Feedback) Info(format string, args ...any) {
	if f == nil {
		return
	}
	color.Blue(format, args...)
}

// StartProgress begins a counted phase, replacing any previous bar.
func (f *Feedback) StartProgress(total int64, description string) {
	if f == nil {
		return
	}
	f.bar = progressbar.Default(total, description)
}

func (f *Feedback) Advance(n int) {
	if f == nil || f.bar == nil {
		return
	}
	_ = f.bar.Add(n)
}

func (f *Feedback) FinishProgress() {
	if f == nil || f.bar == nil {
		return
	}
	_ = f.bar.Finish()
	f.bar = nil
}
