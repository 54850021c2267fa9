package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/dpisim/internal/dynamo"
)

const barWidth = 30

// Progress is an observer printing a one-line status while a run executes.
// Output is rate limited to frameRate lines per second; the final step is always printed.
type Progress struct {
	out       io.Writer
	total     int
	frameRate int
	lastFrame time.Time
	now       func() time.Time
}

func NewProgress(out io.Writer, total int, frameRate int) *Progress {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Progress{out: out, total: total, frameRate: frameRate, now: time.Now}
}

func (p *Progress) OnStep(s dynamo.Sample) {
	last := s.K == p.total-1
	now := p.now()
	if !last && !p.lastFrame.IsZero() && now.Sub(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
		return
	}
	p.lastFrame = now

	frac := 1.0
	if p.total > 1 {
		frac = float64(s.K) / float64(p.total-1)
	}
	filled := int(frac * barWidth)

	var b strings.Builder
	b.WriteString("\r[")
	b.WriteString(strings.Repeat("#", filled))
	b.WriteString(strings.Repeat(".", barWidth-filled))
	fmt.Fprintf(&b, "] t=%7.2f y=%8.4f u=%8.4f", s.T, s.Y, s.U)
	if s.Saturated {
		b.WriteString(" sat")
	} else {
		b.WriteString("    ")
	}
	if last {
		b.WriteString("\n")
	}
	io.WriteString(p.out, b.String())
}
