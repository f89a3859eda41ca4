// Package progressbar implements a terminal progress bar for long
// solver runs (cmd/craamctl), driven once per outer iteration.
package progressbar

import (
	"fmt"
	"strings"
	"time"
)

// Bar implements progress bar functionality that must be manually
// managed: Display must be called whenever an updated bar should be
// printed. Bar does not use concurrency, matching the single-threaded
// cooperative solve loop described for the core solvers.
type Bar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
}

// New returns a new Bar that is width characters wide and reaches 100%
// after max calls to Increment. max is normally a solver's iteration
// limit.
func New(width, max int) *Bar {
	return &Bar{
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		startTime:       time.Now(),
	}
}

// Increment increments the internal progress counter. Call once per
// outer solver iteration.
func (p *Bar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Display prints the current state of the bar to the terminal.
func (p *Bar) Display() {
	p.bar.Reset()
	p.bar.Write([]byte("|"))

	currentProg := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < currentProg; i++ {
		p.bar.Write([]byte("█"))
	}
	for i := currentProg; i < p.width; i++ {
		p.bar.Write([]byte(" "))
	}
	p.bar.Write([]byte(fmt.Sprintf("| [%.2f%v | elapsed: %v]",
		p.currentProgress/p.maxProgress*100, "%", time.Since(p.startTime).Truncate(time.Second))))

	fmt.Printf("\n\033[1A\033[K%v", p.bar.String())
}
