// Package tui provides the interactive Bubble Tea dashboard for goalfinch.
package tui

import (
	"context"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/pipeline"
	"github.com/theirongolddev/goalfinch/internal/source"
	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// staleAfter is how old a report may get before revisiting its slide
// fetches it again.
const staleAfter = 5 * time.Minute

// slideState is the tri-state every goal passes through.
type slideState int

const (
	stateLoading slideState = iota
	stateError
	stateReady
)

type slide struct {
	goal      config.Goal
	state     slideState
	report    *model.Report
	err       error
	fetchedAt time.Time
	// seq discards results of superseded fetches.
	seq int
}

// ReportMsg carries one goal's pipeline result.
type ReportMsg struct {
	Index  int
	Seq    int
	Report *model.Report
	Err    error
}

// rotateMsg advances the slideshow. Ticks scheduled before a manual
// navigation carry an old seq and are ignored.
type rotateMsg struct{ seq int }

// Options configures the dashboard.
type Options struct {
	Goals   []config.Goal
	Rotate  time.Duration
	Ref     time.Time
	Sources pipeline.SourceFunc
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	opts   Options
	slides []slide
	active int

	rotateSeq int
	paused    bool

	width   int
	height  int
	spinner spinner.Model
}

// NewApp creates the dashboard model.
func NewApp(ctx context.Context, opts Options) App {
	if opts.Rotate <= 0 {
		opts.Rotate = 10 * time.Second
	}
	if opts.Sources == nil {
		opts.Sources = source.ForGoal
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	slides := make([]slide, len(opts.Goals))
	for i, g := range opts.Goals {
		slides[i] = slide{goal: g}
	}

	return App{
		ctx:     ctx,
		opts:    opts,
		slides:  slides,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.rotateCmd()}
	for i := range a.slides {
		cmds = append(cmds, a.fetchCmd(i))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return a, tea.Quit
		case "left", "h":
			return a.show(a.active - 1)
		case "right", "l":
			return a.show(a.active + 1)
		case " ", "p":
			a.paused = !a.paused
			a.rotateSeq++
			return a, a.rotateCmd()
		case "r":
			if len(a.slides) == 0 {
				return a, nil
			}
			return a, a.reload(a.active)
		}
		return a, nil

	case ReportMsg:
		if msg.Index < 0 || msg.Index >= len(a.slides) || msg.Seq != a.slides[msg.Index].seq {
			return a, nil
		}
		s := &a.slides[msg.Index]
		s.fetchedAt = time.Now()
		if msg.Err != nil {
			s.state, s.err, s.report = stateError, msg.Err, nil
		} else {
			s.state, s.err, s.report = stateReady, nil, msg.Report
		}
		return a, nil

	case rotateMsg:
		if msg.seq != a.rotateSeq {
			return a, nil
		}
		if a.paused || len(a.slides) < 2 {
			return a, a.rotateCmd()
		}
		return a.show(a.active + 1)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// show moves to slide i (wrapping), restarts the rotation timer, and
// refetches the slide if its report has gone stale.
func (a App) show(i int) (tea.Model, tea.Cmd) {
	n := len(a.slides)
	if n == 0 {
		return a, nil
	}
	a.active = ((i % n) + n) % n
	a.rotateSeq++

	cmds := []tea.Cmd{a.rotateCmd()}
	if s := a.slides[a.active]; s.state != stateLoading && time.Since(s.fetchedAt) > staleAfter {
		cmds = append(cmds, a.reload(a.active))
	}
	return a, tea.Batch(cmds...)
}

// reload marks slide i loading and fetches it again. It mutates a.slides,
// which shares its backing array with the model being returned.
func (a App) reload(i int) tea.Cmd {
	a.slides[i].seq++
	a.slides[i].state = stateLoading
	return a.fetchCmd(i)
}

func (a App) rotateCmd() tea.Cmd {
	seq := a.rotateSeq
	return tea.Tick(a.opts.Rotate, func(time.Time) tea.Msg {
		return rotateMsg{seq: seq}
	})
}

func (a App) fetchCmd(i int) tea.Cmd {
	goal, seq := a.slides[i].goal, a.slides[i].seq
	ctx, ref, sources := a.ctx, a.opts.Ref, a.opts.Sources
	return func() tea.Msg {
		report, err := pipeline.Run(ctx, goal, sources(goal), ref)
		return ReportMsg{Index: i, Seq: seq, Report: report, Err: err}
	}
}
