// Package tui is the interactive viewer: filter controls on top, the
// fetched list below, one fetch hook feeding it.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/tada/internal/fetch"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

const retryHint = "press r to try again"

// Options configure the viewer.
type Options struct {
	Source  fetch.Source
	Users   int           // assignee choices 1..Users
	Timeout time.Duration // per request
	Logger  *log.Logger
	Online  func() bool // nil uses fetch.Online
}

// Model is the root Bubble Tea model and the owner of the active filter.
type Model struct {
	opts Options

	filter   model.Filter
	controls Controls
	hook     *fetch.Hook

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	viewport viewport.Model

	width, height int
}

// New builds a model with the default filter. Nothing is fetched until Init.
func New(opts Options) Model {
	hopts := []fetch.Option{fetch.WithTimeout(opts.Timeout)}
	if opts.Logger != nil {
		hopts = append(hopts, fetch.WithLogger(opts.Logger))
	}
	if opts.Online != nil {
		hopts = append(hopts, fetch.WithConnectivity(opts.Online))
	}

	f := model.DefaultFilter()
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.Current().Accent))
	m := Model{
		opts:     opts,
		filter:   f,
		controls: NewControls(f, opts.Users),
		hook:     fetch.New(opts.Source, hopts...),
		keys:     defaultKeys(),
		help:     help.New(),
		spinner:  sp,
		viewport: viewport.New(80, 10),
		width:    80,
		height:   24,
	}
	return m.refresh()
}

// Filter is the active filter.
func (m Model) Filter() model.Filter { return m.filter }

// State is the hook's current result.
func (m Model) State() model.Result { return m.hook.State() }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.hook.Apply(m.filter), m.spinner.Tick)
}

// setFilter replaces the filter wholesale and hands it to the hook.
func (m Model) setFilter(f model.Filter) (Model, tea.Cmd) {
	m.filter = f
	cmd := m.hook.Apply(f)
	return m.refresh(), cmd
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m.refresh(), nil

	case fetch.ResultMsg:
		if m.hook.Resolve(msg) {
			m.viewport.GotoTop()
		}
		return m.refresh(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hook.State().IsLoading() {
			m = m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m.refresh(), cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.hook.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Retry):
		return m.reload()
	case key.Matches(msg, m.keys.Next):
		m.controls = m.controls.Focus(1)
		return m.refresh(), nil
	case key.Matches(msg, m.keys.Prev):
		m.controls = m.controls.Focus(-1)
		return m.refresh(), nil
	case key.Matches(msg, m.keys.Left):
		var f model.Filter
		m.controls, f = m.controls.Step(-1)
		return m.setFilter(f)
	case key.Matches(msg, m.keys.Right):
		var f model.Filter
		m.controls, f = m.controls.Step(1)
		return m.setFilter(f)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m.refresh(), cmd
}

// reload starts over as if freshly launched: default filter, new hook.
// The old hook is closed so its pending result is dropped.
func (m Model) reload() (tea.Model, tea.Cmd) {
	m.hook.Close()
	n := New(m.opts)
	n.width, n.height = m.width, m.height
	n.help.Width = m.width
	n = n.refresh()
	return n, n.Init()
}

// refresh lays out the viewport and re-renders the list into it.
func (m Model) refresh() Model {
	state := m.hook.State()
	m.keys.Retry.SetEnabled(state.Kind() == model.KindFailed)

	inner := max(m.width-4, 20)
	chrome := 2 + // panel border
		lipgloss.Height(m.header(inner)) + 1 +
		lipgloss.Height(m.controls.View()) + 1 +
		lipgloss.Height(m.help.View(m.keys))
	m.viewport.Width = inner
	m.viewport.Height = max(m.height-chrome, 3)
	m.viewport.SetContent(ui.RenderList(state, ui.ListOptions{
		Width:   inner,
		Spinner: m.spinner.View(),
		Retry:   retryHint,
	}))
	return m
}

func (m Model) header(width int) string {
	return ui.RenderHeader(ui.Scrolled(m.viewport.YOffset), width)
}

func (m Model) View() string {
	inner := max(m.width-4, 20)
	return ui.PanelString(lipgloss.JoinVertical(lipgloss.Left,
		m.header(inner),
		"",
		m.controls.View(),
		"",
		m.viewport.View(),
		m.help.View(m.keys),
	))
}

// Run starts the viewer and blocks until the user quits or ctx ends.
// Any request still in flight is cancelled on the way out.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.hook.Close()
	}
	m.hook.Close()
	return err
}
