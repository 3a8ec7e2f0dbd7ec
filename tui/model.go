// Package tui is the interactive coupon redemption dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"couponcast/app"
	"couponcast/features"
	"couponcast/present"
)

// Model is the dashboard state. Each key press that changes an input
// rebuilds the row and scores it once.
type Model struct {
	app       *app.Application
	modelPath string
	blocking  string

	fields  []features.Field
	primary int
	cursor  int
	row     features.Row

	advice  []present.Advice
	message *present.Message
	err     error

	bar     progress.Model
	summary table.Model
	width   int
}

// New builds the dashboard. A nil application or invoker means the model
// could not be loaded: loadErr is shown above the inputs and no prediction
// is made.
func New(application *app.Application, modelPath string, loadErr error) *Model {
	m := &Model{
		app:       application,
		modelPath: modelPath,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		summary: table.New(
			table.WithColumns([]table.Column{{Title: "Feature", Width: 24}, {Title: "Value", Width: 12}}),
			table.WithHeight(features.Len()),
		),
	}
	m.summary.Blur()

	for _, f := range features.ByImpact() {
		if !f.Advanced {
			m.fields = append(m.fields, f)
		}
	}
	m.primary = len(m.fields)
	for _, f := range features.ByImpact() {
		if f.Advanced {
			m.fields = append(m.fields, f)
		}
	}

	if application == nil || application.Invoker == nil {
		m.blocking = present.ModelUnavailable(modelPath, loadErr)
	}
	m.reset()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(20, min(60, msg.Width/3))
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.fields)-1 {
				m.cursor++
			}
		case "left", "h":
			m.step(-1)
		case "right", "l":
			m.step(1)
		case "[":
			m.step(-10)
		case "]":
			m.step(10)
		case "r":
			m.reset()
		}
	}
	return m, nil
}

// Selected is the field under the cursor.
func (m *Model) Selected() features.Field {
	return m.fields[m.cursor]
}

// Row is the row last built from the controls.
func (m *Model) Row() features.Row {
	return m.row
}

// Advice is the advisory list for the current row.
func (m *Model) Advice() []present.Advice {
	return m.advice
}

// Message is the rendered result of the last successful prediction.
func (m *Model) Message() *present.Message {
	return m.message
}

// Err is the failure of the last interaction, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) reset() {
	m.row = features.DefaultRow()
	m.refresh()
}

// step moves the selected control by n steps. Selectors cycle through
// their options; sliders stay within the field's bounds.
func (m *Model) step(n int) {
	f := m.Selected()
	current, _ := m.row.Get(f.Name)

	var next float64
	if f.Discrete() {
		idx := 0
		for i, opt := range f.Options {
			if opt.Value == current {
				idx = i
			}
		}
		dir := 1
		if n < 0 {
			dir = -1
		}
		idx = (idx + dir + len(f.Options)) % len(f.Options)
		next = f.Options[idx].Value
	} else {
		next = f.Clamp(current + float64(n)*f.Step)
	}
	if next == current {
		return
	}
	if err := m.row.Set(f.Name, next); err != nil {
		m.err = err
		return
	}
	m.refresh()
}

// refresh redraws the summary and advisories from the row and, when a model
// is loaded, scores it.
func (m *Model) refresh() {
	m.message = nil
	rows := make([]table.Row, 0, features.Len())
	for _, v := range m.row.Display() {
		rows = append(rows, table.Row{v.Label, v.Text})
	}
	m.summary.SetRows(rows)
	m.advice = present.Advisories(m.row)

	if m.blocking != "" {
		return
	}
	inf, err := m.app.Predict(context.Background(), app.SourceDashboard, m.row)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	msg := present.Render(inf, m.row)
	m.message = &msg
}
