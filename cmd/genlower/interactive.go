package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/genlower/interp"
	"github.com/wippyai/genlower/internal/samples"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	codeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))
)

type modelState int

const (
	stateSelectSample modelState = iota
	stateInputArgs
	stateStep
)

// chromeLines is the number of rows reserved around the code viewport.
const chromeLines = 12

type interactiveModel struct {
	err      error
	prepared *prepared
	in       *interp.Interp
	gen      interp.Value
	output   *strings.Builder
	result   string
	names    []string
	values   []string
	trace    []string
	input    textinput.Model
	code     viewport.Model
	opts     options
	selected int
	state    modelState
	done     bool
}

func newInteractiveModel(opts options) *interactiveModel {
	m := &interactiveModel{
		opts:  opts,
		names: samples.Names(),
		state: stateSelectSample,
		code:  viewport.New(80, 16),
	}
	for i, n := range m.names {
		if n == opts.sample {
			m.selected = i
		}
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.code.Width = msg.Width - 2
		m.code.Height = max(msg.Height-chromeLines, 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectSample && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectSample && m.selected < len(m.names)-1 {
				m.selected++
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectSample:
				m.prepare()
				return m, nil
			case stateInputArgs:
				m.start()
				return m, nil
			case stateStep:
				m.step()
				return m, nil
			}

		case "n":
			if m.state == stateStep {
				m.step()
				return m, nil
			}

		case "r":
			if m.state == stateStep {
				m.start()
				return m, nil
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectSample
				m.err = nil
			case stateStep:
				m.state = stateInputArgs
				m.input.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case stateInputArgs:
		m.input, cmd = m.input.Update(msg)
	case stateStep:
		m.code, cmd = m.code.Update(msg)
	}
	return m, cmd
}

// prepare lowers the selected sample and asks for its arguments.
func (m *interactiveModel) prepare() {
	m.err = nil
	pr, err := prepare(m.names[m.selected], m.opts, zap.NewNop())
	if err != nil {
		m.err = err
		return
	}
	m.prepared = pr
	m.code.SetContent(pr.after)
	m.code.GotoTop()

	ti := textinput.New()
	ti.Prompt = "args: "
	ti.Placeholder = "comma separated integers"
	ti.Width = 40
	ti.SetValue(strings.TrimSuffix(strings.TrimPrefix(formatArgs(pr.built.Args), "("), ")"))
	ti.Focus()
	m.input = ti
	m.state = stateInputArgs
}

func parseArgs(s string) ([]interp.Value, error) {
	var args []interp.Value
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("argument %q is not an integer", f)
		}
		args = append(args, n)
	}
	return args, nil
}

// start calls the entry point of the prepared sample with the typed
// arguments.
func (m *interactiveModel) start() {
	m.err = nil
	args, err := parseArgs(m.input.Value())
	if err != nil {
		m.err = err
		return
	}

	b := m.prepared.built
	m.output = &strings.Builder{}
	m.trace = nil
	m.values = nil
	m.result = ""
	m.done = false
	m.gen = nil

	m.in = interp.New(interp.Config{Program: b.Program, Output: m.output})
	b.Bind(m.in, &m.trace)

	v, err := m.in.CallFunc(b.Entry, args...)
	m.state = stateStep
	m.input.Blur()
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if generatorOf(b.Program, b.Entry) {
		m.gen = v
		return
	}
	m.result = interp.Format(v)
	m.done = true
}

// step resumes the running generator once.
func (m *interactiveModel) step() {
	if m.done || m.gen == nil {
		return
	}
	if len(m.values) >= m.opts.steps {
		m.err = fmt.Errorf("stopped after %d resumptions", m.opts.steps)
		m.done = true
		return
	}
	v, done, err := m.in.Resume(m.gen)
	switch {
	case err != nil:
		m.err = err
		m.done = true
	case done:
		m.done = true
	default:
		m.values = append(m.values, interp.Format(v))
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Generator Lowering"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectSample:
		b.WriteString("Select a sample:\n\n")
		for i, n := range m.names {
			s, _ := samples.Get(n)
			line := fmt.Sprintf("%-12s %s", n, s.Description)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter lower • q quit"))

	case stateInputArgs:
		fmt.Fprintf(&b, "Calling %s\n\n", funcStyle.Render(entryName(m.prepared.built)))
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))

	case stateStep:
		b.WriteString(m.statsLine())
		b.WriteString("\n")
		b.WriteString(codeStyle.Render(m.code.View()))
		b.WriteString("\n")
		b.WriteString(m.progress())
		b.WriteString("\n\n")
		help := "↑/↓ scroll • r restart • esc args • q quit"
		if m.gen != nil && !m.done {
			help = "n/enter next • " + help
		}
		b.WriteString(helpStyle.Render(help))
	}

	return b.String()
}

func (m *interactiveModel) statsLine() string {
	var parts []string
	for _, s := range m.prepared.stats {
		parts = append(parts, fmt.Sprintf("%s %s",
			funcStyle.Render(s.Func),
			typeStyle.Render(fmt.Sprintf("%d fragments, %d yields", s.Fragments, s.Yields))))
	}
	return strings.Join(parts, " • ")
}

func (m *interactiveModel) progress() string {
	var b strings.Builder
	if m.gen != nil {
		b.WriteString("yielded: ")
		b.WriteString(resultStyle.Render("[" + strings.Join(m.values, ", ") + "]"))
		if m.done && m.err == nil {
			b.WriteString(helpStyle.Render("  done"))
		}
	} else if m.result != "" {
		b.WriteString("result: ")
		b.WriteString(resultStyle.Render(m.result))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if len(m.trace) > 0 {
		b.WriteString("\ntrace: ")
		b.WriteString(strings.Join(m.trace, " "))
	}
	if m.output != nil && m.output.Len() > 0 {
		b.WriteString("\noutput: ")
		b.WriteString(strings.TrimSpace(m.output.String()))
	}
	return b.String()
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
