package console

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/apm-tool/apm/pkg/styles"
)

// updateMessageMsg carries a new message into a running spinner program.
type updateMessageMsg string

type spinnerModel struct {
	spinner spinner.Model
	message string
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMessageMsg:
		m.message = string(msg)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	return fmt.Sprintf("\r%s %s", m.spinner.View(), m.message)
}

// Spinner wraps a Bubble Tea spinner program with TTY detection, for
// long-running operations (a network-bound install, a placement compile
// pass) that should show progress only when attached to a real terminal.
type Spinner struct {
	program *tea.Program
	enabled bool
	running bool
}

// NewSpinner creates a spinner with the given message, using the MiniDot
// style. Disabled outright when stderr isn't a terminal or ACCESSIBLE is
// set, matching this package's isTTY convention (checked against stderr
// here, since that's where progress output goes).
func NewSpinner(message string) *Spinner {
	enabled := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("ACCESSIBLE") == ""

	s := &Spinner{enabled: enabled}
	if enabled {
		model := spinnerModel{
			spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.Info)),
			message: message,
		}
		s.program = tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithoutRenderer())
	}
	return s
}

// Start begins the spinner animation in the background. A no-op when disabled.
func (s *Spinner) Start() {
	if !s.enabled || s.running {
		return
	}
	s.running = true
	go func() {
		_, _ = s.program.Run()
	}()
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	if !s.enabled || !s.running {
		return
	}
	s.running = false
	s.program.Quit()
	fmt.Fprint(os.Stderr, "\r\033[K")
}

// StopWithMessage halts the animation and prints a final message in its place.
func (s *Spinner) StopWithMessage(msg string) {
	if !s.enabled || !s.running {
		return
	}
	s.running = false
	s.program.Quit()
	fmt.Fprintf(os.Stderr, "\r\033[K%s\n", msg)
}

// UpdateMessage changes the spinner's message while it is running.
func (s *Spinner) UpdateMessage(message string) {
	if !s.enabled || !s.running {
		return
	}
	s.program.Send(updateMessageMsg(message))
}

// IsEnabled reports whether the spinner will actually animate.
func (s *Spinner) IsEnabled() bool {
	return s.enabled
}
