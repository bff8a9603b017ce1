package main

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/termhive/termhive/internal/config"
	"github.com/termhive/termhive/internal/inputmode"
	"github.com/termhive/termhive/internal/logging"
	"github.com/termhive/termhive/internal/orchestrator"
	"github.com/termhive/termhive/internal/perf"
	"github.com/termhive/termhive/internal/safego"
	"github.com/termhive/termhive/internal/session"
	"github.com/termhive/termhive/internal/vterm"
)

// actionMsg carries one orchestrated action into the bubbletea loop.
type actionMsg struct {
	action orchestrator.Action
}

var (
	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	modeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	exitedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
)

type model struct {
	sess  *session.Session
	input textinput.Model

	width  int
	height int

	send     func(tea.Msg)
	quitting bool
	notice   string
}

func newModel(cfg config.Config) (*model, error) {
	sess, err := session.Start(cfg)
	if err != nil {
		return nil, err
	}
	input := textinput.New()
	input.Placeholder = "type here"
	return &model{
		sess:   sess,
		input:  input,
		width:  cfg.Cols,
		height: cfg.Rows + 1,
	}, nil
}

// SetMsgSender wires the program's Send and starts pumping the action stream
// into it. Must be called before the program runs.
func (m *model) SetMsgSender(send func(tea.Msg)) {
	m.send = send
	safego.Go("termhive.action_pump", func() {
		for {
			a, err := m.sess.Next(context.Background())
			if err != nil {
				return
			}
			send(actionMsg{action: a})
		}
	})
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width > 0 && msg.Height > 1 {
			// Bottom line is the status bar
			m.sess.Resize(msg.Width, msg.Height-1)
		}
		return m, nil

	case tea.KeyPressMsg:
		m.sess.EnqueueKey(orchestrator.Input{Key: msg})
		return m, nil

	case tea.PasteMsg:
		m.sess.EnqueuePaste(orchestrator.Paste{Text: msg.Content})
		return m, nil

	case actionMsg:
		return m.handleAction(msg.action)
	}

	if mouse, ok := msg.(tea.MouseMsg); ok {
		m.sess.EnqueueMouse(orchestrator.MouseInput{Mouse: mouse})
		return m, nil
	}
	return m, nil
}

func (m *model) handleAction(a orchestrator.Action) (tea.Model, tea.Cmd) {
	switch v := a.(type) {
	case orchestrator.Shutdown:
		m.quitting = true
		return m, tea.Quit

	case orchestrator.Input:
		return m.handleKeyAction(v)

	case orchestrator.MouseInput:
		return m.handleMouseAction(v)

	case orchestrator.External:
		m.notice = fmt.Sprintf("%s: %v", v.Source, v.Payload)
		return m, nil

	case orchestrator.Error:
		m.notice = v.Err.Error()
		return m, nil

	default:
		if err := m.sess.Apply(a); err != nil {
			logging.WithError(err, "apply action")
			m.notice = err.Error()
		}
		return m, nil
	}
}

func (m *model) handleKeyAction(in orchestrator.Input) (tea.Model, tea.Cmd) {
	// The pending action name is cleared once the machine leaves Confirm,
	// so grab it first.
	pending := m.sess.Modes().PendingAction()

	res, err := m.sess.HandleKey(in)
	if err != nil {
		logging.WithError(err, "key to pty")
		m.notice = err.Error()
	}

	var cmd tea.Cmd
	switch res.Route {
	case inputmode.RouteInsert, inputmode.RoutePalette:
		m.input, cmd = m.input.Update(in.Key)
	}

	switch res.Event {
	case inputmode.EventInsertSubmit:
		text := m.input.Value()
		m.input.Reset()
		if text != "" {
			if err := m.sess.WriteText(text + "\r"); err != nil {
				m.notice = err.Error()
			}
			m.sess.Modes().EnterRaw()
		}
	case inputmode.EventInsertCancel, inputmode.EventPaletteCancel:
		m.input.Reset()
	case inputmode.EventPaletteSubmit:
		name := m.input.Value()
		m.input.Reset()
		m.runCommand(name)
	case inputmode.EventConfirmAccept:
		if pending == "quit" {
			m.sess.Close()
		}
	}

	m.syncInputFocus()
	return m, cmd
}

func (m *model) handleMouseAction(v orchestrator.MouseInput) (tea.Model, tea.Cmd) {
	// When the child didn't ask for mouse reporting the mouse is ours:
	// wheel scrolls the viewport, drag selects, release copies.
	term := m.sess.Terminal()
	if term.ModeState().Mouse == vterm.MouseOff {
		switch ev := v.Mouse.(type) {
		case tea.MouseWheelMsg:
			switch ev.Button {
			case tea.MouseWheelUp:
				term.ScrollBy(3)
			case tea.MouseWheelDown:
				term.ScrollBy(-3)
			}
		case tea.MouseClickMsg:
			if ev.Button == tea.MouseLeft {
				term.StartSelection(m.absRow(ev.Y), ev.X)
			}
		case tea.MouseMotionMsg:
			if ev.Button == tea.MouseLeft {
				term.UpdateSelection(m.absRow(ev.Y), ev.X)
			}
		case tea.MouseReleaseMsg:
			sel := term.Selection()
			if sel.Active {
				if err := m.sess.CopySelection(sel); err != nil {
					logging.WithError(err, "copy selection")
				}
				term.ClearSelection()
			}
		}
		return m, nil
	}
	if err := m.sess.Apply(v); err != nil {
		m.notice = err.Error()
	}
	return m, nil
}

// absRow maps a viewport y coordinate to an absolute row index.
func (m *model) absRow(y int) int {
	term := m.sess.Terminal()
	_, rows := term.Size()
	top := term.TotalRows() - rows - term.ViewOffset()
	return top + y
}

func (m *model) runCommand(name string) {
	switch strings.TrimSpace(name) {
	case "quit":
		m.sess.Close()
	case "clear":
		m.sess.Terminal().Apply(vterm.EraseDisplay{Mode: 3})
	case "bottom":
		m.sess.Terminal().ScrollToBottom()
	case "":
	default:
		m.notice = fmt.Sprintf("unknown command %q", name)
	}
}

func (m *model) syncInputFocus() {
	switch m.sess.Modes().Mode() {
	case inputmode.ModeInsert, inputmode.ModePalette:
		if !m.input.Focused() {
			m.input.Focus()
		}
	default:
		if m.input.Focused() {
			m.input.Blur()
		}
	}
}

func (m *model) View() tea.View {
	defer perf.Time("view")()

	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if m.quitting {
		view.SetContent("")
		return view
	}

	var b strings.Builder
	for _, line := range strings.Split(m.sess.Terminal().Render(), "\n") {
		b.WriteString(ansi.Truncate(line, m.width, ""))
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	view.SetContent(b.String())
	return view
}

func (m *model) statusLine() string {
	mode := m.sess.Modes().Mode()

	var parts []string
	parts = append(parts, modeStyle.Render(strings.ToUpper(mode.String())))

	if title := m.sess.Terminal().Title(); title != "" {
		parts = append(parts, title)
	}

	switch mode {
	case inputmode.ModeInsert:
		parts = append(parts, m.sess.Modes().InsertTarget()+": "+m.input.View())
	case inputmode.ModePalette:
		parts = append(parts, "cmd: "+m.input.View())
	case inputmode.ModeConfirm:
		parts = append(parts, m.sess.Modes().PendingAction()+"? y/n")
	}

	if exited, err := m.sess.Exited(); exited {
		if err != nil {
			parts = append(parts, exitedStyle.Render(fmt.Sprintf("exited: %v", err)))
		} else {
			parts = append(parts, exitedStyle.Render("exited"))
		}
	}

	if off := m.sess.Terminal().ViewOffset(); off > 0 {
		parts = append(parts, fmt.Sprintf("+%d", off))
	}

	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}

	line := statusStyle.Render(strings.Join(parts, "  "))
	return ansi.Truncate(line, m.width, "")
}
