package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Deva-here/ScribbleForge/pkg/studio"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

var (
	textBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const studioHelp = ":gen <prompt>  :analyze <image>  :set field=value  :text <text>  :reset  :quit"

// stateMsg carries a new controller state.
type stateMsg studio.State

// flowDoneMsg reports the end of a flow started from the prompt.
type flowDoneMsg struct {
	flow studio.Flow
	err  error
}

// studioModel is the bubbletea model for an interactive session.
type studioModel struct {
	ctx     context.Context
	ctrl    *studio.Controller
	updates <-chan studio.State

	state   studio.State
	changed []style.Field
	notice  string
	width   int

	input   textinput.Model
	spinner spinner.Model
}

func newStudioModel(ctx context.Context, ctrl *studio.Controller, updates <-chan studio.State) studioModel {
	in := textinput.New()
	in.Placeholder = "type a command or new text"
	in.Prompt = StyleHighlight.Render("› ")
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleIconSpinner

	return studioModel{
		ctx:     ctx,
		ctrl:    ctrl,
		updates: updates,
		state:   ctrl.State(),
		input:   in,
		spinner: sp,
		width:   80,
	}
}

func (m studioModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForState(m.updates))
}

// waitForState delivers the next state from updates.
func waitForState(updates <-chan studio.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (m studioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.run(line)
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case stateMsg:
		prev := m.state.Settings
		m.state = studio.State(msg)
		if diff := style.Diff(prev, m.state.Settings); len(diff) > 0 {
			m.changed = diff
		}
		return m, waitForState(m.updates)
	case flowDoneMsg:
		if msg.err == nil {
			m.notice = fmt.Sprintf("%s finished", msg.flow)
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run executes one prompt line. Lines without a leading colon replace the
// text.
func (m studioModel) run(line string) (tea.Model, tea.Cmd) {
	m.notice = ""
	if line == "" {
		return m, nil
	}

	name, arg := parseStudioCommand(line)
	switch name {
	case "quit", "q":
		return m, tea.Quit
	case "reset":
		m.ctrl.Reset()
		m.changed = nil
		m.notice = "reset to defaults"
	case "text":
		m.ctrl.SetText(arg)
	case "set":
		f, v, err := parseUpdate(arg)
		if err == nil {
			err = m.ctrl.ChangeSetting(f, v)
		}
		if err != nil {
			m.notice = StyleError.Render(err.Error())
		}
	case "gen", "generate":
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() tea.Msg {
			return flowDoneMsg{flow: studio.FlowGenerate, err: ctrl.GenerateText(ctx, arg)}
		}
	case "analyze":
		image, err := readImage(arg)
		if err != nil {
			m.notice = StyleError.Render(err.Error())
			return m, nil
		}
		ctx, ctrl := m.ctx, m.ctrl
		return m, func() tea.Msg {
			return flowDoneMsg{flow: studio.FlowAnalyze, err: ctrl.AnalyzeStyle(ctx, image)}
		}
	case "":
		m.ctrl.SetText(arg)
	default:
		m.notice = StyleWarning.Render("unknown command :" + name)
	}
	return m, nil
}

// parseStudioCommand splits ":name arg" into its parts. A line without a
// leading colon yields an empty name and the whole line as arg.
func parseStudioCommand(line string) (name, arg string) {
	rest, ok := strings.CutPrefix(line, ":")
	if !ok {
		return "", line
	}
	name, arg, _ = strings.Cut(rest, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (m studioModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("ScribbleForge studio"))
	b.WriteString("\n\n")

	width := max(m.width-4, 20)
	b.WriteString(textBoxStyle.Width(width).Render(m.state.Text))
	b.WriteString("\n")
	b.WriteString(settingsTable(m.state.Settings, m.changed))
	b.WriteString("\n")

	switch {
	case m.state.Busy:
		b.WriteString(m.spinner.View() + " " + StyleDim.Render("working..."))
	case m.state.HasError():
		b.WriteString(styleIconError.Render(iconError) + " " + StyleError.Render(m.state.Error))
	case m.notice != "":
		b.WriteString(styleIconInfo.Render(iconInfo) + " " + m.notice)
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(studioHelp))
	return b.String()
}
