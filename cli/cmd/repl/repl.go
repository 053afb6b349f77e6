// Package repl implements the interactive scrip session.
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/scrip/cli/cmd"
	"github.com/ardnew/scrip/lang"
	"github.com/ardnew/scrip/log"
)

// Repl evaluates statements typed at a prompt into one environment.
type Repl struct {
	cmd.Bindings `embed:""`

	History     string   `default:"${cache}/history" help:"History file."                                 type:"path"`
	HistorySize int      `default:"1000"             help:"Maximum number of history entries kept."        placeholder:"N"`
	Files       []string `arg:""                     help:"Source files evaluated before the prompt opens." optional:"" type:"existingfile"`
}

// Run starts the session and blocks until the user quits.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session, err := NewSession(ctx, r.Bindings, r.Files)
	if err != nil {
		return err
	}

	history := NewHistory(r.History, r.HistorySize)
	if err := history.Load(); err != nil {
		log.WarnContext(ctx, "could not load history",
			slog.String("path", r.History),
			slog.Any("error", err),
		)
	}

	log.TraceContext(ctx, "repl start",
		slog.Int("sources", len(session.sources)),
		slog.Int("history", history.Len()),
	)

	streams := cmd.StreamsFrom(ctx)

	_, err = tea.NewProgram(
		newModel(ctx, session, history),
		tea.WithContext(ctx),
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
	).Run()

	return err
}

const (
	prompt       = "» "
	defaultWidth = 80
)

const helpMessage = `Statements are evaluated as they are entered; the final ';' is optional.
Declarations persist for the rest of the session.

Commands:
  :help    Print this message
  :vars    List every binding
  :edit    Edit the session in $EDITOR and replay it
  :reset   Discard bindings made at the prompt
  :clear   Clear the screen
  :quit    Exit

Keys:
  Tab / Shift-Tab   Cycle through completions
  Enter             Accept the selected completion, or evaluate
  Esc               Abandon the selected completion
  Up / Down         Browse history
  Ctrl-C            Clear the line, or exit on an empty line
  Ctrl-D            Exit on an empty line`

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// editDoneMsg is sent when the editor exits without error.
type editDoneMsg struct{ changed bool }

// editErrorMsg is sent when the editor fails or the user declines to fix
// an error.
type editErrorMsg struct{ err error }

// model is the Bubble Tea model for the prompt.
type model struct {
	ctxFunc      func() context.Context
	session      *Session
	history      *History
	input        textinput.Model
	historyIdx   int
	draft        string // input saved when history browsing began
	comp         completion
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
}

func newModel(ctx context.Context, s *Session, h *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.TextStyle = inputStyle
	ti.Focus()
	ti.Width = defaultWidth - lipgloss.Width(ti.Prompt) - 1

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    s,
		history:    h,
		input:      ti,
		historyIdx: h.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(m.input.Prompt) - 1

		return m, nil

	case editDoneMsg:
		if !msg.changed {
			return m, tea.Println(hintStyle.Render("session unchanged"))
		}

		m.refresh()

		return m, tea.Println(resultStyle.Render("session replayed"))

	case editErrorMsg:
		if errors.Is(msg.err, ErrEditDeclined) {
			return m, tea.Println(hintStyle.Render("edit discarded"))
		}

		return m, tea.Println(errorStyle.Render("edit: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint returns the line shown beneath the prompt.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		pos := lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx + 1))

		return hintStyle.Render(fmt.Sprintf("%s/%d", pos, m.history.Len()))

	case strings.TrimSpace(input) == "":
		return hintStyle.Render("Type a statement, or :help for commands")
	}

	if !strings.HasPrefix(input, ctrlPrefix) && !m.tabActive {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall {
			if _, params, ok := signature(m.session, call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return renderCandidateBar(m.session, m.comp.matches, m.suggIdx, m.tabActive, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	log.TraceContext(m.ctxFunc(), "repl keypress", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.comp.matches) > 0 {
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// refresh recomputes the completions for the current input.
func (m *model) refresh() {
	if m.tabActive {
		return
	}

	m.comp = complete(m.session, m.input.Value(), m.input.Position())
	m.suggIdx = -1
}

// cycle selects the next (dir > 0) or previous completion and writes it
// into the input. A lone candidate is accepted outright.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)

	switch {
	case n == 0:
		return m

	case n == 1:
		m.replaceWord(m.comp.matches[0].Str)
		m.tabActive = false
		m.refresh()

		return m

	case !m.tabActive:
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		if dir > 0 {
			m.suggIdx = 0
		} else {
			m.suggIdx = n - 1
		}

	default:
		m.suggIdx = (m.suggIdx + dir + n) % n
	}

	m.replaceWord(m.comp.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes text for the word being completed.
func (m *model) replaceWord(text string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.comp.wordStart] + text + input[m.comp.wordEnd:])
	m.input.SetCursor(m.comp.wordStart + len(text))
	m.comp.wordEnd = m.comp.wordStart + len(text)
}

// browse moves through history; moving past the newest entry restores
// the line that was being typed.
func (m model) browse(dir int) model {
	n := m.history.Len()

	if m.historyIdx == n {
		if dir > 0 {
			return m
		}

		m.draft = m.input.Value()
	}

	idx := min(max(m.historyIdx+dir, 0), n)
	if idx == m.historyIdx {
		return m
	}

	m.historyIdx = idx
	m.tabActive = false

	line := m.draft
	if idx < n {
		line, _ = m.history.At(idx)
	}

	m.input.SetValue(line)
	m.input.CursorEnd()
	m.refresh()

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())

	m.input.SetValue("")
	m.draft = ""
	m.tabActive = false
	m.refresh()

	if input == "" {
		return m, nil
	}

	ctx := m.ctxFunc()

	if err := m.history.Add(input); err != nil {
		log.DebugContext(ctx, "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(input))

	if line, ok := strings.CutPrefix(input, ctrlPrefix); ok {
		return m.executeCommand(echo, line)
	}

	v, err := m.session.Eval(ctx, input)
	log.TraceContext(ctx, "repl eval",
		slog.String("input", input),
		slog.Bool("ok", err == nil),
	)

	switch {
	case err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(Diagnose(input, err))))

	case v == nil:
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(lang.FormatValue(v))))
}

func (m model) executeCommand(echo tea.Cmd, line string) (model, tea.Cmd) {
	name, err := lookupCommand(strings.TrimSpace(line))
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
	}

	switch name {
	case "quit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "vars":
		vars := m.session.listVars()
		if vars == "" {
			vars = hintStyle.Render("no bindings")
		}

		return m, tea.Sequence(echo, tea.Println(vars))

	case "clear":
		return m, tea.ClearScreen

	case "reset":
		if err := m.session.Reset(m.ctxFunc()); err != nil {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render(err.Error())))
		}

		m.refresh()

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("session reset")))

	case "edit":
		edit := newEditCommand(m.ctxFunc(), m.session)

		return m, tea.Sequence(echo, tea.Exec(edit, func(err error) tea.Msg {
			if err != nil {
				return editErrorMsg{err: err}
			}

			return editDoneMsg{changed: edit.changed}
		}))
	}

	return m, echo
}

// lookupCommand resolves a control command by name, unique prefix or the
// "exit" alias.
func lookupCommand(line string) (string, error) {
	name, _, _ := strings.Cut(line, " ")
	if name == "exit" {
		return "quit", nil
	}

	var found []string

	for _, c := range ctrlCommands {
		if c == name {
			return c, nil
		}

		if name != "" && strings.HasPrefix(c, name) {
			found = append(found, c)
		}
	}

	if len(found) == 1 {
		return found[0], nil
	}

	return "", fmt.Errorf("%w %s%s (try %shelp)", ErrUnknownCtrl, ctrlPrefix, name, ctrlPrefix)
}
