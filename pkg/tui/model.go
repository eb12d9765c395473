package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/newday/pkg/app"
	"tableflip.dev/newday/pkg/replica"
	"tableflip.dev/newday/pkg/selector"
	"tableflip.dev/newday/pkg/task"
)

// Model states and actions
type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeCommand
	modeHelp
	modeTypeSelect
	modeConfirm
)

type action int

const (
	actionNone action = iota
	actionAdd
	actionEdit
	actionNotes
)

const normalStatus = "NORMAL: j/k move, o add, i edit, n notes, x complete, m move, dd delete, N new day, : commands, ? help"

type errMsg struct{ err error }

type doneMsg struct{ status string }

type changedMsg struct{}

type viewLoadedMsg struct {
	view selector.DayView
	ok   bool
}

// row is one selectable task line.
type row struct {
	typ  task.Type
	task task.Task
}

// Model contains UI state
type Model struct {
	svc     *app.Service
	ctx     context.Context
	changes <-chan struct{}

	mode   mode
	action action

	view   selector.DayView
	hasDay bool
	rows   []row
	cursor int

	input textinput.Model

	status string
	banner string

	addType    task.Type
	typeIndex  int
	targetID   string
	awaitingDD bool
	lastDTime  time.Time

	termWidth  int
	termHeight int
}

// New creates a UI model over svc. changes delivers a tick whenever the local
// state moves; nil disables live refresh.
func New(svc *app.Service, changes <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "Type here"
	ti.CharLimit = task.MaxTextLength
	ti.Prompt = ""
	ti.Styles.Cursor.Color = lipgloss.Color("218")
	ti.Styles.Cursor.Shape = tea.CursorUnderline

	return Model{
		svc:     svc,
		ctx:     context.Background(),
		changes: changes,
		mode:    modeNormal,
		action:  actionNone,
		input:   ti,
		status:  normalStatus,
		addType: task.Other,
	}
}

// Init loads the current day and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadView(), m.waitForChange())
}

func (m *Model) loadView() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		view, ok := svc.Select.CurrentView()
		return viewLoadedMsg{view: view, ok: ok}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// run executes a service call off the update loop.
func (m *Model) run(status string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		if err := fn(ctx); failed(err) {
			return errMsg{err}
		}
		return doneMsg{status}
	}
}

// failed reports whether err should surface from a command. Remote write
// failures already reach the model through the replica's error hook and the
// local change has been applied.
func failed(err error) bool {
	return err != nil && !errors.Is(err, replica.ErrPersist)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
	case errMsg:
		if errors.Is(msg.err, replica.ErrPersist) {
			m.banner = "Not saved remotely: " + msg.err.Error()
		} else {
			m.status = "ERR: " + msg.err.Error()
		}
		cmds = append(cmds, m.loadView())
	case doneMsg:
		m.status = msg.status
		cmds = append(cmds, m.loadView())
	case changedMsg:
		cmds = append(cmds, m.loadView(), m.waitForChange())
	case viewLoadedMsg:
		m.setView(msg.view, msg.ok)
	case tea.KeyPressMsg:
		switch m.mode {
		case modeHelp:
			if key := msg.String(); key == "q" || key == "esc" || key == "?" {
				m.mode = modeNormal
			}
		case modeConfirm:
			switch msg.String() {
			case "y", "Y", "enter":
				cmds = append(cmds, m.startDay())
			default:
				m.status = "New day cancelled"
			}
			m.mode = modeNormal
		case modeTypeSelect:
			types := task.AllTypes()
			switch msg.String() {
			case "esc", "q":
				m.mode = modeNormal
				m.targetID = ""
				m.status = "Move cancelled"
			case "enter":
				chosen := types[m.typeIndex]
				if m.targetID == "" {
					m.addType = chosen
					m.status = fmt.Sprintf("New tasks go to %s", chosen.Title())
				} else {
					cmds = append(cmds, m.move(m.targetID, chosen))
				}
				m.mode = modeNormal
				m.targetID = ""
			case "up", "k":
				if m.typeIndex > 0 {
					m.typeIndex--
				} else {
					m.typeIndex = len(types) - 1
				}
			case "down", "j":
				if m.typeIndex < len(types)-1 {
					m.typeIndex++
				} else {
					m.typeIndex = 0
				}
			}
		case modeInsert:
			switch msg.String() {
			case "enter":
				input := strings.TrimSpace(m.input.Value())
				switch m.action {
				case actionAdd:
					if input == "" {
						m.status = "Nothing to add"
						break
					}
					opts := app.AddTaskOptions{Text: input, Type: m.addType}
					cmds = append(cmds, m.run("Added", func(ctx context.Context) error {
						_, err := m.svc.AddTask(ctx, opts)
						return err
					}))
				case actionEdit:
					if m.targetID != "" && input != "" {
						id := m.targetID
						cmds = append(cmds, m.run("Edited", func(ctx context.Context) error {
							_, err := m.svc.EditTask(ctx, id, &input, nil)
							return err
						}))
					}
				case actionNotes:
					if m.targetID != "" {
						id := m.targetID
						cmds = append(cmds, m.run("Notes saved", func(ctx context.Context) error {
							_, err := m.svc.EditTask(ctx, id, nil, &input)
							return err
						}))
					}
				}
				m.leaveInput()
			case "esc":
				prevAction := m.action
				m.leaveInput()
				switch prevAction {
				case actionAdd:
					m.status = "Add cancelled"
				case actionEdit, actionNotes:
					m.status = "Edit cancelled"
				default:
					m.status = "Cancelled"
				}
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		case modeCommand:
			switch msg.String() {
			case "enter":
				input := strings.TrimSpace(m.input.Value())
				m.mode = modeNormal
				m.input.Reset()
				m.input.Blur()
				switch input {
				case "q", "quit", "exit":
					cmds = append(cmds, tea.Quit)
				case "newday", "new-day", "rollover":
					cmds = append(cmds, m.startDay())
				case "":
					// nothing
				default:
					m.status = fmt.Sprintf("Unknown command: %s", input)
				}
			case "esc":
				m.mode = modeNormal
				m.input.Reset()
				m.input.Blur()
				m.status = "Command cancelled"
			default:
				var cmd tea.Cmd
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		case modeNormal:
			key := msg.String()
			if key != "d" {
				m.awaitingDD = false
			}
			switch key {
			case ":":
				m.enterCommandMode(&cmds)
			case "j", "down":
				if m.cursor < len(m.rows)-1 {
					m.cursor++
				}
			case "k", "up":
				if m.cursor > 0 {
					m.cursor--
				}
			case "g", "home":
				m.cursor = 0
			case "G", "end":
				if len(m.rows) > 0 {
					m.cursor = len(m.rows) - 1
				}
			case "1", "2", "3", "4":
				types := task.AllTypes()
				m.addType = types[int(key[0]-'1')]
				m.status = fmt.Sprintf("New tasks go to %s", m.addType.Title())
			case "t":
				m.enterTypeSelect("", m.addType)
			case "o", "a":
				if !m.hasDay {
					m.status = "No day yet, press N to start one"
					break
				}
				m.enterInput(&cmds, actionAdd, "", "")
			case "i", "e":
				if r := m.current(); r != nil {
					m.enterInput(&cmds, actionEdit, r.task.ID, r.task.Text)
				}
			case "n":
				if r := m.current(); r != nil {
					m.enterInput(&cmds, actionNotes, r.task.ID, r.task.Notes)
				}
			case "x", "space":
				if r := m.current(); r != nil {
					id := r.task.ID
					cmds = append(cmds, m.run("Toggled", func(ctx context.Context) error {
						_, err := m.svc.ToggleComplete(ctx, id)
						return err
					}))
				}
			case "m", ">":
				if r := m.current(); r != nil {
					m.enterTypeSelect(r.task.ID, r.typ)
				}
			case "d":
				if r := m.current(); r != nil {
					if m.awaitingDD && time.Since(m.lastDTime) < 600*time.Millisecond {
						id := r.task.ID
						cmds = append(cmds, m.run("Deleted", func(ctx context.Context) error {
							_, err := m.svc.DeleteTask(ctx, id)
							return err
						}))
						m.awaitingDD = false
					} else {
						m.awaitingDD = true
						m.lastDTime = time.Now()
					}
				}
			case "N":
				m.mode = modeConfirm
				m.status = "Start a new day? (y/n)"
			case "esc":
				m.banner = ""
			case "?":
				m.mode = modeHelp
			case "r":
				cmds = append(cmds, m.loadView())
			case "q":
				m.status = "Use :q or :exit to quit"
			}
		}
	}

	return m, tea.Batch(cmds...)
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle  = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("218"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("124")).Padding(0, 1)
)

// View renders the current day with optional input/help overlays
func (m Model) View() string {
	var b strings.Builder
	if !m.hasDay {
		b.WriteString(titleStyle.Render("New Day"))
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("No day yet. Press N to start one."))
	} else {
		b.WriteString(titleStyle.Render(m.view.Day.Label()))
		idx := 0
		for _, sec := range m.view.Sections {
			b.WriteString("\n\n")
			b.WriteString(sectionStyle.Render(sectionTitle(sec)))
			if len(sec.Tasks) == 0 {
				b.WriteString("\n" + dimStyle.Render("    nothing here"))
			}
			for _, tk := range sec.Tasks {
				b.WriteString("\n" + m.renderTask(tk, idx == m.cursor))
				idx++
			}
		}
	}

	modeStr := map[mode]string{
		modeNormal:     "NORMAL",
		modeInsert:     "INSERT",
		modeCommand:    "CMD",
		modeHelp:       "HELP",
		modeTypeSelect: "MOVE",
		modeConfirm:    "CONFIRM",
	}[m.mode]
	status := dimStyle.Render(fmt.Sprintf("[%s] %s (add to: %s)", modeStr, m.status, m.addType.Title()))

	body := b.String()
	switch m.mode {
	case modeInsert:
		prompt := ""
		switch m.action {
		case actionAdd:
			prompt = "Add to " + m.addType.Title() + ": "
		case actionEdit:
			prompt = "Edit: "
		case actionNotes:
			prompt = "Notes: "
		}
		body += "\n\n" + prompt + m.input.View()
	case modeCommand:
		body += "\n\n:" + m.input.View()
	case modeTypeSelect:
		lines := []string{"Select category (enter to confirm, esc to cancel):"}
		for i, typ := range task.AllTypes() {
			indicator := "  "
			if i == m.typeIndex {
				indicator = "→ "
			}
			lines = append(lines, fmt.Sprintf("%s%d %s", indicator, i+1, typ.Title()))
		}
		panelStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2)
		body += "\n\n" + panelStyle.Render(strings.Join(lines, "\n"))
	case modeHelp:
		help := "Keys: j/k move, g/G top/bottom, o add, i edit, n notes, x complete, m move, dd delete, 1-4 or t pick the add category, N new day, esc dismiss banner, :newday, :q quit"
		body += "\n\n" + lipgloss.NewStyle().Italic(true).Render(help)
	}

	if m.banner != "" {
		body += "\n\n" + bannerStyle.Render(m.banner)
	}
	return body + "\n\n" + status
}

func sectionTitle(sec selector.Section) string {
	open := 0
	for _, tk := range sec.Tasks {
		if !tk.Complete {
			open++
		}
	}
	if sec.Type == task.Most {
		return fmt.Sprintf("%s (%d/%d)", sec.Title, open, task.MostCap)
	}
	return fmt.Sprintf("%s (%d)", sec.Title, open)
}

func (m Model) renderTask(tk task.Task, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "» "
	}
	box := "[ ]"
	if tk.Complete {
		box = "[x]"
	}
	text := tk.Text
	if text == "" {
		text = "(empty)"
	}
	if tk.Notes != "" {
		text += " +"
	}
	if m.termWidth > 8 {
		text = truncate.StringWithTail(text, uint(m.termWidth-8), "…")
	}
	switch {
	case tk.Complete:
		text = doneStyle.Render(text)
	case selected:
		text = selectedStyle.Render(text)
	}
	return cursor + box + " " + text
}

func (m *Model) setView(view selector.DayView, ok bool) {
	var selected string
	if r := m.current(); r != nil {
		selected = r.task.ID
	}
	m.view, m.hasDay = view, ok
	m.rows = nil
	for _, sec := range view.Sections {
		for _, tk := range sec.Tasks {
			m.rows = append(m.rows, row{typ: sec.Type, task: tk})
		}
	}
	// Keep the selection on the same task when it is still listed.
	for i, r := range m.rows {
		if selected != "" && r.task.ID == selected {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) current() *row {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	r := m.rows[m.cursor]
	return &r
}

func (m *Model) move(id string, typ task.Type) tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return func() tea.Msg {
		_, demoted, err := svc.MoveTask(ctx, id, typ)
		if failed(err) {
			return errMsg{err}
		}
		status := "Moved to " + typ.Title()
		if len(demoted) > 0 {
			status += fmt.Sprintf(", %d moved to Other", len(demoted))
		}
		return doneMsg{status}
	}
}

func (m *Model) startDay() tea.Cmd {
	svc := m.svc
	ctx := m.ctx
	return func() tea.Msg {
		res, err := svc.NewDay(ctx)
		if failed(err) {
			return errMsg{err}
		}
		return doneMsg{fmt.Sprintf("Started %s, carried %d tasks", res.Day.Label(), len(res.Carried))}
	}
}

func (m *Model) enterInput(cmds *[]tea.Cmd, a action, targetID, value string) {
	m.mode = modeInsert
	m.action = a
	m.targetID = targetID
	m.input.Reset()
	switch a {
	case actionNotes:
		m.input.CharLimit = task.MaxNotesLength
		m.input.Placeholder = "notes"
	default:
		m.input.CharLimit = task.MaxTextLength
		m.input.Placeholder = "task"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	if cmd := m.input.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	*cmds = append(*cmds, textinput.Blink)
	m.status = "INSERT: enter to save, esc to cancel"
}

func (m *Model) leaveInput() {
	m.mode = modeNormal
	m.action = actionNone
	m.targetID = ""
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) enterTypeSelect(targetID string, current task.Type) {
	m.mode = modeTypeSelect
	m.targetID = targetID
	m.typeIndex = 0
	for i, typ := range task.AllTypes() {
		if typ == current {
			m.typeIndex = i
		}
	}
	if targetID == "" {
		m.status = "Choose the category for new tasks"
	} else {
		m.status = "Choose a category for the selected task"
	}
}

func (m *Model) enterCommandMode(cmds *[]tea.Cmd) {
	m.mode = modeCommand
	m.input.Reset()
	m.input.Placeholder = "command"
	m.input.CursorEnd()
	if cmd := m.input.Focus(); cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	*cmds = append(*cmds, textinput.Blink)
	m.status = "COMMAND: :newday starts a day, :q quits"
}

// Run starts the full screen UI and blocks until the user quits.
func Run(ctx context.Context, svc *app.Service) error {
	changes, cancel := svc.Replica.State().Subscribe()
	defer cancel()

	m := New(svc, changes)
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen())

	svc.Replica.OnError(func(err error) { p.Send(errMsg{err}) })
	defer svc.Replica.OnError(nil)

	_, err := p.Run()
	return err
}
