package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskbook/internal/render"
	"taskbook/internal/storage"
	"taskbook/internal/tasks"
)

type mode int

const (
	modeMenu mode = iota
	modeAdd
	modeSelect
	modeConfirm
	modeDone
)

type action int

const (
	actionComplete action = iota
	actionDelete
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

var addPrompts = [3]string{"Subject", "Short description", "Deadline (DD-MM-YYYY)"}

var menuItems = []string{
	"1) Add a new task",
	"2) Show all tasks",
	"3) Mark a task complete",
	"4) Delete a task",
	"5) Show completed tasks",
	"6) Show pending tasks",
	"7) Exit",
}

const farewell = "Thanks for using taskbook!"

type Model struct {
	session  *tasks.Session
	renderer *render.Renderer
	input    textinput.Model
	mode     mode
	action   action
	addStep  int
	draft    [3]string
	pending  int
	output   string
	status   string
}

func NewModel(session *tasks.Session, renderer *render.Renderer, load storage.LoadResult) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		session:  session,
		renderer: renderer,
		input:    ti,
		mode:     modeMenu,
		status:   loadStatus(load),
	}
}

// Run starts the interactive menu and blocks until the user exits.
func Run(session *tasks.Session, renderer *render.Renderer, load storage.LoadResult) error {
	program := tea.NewProgram(NewModel(session, renderer, load))
	_, err := program.Run()
	return err
}

func loadStatus(res storage.LoadResult) string {
	switch res.State {
	case storage.StateCorrupt:
		msg := "Saved tasks could not be read, starting with an empty list."
		if res.Quarantined != "" {
			msg += " A copy was kept at " + res.Quarantined + "."
		}
		return warnStyle.Render(msg)
	case storage.StateLoaded:
		msg := fmt.Sprintf("Welcome back! %d task(s) loaded.", len(res.Tasks))
		if res.Dropped > 0 {
			msg += fmt.Sprintf(" %d unreadable record(s) skipped.", res.Dropped)
		}
		return infoStyle.Render(msg)
	default:
		return infoStyle.Render("Welcome to taskbook!")
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.mode = modeDone
			return m, tea.Quit
		}
		switch m.mode {
		case modeMenu:
			return m.updateMenu(msg.String())
		case modeAdd:
			return m.updateAdd(msg)
		case modeSelect:
			return m.updateSelect(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) updateMenu(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "1":
		m.output = ""
		m.addStep = 0
		m.draft = [3]string{}
		return m.prompt(modeAdd, addPrompts[0], "Add a new task. Esc to cancel.")
	case "2":
		m.show(render.FilterAll)
	case "3":
		m.show(render.FilterPending)
		if m.session.Len() == 0 {
			m.status = errStyle.Render("There are no tasks.")
			return m, nil
		}
		m.action = actionComplete
		return m.prompt(modeSelect, "Task number to mark complete", "")
	case "4":
		m.show(render.FilterAll)
		if m.session.Len() == 0 {
			m.status = errStyle.Render("There are no tasks.")
			return m, nil
		}
		m.action = actionDelete
		return m.prompt(modeSelect, "Task number to delete", "")
	case "5":
		m.show(render.FilterCompleted)
	case "6":
		m.show(render.FilterPending)
	case "7", "q":
		m.mode = modeDone
		return m, tea.Quit
	default:
		m.status = errStyle.Render(fmt.Sprintf("Unknown choice %q. Enter a number from 1 to 7.", key))
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.backToMenu(infoStyle.Render("Cancelled."))
	case tea.KeyEnter:
		v, err := tasks.RequireText(m.input.Value())
		if err != nil {
			m.status = errStyle.Render("This field is required.")
			m.input.SetValue("")
			return m, nil
		}
		m.draft[m.addStep] = v
		m.addStep++
		if m.addStep < len(addPrompts) {
			return m.prompt(modeAdd, addPrompts[m.addStep], "")
		}
		out, err := m.session.Add(m.draft[0], m.draft[1], m.draft[2])
		if err != nil {
			return m.backToMenu(errStyle.Render(err.Error()))
		}
		return m.backToMenu(saved(out, okStyle.Render("Task added!")))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.backToMenu(infoStyle.Render("Cancelled."))
	case tea.KeyEnter:
		pos, err := tasks.ParsePosition(m.input.Value(), m.session.Len())
		if errors.Is(err, tasks.ErrNotNumber) {
			m.status = errStyle.Render("Enter a valid number.")
			m.input.SetValue("")
			return m, nil
		}
		if err != nil {
			return m.backToMenu(errStyle.Render(fmt.Sprintf("Number must be between 1 and %d.", m.session.Len())))
		}
		if m.action == actionComplete {
			return m.complete(pos)
		}
		t, _ := m.session.Task(pos)
		m.pending = pos
		return m.prompt(modeConfirm, fmt.Sprintf("Delete %q? (y/n)", t.Description), "")
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) complete(pos int) (tea.Model, tea.Cmd) {
	out, err := m.session.Complete(pos)
	switch {
	case errors.Is(err, tasks.ErrAlreadyCompleted):
		return m.backToMenu(infoStyle.Render("This task is already completed."))
	case err != nil:
		return m.backToMenu(errStyle.Render(err.Error()))
	}
	return m.backToMenu(saved(out, okStyle.Render(fmt.Sprintf("Task %q marked complete %s", out.Task.Description, render.IconDone))))
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.backToMenu(infoStyle.Render("Cancelled."))
	case tea.KeyEnter:
		out, err := m.session.Delete(m.pending, m.input.Value())
		m.pending = 0
		switch {
		case errors.Is(err, tasks.ErrCancelled):
			return m.backToMenu(infoStyle.Render("Cancelled."))
		case err != nil:
			return m.backToMenu(errStyle.Render(err.Error()))
		}
		return m.backToMenu(saved(out, okStyle.Render("Task deleted.")))
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) prompt(next mode, label, status string) (tea.Model, tea.Cmd) {
	m.mode = next
	m.input.SetValue("")
	m.input.Prompt = label + ": "
	m.status = status
	return m, m.input.Focus()
}

func (m Model) backToMenu(status string) (tea.Model, tea.Cmd) {
	m.mode = modeMenu
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
	return m, nil
}

func (m *Model) show(f render.Filter) {
	m.output = m.renderer.String(m.session.Tasks(), f)
	m.status = ""
}

// saved appends a save warning to msg when the outcome carries one.
func saved(out tasks.Outcome, msg string) string {
	if out.SaveErr == nil {
		return msg
	}
	return msg + "\n" + warnStyle.Render(fmt.Sprintf("Could not save tasks: %v", out.SaveErr))
}

func (m Model) View() string {
	if m.mode == modeDone {
		return farewell + "\n"
	}

	var b strings.Builder
	if m.output != "" {
		b.WriteString(m.output)
		b.WriteString("\n")
	}

	switch m.mode {
	case modeMenu:
		rule := strings.Repeat("=", m.renderer.Width())
		b.WriteString(rule + "\n")
		b.WriteString(titleStyle.Render("TASKBOOK MAIN MENU"))
		b.WriteString("\n" + rule + "\n")
		for _, item := range menuItems {
			b.WriteString(item + "\n")
		}
		b.WriteString(rule + "\n")
		b.WriteString("Choose a menu item (1-7)\n")
	default:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(help(m.mode)))
	b.WriteString("\n")
	return b.String()
}

func help(md mode) string {
	switch md {
	case modeMenu:
		return "1-7 choose • q/ctrl+c quit"
	default:
		return "enter confirm • esc cancel • ctrl+c quit"
	}
}
