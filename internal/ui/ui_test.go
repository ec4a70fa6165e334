package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskbook/internal/render"
	"taskbook/internal/storage"
	"taskbook/internal/tasks"
)

func newTestModel(t *testing.T, seed []storage.Task) (Model, *tasks.Session, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	session := tasks.NewSession(seed, storage.NewStore(mem, nil), nil)
	r := render.New(render.Columns{Subject: 18, Description: 32, Deadline: 18})
	return NewModel(session, r, storage.LoadResult{State: storage.StateMissing}), session, mem
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

// send feeds messages through Update in order and returns the final model.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update returned %T", next)
		}
	}
	return m
}

func TestMenuAddFlow(t *testing.T) {
	m, session, mem := newTestModel(t, nil)

	m = send(t, m, keys("1"))
	if m.mode != modeAdd {
		t.Fatalf("mode = %v, want add", m.mode)
	}

	// Empty input re-prompts the same field.
	m = send(t, m, enter)
	if m.mode != modeAdd || m.addStep != 0 {
		t.Fatalf("blank subject accepted: mode %v step %d", m.mode, m.addStep)
	}
	if !strings.Contains(m.status, "required") {
		t.Errorf("status = %q, want required-field error", m.status)
	}

	m = send(t, m,
		keys("Math"), enter,
		keys("Chapter 3 exercises"), enter,
		keys("   "), enter,
		keys("12-05-2025"), enter,
	)
	if m.mode != modeMenu {
		t.Fatalf("mode = %v, want menu after add", m.mode)
	}
	want := storage.Task{Subject: "Math", Description: "Chapter 3 exercises", Deadline: "12-05-2025"}
	if got := session.Tasks(); len(got) != 1 || got[0] != want {
		t.Fatalf("tasks = %+v, want [%+v]", got, want)
	}
	if mem.Writes() != 1 {
		t.Errorf("Writes = %d, want 1", mem.Writes())
	}
	if !strings.Contains(m.status, "Task added") {
		t.Errorf("status = %q", m.status)
	}
}

func TestMenuAddCancel(t *testing.T) {
	m, session, _ := newTestModel(t, nil)
	m = send(t, m, keys("1"), keys("Math"), enter, esc)
	if m.mode != modeMenu || session.Len() != 0 {
		t.Errorf("cancel left mode %v, %d tasks", m.mode, session.Len())
	}
}

func TestMenuComplete(t *testing.T) {
	seed := []storage.Task{
		{Subject: "Math", Description: "Chapter 3", Deadline: "x"},
		{Subject: "Art", Description: "Sketch", Deadline: "y"},
	}
	m, session, _ := newTestModel(t, seed)

	m = send(t, m, keys("3"))
	if m.mode != modeSelect {
		t.Fatalf("mode = %v, want select", m.mode)
	}
	if !strings.Contains(m.output, "Pending Tasks") {
		t.Errorf("complete should show pending tasks first:\n%s", m.output)
	}

	m = send(t, m, keys("abc"), enter)
	if m.mode != modeSelect || !strings.Contains(m.status, "valid number") {
		t.Fatalf("non-numeric input: mode %v status %q", m.mode, m.status)
	}

	m = send(t, m, keys("2"), enter)
	if m.mode != modeMenu {
		t.Fatalf("mode = %v, want menu", m.mode)
	}
	if !session.Tasks()[1].Completed || session.Tasks()[0].Completed {
		t.Errorf("tasks = %+v", session.Tasks())
	}

	m = send(t, m, keys("3"), keys("2"), enter)
	if !strings.Contains(m.status, "already completed") {
		t.Errorf("status = %q, want already-completed notice", m.status)
	}
}

func TestMenuOutOfRangeReturnsToMenu(t *testing.T) {
	m, session, mem := newTestModel(t, []storage.Task{{Subject: "a", Description: "b", Deadline: "c"}})
	m = send(t, m, keys("4"), keys("5"), enter)
	if m.mode != modeMenu {
		t.Fatalf("mode = %v, want menu", m.mode)
	}
	if !strings.Contains(m.status, "between 1 and 1") {
		t.Errorf("status = %q", m.status)
	}
	if session.Len() != 1 || mem.Writes() != 0 {
		t.Error("out-of-range delete mutated the session")
	}
}

func TestMenuDeleteConfirmation(t *testing.T) {
	seed := []storage.Task{
		{Subject: "Math", Description: "Chapter 3", Deadline: "x"},
		{Subject: "Art", Description: "Sketch", Deadline: "y"},
	}
	m, session, _ := newTestModel(t, seed)

	m = send(t, m, keys("4"), keys("1"), enter)
	if m.mode != modeConfirm {
		t.Fatalf("mode = %v, want confirm", m.mode)
	}
	if !strings.Contains(m.input.Prompt, `"Chapter 3"`) {
		t.Errorf("prompt = %q, want the task description", m.input.Prompt)
	}
	m = send(t, m, keys("n"), enter)
	if session.Len() != 2 || !strings.Contains(m.status, "Cancelled") {
		t.Fatalf("n should cancel: len %d status %q", session.Len(), m.status)
	}

	m = send(t, m, keys("4"), keys("1"), enter, keys("Y"), enter)
	if got := session.Tasks(); len(got) != 1 || got[0].Subject != "Art" {
		t.Fatalf("tasks = %+v, want only Art", got)
	}
	if !strings.Contains(m.status, "deleted") {
		t.Errorf("status = %q", m.status)
	}
}

func TestMenuNoTasks(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	for _, k := range []string{"3", "4"} {
		m = send(t, m, keys(k))
		if m.mode != modeMenu || !strings.Contains(m.status, "no tasks") {
			t.Errorf("choice %s on empty list: mode %v status %q", k, m.mode, m.status)
		}
	}
}

func TestMenuListings(t *testing.T) {
	seed := []storage.Task{
		{Subject: "Math", Description: "Chapter 3", Deadline: "x"},
		{Subject: "Art", Description: "Sketch", Deadline: "y", Completed: true},
	}
	m, _, _ := newTestModel(t, seed)

	m = send(t, m, keys("2"))
	if !strings.Contains(m.output, "Math") || !strings.Contains(m.output, "Art") {
		t.Errorf("show all:\n%s", m.output)
	}
	m = send(t, m, keys("5"))
	if strings.Contains(m.output, "Math") || !strings.Contains(m.output, "Art") {
		t.Errorf("show completed:\n%s", m.output)
	}
	m = send(t, m, keys("6"))
	if !strings.Contains(m.output, "Math") || strings.Contains(m.output, "Art") {
		t.Errorf("show pending:\n%s", m.output)
	}
	if !strings.Contains(m.View(), m.output) {
		t.Error("View does not include the last listing")
	}
}

func TestMenuUnknownChoice(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = send(t, m, keys("9"))
	if m.mode != modeMenu || !strings.Contains(m.status, "Unknown choice") {
		t.Errorf("mode %v status %q", m.mode, m.status)
	}
}

func TestMenuExit(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	next, cmd := m.Update(keys("7"))
	if cmd == nil {
		t.Fatal("exit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("exit command is not tea.Quit")
	}
	if !strings.Contains(next.View(), farewell) {
		t.Errorf("View = %q", next.View())
	}
}

func TestMenuReportsSaveFailure(t *testing.T) {
	m, _, mem := newTestModel(t, nil)
	mem.FailWrites = errors.New("permission denied")

	m = send(t, m, keys("1"), keys("a"), enter, keys("b"), enter, keys("c"), enter)
	if !strings.Contains(m.status, "Could not save tasks") || !strings.Contains(m.status, "permission denied") {
		t.Errorf("status = %q, want save warning", m.status)
	}
}

func TestLoadStatus(t *testing.T) {
	tests := []struct {
		res  storage.LoadResult
		want string
	}{
		{storage.LoadResult{State: storage.StateMissing}, "Welcome"},
		{storage.LoadResult{State: storage.StateLoaded, Tasks: make([]storage.Task, 2), Dropped: 1}, "2 task(s) loaded. 1 unreadable"},
		{storage.LoadResult{State: storage.StateCorrupt, Quarantined: "/tmp/tasks.json.corrupt-x"}, "/tmp/tasks.json.corrupt-x"},
	}
	for _, tt := range tests {
		if got := loadStatus(tt.res); !strings.Contains(got, tt.want) {
			t.Errorf("loadStatus(%v) = %q, want it to contain %q", tt.res.State, got, tt.want)
		}
	}
}
