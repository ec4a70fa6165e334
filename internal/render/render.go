// Package render draws the task list as a fixed-width table.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"taskbook/internal/storage"
)

type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterPending
)

// ParseFilter accepts "all", "completed"/"done" and "pending"/"incomplete".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending", "incomplete":
		return FilterPending, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q", s)
	}
}

func (f Filter) Match(t storage.Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

func (f Filter) Title() string {
	switch f {
	case FilterCompleted:
		return "Completed Tasks"
	case FilterPending:
		return "Pending Tasks"
	default:
		return "Task List"
	}
}

const (
	MsgNoTasks      = "(No tasks saved yet.)"
	MsgNoneComplete = "(No tasks completed yet.)"
	MsgAllComplete  = "(All tasks are completed!)"
)

func (f Filter) emptyMessage() string {
	switch f {
	case FilterCompleted:
		return MsgNoneComplete
	case FilterPending:
		return MsgAllComplete
	default:
		return MsgNoTasks
	}
}

const (
	IconDone    = "✅"
	IconPending = "⏳"

	numWidth    = 4
	statusWidth = 2
	gap         = "  "
	minRule     = 80
)

// Columns are the display widths of the subject, description and deadline
// columns.
type Columns struct {
	Subject     int
	Description int
	Deadline    int
}

// Entry is a task together with its 1-based position in the full list.
type Entry struct {
	Position int
	Task     storage.Task
}

// Select returns the tasks matching f, keeping their positions in the full list.
func Select(tasks []storage.Task, f Filter) []Entry {
	var out []Entry
	for i, t := range tasks {
		if f.Match(t) {
			out = append(out, Entry{Position: i + 1, Task: t})
		}
	}
	return out
}

type Renderer struct {
	cols Columns
}

func New(cols Columns) *Renderer {
	return &Renderer{cols: cols}
}

// Width is the width of a full table row, and of the rules around it.
func (r *Renderer) Width() int {
	w := numWidth + 1 + statusWidth + len(gap) + r.cols.Subject + len(gap) + r.cols.Description + len(gap) + r.cols.Deadline
	return max(minRule, w)
}

// Render writes the tasks matching f to w. It only reads tasks.
func (r *Renderer) Render(w io.Writer, tasks []storage.Task, f Filter) error {
	var b strings.Builder
	r.banner(&b, f.Title())

	if len(tasks) == 0 {
		line(&b, MsgNoTasks)
		line(&b, strings.Repeat("=", r.Width()))
		_, err := io.WriteString(w, b.String())
		return err
	}

	line(&b, r.row("No", "St", "Subject", "Description", "Deadline"))
	line(&b, strings.Repeat("-", r.Width()))

	entries := Select(tasks, f)
	for _, e := range entries {
		r.writeEntry(&b, e)
	}
	if len(entries) == 0 {
		line(&b, f.emptyMessage())
	}
	line(&b, strings.Repeat("=", r.Width()))

	_, err := io.WriteString(w, b.String())
	return err
}

// String renders to a string.
func (r *Renderer) String(tasks []storage.Task, f Filter) string {
	var b strings.Builder
	_ = r.Render(&b, tasks, f)
	return b.String()
}

func (r *Renderer) writeEntry(b *strings.Builder, e Entry) {
	subject := Wrap(e.Task.Subject, r.cols.Subject)
	desc := Wrap(e.Task.Description, r.cols.Description)
	rows := max(len(subject), len(desc))

	for i := 0; i < rows; i++ {
		var num, status, deadline string
		if i == 0 {
			num = fmt.Sprint(e.Position)
			status = Icon(e.Task.Completed)
			deadline = e.Task.Deadline
		}
		line(b, r.row(num, status, at(subject, i), at(desc, i), deadline))
	}
}

func (r *Renderer) row(num, status, subject, desc, deadline string) string {
	var b strings.Builder
	b.WriteString(runewidth.FillRight(num, numWidth))
	b.WriteByte(' ')
	b.WriteString(runewidth.FillRight(status, statusWidth))
	b.WriteString(gap)
	b.WriteString(runewidth.FillRight(subject, r.cols.Subject))
	b.WriteString(gap)
	b.WriteString(runewidth.FillRight(desc, r.cols.Description))
	b.WriteString(gap)
	b.WriteString(deadline)
	return b.String()
}

func (r *Renderer) banner(b *strings.Builder, title string) {
	width := r.Width()
	rule := strings.Repeat("=", width)
	line(b, rule)
	pad := (width - runewidth.StringWidth(title)) / 2
	line(b, strings.Repeat(" ", max(pad, 0))+title)
	line(b, rule)
}

// Icon is the status marker shown for a task.
func Icon(done bool) string {
	if done {
		return IconDone
	}
	return IconPending
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}

func line(b *strings.Builder, s string) {
	b.WriteString(strings.TrimRight(s, " "))
	b.WriteByte('\n')
}
