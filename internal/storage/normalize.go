package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Placeholder stands in for a text field a stored record does not carry.
const Placeholder = "-"

// Keys accepted on read, canonical key first. Only canonical keys are written.
var (
	subjectKeys     = []string{"subject", "mapel", "judul"}
	descriptionKeys = []string{"description", "deskripsi"}
	deadlineKeys    = []string{"deadline"}
	completedKeys   = []string{"completed", "done"}
)

// Task is one tracked item. Every Task handed out by this package has all
// four fields set.
type Task struct {
	Subject     string `json:"subject" yaml:"subject"`
	Description string `json:"description" yaml:"description"`
	Deadline    string `json:"deadline" yaml:"deadline"`
	Completed   bool   `json:"completed" yaml:"completed"`
}

// Normalize coerces a decoded record into a Task. Missing or null text
// fields become Placeholder, a missing completion flag becomes false.
func Normalize(rec map[string]any) Task {
	completed := false
	if v, ok := lookup(rec, completedKeys); ok {
		completed = truthy(v)
	}
	return Task{
		Subject:     textField(rec, subjectKeys),
		Description: textField(rec, descriptionKeys),
		Deadline:    textField(rec, deadlineKeys),
		Completed:   completed,
	}
}

// NormalizeAll normalizes every mapping element of a decoded top-level
// value. Elements that are not mappings are skipped and counted. ok is false
// when raw is not a sequence at all.
func NormalizeAll(raw any) (tasks []Task, dropped int, ok bool) {
	items, ok := raw.([]any)
	if !ok {
		return nil, 0, false
	}
	tasks = make([]Task, 0, len(items))
	for _, item := range items {
		rec, isMap := item.(map[string]any)
		if !isMap {
			dropped++
			continue
		}
		tasks = append(tasks, Normalize(rec))
	}
	return tasks, dropped, true
}

func toRecord(t Task) map[string]any {
	return map[string]any{
		"subject":     t.Subject,
		"description": t.Description,
		"deadline":    t.Deadline,
		"completed":   t.Completed,
	}
}

func lookup(rec map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func textField(rec map[string]any, keys []string) string {
	v, ok := lookup(rec, keys)
	if !ok {
		return Placeholder
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v != ""
		}
		return f != 0
	case float64:
		return v != 0
	case int64:
		return v != 0
	case int:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
