package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Task is a single task as held by the active source. ID is opaque: sources
// may key tasks by string or by integer, and a task is written back with the
// id in the JSON shape it was read in.
type Task struct {
	ID          string
	Title       string
	Description string
	Category    string
	Completed   bool

	numericID bool
}

type wireTask struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Completed   bool            `json:"completed"`
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var w wireTask
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id, numeric, err := decodeID(w.ID)
	if err != nil {
		return err
	}
	*t = Task{
		ID:          id,
		Title:       w.Title,
		Description: w.Description,
		Category:    w.Category,
		Completed:   w.Completed,
		numericID:   numeric,
	}
	return nil
}

func (t Task) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(t.ID)
	if err != nil {
		return nil, err
	}
	if t.numericID && json.Valid([]byte(t.ID)) {
		id = []byte(t.ID)
	}
	return json.Marshal(wireTask{
		ID:          id,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Completed:   t.Completed,
	})
}

func decodeID(raw json.RawMessage) (id string, numeric bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	if raw[0] == '"' {
		err = json.Unmarshal(raw, &id)
		return id, false, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false, fmt.Errorf("task id %s: %w", raw, err)
	}
	return n.String(), true, nil
}

// Draft carries the user-supplied fields of a task that does not exist yet,
// or the editable fields of one that does.
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Editable field names accepted by an edit session.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
)

const DefaultCategory = "Other"

// Categories is the closed label set offered by the local source. External
// providers may return free text.
var Categories = []string{
	"Work",
	"Personal",
	"Health",
	"Finance",
	DefaultCategory,
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

// Draft returns the editable fields of t.
func (t Task) Draft() Draft {
	return Draft{Title: t.Title, Description: t.Description, Category: t.Category}
}

// Apply overwrites the editable fields of t with d.
func (t Task) Apply(d Draft) Task {
	t.Title = d.Title
	t.Description = d.Description
	t.Category = d.Category
	return t
}
