package render

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/harrisonrobin/aide/pkg/model"
	"github.com/harrisonrobin/aide/pkg/prompt"
	"google.golang.org/api/calendar/v3"
)

// Tasks writes one line per task in the order given.
func (t *Theme) Tasks(w io.Writer, seq iter.Seq[model.Task]) error {
	n := 0
	for task := range seq {
		n++
		box := "[ ]"
		title := t.Title.Render(task.Title)
		if task.Completed {
			box = "[x]"
			title = t.Done.Render(task.Title)
		}
		line := fmt.Sprintf("%s %s %s %s", box, t.Muted.Render(task.ID), title,
			t.category(task.Category).Render("("+task.Category+")"))
		if task.Description != "" {
			line += " " + t.Muted.Render(task.Description)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if n == 0 {
		_, err := fmt.Fprintln(w, t.Muted.Render("No tasks."))
		return err
	}
	return nil
}

// Task writes a single task with its fields on separate lines.
func (t *Theme) Task(w io.Writer, task model.Task) error {
	status := "open"
	if task.Completed {
		status = "done"
	}
	_, err := fmt.Fprintf(w, "%s\n  id: %s\n  category: %s\n  status: %s\n  description: %s\n",
		t.Heading.Render(task.Title), task.ID,
		t.category(task.Category).Render(task.Category), status, task.Description)
	return err
}

// Events writes events grouped under a date heading.
func (t *Theme) Events(w io.Writer, events []*calendar.Event) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, t.Muted.Render("No upcoming events."))
		return err
	}
	lastDay := ""
	for _, e := range events {
		day, clock := eventTime(e)
		if day != lastDay {
			if _, err := fmt.Fprintln(w, t.Heading.Render(day)); err != nil {
				return err
			}
			lastDay = day
		}
		line := fmt.Sprintf("  %-5s %s", clock, t.Title.Render(e.Summary))
		if e.Location != "" {
			line += " " + t.Muted.Render("@ "+e.Location)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func eventTime(e *calendar.Event) (day, clock string) {
	if e.Start == nil {
		return "Unscheduled", ""
	}
	if e.Start.DateTime != "" {
		if ts, err := time.Parse(time.RFC3339, e.Start.DateTime); err == nil {
			return ts.Format("Mon Jan 2"), ts.Format("15:04")
		}
		return e.Start.DateTime, ""
	}
	if ts, err := time.Parse("2006-01-02", e.Start.Date); err == nil {
		return ts.Format("Mon Jan 2"), "all day"
	}
	return e.Start.Date, "all day"
}

// AuthRequired tells the user where to grant access.
func (t *Theme) AuthRequired(w io.Writer, url string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", t.Warn.Render("Authorization required. Open this URL to connect your calendar:"), url)
	return err
}

// Prompt writes the question with its time period.
func (t *Theme) Prompt(w io.Writer, p prompt.Prompt, remaining int) error {
	header := t.Heading.Render(p.Timeperiod)
	_, err := fmt.Fprintf(w, "%s %s\n%s\n", header, t.Muted.Render(fmt.Sprintf("(%d left)", remaining)), t.Title.Render(p.Question))
	return err
}
