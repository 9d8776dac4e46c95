// Package prompt walks the user through the day's reflective prompts.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

// Prompt is a reflective question for a time period (daily, weekly, monthly).
type Prompt struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Timeperiod string `json:"timeperiod"`
}

// Service fetches prompts and records answers.
type Service interface {
	DailyPrompts(ctx context.Context) ([]Prompt, error)
	Respond(ctx context.Context, promptID int, text string) error
}

var ErrDone = errors.New("no more prompts")

// Walker steps through a fetched prompt list one answer at a time.
type Walker struct {
	svc     Service
	prompts []Prompt
	pos     int
}

// NewWalker fetches the daily prompts.
func NewWalker(ctx context.Context, svc Service) (*Walker, error) {
	prompts, err := svc.DailyPrompts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch daily prompts: %w", err)
	}
	return &Walker{svc: svc, prompts: prompts}, nil
}

// Current returns the prompt awaiting an answer.
func (w *Walker) Current() (Prompt, bool) {
	if w.Done() {
		return Prompt{}, false
	}
	return w.prompts[w.pos], true
}

func (w *Walker) Done() bool { return w.pos >= len(w.prompts) }

// Remaining is the number of prompts not yet answered, including the current one.
func (w *Walker) Remaining() int { return len(w.prompts) - w.pos }

// Answer posts text for the current prompt and moves to the next. A failed
// post leaves the current prompt in place.
func (w *Walker) Answer(ctx context.Context, text string) error {
	p, ok := w.Current()
	if !ok {
		return ErrDone
	}
	if err := w.svc.Respond(ctx, p.ID, text); err != nil {
		return fmt.Errorf("answer prompt %d: %w", p.ID, err)
	}
	w.pos++
	return nil
}
