package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/harrisonrobin/aide/pkg/model"
)

// Session is an edit-in-place working copy of a single task. The draft is
// private to the session; nothing reaches the store until Save.
type Session struct {
	store *Store

	mu     sync.Mutex
	active bool
	id     string
	base   model.Draft
	draft  model.Draft
	seq    uint64
}

func NewSession(store *Store) *Session {
	return &Session{store: store}
}

// Begin starts editing t, replacing any previous draft. If the replaced
// draft had unsaved changes it is returned so the caller can warn about it.
func (s *Session) Begin(t model.Task) *model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	var abandoned *model.Draft
	if s.active && s.draft != s.base {
		d := s.draft
		abandoned = &d
	}
	s.active = true
	s.id = t.ID
	s.base = t.Draft()
	s.draft = s.base
	s.seq++
	return abandoned
}

// SetField changes one editable field of the draft.
func (s *Session) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var field *string
	switch name {
	case model.FieldTitle:
		field = &s.draft.Title
	case model.FieldDescription:
		field = &s.draft.Description
	case model.FieldCategory:
		field = &s.draft.Category
	default:
		return &InvalidFieldError{Field: name}
	}
	if !s.active {
		return ErrNoSession
	}
	*field = value
	return nil
}

// Save commits the draft through the store. On success the session returns
// to idle; on failure the draft is kept for a retry or an explicit Cancel.
// When the remote accepted the edit but the store could not reconcile
// afterwards, the session is cleared too and the error is returned with the
// updated task.
func (s *Session) Save(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return model.Task{}, ErrNoSession
	}
	id, draft, seq := s.id, s.draft, s.seq
	s.mu.Unlock()

	current, err := s.store.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	updated, err := s.store.Update(ctx, current.Apply(draft))
	if err != nil && !remotelyApplied(err) {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == seq {
		s.reset()
	}
	return updated, err
}

// remotelyApplied reports whether err was raised after the remote accepted
// the mutation.
func remotelyApplied(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Op == "refetch"
	}
	return errors.Is(err, ErrSuperseded)
}

// Cancel discards the draft. It is a no-op while idle.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Active returns the id of the task being edited.
func (s *Session) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.active
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() (model.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, s.active
}

// Dirty reports whether the draft differs from the task it was begun with.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active && s.draft != s.base
}

func (s *Session) reset() {
	s.active = false
	s.id = ""
	s.base = model.Draft{}
	s.draft = model.Draft{}
	s.seq++
}
