package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/harrisonrobin/aide/pkg/model"
)

// Policy decides how the local collection is reconciled after a successful
// mutation. A Store applies one policy to every mutation.
type Policy int

const (
	// PolicyRefetch reloads the whole collection after each mutation.
	PolicyRefetch Policy = iota
	// PolicyPatch applies the record returned by the remote in place.
	PolicyPatch
)

func (p Policy) String() string {
	if p == PolicyPatch {
		return "patch"
	}
	return "refetch"
}

// ParsePolicy parses "refetch" or "patch". An empty string is PolicyRefetch.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "refetch":
		return PolicyRefetch, nil
	case "patch":
		return PolicyPatch, nil
	}
	return PolicyRefetch, fmt.Errorf("unknown reconciliation policy %q", s)
}

// Store holds the committed task collection of the active source and
// mediates every remote mutation of it.
type Store struct {
	backend Backend
	policy  Policy
	logger  *log.Logger

	mu     sync.RWMutex
	source Source
	remote Remote
	gen    uint64
	tasks  []model.Task
}

type StoreOption func(*Store)

func WithPolicy(p Policy) StoreOption {
	return func(s *Store) { s.policy = p }
}

func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty store bound to src. Nothing is fetched until Load.
func NewStore(backend Backend, src Source, opts ...StoreOption) (*Store, error) {
	s := &Store{backend: backend, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	remote, err := backend.Remote(src)
	if err != nil {
		return nil, fmt.Errorf("resolve source %s: %w", src, err)
	}
	s.source = src
	s.remote = remote
	return s, nil
}

// Source returns the active source.
func (s *Store) Source() Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Store) Policy() Policy { return s.policy }

// Switch makes src the active source and discards the current collection.
// Responses to operations issued before the switch are not applied.
func (s *Store) Switch(src Source) error {
	remote, err := s.backend.Remote(src)
	if err != nil {
		return fmt.Errorf("resolve source %s: %w", src, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = src
	s.remote = remote
	s.gen++
	s.tasks = nil
	return nil
}

// Tasks returns a copy of the committed collection in remote order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the committed task with the given id.
func (s *Store) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], nil
	}
	return model.Task{}, &NotFoundError{ID: id}
}

// Load replaces the collection with the remote's list for src, switching
// to src first if it is not the active source. On failure the previous
// collection is kept.
func (s *Store) Load(ctx context.Context, src Source) error {
	if src != s.Source() {
		if err := s.Switch(src); err != nil {
			return err
		}
	}

	remote, active, gen := s.binding()
	list, err := remote.List(ctx)
	if err != nil {
		return &FetchError{Op: "load", Source: active, Err: err}
	}
	return s.commit(gen, "load", func() { s.tasks = list })
}

// Create sends a new task to the remote and returns the created record.
// Title validation is the caller's concern.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	remote, active, gen := s.binding()
	created, err := remote.Create(ctx, d)
	if err != nil {
		return model.Task{}, &FetchError{Op: "create", Source: active, Err: err}
	}
	err = s.reconcile(ctx, remote, active, gen, "create", func() {
		if s.indexOf(created.ID) < 0 {
			s.tasks = append(s.tasks, created)
		}
	})
	return created, err
}

// Update sends the full record t to the remote. t must be in the local
// collection.
func (s *Store) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if _, err := s.Get(t.ID); err != nil {
		return model.Task{}, err
	}
	remote, active, gen := s.binding()
	updated, err := remote.Update(ctx, t)
	if err != nil {
		return model.Task{}, &FetchError{Op: "update", Source: active, Err: err}
	}
	err = s.reconcile(ctx, remote, active, gen, "update", func() {
		if i := s.indexOf(updated.ID); i >= 0 {
			s.tasks[i] = updated
		}
	})
	return updated, err
}

// ToggleComplete flips the completed flag of a task in the local collection
// and updates it remotely.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	t, err := s.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	t.Completed = !t.Completed
	return s.Update(ctx, t)
}

// Delete removes a task remotely, then locally. The task must be in the
// local collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	remote, active, gen := s.binding()
	if err := remote.Delete(ctx, id); err != nil {
		return &FetchError{Op: "delete", Source: active, Err: err}
	}
	return s.reconcile(ctx, remote, active, gen, "delete", func() {
		if i := s.indexOf(id); i >= 0 {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		}
	})
}

func (s *Store) binding() (Remote, Source, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote, s.source, s.gen
}

// reconcile brings the collection in line with the remote after a
// successful mutation, according to the store's policy.
func (s *Store) reconcile(ctx context.Context, remote Remote, src Source, gen uint64, op string, patch func()) error {
	if s.policy == PolicyPatch {
		return s.commit(gen, op, patch)
	}
	list, err := remote.List(ctx)
	if err != nil {
		return &FetchError{Op: "refetch", Source: src, Err: err}
	}
	return s.commit(gen, op, func() { s.tasks = list })
}

// commit applies fn unless the store has switched source since gen.
func (s *Store) commit(gen uint64, op string, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.logger.Printf("Discarding %s response: source changed to %s", op, s.source)
		return fmt.Errorf("%s: %w", op, ErrSuperseded)
	}
	fn()
	return nil
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
