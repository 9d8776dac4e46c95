package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harrisonrobin/aide/pkg/model"
)

var errNetwork = errors.New("connection refused")

// fakeRemote is an in-memory task API.
type fakeRemote struct {
	mu    sync.Mutex
	tasks []model.Task
	next  int
	lists int

	failList   error
	failCreate error
	failUpdate error
	failDelete error

	// gate, when set, blocks List until it is closed. entered is closed
	// once List is waiting on it.
	gate    chan struct{}
	entered chan struct{}
	// normalize models server-side side effects on stored records.
	normalize func(model.Task) model.Task
}

func (f *fakeRemote) List(ctx context.Context) ([]model.Task, error) {
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate != nil {
		if entered != nil {
			close(entered)
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]model.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeRemote) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return model.Task{}, f.failCreate
	}
	f.next++
	t := model.Task{ID: fmt.Sprintf("t%d", f.next)}.Apply(d)
	if f.normalize != nil {
		t = f.normalize(t)
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeRemote) Update(ctx context.Context, t model.Task) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return model.Task{}, f.failUpdate
	}
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			if f.normalize != nil {
				t = f.normalize(t)
			}
			f.tasks[i] = t
			return t, nil
		}
	}
	return model.Task{}, fmt.Errorf("404 task %s", t.ID)
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("404 task %s", id)
}

func (f *fakeRemote) set(fn func(f *fakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeRemote) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// fakeBackend serves one fakeRemote per source.
type fakeBackend map[Source]*fakeRemote

func (b fakeBackend) Remote(src Source) (Remote, error) {
	r, ok := b[src]
	if !ok {
		return nil, fmt.Errorf("no remote for %s", src)
	}
	return r, nil
}

func titleCase(t model.Task) model.Task {
	if t.Category != "" {
		t.Category = strings.ToUpper(t.Category[:1]) + strings.ToLower(t.Category[1:])
	}
	return t
}
