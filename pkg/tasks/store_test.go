package tasks

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/harrisonrobin/aide/pkg/model"
)

var quiet = log.New(io.Discard, "", 0)

func newTestStore(t *testing.T, p Policy, remotes fakeBackend) *Store {
	t.Helper()
	s, err := NewStore(remotes, Local(), WithPolicy(p), WithLogger(quiet))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

var policies = []Policy{PolicyRefetch, PolicyPatch}

func TestCreateThenLoad(t *testing.T) {
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{}
			s := newTestStore(t, p, fakeBackend{Local(): remote})

			created, err := s.Create(ctx, model.Draft{Title: "Write report", Description: "Q3", Category: "Work"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if created.ID == "" {
				t.Fatal("Expected a server-assigned ID, got empty")
			}
			if err := s.Load(ctx, Local()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			got, err := s.Get(created.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Title != "Write report" || got.Description != "Q3" || got.Category != "Work" {
				t.Errorf("Expected created fields, got %+v", got)
			}
		})
	}
}

func TestBuyMilkScenario(t *testing.T) {
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{}
			s := newTestStore(t, p, fakeBackend{Local(): remote})

			created, err := s.Create(ctx, model.Draft{Title: "Buy milk", Category: "Personal"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			list := s.Tasks()
			if len(list) != 1 || list[0].Title != "Buy milk" || list[0].Completed {
				t.Fatalf("Expected one incomplete 'Buy milk' task, got %+v", list)
			}

			toggled, err := s.ToggleComplete(ctx, created.ID)
			if err != nil {
				t.Fatalf("ToggleComplete failed: %v", err)
			}
			if !toggled.Completed {
				t.Errorf("Expected returned task to be completed")
			}
			if got, _ := s.Get(created.ID); !got.Completed {
				t.Errorf("Expected stored task to be completed, got %+v", got)
			}

			if err := s.Delete(ctx, created.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := s.Get(created.ID); err == nil {
				t.Errorf("Expected task %s to be gone after Delete", created.ID)
			}
			if err := s.Load(ctx, Local()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(s.Tasks()) != 0 {
				t.Errorf("Expected empty collection after reload, got %+v", s.Tasks())
			}
		})
	}
}

func TestToggleTwiceRestoresCompleted(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{tasks: []model.Task{{ID: "a", Title: "Stretch", Completed: true}}}
	s := newTestStore(t, PolicyPatch, fakeBackend{Local(): remote})
	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.ToggleComplete(ctx, "a"); err != nil {
			t.Fatalf("ToggleComplete #%d failed: %v", i+1, err)
		}
	}
	got, _ := s.Get("a")
	if !got.Completed {
		t.Errorf("Expected completed=true after two toggles, got false")
	}
}

func TestToggleUnknownTask(t *testing.T) {
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): &fakeRemote{}})

	_, err := s.ToggleComplete(context.Background(), "missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if nf.ID != "missing" {
		t.Errorf("Expected ID 'missing', got %q", nf.ID)
	}
}

func TestUpdateFailureLeavesCollection(t *testing.T) {
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{tasks: []model.Task{{ID: "a", Title: "Pay rent", Category: "Finance"}}}
			s := newTestStore(t, p, fakeBackend{Local(): remote})
			if err := s.Load(ctx, Local()); err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			before := s.Tasks()

			remote.set(func(f *fakeRemote) { f.failUpdate = errNetwork })
			_, err := s.Update(ctx, model.Task{ID: "a", Title: "Pay rent today", Category: "Finance"})

			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("Expected FetchError, got %v", err)
			}
			if fe.Op != "update" || !errors.Is(err, errNetwork) {
				t.Errorf("Expected update error wrapping the network error, got %v", err)
			}
			after := s.Tasks()
			if len(after) != 1 || after[0] != before[0] {
				t.Errorf("Expected collection unchanged, got %+v", after)
			}
		})
	}
}

func TestCreateFailureIsNotOptimistic(t *testing.T) {
	remote := &fakeRemote{failCreate: errNetwork}
	s := newTestStore(t, PolicyPatch, fakeBackend{Local(): remote})

	if _, err := s.Create(context.Background(), model.Draft{Title: "Call mom"}); err == nil {
		t.Fatal("Expected Create to fail")
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected no local insertion, got %+v", s.Tasks())
	}
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{tasks: []model.Task{{ID: "a", Title: "Book flights"}}}
	s := newTestStore(t, PolicyPatch, fakeBackend{Local(): remote})
	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	remote.set(func(f *fakeRemote) { f.failDelete = errNetwork })
	if err := s.Delete(ctx, "a"); err == nil {
		t.Fatal("Expected Delete to fail")
	}
	if _, err := s.Get("a"); err != nil {
		t.Errorf("Expected task to remain after failed delete, got %v", err)
	}
}

func TestLoadFailureKeepsPreviousCollection(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{failList: errNetwork}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): remote})

	if err := s.Load(ctx, Local()); err == nil {
		t.Fatal("Expected first Load to fail")
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected empty collection before first successful load, got %+v", s.Tasks())
	}

	remote.set(func(f *fakeRemote) {
		f.failList = nil
		f.tasks = []model.Task{{ID: "a", Title: "Water plants"}}
	})
	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	remote.set(func(f *fakeRemote) { f.failList = errNetwork })
	err := s.Load(ctx, Local())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Op != "load" {
		t.Fatalf("Expected load FetchError, got %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Expected stale collection to be kept, got %+v", got)
	}
}

func TestRefetchAbsorbsServerNormalization(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{normalize: titleCase}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): remote})

	if _, err := s.Create(ctx, model.Draft{Title: "Run 5k", Category: "HEALTH"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if remote.listCalls() != 1 {
		t.Errorf("Expected one refetch after create, got %d", remote.listCalls())
	}
	if got := s.Tasks(); len(got) != 1 || got[0].Category != "Health" {
		t.Errorf("Expected normalized category 'Health', got %+v", got)
	}
}

func TestPatchPolicyDoesNotRefetch(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{}
	s := newTestStore(t, PolicyPatch, fakeBackend{Local(): remote})

	created, err := s.Create(ctx, model.Draft{Title: "Renew passport"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.ToggleComplete(ctx, created.ID); err != nil {
		t.Fatalf("ToggleComplete failed: %v", err)
	}
	if remote.listCalls() != 0 {
		t.Errorf("Expected no list calls under patch policy, got %d", remote.listCalls())
	}
}

func TestRefetchFailureAfterMutation(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemote{tasks: []model.Task{{ID: "a", Title: "Old"}}}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): remote})
	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	remote.set(func(f *fakeRemote) { f.failList = errNetwork })
	_, err := s.Create(ctx, model.Draft{Title: "New"})
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Op != "refetch" {
		t.Fatalf("Expected refetch FetchError, got %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Expected previous collection to be kept, got %+v", got)
	}
}

func TestSwitchSourceDiscardsCollection(t *testing.T) {
	ctx := context.Background()
	local := &fakeRemote{tasks: []model.Task{{ID: "l1", Title: "Local"}}}
	tick := &fakeRemote{tasks: []model.Task{{ID: "p1", Title: "Provider"}}}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): local, Provider("ticktick"): tick})

	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Switch(Provider("ticktick")); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected collection to be discarded on switch, got %+v", s.Tasks())
	}

	if err := s.Load(ctx, Provider("ticktick")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := s.Tasks()
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("Expected only provider tasks, got %+v", got)
	}
	if local.listCalls() != 1 {
		t.Errorf("Expected local remote to be listed once, got %d", local.listCalls())
	}
}

func TestLoadOtherSourceSwitches(t *testing.T) {
	ctx := context.Background()
	local := &fakeRemote{tasks: []model.Task{{ID: "l1"}}}
	tick := &fakeRemote{}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): local, Provider("ticktick"): tick})

	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Load(ctx, Provider("ticktick")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Source() != Provider("ticktick") {
		t.Errorf("Expected active source ticktick, got %s", s.Source())
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected no cross-source merge, got %+v", s.Tasks())
	}
}

func TestSwitchToUnknownSourceKeepsState(t *testing.T) {
	ctx := context.Background()
	local := &fakeRemote{tasks: []model.Task{{ID: "l1"}}}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): local})
	if err := s.Load(ctx, Local()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := s.Switch(Provider("nowhere")); err == nil {
		t.Fatal("Expected Switch to an unresolvable source to fail")
	}
	if s.Source() != Local() || len(s.Tasks()) != 1 {
		t.Errorf("Expected store to stay on local with its tasks, got %s %+v", s.Source(), s.Tasks())
	}
}

func TestResponseAfterSwitchIsDiscarded(t *testing.T) {
	ctx := context.Background()
	gate, entered := make(chan struct{}), make(chan struct{})
	local := &fakeRemote{tasks: []model.Task{{ID: "l1"}}, gate: gate, entered: entered}
	tick := &fakeRemote{}
	s := newTestStore(t, PolicyRefetch, fakeBackend{Local(): local, Provider("ticktick"): tick})

	done := make(chan error, 1)
	go func() { done <- s.Load(ctx, Local()) }()
	<-entered

	if err := s.Switch(Provider("ticktick")); err != nil {
		t.Fatalf("Switch failed: %v", err)
	}
	close(gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", err)
	}
	if len(s.Tasks()) != 0 {
		t.Errorf("Expected stale local response to be discarded, got %+v", s.Tasks())
	}
	if s.Source() != Provider("ticktick") {
		t.Errorf("Expected active source ticktick, got %s", s.Source())
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyRefetch, false},
		{"refetch", PolicyRefetch, false},
		{" Patch ", PolicyPatch, false},
		{"merge", PolicyRefetch, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    Source
		query   string
		wantErr bool
	}{
		{"", Local(), "", false},
		{"local", Local(), "", false},
		{"TickTick", Provider("ticktick"), "source=ticktick", false},
		{"google", Provider("google"), "source=google", false},
		{"a&b", Source{}, "", true},
	}
	for _, tt := range tests {
		got, err := ParseSource(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSource(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %+v, expected %+v", tt.in, got, tt.want)
		}
		if q := got.Query().Encode(); q != tt.query {
			t.Errorf("ParseSource(%q).Query() = %q, expected %q", tt.in, q, tt.query)
		}
	}
}

func TestMutationsOnUnknownTask(t *testing.T) {
	for _, p := range policies {
		t.Run(p.String(), func(t *testing.T) {
			ctx := context.Background()
			remote := &fakeRemote{tasks: []model.Task{{ID: "ghost", Title: "Hidden"}}}
			s := newTestStore(t, p, fakeBackend{Local(): remote})

			_, err := s.Update(ctx, model.Task{ID: "ghost", Title: "changed"})
			var nf *NotFoundError
			if !errors.As(err, &nf) || nf.ID != "ghost" {
				t.Errorf("Expected NotFoundError for update, got %v", err)
			}
			if err := s.Delete(ctx, "ghost"); !errors.As(err, &nf) {
				t.Errorf("Expected NotFoundError for delete, got %v", err)
			}

			remote.mu.Lock()
			defer remote.mu.Unlock()
			if len(remote.tasks) != 1 || remote.tasks[0].Title != "Hidden" {
				t.Errorf("Expected remote untouched, got %+v", remote.tasks)
			}
		})
	}
}
