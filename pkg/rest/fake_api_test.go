package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/harrisonrobin/aide/pkg/model"
)

// fakeAPI serves the task endpoints, keeping one collection per source.
type fakeAPI struct {
	mu       sync.Mutex
	bySource map[string][]model.Task
	next     int
	failPut  bool
	requests []*http.Request
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{bySource: map[string][]model.Task{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", api.list)
	mux.HandleFunc("POST /tasks", api.create)
	mux.HandleFunc("PUT /tasks/{id}", api.update)
	mux.HandleFunc("DELETE /tasks/{id}", api.remove)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.requests = append(api.requests, r)
		api.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return api, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.bySource[r.URL.Query().Get("source")]
	if out == nil {
		out = []model.Task{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	t := model.Task{ID: fmt.Sprint(a.next)}.Apply(d)
	src := r.URL.Query().Get("source")
	a.bySource[src] = append(a.bySource[src], t)
	writeJSON(w, http.StatusCreated, t)
}

func (a *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	var t model.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failPut {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	src := r.URL.Query().Get("source")
	list := a.bySource[src]
	for i := range list {
		if list[i].ID == r.PathValue("id") {
			t.ID = list[i].ID
			list[i] = t
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (a *fakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	src := r.URL.Query().Get("source")
	list := a.bySource[src]
	for i := range list {
		if list[i].ID == r.PathValue("id") {
			a.bySource[src] = append(list[:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "task not found"})
}

func (a *fakeAPI) lastRequest() *http.Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.requests[len(a.requests)-1]
}
