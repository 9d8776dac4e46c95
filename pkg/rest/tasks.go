package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/harrisonrobin/aide/pkg/model"
	"github.com/harrisonrobin/aide/pkg/tasks"
)

// TaskRemote is the task collection of one source on the REST API.
type TaskRemote struct {
	c   *Client
	src tasks.Source
}

var _ tasks.Remote = (*TaskRemote)(nil)

// Tasks addresses the collection of src. Provider sources add a source
// query parameter to every call.
func (c *Client) Tasks(src tasks.Source) *TaskRemote {
	return &TaskRemote{c: c, src: src}
}

func (r *TaskRemote) List(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := r.c.do(ctx, http.MethodGet, "tasks", r.src.Query(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (r *TaskRemote) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	var out model.Task
	if err := r.c.do(ctx, http.MethodPost, "tasks", r.src.Query(), d, &out); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Update sends the full record. A response without a body is taken as
// acceptance of the payload.
func (r *TaskRemote) Update(ctx context.Context, t model.Task) (model.Task, error) {
	var out model.Task
	if err := r.c.do(ctx, http.MethodPut, taskPath(t.ID), r.src.Query(), t, &out); err != nil {
		return model.Task{}, err
	}
	if out.ID == "" {
		return t, nil
	}
	return out, nil
}

func (r *TaskRemote) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, taskPath(id), r.src.Query(), nil, nil)
}

func taskPath(id string) string {
	return "tasks/" + url.PathEscape(id)
}
