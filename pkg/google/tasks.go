package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/aide/pkg/model"
	"github.com/harrisonrobin/aide/pkg/tasks"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"
)

const (
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"

	// DefaultTaskList addresses the user's default list.
	DefaultTaskList = "@default"
)

// TasksClient serves one Google Tasks list as a task source.
type TasksClient struct {
	srv    *gtasks.Service
	listID string
}

var _ tasks.Remote = (*TasksClient)(nil)

// NewTasksClient creates a client for the list titled listTitle. An empty
// title selects the default list.
func NewTasksClient(ctx context.Context, listTitle string, opts ...option.ClientOption) (*TasksClient, error) {
	srv, err := gtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Tasks service: %w", err)
	}
	if listTitle == "" || listTitle == DefaultTaskList {
		return &TasksClient{srv: srv, listID: DefaultTaskList}, nil
	}

	var listID string
	err = srv.Tasklists.List().Pages(ctx, func(page *gtasks.TaskLists) error {
		for _, item := range page.Items {
			if item.Title == listTitle {
				listID = item.Id
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve task lists: %w", err)
	}
	if listID == "" {
		return nil, fmt.Errorf("task list '%s' not found", listTitle)
	}
	return &TasksClient{srv: srv, listID: listID}, nil
}

func (c *TasksClient) List(ctx context.Context) ([]model.Task, error) {
	out := []model.Task{}
	call := c.srv.Tasks.List(c.listID).ShowCompleted(true).ShowHidden(true).MaxResults(100)
	err := call.Pages(ctx, func(page *gtasks.Tasks) error {
		for _, item := range page.Items {
			if item.Deleted {
				continue
			}
			out = append(out, fromGoogle(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TasksClient) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	created, err := c.srv.Tasks.Insert(c.listID, toGoogle(model.Task{}.Apply(d))).Context(ctx).Do()
	if err != nil {
		return model.Task{}, err
	}
	return fromGoogle(created), nil
}

func (c *TasksClient) Update(ctx context.Context, t model.Task) (model.Task, error) {
	updated, err := c.srv.Tasks.Update(c.listID, t.ID, toGoogle(t)).Context(ctx).Do()
	if err != nil {
		return model.Task{}, err
	}
	return fromGoogle(updated), nil
}

func (c *TasksClient) Delete(ctx context.Context, id string) error {
	return c.srv.Tasks.Delete(c.listID, id).Context(ctx).Do()
}

func fromGoogle(g *gtasks.Task) model.Task {
	description, category := decodeNotes(g.Notes)
	return model.Task{
		ID:          g.Id,
		Title:       g.Title,
		Description: description,
		Category:    category,
		Completed:   g.Status == statusCompleted,
	}
}

func toGoogle(t model.Task) *gtasks.Task {
	g := &gtasks.Task{
		Id:     t.ID,
		Title:  t.Title,
		Notes:  encodeNotes(t.Description, t.Category),
		Status: statusNeedsAction,
	}
	if t.Completed {
		g.Status = statusCompleted
	} else {
		g.NullFields = []string{"Completed"}
	}
	return g
}
