package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/harrisonrobin/aide/pkg/model"
)

// Kind tags the variant of a Source.
type Kind string

const (
	KindLocal    Kind = "local"
	KindProvider Kind = "provider"
)

// Source names the backing collection tasks are read from and written to.
type Source struct {
	Kind     Kind
	Provider string
}

// Local is the assistant's own task store.
func Local() Source {
	return Source{Kind: KindLocal}
}

// Provider is an external task-list provider such as "ticktick" or "google".
func Provider(name string) Source {
	return Source{Kind: KindProvider, Provider: name}
}

// ParseSource parses "local" or a provider name.
func ParseSource(s string) (Source, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == string(KindLocal):
		return Local(), nil
	case strings.ContainsAny(s, " /?&="):
		return Source{}, fmt.Errorf("invalid source name %q", s)
	default:
		return Provider(s), nil
	}
}

func (s Source) String() string {
	if s.Kind == KindProvider {
		return s.Provider
	}
	return string(KindLocal)
}

// Query returns the query parameters addressing s on the REST API.
func (s Source) Query() url.Values {
	q := url.Values{}
	if s.Kind == KindProvider {
		q.Set("source", s.Provider)
	}
	return q
}

// Remote is the source of truth a Store synchronizes with.
type Remote interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, d model.Draft) (model.Task, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

// Backend resolves a Source to the Remote that serves it.
type Backend interface {
	Remote(src Source) (Remote, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(src Source) (Remote, error)

func (f BackendFunc) Remote(src Source) (Remote, error) { return f(src) }
