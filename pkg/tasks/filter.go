package tasks

import (
	"iter"
	"slices"

	"github.com/harrisonrobin/aide/pkg/model"
)

// VisibleSeq yields the tasks of collection in order, skipping completed
// ones when hideCompleted is set.
func VisibleSeq(collection []model.Task, hideCompleted bool) iter.Seq[model.Task] {
	return func(yield func(model.Task) bool) {
		for _, t := range collection {
			if hideCompleted && t.Completed {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Visible is VisibleSeq collected into a slice.
func Visible(collection []model.Task, hideCompleted bool) []model.Task {
	return slices.Collect(VisibleSeq(collection, hideCompleted))
}

// Filter holds the user's visibility flags.
type Filter struct {
	HideCompleted bool
}

func (f *Filter) Toggle() {
	f.HideCompleted = !f.HideCompleted
}

func (f Filter) Apply(collection []model.Task) []model.Task {
	return Visible(collection, f.HideCompleted)
}
