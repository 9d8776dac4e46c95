package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/aide/pkg/model"
	"github.com/harrisonrobin/aide/pkg/tasks"
	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksToggleCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var hideCompleted, all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of the active source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			filter := tasks.Filter{HideCompleted: app.cfg.HideCompleted}
			if cmd.Flags().Changed("hide-completed") {
				filter.HideCompleted = hideCompleted
			}
			if all {
				filter.HideCompleted = false
			}

			theme, done := app.theme(cmd)
			defer done()
			return theme.Tasks(cmd.OutOrStdout(), tasks.VisibleSeq(store.Tasks(), filter.HideCompleted))
		},
	}

	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "Hide completed tasks (default from config)")
	cmd.Flags().BoolVar(&all, "all", false, "Show completed tasks even if config hides them")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := store.Get(args[0])
			if err != nil {
				return err
			}
			theme, done := app.theme(cmd)
			defer done()
			return theme.Task(cmd.OutOrStdout(), task)
		},
	}
}

func newTasksAddCmd(app *App) *cobra.Command {
	var draft model.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.source()
			if err != nil {
				return err
			}
			if err := validateDraft(src, &draft); err != nil {
				return err
			}
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			created, err := store.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			theme, done := app.theme(cmd)
			defer done()
			return theme.Task(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&draft.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&draft.Category, "category", model.DefaultCategory, "Category: "+strings.Join(model.Categories, ", "))
	return cmd
}

func newTasksToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between open and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := store.ToggleComplete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			theme, done := app.theme(cmd)
			defer done()
			return theme.Task(cmd.OutOrStdout(), task)
		},
	}
}

func newTasksEditCmd(app *App) *cobra.Command {
	var title, description, category string
	var sets []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's title, description or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := app.source()
			if err != nil {
				return err
			}
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			task, err := store.Get(args[0])
			if err != nil {
				return err
			}

			session := tasks.NewSession(store)
			session.Begin(task)
			for flag, field := range map[string]string{
				"title":       model.FieldTitle,
				"description": model.FieldDescription,
				"category":    model.FieldCategory,
			} {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				value, _ := cmd.Flags().GetString(flag)
				if err := session.SetField(field, value); err != nil {
					return err
				}
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: expected field=value", kv)
				}
				if err := session.SetField(name, value); err != nil {
					return err
				}
			}
			if !session.Dirty() {
				session.Cancel()
				return errors.New("nothing to change: pass --title, --description, --category or --set")
			}

			draft, _ := session.Draft()
			if err := validateDraft(src, &draft); err != nil {
				session.Cancel()
				return err
			}
			// Keep the normalized title and category.
			if err := session.SetField(model.FieldTitle, draft.Title); err != nil {
				return err
			}
			if err := session.SetField(model.FieldCategory, draft.Category); err != nil {
				return err
			}
			saved, err := session.Save(cmd.Context())
			if err != nil {
				return err
			}
			theme, done := app.theme(cmd)
			defer done()
			return theme.Task(cmd.OutOrStdout(), saved)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a field as field=value (repeatable)")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// validateDraft enforces a title and, for the local source, the closed
// category set. An empty category becomes the default.
func validateDraft(src tasks.Source, d *model.Draft) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return errors.New("title is required")
	}
	if d.Category == "" {
		d.Category = model.DefaultCategory
	}
	if src.Kind == tasks.KindLocal && !model.IsCategory(d.Category) {
		return fmt.Errorf("unknown category %q: expected one of %s", d.Category, strings.Join(model.Categories, ", "))
	}
	return nil
}
