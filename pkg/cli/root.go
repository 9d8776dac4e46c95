package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/harrisonrobin/aide/pkg/auth"
	"github.com/harrisonrobin/aide/pkg/colors"
	"github.com/harrisonrobin/aide/pkg/config"
	"github.com/harrisonrobin/aide/pkg/google"
	"github.com/harrisonrobin/aide/pkg/render"
	"github.com/harrisonrobin/aide/pkg/rest"
	"github.com/harrisonrobin/aide/pkg/settings"
	"github.com/harrisonrobin/aide/pkg/tasks"
	"github.com/spf13/cobra"
)

// GoogleProvider is the source name served by Google Tasks directly rather
// than through the API.
const GoogleProvider = "google"

type App struct {
	APIURL  string
	Source  string
	Policy  string
	Verbose bool

	cfg    *config.Config
	logger *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "aide",
		Short:         "Personal assistant: tasks, calendar, daily prompts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # List open tasks from the local source
  aide tasks list --hide-completed

  # Add a task to Google Tasks
  aide --source google tasks add --title "Buy milk" --category Personal

  # Upcoming events
  aide events
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.cfg = cfg
		if !cmd.Flags().Changed("api") {
			app.APIURL = cfg.APIURL
		}
		if !cmd.Flags().Changed("source") {
			app.Source = cfg.Source
		}
		if !cmd.Flags().Changed("policy") {
			app.Policy = cfg.Policy
		}
		out := io.Discard
		if app.Verbose {
			out = cmd.ErrOrStderr()
		}
		app.logger = log.New(out, "aide: ", log.LstdFlags)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "Base URL of the assistant API (default from config)")
	cmd.PersistentFlags().StringVar(&app.Source, "source", "", "Task source: local or a provider name (default from config)")
	cmd.PersistentFlags().StringVar(&app.Policy, "policy", "", "Reconciliation after a mutation: refetch or patch")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newSourceCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newPromptCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newAuthCmd(app))

	return cmd
}

func (app *App) restClient() (*rest.Client, error) {
	return rest.New(app.APIURL, rest.WithLogger(app.logger), rest.WithTimeout(app.cfg.Timeout()))
}

// backend routes the google provider to Google Tasks and every other source
// to the API.
func (app *App) backend(ctx context.Context) tasks.Backend {
	return tasks.BackendFunc(func(src tasks.Source) (tasks.Remote, error) {
		if src.Kind == tasks.KindProvider && src.Provider == GoogleProvider {
			opt, err := google.AuthorizedOption(ctx)
			if err != nil {
				return nil, err
			}
			return google.NewTasksClient(ctx, app.cfg.TaskList, opt)
		}
		client, err := app.restClient()
		if err != nil {
			return nil, err
		}
		return client.Tasks(src), nil
	})
}

func (app *App) source() (tasks.Source, error) {
	return tasks.ParseSource(app.Source)
}

// loadStore builds a store for the active source and loads it.
func (app *App) loadStore(ctx context.Context) (*tasks.Store, error) {
	src, err := app.source()
	if err != nil {
		return nil, err
	}
	policy, err := tasks.ParsePolicy(app.Policy)
	if err != nil {
		return nil, err
	}
	store, err := tasks.NewStore(app.backend(ctx), src, tasks.WithPolicy(policy), tasks.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}
	if err := store.Load(ctx, src); err != nil {
		return nil, err
	}
	return store, nil
}

// theme returns the output theme and a func that persists category colors.
func (app *App) theme(cmd *cobra.Command) (*render.Theme, func()) {
	var s settings.Settings
	if st, err := settings.NewStore(); err == nil {
		s = st.Get()
	} else {
		app.logger.Printf("Could not read settings: %v", err)
	}

	slots, err := colors.NewSlotCache()
	if err != nil {
		app.logger.Printf("Could not read color cache: %v", err)
		slots = nil
	}
	done := func() {
		if slots == nil {
			return
		}
		if err := slots.Save(); err != nil {
			app.logger.Printf("Could not save color cache: %v", err)
		}
	}
	return render.NewTheme(cmd.OutOrStdout(), s, slots), done
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		var authErr *auth.RequiredError
		if errors.As(err, &authErr) {
			fmt.Fprintln(stderr, "Run `aide auth` to connect your Google account.")
		}
		return 1
	}
	return 0
}
