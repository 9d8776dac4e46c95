package cli

import (
	"errors"
	"time"

	"github.com/harrisonrobin/aide/pkg/auth"
	"github.com/harrisonrobin/aide/pkg/google"
	"github.com/spf13/cobra"
	"google.golang.org/api/calendar/v3"
)

func newEventsCmd(app *App) *cobra.Command {
	var direct bool
	var calendarName string
	var days int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show upcoming calendar events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var events []*calendar.Event
			var err error
			if direct {
				if calendarName == "" {
					calendarName = app.cfg.Calendar
				}
				events, err = googleEvents(cmd, calendarName, days)
			} else {
				client, cerr := app.restClient()
				if cerr != nil {
					return cerr
				}
				events, err = client.Events(ctx)
			}

			theme, done := app.theme(cmd)
			defer done()
			var authErr *auth.RequiredError
			if errors.As(err, &authErr) {
				return theme.AuthRequired(cmd.OutOrStdout(), authErr.URL)
			}
			if err != nil {
				return err
			}
			return theme.Events(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().BoolVar(&direct, "google", false, "Read Google Calendar directly instead of through the API")
	cmd.Flags().StringVar(&calendarName, "calendar", "", "Google Calendar name (default from config)")
	cmd.Flags().IntVar(&days, "days", 7, "Days ahead to show with --google")
	return cmd
}

func googleEvents(cmd *cobra.Command, calendarName string, days int) ([]*calendar.Event, error) {
	ctx := cmd.Context()
	opt, err := google.AuthorizedOption(ctx)
	if err != nil {
		return nil, err
	}
	client, err := google.NewCalendarClient(ctx, calendarName, opt)
	if err != nil {
		return nil, err
	}
	return client.Upcoming(ctx, time.Now(), days)
}
