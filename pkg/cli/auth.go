package cli

import (
	"fmt"

	"github.com/harrisonrobin/aide/pkg/auth"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *App) *cobra.Command {
	var resetOnly bool

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Tasks and Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Reset(); err != nil {
				return err
			}
			if resetOnly {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed cached token.")
				return nil
			}
			if err := auth.Authorize(cmd.Context(), auth.Scopes, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetOnly, "reset", false, "Only remove the cached token")
	return cmd
}
