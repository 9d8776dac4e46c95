package cli

import (
	"fmt"

	"github.com/harrisonrobin/aide/pkg/config"
	"github.com/harrisonrobin/aide/pkg/tasks"
	"github.com/spf13/cobra"
)

func newSourceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "source [local|<provider>]",
		Short: "Show or set the default task source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				src, err := app.source()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), src)
				return nil
			}

			src, err := tasks.ParseSource(args[0])
			if err != nil {
				return err
			}
			app.cfg.Source = src.String()
			if err := config.Save(app.cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default source set to: %s\n", src)
			return nil
		},
	}
}
