package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/harrisonrobin/aide/pkg/prompt"
	"github.com/spf13/cobra"
)

func newPromptCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Answer today's reflective prompts",
		Long:  "Shows each daily prompt and reads one answer per line from stdin. A blank line or end of input stops.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.restClient()
			if err != nil {
				return err
			}
			walker, err := prompt.NewWalker(cmd.Context(), client)
			if err != nil {
				return err
			}

			theme, done := app.theme(cmd)
			defer done()
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())
			for {
				p, ok := walker.Current()
				if !ok {
					fmt.Fprintln(out, "All prompts answered.")
					return nil
				}
				if err := theme.Prompt(out, p, walker.Remaining()); err != nil {
					return err
				}
				if !in.Scan() {
					return in.Err()
				}
				answer := strings.TrimSpace(in.Text())
				if answer == "" {
					return nil
				}
				if err := walker.Answer(cmd.Context(), answer); err != nil {
					return err
				}
			}
		},
	}
}
