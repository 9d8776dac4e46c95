package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harrisonrobin/aide/pkg/settings"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Appearance and assistant settings",
	}
	cmd.AddCommand(newSettingsShowCmd(app))
	cmd.AddCommand(newSettingsSetCmd(app))
	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := settings.NewStore()
			if err != nil {
				return err
			}
			s := st.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "dark-mode: %s\n", onOff(s.DarkMode))
			fmt.Fprintf(out, "high-contrast: %s\n", onOff(s.HighContrast))
			fmt.Fprintf(out, "autonomous: %s\n", onOff(s.Autonomous))
			return nil
		},
	}
}

func newSettingsSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "set <dark-mode|high-contrast|autonomous> <on|off>",
		Short:     "Change a setting",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"dark-mode", "high-contrast", "autonomous"},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseOnOff(args[1])
			if err != nil {
				return err
			}
			st, err := settings.NewStore()
			if err != nil {
				return err
			}
			switch args[0] {
			case "dark-mode":
				st.SetDarkMode(value)
			case "high-contrast":
				st.SetHighContrast(value)
			case "autonomous":
				client, err := app.restClient()
				if err != nil {
					return err
				}
				if err := st.SetAutonomous(cmd.Context(), value, client); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown setting %q", args[0])
			}
			if err := st.Save(); err != nil {
				return fmt.Errorf("error saving settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], onOff(value))
			return nil
		},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q: expected on or off", s)
	}
	return v, nil
}
