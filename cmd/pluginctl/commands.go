package main

import (
	"fmt"
	"text/tabwriter"

	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"
	"payhost-backend/internal/services"

	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plugin settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := opts.connect(false); err != nil {
				return err
			}
			settings, err := services.ListPluginSettings()
			if err != nil {
				return err
			}
			return printSettings(cmd, settings)
		},
	}
}

func printSettings(cmd *cobra.Command, settings []models.PluginSetting) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tNAME\tMODE\tENABLED")
	for _, s := range settings {
		mode := "production"
		if s.Debug {
			mode = "sandbox"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.Platform, s.Name, mode, s.Enable)
	}
	return w.Flush()
}

func newDebugCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "debug <platform> <on|off>",
		Short: "Switch one plugin between sandbox (on) and production (off)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := payment.ParsePlatformType(args[0])
			if err != nil {
				return err
			}
			debug, err := parseMode(args[1])
			if err != nil {
				return err
			}

			registry, err := opts.connect(true)
			if err != nil {
				return err
			}
			meta := services.DebugChangeMeta{Operator: opts.operator, Source: models.DebugChangeSourceCLI}
			if err := services.SetPluginDebug(cmd.Context(), registry, platform, debug, meta); err != nil {
				return err
			}

			p, _ := registry.Get(platform)
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now in %s mode\n", platform, payment.Environment(p))
			return nil
		},
	}
}

func newDebugAllCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "debug-all <on|off>",
		Short: "Switch every configured plugin to the same mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, err := parseMode(args[0])
			if err != nil {
				return err
			}

			registry, err := opts.connect(true)
			if err != nil {
				return err
			}
			meta := services.DebugChangeMeta{Operator: opts.operator, Source: models.DebugChangeSourceCLI}
			if err := services.SetAllPluginsDebug(cmd.Context(), registry, debug, meta); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d plugins switched\n", registry.Len())
			return nil
		},
	}
}
