package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ultramdmemo/internal/settings"
	"ultramdmemo/internal/transform"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change transform defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}
	cmd.AddCommand(newSettingsShowCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current defaults as JSON",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *settings.Store
			return withApp(cmd.Context(), func() error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(store.Load())
			}, &store)
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		intent string
		mode   string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more defaults",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("intent") && !flags.Changed("mode") && !flags.Changed("raw") {
				_ = cmd.Usage()
				return errUsage
			}

			var store *settings.Store
			return withApp(cmd.Context(), func() error {
				s := store.Load()
				var err error
				if flags.Changed("intent") {
					if s.DefaultIntent, err = transform.ParseIntent(intent); err != nil {
						return err
					}
				}
				if flags.Changed("mode") {
					if s.DefaultMode, err = transform.ParseMode(mode); err != nil {
						return err
					}
				}
				if flags.Changed("raw") {
					s.DefaultIncludeRaw = raw
				}
				if err := store.Save(s); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "saved", store.Path())
				return nil
			}, &store)
		},
	}
	cmd.Flags().StringVar(&intent, "intent", "", "Default document kind")
	cmd.Flags().StringVar(&mode, "mode", "", "Default detail level")
	cmd.Flags().BoolVar(&raw, "raw", false, "Include the original text by default")
	return cmd
}
