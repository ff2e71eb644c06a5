package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ultramdmemo/internal/settings"
	"ultramdmemo/internal/transform"
)

func newTransformCmd() *cobra.Command {
	var (
		file      string
		intent    string
		mode      string
		raw       bool
		titleHint string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "transform [-]",
		Short: "Transform a note read from --file or stdin and save it to history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] != "-" {
				_ = cmd.Usage()
				return errUsage
			}

			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			var (
				svc   *transform.Service
				prefs *settings.Store
			)
			return withApp(cmd.Context(), func() error {
				req := prefs.Load().Request(text)
				req.TitleHint = titleHint
				if cmd.Flags().Changed("intent") {
					if req.Intent, err = transform.ParseIntent(intent); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("mode") {
					if req.Mode, err = transform.ParseMode(mode); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("raw") {
					req.IncludeRaw = raw
				}

				res, err := svc.Transform(cmd.Context(), req)
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}

				fmt.Fprint(cmd.OutOrStdout(), res.Markdown)
				if !strings.HasSuffix(res.Markdown, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				for _, w := range res.Meta.Warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%s)\n", res.Meta.ID, res.Meta.Title)
				return nil
			}, &svc, &prefs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the note from this file instead of stdin")
	cmd.Flags().StringVar(&intent, "intent", "", "Document kind: "+joinIntents())
	cmd.Flags().StringVar(&mode, "mode", "", "Detail level: "+joinModes())
	cmd.Flags().BoolVar(&raw, "raw", false, "Append the original text as a section")
	cmd.Flags().StringVar(&titleHint, "title-hint", "", "Hint for the generated title")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result and metadata as JSON")
	return cmd
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file != "" && file != "-" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(b), nil
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func joinIntents() string {
	parts := make([]string, 0, len(transform.Intents()))
	for _, i := range transform.Intents() {
		parts = append(parts, string(i))
	}
	return strings.Join(parts, ", ")
}

func joinModes() string {
	parts := make([]string, 0, len(transform.Modes()))
	for _, m := range transform.Modes() {
		parts = append(parts, string(m))
	}
	return strings.Join(parts, ", ")
}
