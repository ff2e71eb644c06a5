package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ultramdmemo/internal/history"
	"ultramdmemo/internal/pkg/render"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show, search and delete saved transforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryDeleteCmd(),
		newHistorySearchCmd(),
		newHistoryReindexCmd(),
		newHistoryMigrationsCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved transforms, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				items, err := store.LoadIndex(cmd.Context())
				if err != nil {
					return err
				}
				return printMetas(cmd.OutOrStdout(), items, asJSON)
			}, &store)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newHistorySearchCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find saved transforms by title",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				items, err := store.Search(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printMetas(cmd.OutOrStdout(), items, asJSON)
			}, &store)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		asHTML bool
		input  bool
	)
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved transform",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				entry, err := store.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case input:
					fmt.Fprint(out, entry.Input)
				case asHTML:
					html, err := render.MarkdownToHTML(entry.Output)
					if err != nil {
						return err
					}
					fmt.Fprint(out, html)
				default:
					fmt.Fprint(out, entry.Output)
				}
				return nil
			}, &store)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the Markdown as HTML")
	cmd.Flags().BoolVar(&input, "input", false, "Print the original input instead")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved transform",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
				return nil
			}, &store)
		},
	}
}

func newHistoryReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search catalog from the saved files",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				n, err := store.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d entries\n", n)
				return nil
			}, &store)
		},
	}
}

func newHistoryMigrationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrations",
		Short: "Show the search catalog schema migrations",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var store *history.Store
			return withApp(cmd.Context(), func() error {
				statuses, err := store.Migrations(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")
				for _, st := range statuses {
					state, at := "pending", "-"
					if st.Applied {
						state = "applied"
						at = st.AppliedAt.Local().Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Version, state, at, st.Source)
				}
				return tw.Flush()
			}, &store)
		},
	}
}

func printMetas(w io.Writer, items []history.Meta, asJSON bool) error {
	if asJSON {
		if items == nil {
			items = []history.Meta{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tINTENT\tWARNINGS\tTITLE")
	for _, m := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			m.ID,
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			m.Intent,
			len(m.Warnings),
			m.Title,
		)
	}
	return tw.Flush()
}
