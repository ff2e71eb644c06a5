package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("usage")

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		if strings.HasPrefix(err.Error(), "unknown command") {
			_ = root.Help()
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mdmemo",
		Short:         "Turn free-form notes into structured Markdown through the Claude CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}

	rootCmd.AddCommand(
		newSetupCmd(),
		newLoginCmd(),
		newStatusCmd(),
		newVerifyCmd(),
		newTransformCmd(),
		newHistoryCmd(),
		newSettingsCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// exactArgs is cobra.ExactArgs, but reports errUsage so the exit code is 2.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			fmt.Fprintf(cmd.ErrOrStderr(), "accepts %d arg(s), received %d\n", n, len(args))
			_ = cmd.Usage()
			return errUsage
		}
		return nil
	}
}
