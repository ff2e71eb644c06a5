package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ultramdmemo/internal/setup"
)

func progressTo(w io.Writer) setup.Progress {
	return setup.ProgressFunc(func(msg string) {
		fmt.Fprintln(w, msg)
	})
}

func newSetupCmd() *cobra.Command {
	var skipLogin bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install the private Node.js runtime and the Claude CLI, then log in",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				prov *setup.Provisioner
				auth *setup.Authenticator
			)
			return withApp(cmd.Context(), func() error {
				progress := progressTo(cmd.ErrOrStderr())
				if skipLogin {
					if err := prov.EnsureRuntime(cmd.Context(), progress); err != nil {
						return err
					}
					return prov.EnsureCliPackage(cmd.Context(), progress)
				}

				ok, err := setup.Bootstrap(cmd.Context(), prov, auth, progress)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("setup finished but the CLI is not logged in")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ready")
				return nil
			}, &prov, &auth)
		},
	}

	cmd.Flags().BoolVar(&skipLogin, "skip-login", false, "Only install the runtime and CLI package")
	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the browser login flow and wait for it to complete",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var auth *setup.Authenticator
			return withApp(cmd.Context(), func() error {
				if err := auth.RunLogin(cmd.Context(), progressTo(cmd.ErrOrStderr())); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "logged in")
				return nil
			}, &auth)
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show runtime, CLI and login state",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				prov *setup.Provisioner
				auth *setup.Authenticator
			)
			return withApp(cmd.Context(), func() error {
				runtimeOK := prov.RuntimeInstalled()
				cliOK := prov.CliInstalled()
				loggedIn := false
				if runtimeOK && cliOK {
					ok, err := auth.IsLoggedIn(cmd.Context())
					if err != nil {
						return err
					}
					loggedIn = ok
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "runtime:   %s\n", yesNo(runtimeOK))
				fmt.Fprintf(out, "cli:       %s\n", yesNo(cliOK))
				fmt.Fprintf(out, "logged in: %s\n", yesNo(loggedIn))
				return nil
			}, &prov, &auth)
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Send a trivial prompt to check connectivity",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var auth *setup.Authenticator
			return withApp(cmd.Context(), func() error {
				ok, err := auth.VerifyConnectivity(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("connectivity check failed")
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}, &auth)
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
