// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/telekom/notification-service/pkg/notifyctl/config"
	"github.com/telekom/notification-service/pkg/notifyctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage notifyctl configuration",
	}
	cmd.AddCommand(
		newConfigViewCommand(),
		newConfigGetContextsCommand(),
		newConfigCurrentContextCommand(),
		newConfigSetContextCommand(),
		newConfigUseContextCommand(),
		newConfigDeleteContextCommand(),
		newConfigSetCommand(),
	)
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			if format == output.FormatTable || format == output.FormatWide {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, rt.cfg)
		},
	}
}

func newConfigGetContextsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-contexts",
		Short: "List configured contexts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			current := rt.ResolveContextName()
			return rt.render(rt.cfg.Contexts, func(w io.Writer, _ output.Format) {
				tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "CURRENT\tNAME\tSERVER")
				for _, c := range rt.cfg.Contexts {
					marker := ""
					if c.Name == current {
						marker = "*"
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, c.Name, c.Server)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newConfigCurrentContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Print the active context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := rt.ResolveContextName()
			if name == "" {
				return fmt.Errorf("no context configured")
			}
			_, _ = fmt.Fprintln(rt.Writer(), name)
			return nil
		},
	}
}

func newConfigSetContextCommand() *cobra.Command {
	var (
		server   string
		caFile   string
		insecure bool
		use      bool
	)
	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			ctx := config.Context{Name: args[0], Server: server, CAFile: caFile, InsecureSkipTLSVerify: insecure}
			if existing, findErr := rt.cfg.FindContext(args[0]); findErr == nil {
				if !cmd.Flags().Changed("server") {
					ctx.Server = existing.Server
				}
				if !cmd.Flags().Changed("ca-file") {
					ctx.CAFile = existing.CAFile
				}
				if !cmd.Flags().Changed("insecure-skip-tls-verify") {
					ctx.InsecureSkipTLSVerify = existing.InsecureSkipTLSVerify
				}
			}
			rt.cfg.SetContext(ctx)
			if use || rt.cfg.CurrentContext == "" {
				rt.cfg.CurrentContext = ctx.Name
			}
			if err := rt.saveConfig(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Context %q saved\n", ctx.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Notification service base URL")
	cmd.Flags().StringVar(&caFile, "ca-file", "", "CA bundle for the server certificate")
	cmd.Flags().BoolVar(&insecure, "insecure-skip-tls-verify", false, "Skip server certificate verification")
	cmd.Flags().BoolVar(&use, "use", false, "Make this the current context")
	return cmd
}

func newConfigUseContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if _, err := rt.cfg.FindContext(args[0]); err != nil {
				return err
			}
			rt.cfg.CurrentContext = args[0]
			if err := rt.saveConfig(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Switched to context %q\n", args[0])
			return nil
		},
	}
}

func newConfigDeleteContextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context and its stored token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.cfg.DeleteContext(args[0]); err != nil {
				return err
			}
			if err := rt.saveConfig(); err != nil {
				return err
			}
			if err := rt.tokens.Delete(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Context %q deleted\n", args[0])
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "set KEY VALUE",
		Short:     "Set a setting (output-format, timeout)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"output-format", "timeout"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			switch args[0] {
			case "output-format":
				if _, err := output.ParseFormat(args[1]); err != nil {
					return err
				}
				rt.cfg.Settings.OutputFormat = args[1]
			case "timeout":
				if _, err := parsePositiveDuration(args[1]); err != nil {
					return err
				}
				rt.cfg.Settings.Timeout = args[1]
			default:
				return fmt.Errorf("unknown setting: %s", args[0])
			}
			return rt.saveConfig()
		},
	}
}
