// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/notification-service/pkg/notifyctl/auth"
	"github.com/telekom/notification-service/pkg/notifyctl/output"
)

func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store a bearer token for the current context",
		Long:  "Stores a bearer token in the OS keyring. Without --token or NOTIFYCTL_TOKEN the token is read from stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := rt.ResolveContextName()
			if name == "" {
				return errors.New("no context configured; run 'notifyctl config set-context' first")
			}
			if _, err := rt.cfg.FindContext(name); err != nil {
				return err
			}
			token := rt.tokenOverride
			if token == "" {
				token, err = readToken(rt.reader)
				if err != nil {
					return err
				}
			}
			if err := rt.tokens.Save(name, token); err != nil {
				return err
			}
			msg := fmt.Sprintf("Token stored for context %q", name)
			if info, inspectErr := auth.InspectToken(token); inspectErr == nil {
				if info.Subject != "" {
					msg += fmt.Sprintf(" (subject %s)", info.Subject)
				}
				if info.Expired(time.Now()) {
					msg += "; warning: token is already expired"
				}
			}
			_, _ = fmt.Fprintln(rt.Writer(), msg)
			return nil
		},
	}
}

func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("no token provided")
	}
	return line, nil
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token of the current context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			name := rt.ResolveContextName()
			if name == "" {
				return errors.New("no context configured")
			}
			if err := rt.tokens.Delete(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Logged out of context %q\n", name)
			return nil
		},
	}
}

func NewWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the active token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			ctxCfg, err := rt.ResolveContext()
			if err != nil {
				return err
			}
			token, err := resolveToken(rt, ctxCfg != nil)
			if err != nil {
				return err
			}
			if token == "" {
				return errors.New("no token available")
			}
			info, err := auth.InspectToken(token)
			if err != nil {
				return err
			}
			return rt.render(info, func(w io.Writer, _ output.Format) {
				expiry := "-"
				if !info.Expiry.IsZero() {
					expiry = info.Expiry.Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(w, "subject: %s\nemail: %s\nexpires: %s\n", info.Subject, info.Email, expiry)
			})
		},
	}
}
