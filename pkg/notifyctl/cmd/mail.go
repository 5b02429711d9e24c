// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/telekom/notification-service/pkg/notifyctl/client"
	"github.com/telekom/notification-service/pkg/notifyctl/output"
)

func NewMailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Send mails through the notification service",
	}
	cmd.AddCommand(newMailSendCommand())
	return cmd
}

func newMailSendCommand() *cobra.Command {
	var (
		req      client.SendMailRequest
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a mail; identical mails within 24h are suppressed by the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if bodyFile != "" {
				if req.Body != "" {
					return errors.New("--body and --body-file are mutually exclusive")
				}
				content, err := readBody(rt.reader, bodyFile)
				if err != nil {
					return err
				}
				req.Body = content
			}
			if req.Address == "" {
				return errors.New("--to is required")
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			res, err := apiClient.Mail().Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			return rt.render(res, func(w io.Writer, _ output.Format) {
				output.WriteMailResult(w, res)
			})
		},
	}
	cmd.Flags().StringVar(&req.Address, "to", "", "Comma or semicolon separated recipients")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "Mail subject")
	cmd.Flags().StringVar(&req.Body, "body", "", "Mail body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the body from a file, or - for stdin")
	cmd.Flags().StringVar(&req.FromAddress, "from", "", "Sender address overriding the configured default")
	return cmd
}

func readBody(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read body from stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read body file: %w", err)
	}
	return string(content), nil
}
