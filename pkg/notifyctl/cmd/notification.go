// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/telekom/notification-service/pkg/notifyctl/client"
	"github.com/telekom/notification-service/pkg/notifyctl/output"
)

func NewNotificationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notification", "n"},
		Short:   "Manage user notifications",
	}
	cmd.AddCommand(
		newNotificationAddCommand(),
		newNotificationListCommand(),
		newNotificationSelectionCommand("read", "Mark notifications as read", func(s *client.NotificationService) selectionFunc { return s.MarkRead }),
		newNotificationSelectionCommand("unread", "Mark notifications as not read", func(s *client.NotificationService) selectionFunc { return s.MarkUnread }),
		newNotificationSelectionCommand("remove", "Remove notifications", func(s *client.NotificationService) selectionFunc { return s.Remove }),
	)
	return cmd
}

func newNotificationAddCommand() *cobra.Command {
	var (
		req      client.AddNotificationRequest
		lifetime time.Duration
		mail     bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a notification for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lifetime") {
				if lifetime < 0 || lifetime%time.Second != 0 {
					return fmt.Errorf("--lifetime must be a non-negative whole number of seconds")
				}
				secs := int64(lifetime / time.Second)
				req.Lifetime = &secs
			}
			if cmd.Flags().Changed("mail") {
				req.DeferToMail = &mail
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			id, err := apiClient.Notifications().Add(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := map[string]string{"id": id}
			return rt.render(out, func(w io.Writer, _ output.Format) {
				_, _ = fmt.Fprintln(w, id)
			})
		},
	}
	cmd.Flags().StringVar(&req.User, "user", "", "Recipient user")
	cmd.Flags().StringVar(&req.Message, "message", "", "Notification text")
	cmd.Flags().DurationVar(&lifetime, "lifetime", 0, "How long the notification stays visible (default 7 days)")
	cmd.Flags().BoolVar(&mail, "mail", false, "Also mail the notification to the user")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newNotificationListCommand() *cobra.Command {
	var (
		users  []string
		ids    []string
		seen   string
		sorts  []string
		offset int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unexpired notifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			q := client.Query{Filter: map[string][]string{}, Offset: offset, Limit: limit}
			if len(users) > 0 {
				q.Filter["user"] = users
			}
			if len(ids) > 0 {
				q.Filter["id"] = ids
			}
			if seen != "" {
				if seen != "true" && seen != "false" {
					return fmt.Errorf("--seen must be true or false")
				}
				q.Filter["seen"] = []string{seen}
			}
			q.Sort, err = parseSortFlags(sorts)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			list, err := apiClient.Notifications().Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			return rt.render(list, func(w io.Writer, format output.Format) {
				if format == output.FormatWide {
					output.WriteNotificationTableWide(w, list)
					return
				}
				output.WriteNotificationTable(w, list)
			})
		},
	}
	cmd.Flags().StringSliceVar(&users, "user", nil, "Only notifications of these users")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Only notifications with these ids")
	cmd.Flags().StringVar(&seen, "seen", "", "Filter by read state: true or false")
	cmd.Flags().StringArrayVar(&sorts, "sort", nil, "Sort as field[:asc|desc], repeatable")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many results")
	cmd.Flags().IntVar(&limit, "limit", 0, "Return at most this many results")
	return cmd
}

// parseSortFlags turns "timestamp:desc" into ["timestamp", "DESC"].
func parseSortFlags(values []string) ([][]string, error) {
	var out [][]string
	for _, v := range values {
		field, dir, hasDir := strings.Cut(v, ":")
		if field == "" {
			return nil, fmt.Errorf("invalid sort %q", v)
		}
		if !hasDir {
			out = append(out, []string{field})
			continue
		}
		dir = strings.ToUpper(dir)
		if dir != "ASC" && dir != "DESC" {
			return nil, fmt.Errorf("invalid sort direction in %q", v)
		}
		out = append(out, []string{field, dir})
	}
	return out, nil
}

type selectionFunc func(ctx context.Context, user string, ids []string) error

func newNotificationSelectionCommand(use, short string, pick func(*client.NotificationService) selectionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " USER [ID...]",
		Short: short + "; without ids all of the user's notifications are selected",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			if err := pick(apiClient.Notifications())(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			target := "all notifications"
			if len(args) > 1 {
				target = fmt.Sprintf("%d notifications", len(args)-1)
			}
			_, _ = fmt.Fprintf(rt.Writer(), "%s: %s of %s\n", use, target, args[0])
			return nil
		},
	}
}

func parsePositiveDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", value)
	}
	return d, nil
}
