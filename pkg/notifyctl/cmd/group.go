// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/telekom/notification-service/pkg/notifyctl/output"
)

func NewGroupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Manage assignee groups",
	}
	cmd.AddCommand(
		newGroupListCommand(),
		newGroupGetCommand(),
		newGroupSetCommand(),
		newGroupDeleteCommand(),
		newGroupForUserCommand(),
	)
	return cmd
}

func newGroupListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all assignee groups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			groups, err := apiClient.AssigneeGroups().List(cmd.Context())
			if err != nil {
				return err
			}
			return rt.render(groups, func(w io.Writer, _ output.Format) {
				output.WriteGroupTable(w, groups)
			})
		},
	}
}

func newGroupGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "List the users of an assignee group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			users, err := apiClient.AssigneeGroups().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.render(users, func(w io.Writer, _ output.Format) {
				output.WriteUserList(w, users)
			})
		},
	}
}

func newGroupSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set NAME [USER...]",
		Short: "Replace the members of an assignee group",
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
			if err := apiClient.AssigneeGroups().Set(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Assignee group %q set with %d users\n", args[0], len(args)-1)
			return nil
		},
	}
}

func newGroupDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an assignee group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			if err := apiClient.AssigneeGroups().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Assignee group %q deleted\n", args[0])
			return nil
		},
	}
}

func newGroupForUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "for-user USER",
		Short: "List the assignee groups containing a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			apiClient, err := buildClient(rt)
			if err != nil {
				return err
			}
			groups, err := apiClient.AssigneeGroups().ForUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return rt.render(groups, func(w io.Writer, _ output.Format) {
				output.WriteGroupTable(w, groups)
			})
		},
	}
}
