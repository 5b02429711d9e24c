// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	notifyctlcmd "github.com/telekom/notification-service/pkg/notifyctl/cmd"
)

func main() {
	root := notifyctlcmd.NewRootCommand(notifyctlcmd.DefaultConfig())
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
