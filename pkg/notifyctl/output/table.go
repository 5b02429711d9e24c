// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/telekom/notification-service/pkg/notifyctl/client"
)

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
}

func WriteNotificationTable(w io.Writer, notifications []client.Notification) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tUSER\tSEEN\tEXPIRES\tMESSAGE")
	for _, n := range notifications {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", n.ID, n.User, n.Seen, formatTime(n.Expiration), truncate(n.Message, 60))
	}
	_ = tw.Flush()
}

func WriteNotificationTableWide(w io.Writer, notifications []client.Notification) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "ID\tUSER\tSEEN\tMAIL\tCREATED\tEXPIRES\tMESSAGE")
	for _, n := range notifications {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\t%t\t%s\t%s\t%s\n", n.ID, n.User, n.Seen, n.DeferToMail,
			formatTime(n.Timestamp), formatTime(n.Expiration), n.Message)
	}
	_ = tw.Flush()
}

// WriteGroupTable prints groups sorted by name.
func WriteGroupTable(w io.Writer, groups map[string][]string) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "GROUP\tMEMBERS\tUSERS")
	for _, name := range names {
		users := groups[name]
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", name, len(users), joinOrDash(users))
	}
	_ = tw.Flush()
}

func WriteUserList(w io.Writer, users []string) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "USER")
	for _, u := range users {
		_, _ = fmt.Fprintln(tw, u)
	}
	_ = tw.Flush()
}

func WriteMailResult(w io.Writer, res *client.MailResult) {
	tw := newTabWriter(w)
	_, _ = fmt.Fprintln(tw, "RESULT\tSUPPRESSED\tHOST\tRECIPIENTS\tMESSAGE_ID")
	host, recipients, messageID := "-", "-", "-"
	if res.Info != nil {
		host = fmt.Sprintf("%s:%d", res.Info.Host, res.Info.Port)
		recipients = joinOrDash(res.Info.Recipients)
		if res.Info.MessageID != "" {
			messageID = res.Info.MessageID
		}
	}
	_, _ = fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", res.Message, res.Suppressed, host, recipients, messageID)
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ",")
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
