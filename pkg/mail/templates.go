/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package mail

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
)

type NotificationMailParams struct {
	User           string
	Message        string
	NotificationID string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	BrandingName   string
	Subject        string
}

const subjectMessageLength = 60

var (
	notificationTemplate = template.New("notification").Funcs(sprig.FuncMap())

	//go:embed templates/notification.html
	notificationTemplateRaw string
)

func init() {
	if _, err := notificationTemplate.Parse(notificationTemplateRaw); err != nil {
		panic(err)
	}
}

func render(t *template.Template, p any) (string, error) {
	b := bytes.Buffer{}
	err := t.Execute(&b, p)
	return b.String(), err
}

// NotificationSubject builds the subject line for a deferred notification mail.
// Long messages are shortened and line breaks collapsed.
func NotificationSubject(message string) string {
	flat := strings.Join(strings.Fields(message), " ")
	if r := []rune(flat); len(r) > subjectMessageLength {
		flat = string(r[:subjectMessageLength-3]) + "..."
	}
	if flat == "" {
		return "New notification"
	}
	return fmt.Sprintf("New notification: %s", flat)
}

// RenderNotificationMail renders the HTML body for a deferred notification.
// An empty Subject is filled from the message.
func RenderNotificationMail(p NotificationMailParams) (string, error) {
	if p.Subject == "" {
		p.Subject = NotificationSubject(p.Message)
	}
	return render(notificationTemplate, p)
}
