// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "missing server", wantErr: true},
		{name: "relative server", opts: []Option{WithServer("notify.example.com")}, wantErr: true},
		{name: "valid", opts: []Option{WithServer("https://example.com/"), WithToken("test-token")}},
		{name: "custom user agent", opts: []Option{WithServer("https://example.com"), WithUserAgent("test-agent")}},
		{name: "bad timeout", opts: []Option{WithServer("https://example.com"), WithTimeout(0)}, wantErr: true},
		{name: "missing ca file", opts: []Option{WithServer("https://example.com"), WithTLSConfig("/does/not/exist", false)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, c)
			} else {
				require.NoError(t, err)
				require.NotNil(t, c)
			}
		})
	}
}

func TestServerTrimsTrailingSlash(t *testing.T) {
	c, err := New(WithServer("https://example.com/notify/"))
	require.NoError(t, err)
	require.Equal(t, "https://example.com/notify", c.Server())
}

func TestLoadTLSConfigRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))
	_, err := loadTLSConfig(path, false)
	require.Error(t, err)

	cfg, err := loadTLSConfig("", true)
	require.NoError(t, err)
	require.True(t, cfg.InsecureSkipVerify)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(WithServer(srv.URL), WithToken("test-token"), WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestMailSend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/mail/send", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body SendMailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@example.com", body.Address)
		writeJSON(w, http.StatusOK, MailResult{Message: "Email sent", Info: &SendInfo{Host: "smtp", Port: 25}})
	})

	res, err := c.Mail().Send(context.Background(), SendMailRequest{Address: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	require.Equal(t, "Email sent", res.Message)
	require.Equal(t, "smtp", res.Info.Host)
}

func TestAssigneeGroups(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/assigneeGroups":
			writeJSON(w, http.StatusOK, map[string][]string{"ops": {"alice", "bob"}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/assigneeGroups/ops":
			writeJSON(w, http.StatusOK, []string{"alice", "bob"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/assigneeGroups/missing":
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignee group \"missing\" not found", "code": "NOT_FOUND"})
		case r.Method == http.MethodPut && r.URL.Path == "/api/assigneeGroups/ops":
			var body struct {
				Users []string `json:"users"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, []string{}, body.Users)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/assigneeGroups/ops":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/alice/assigneeGroups":
			writeJSON(w, http.StatusOK, map[string][]string{"ops": {"alice"}})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})
	ctx := context.Background()
	groups := c.AssigneeGroups()

	all, err := groups.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, all["ops"])

	users, err := groups.Get(ctx, "ops")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, users)

	_, err = groups.Get(ctx, "missing")
	require.Error(t, err)
	require.True(t, IsNotFound(err))
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, "NOT_FOUND", httpErr.Code)

	require.NoError(t, groups.Set(ctx, "ops", nil))
	require.NoError(t, groups.Delete(ctx, "ops"))

	mine, err := groups.ForUser(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, mine, "ops")
}

func TestNotifications(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/notifications":
			var body AddNotificationRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "bob", body.User)
			require.NotNil(t, body.Lifetime)
			require.EqualValues(t, 60, *body.Lifetime)
			writeJSON(w, http.StatusCreated, map[string]string{"id": "n-1"})
		case "/api/notifications/query":
			var q Query
			require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			require.Equal(t, []string{"bob"}, q.Filter["user"])
			writeJSON(w, http.StatusOK, []Notification{{ID: "n-1", User: "bob", Message: "hi", Timestamp: now, Expiration: now.Add(time.Minute)}})
		case "/api/notifications/read", "/api/notifications/unread", "/api/notifications/remove":
			var sel selection
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sel))
			require.Equal(t, "bob", sel.User)
			require.NotNil(t, sel.IDs)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()
	svc := c.Notifications()

	lifetime := int64(60)
	id, err := svc.Add(ctx, AddNotificationRequest{User: "bob", Message: "hi", Lifetime: &lifetime})
	require.NoError(t, err)
	require.Equal(t, "n-1", id)

	list, err := svc.Query(ctx, Query{Filter: map[string][]string{"user": {"bob"}}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, now.Equal(list[0].Timestamp))

	require.NoError(t, svc.MarkRead(ctx, "bob", []string{"n-1"}))
	require.NoError(t, svc.MarkUnread(ctx, "bob", nil))
	require.NoError(t, svc.Remove(ctx, "bob", nil))
}

func TestErrorWithoutJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := c.AssigneeGroups().List(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	require.Equal(t, "upstream down", httpErr.Message)
	require.False(t, IsNotFound(err))
}

func TestVerboseLogging(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Request-ID", "cid-42")
		writeJSON(w, http.StatusOK, map[string][]string{})
	}))
	t.Cleanup(srv.Close)

	var lines []string
	c, err := New(WithServer(srv.URL), WithVerbose(func(format string, args ...any) {
		lines = append(lines, format)
		require.Contains(t, args, "cid-42")
	}))
	require.NoError(t, err)

	_, err = c.AssigneeGroups().List(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
}
