// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailMetricsExistAndIncrement(t *testing.T) {
	host := "metrics-test.example.com"

	before := testutil.ToFloat64(MailSent.WithLabelValues(host))
	MailSent.WithLabelValues(host).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MailSent.WithLabelValues(host)))

	before = testutil.ToFloat64(MailFailed.WithLabelValues(host))
	MailFailed.WithLabelValues(host).Add(2)
	assert.Equal(t, before+2, testutil.ToFloat64(MailFailed.WithLabelValues(host)))

	before = testutil.ToFloat64(MailSuppressed)
	MailSuppressed.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MailSuppressed))
}

func TestLabelCardinality(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("metric panicked on label values: %v", r)
		}
	}()
	AssigneeGroupMutations.WithLabelValues("set").Inc()
	AuditEventsWritten.WithLabelValues("log").Inc()
	APIRequests.WithLabelValues("/api/mail/send", "200").Inc()
	APIRateLimited.WithLabelValues("authenticated").Inc()
	ConfigReloads.WithLabelValues("success").Inc()
}

func TestMetricsHandlerExposesNotifierMetrics(t *testing.T) {
	MailSuppressed.Inc()

	srv := httptest.NewServer(MetricsHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "notifier_mail_suppressed_total")
}
