// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mail metrics
	MailSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_mail_sent_total",
		Help: "Total number of mails accepted by the SMTP server",
	}, []string{"host"})
	MailFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_mail_failed_total",
		Help: "Total number of mail sends that failed at the transport",
	}, []string{"host"})
	MailSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_mail_suppressed_total",
		Help: "Total number of mails suppressed because identical content was sent within the dedup window",
	})
	DedupCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_dedup_cache_entries",
		Help: "Number of fingerprints currently held by the mail dedup cache",
	})
	DedupCachePurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_dedup_cache_purged_total",
		Help: "Total number of expired fingerprints removed from the dedup cache",
	})

	// Deferred mail queue
	MailQueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_mail_queue_queued_total",
		Help: "Total number of deferred mails put on the queue",
	})
	MailQueueDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_mail_queue_dropped_total",
		Help: "Total number of deferred mails dropped because the queue was full or stopped",
	})
	MailQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notifier_mail_queue_depth",
		Help: "Number of deferred mails waiting to be sent",
	})

	// Notification lifecycle
	NotificationsAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_notifications_added_total",
		Help: "Total number of notifications stored",
	})
	NotificationsRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_notifications_removed_total",
		Help: "Total number of notifications removed on request",
	})
	NotificationsPurged = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_notifications_purged_total",
		Help: "Total number of expired notifications purged",
	})

	// Assignee groups
	AssigneeGroupMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_assignee_group_mutations_total",
		Help: "Total number of assignee group writes by operation",
	}, []string{"operation"})

	// Audit
	AuditEventsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_audit_events_written_total",
		Help: "Total number of audit events written per sink",
	}, []string{"sink"})
	AuditEventsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_audit_events_failed_total",
		Help: "Total number of audit events a sink failed to write",
	}, []string{"sink"})
	AuditEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notifier_audit_events_dropped_total",
		Help: "Total number of audit events dropped because the buffer was full",
	})

	// API
	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_api_requests_total",
		Help: "Total number of API requests by route and status code",
	}, []string{"route", "code"})
	APIRateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_api_rate_limited_total",
		Help: "Total number of API requests rejected by the rate limiter",
	}, []string{"kind"})
	ConfigReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifier_config_reloads_total",
		Help: "Total number of configuration reload attempts by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(MailSent)
	prometheus.MustRegister(MailFailed)
	prometheus.MustRegister(MailSuppressed)
	prometheus.MustRegister(DedupCacheEntries)
	prometheus.MustRegister(DedupCachePurged)
	prometheus.MustRegister(MailQueued)
	prometheus.MustRegister(MailQueueDropped)
	prometheus.MustRegister(MailQueueDepth)
	prometheus.MustRegister(NotificationsAdded)
	prometheus.MustRegister(NotificationsRemoved)
	prometheus.MustRegister(NotificationsPurged)
	prometheus.MustRegister(AssigneeGroupMutations)
	prometheus.MustRegister(AuditEventsWritten)
	prometheus.MustRegister(AuditEventsFailed)
	prometheus.MustRegister(AuditEventsDropped)
	prometheus.MustRegister(APIRequests)
	prometheus.MustRegister(APIRateLimited)
	prometheus.MustRegister(ConfigReloads)
}

// MetricsHandler returns an http.Handler exposing Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
