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
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/metrics"
)

const defaultQueueSize = 100

// QueueItem is a deferred sendMail request.
type QueueItem struct {
	ID        string
	Request   Request
	CreatedAt time.Time
}

// Queue sends mail asynchronously through a Mailer. Every item gets exactly
// one attempt; failures are logged and counted.
type Queue struct {
	mailer       Mailer
	queue        chan *QueueItem
	log          *zap.SugaredLogger
	maxQueueSize int

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewQueue creates a queue holding at most maxQueueSize pending items.
func NewQueue(mailer Mailer, log *zap.SugaredLogger, maxQueueSize int) *Queue {
	if maxQueueSize <= 0 {
		maxQueueSize = defaultQueueSize
	}
	log = log.Named("mail-queue")
	log.Infow("Initializing mail queue", "maxQueueSize", maxQueueSize)

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		mailer:       mailer,
		queue:        make(chan *QueueItem, maxQueueSize),
		log:          log,
		maxQueueSize: maxQueueSize,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins the background worker.
func (q *Queue) Start() {
	q.wg.Add(1)
	go q.worker()
	q.log.Info("Mail queue worker started")
}

// Enqueue schedules req. It never blocks: a full or stopped queue drops the
// item and returns an error.
func (q *Queue) Enqueue(id string, req Request) error {
	if len(ParseRecipients(req.Address)) == 0 {
		metrics.MailQueueDropped.Inc()
		q.log.Errorw("Cannot enqueue email: empty address", "id", id, "subject", req.Subject)
		return fmt.Errorf("%w: cannot enqueue email with no recipients", ErrValidation)
	}

	select {
	case <-q.ctx.Done():
		metrics.MailQueueDropped.Inc()
		q.log.Errorw("Cannot enqueue, queue is shutting down", "id", id)
		return fmt.Errorf("queue is shutting down")
	default:
	}

	item := &QueueItem{ID: id, Request: req, CreatedAt: time.Now()}
	select {
	case q.queue <- item:
		metrics.MailQueued.Inc()
		metrics.MailQueueDepth.Set(float64(len(q.queue)))
		q.log.Debugw("Email queued for sending", "id", id, "address", req.Address, "subject", req.Subject)
		return nil
	default:
		metrics.MailQueueDropped.Inc()
		q.log.Errorw("Mail queue is full, dropping message",
			"id", id,
			"address", req.Address,
			"queueSize", q.maxQueueSize)
		return fmt.Errorf("mail queue is full (capacity: %d)", q.maxQueueSize)
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			q.log.Errorw("panic in mail queue worker recovered", "panic", r)
			q.wg.Add(1)
			go q.worker()
		}
	}()

	for {
		select {
		case <-q.ctx.Done():
			q.log.Info("Mail queue worker shutting down")
			q.drain()
			return
		case item := <-q.queue:
			metrics.MailQueueDepth.Set(float64(len(q.queue)))
			q.process(item)
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case item := <-q.queue:
			metrics.MailQueueDepth.Set(float64(len(q.queue)))
			q.process(item)
		default:
			return
		}
	}
}

func (q *Queue) process(item *QueueItem) {
	if item == nil {
		return
	}
	q.log.Debugw("Processing queued email", "id", item.ID, "address", item.Request.Address)

	// The worker context is already cancelled while draining.
	res, err := q.mailer.SendMail(context.Background(), item.Request)
	if err != nil {
		q.log.Warnw("Queued email could not be sent",
			"id", item.ID,
			"address", item.Request.Address,
			"subject", item.Request.Subject,
			"error", err)
		return
	}
	q.log.Infow("Queued email processed",
		"id", item.ID,
		"address", item.Request.Address,
		"suppressed", res.Suppressed,
		"queuedFor", time.Since(item.CreatedAt).String())
}

// Stop cancels the worker after it has handled everything already queued.
func (q *Queue) Stop(ctx context.Context) error {
	q.log.Info("Stopping mail queue")
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.log.Info("Mail queue stopped gracefully")
		return nil
	case <-ctx.Done():
		q.log.Warnw("Mail queue shutdown timeout, some items may not have been processed", "pending", q.Length())
		return ctx.Err()
	}
}

// Length returns the number of pending items.
func (q *Queue) Length() int {
	return len(q.queue)
}
