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

package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/telekom/notification-service/pkg/metrics"
)

// Recorder accepts audit events. Record never blocks the caller.
type Recorder interface {
	Record(event *Event)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(*Event) {}

// AsyncRecorder buffers events and fans them out to its sinks from a single
// worker goroutine. A full buffer drops the event.
type AsyncRecorder struct {
	sinks        []Sink
	queue        chan *Event
	logger       *zap.Logger
	writeTimeout time.Duration

	// writeCtx parents every sink write; cancelWrites abandons delivery.
	writeCtx     context.Context
	cancelWrites context.CancelFunc

	mu        sync.RWMutex
	stopped   bool
	done      chan struct{}
	closeOnce sync.Once
}

// NewAsyncRecorder starts the worker. Stop must be called to flush and close sinks.
func NewAsyncRecorder(sinks []Sink, bufferSize int, logger *zap.Logger) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	r := &AsyncRecorder{
		sinks:        sinks,
		queue:        make(chan *Event, bufferSize),
		logger:       logger.Named("audit-recorder"),
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}
	r.writeCtx, r.cancelWrites = context.WithCancel(context.Background())
	go r.run()
	return r
}

// Record enqueues event for delivery.
func (r *AsyncRecorder) Record(event *Event) {
	if event == nil {
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		metrics.AuditEventsDropped.Inc()
		return
	}
	select {
	case r.queue <- event:
	default:
		metrics.AuditEventsDropped.Inc()
		r.logger.Warn("audit buffer full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for event := range r.queue {
		if r.writeCtx.Err() != nil {
			metrics.AuditEventsDropped.Inc()
			continue
		}
		r.deliver(event)
	}
}

func (r *AsyncRecorder) deliver(event *Event) {
	for _, s := range r.sinks {
		if r.writeCtx.Err() != nil {
			return
		}
		ctx, cancel := context.WithTimeout(r.writeCtx, r.writeTimeout)
		err := s.Write(ctx, event)
		cancel()
		if err != nil {
			metrics.AuditEventsFailed.WithLabelValues(s.Name()).Inc()
			r.logger.Warn("audit sink write failed",
				zap.String("sink", s.Name()),
				zap.String("event_id", event.ID),
				zap.Error(err))
			continue
		}
		metrics.AuditEventsWritten.WithLabelValues(s.Name()).Inc()
	}
}

// Stop stops accepting events, delivers what is buffered and closes the sinks.
// If ctx ends first, the write in progress is cancelled and remaining events
// are dropped. Sinks are closed only after the worker has exited.
func (r *AsyncRecorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.queue)
	}
	r.mu.Unlock()

	var err error
	select {
	case <-r.done:
	case <-ctx.Done():
		err = ctx.Err()
		r.cancelWrites()
		<-r.done
	}
	r.cancelWrites()
	r.closeOnce.Do(func() {
		for _, s := range r.sinks {
			if cerr := s.Close(); cerr != nil {
				r.logger.Warn("failed to close audit sink", zap.String("sink", s.Name()), zap.Error(cerr))
			}
		}
	})
	return err
}
