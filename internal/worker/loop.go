// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worker

import (
	"context"
	"time"

	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/bus"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/log"
	"github.com/Informasjonsforvaltning/fdk-mqa-scoring-service/internal/metrics"
)

// maxAttempts and retryDelay bound a message's total handling time to
// ~15s, absorbing brief downstream outages without blocking a partition
// indefinitely.
const (
	maxAttempts = 5
	retryDelay  = 3 * time.Second
	pollTimeout = time.Second
)

// WorkerLoop drains one consumer, applying bounded retries per message and
// storing the offset only once a message is fully handled.
type WorkerLoop struct {
	consumer *bus.Consumer
	handler  *EventHandler
	metrics  *metrics.Metrics
	id       int
}

// NewWorkerLoop builds one worker's loop. id is used only for logging.
func NewWorkerLoop(id int, consumer *bus.Consumer, handler *EventHandler, m *metrics.Metrics) *WorkerLoop {
	return &WorkerLoop{id: id, consumer: consumer, handler: handler, metrics: m}
}

// Run drains the consumer until ctx is cancelled or the transport reports a
// fatal error, in which case it returns that error for the caller to decide
// whether to restart the process.
func (w *WorkerLoop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := w.consumer.Poll(pollTimeout)
		if err != nil {
			return err
		}
		if msg == nil {
			continue
		}
		w.processMessage(ctx, msg)
	}
}

func (w *WorkerLoop) processMessage(ctx context.Context, msg *bus.Message) {
	start := time.Now()

	var lastErr error
	success := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = w.handler.Handle(ctx, msg.Value)
		if lastErr == nil {
			success = true
			break
		}
		if attempt < maxAttempts {
			time.Sleep(retryDelay)
		}
	}

	elapsed := time.Since(start).Seconds()
	if success {
		if err := w.consumer.StoreOffset(msg); err != nil {
			log.Errorf("worker %d: failed to store offset: %v", w.id, err)
		}
		w.metrics.ObserveSuccess(elapsed)
		return
	}

	log.Errorf("worker %d: message failed after %d attempts in %s: %v", w.id, maxAttempts, time.Since(start), lastErr)
	w.metrics.ObserveError(elapsed)
}
