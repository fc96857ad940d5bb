// api/notifier/queue.go
package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
)

// Delivery is one notification bound for one subscriber.
type Delivery struct {
	Subscription *model.Subscription
	Verb         model.Verb
	Resource     model.Entity
}

const workerBuffer = 64

// Queue decouples notification delivery from the request path. One worker
// goroutine per contact keeps deliveries to a given subscriber in the order
// the triggering mutations committed; there is no ordering across
// subscribers. Deferred deliveries are deduplicated per subscription and
// resource so a rate-limited subscriber sees each triggering state at most
// once.
type Queue struct {
	sender Sender

	mu       sync.Mutex
	workers  map[string]chan Delivery
	deferred map[string]*deferredDelivery
	closed   bool
	wg       sync.WaitGroup
}

type deferredDelivery struct {
	timer    *time.Timer
	delivery Delivery
}

func NewQueue(sender Sender) *Queue {
	return &Queue{
		sender:   sender,
		workers:  make(map[string]chan Delivery),
		deferred: make(map[string]*deferredDelivery),
	}
}

// Enqueue hands a delivery to the subscriber's worker. The request path never
// blocks on a slow subscriber: when the worker's buffer is full the delivery
// is dropped and logged.
func (q *Queue) Enqueue(d Delivery) {
	contact := ""
	if d.Subscription.Contact != nil {
		contact = *d.Subscription.Contact
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	ch, ok := q.workers[contact]
	if !ok {
		ch = make(chan Delivery, workerBuffer)
		q.workers[contact] = ch
		q.wg.Add(1)
		go q.run(ch)
	}
	// The send happens under the mutex so Close cannot close the channel
	// between the closed check and the send. The send never blocks: the
	// worker drains the buffer without taking the mutex.
	select {
	case ch <- d:
		q.mu.Unlock()
	default:
		q.mu.Unlock()
		logger.Warn("Notification dropped, subscriber queue full",
			zap.String("contact", contact),
			zap.String("resource", d.Resource.Base().URI))
	}
}

// EnqueueAfter schedules a deferred delivery. A later deferral for the same
// subscription and resource replaces the pending payload instead of adding a
// second delivery.
func (q *Queue) EnqueueAfter(wait time.Duration, d Delivery) {
	key := d.Subscription.URI + "|" + d.Resource.Base().URI

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if pending, ok := q.deferred[key]; ok {
		pending.delivery = d
		return
	}
	entry := &deferredDelivery{delivery: d}
	entry.timer = time.AfterFunc(wait, func() {
		q.mu.Lock()
		pending, ok := q.deferred[key]
		if ok {
			delete(q.deferred, key)
		}
		q.mu.Unlock()
		if ok {
			q.Enqueue(pending.delivery)
		}
	})
	q.deferred[key] = entry
}

func (q *Queue) run(ch chan Delivery) {
	defer q.wg.Done()
	for d := range ch {
		if err := q.sender.Deliver(context.Background(), d.Subscription, d.Verb, d.Resource); err != nil {
			logger.Warn("Notification delivery failed",
				zap.Error(err),
				zap.String("subscription", d.Subscription.URI),
				zap.String("resource", d.Resource.Base().URI))
		}
	}
}

// Close flushes pending deferrals, stops the workers and waits for in-flight
// deliveries.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	var flush []Delivery
	for key, pending := range q.deferred {
		pending.timer.Stop()
		flush = append(flush, pending.delivery)
		delete(q.deferred, key)
	}
	// Closing under the mutex pairs with the locked send in Enqueue; any
	// Enqueue that slipped past the closed flag has already finished its send.
	for _, ch := range q.workers {
		close(ch)
	}
	q.mu.Unlock()

	for _, d := range flush {
		// Deliver synchronously; the workers may already be draining.
		if err := q.sender.Deliver(context.Background(), d.Subscription, d.Verb, d.Resource); err != nil {
			logger.Warn("Deferred notification delivery failed on shutdown", zap.Error(err))
		}
	}
	q.wg.Wait()
}
