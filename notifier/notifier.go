// api/notifier/notifier.go
package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/dao"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
)

// Event is one committed-or-committing resource mutation handed to the
// dispatcher by the lifecycle engine.
type Event struct {
	Verb          model.Verb
	Resource      model.Entity
	CollectionURI string
}

// Dispatcher fans a mutation event out to the live subscriptions of the
// owning collection. It holds no state between calls; rate-limit bookkeeping
// lives on the subscription resources and deferral state in the delivery
// queue. Delivery is best-effort: nothing here can fail the CRUD operation.
type Dispatcher struct {
	queue *Queue
}

func NewDispatcher(queue *Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// Dispatch loads the subscriptions scoped to the event's collection, filters
// each by its criteria and rate limit, and enqueues a notification per
// surviving subscription. Runs inside the triggering request's transaction so
// that subscribers resolved here still see the pre-delete tree.
func (d *Dispatcher) Dispatch(ctx context.Context, tx dao.Tx, event Event) {
	children, err := tx.ListChildren(ctx, event.CollectionURI+model.RefSubscriptions)
	if err != nil {
		logger.Warn("Failed to load subscriptions for notification",
			zap.Error(err),
			zap.String("collection", event.CollectionURI))
		return
	}
	now := time.Now()
	for _, child := range children {
		sub, ok := child.(*model.Subscription)
		if !ok || sub.Expired(now) {
			continue
		}
		if !sub.FilterCriteria.Matches(event.Resource) {
			continue
		}
		d.emit(ctx, tx, sub, event, now)
	}
}

// emit applies the subscription's rate limit and hands the notification to
// the delivery queue, either immediately or deferred within the delay
// tolerance.
func (d *Dispatcher) emit(ctx context.Context, tx dao.Tx, sub *model.Subscription, event Event, now time.Time) {
	delivery := Delivery{
		Subscription: sub.Clone().(*model.Subscription),
		Verb:         event.Verb,
		Resource:     event.Resource.Clone(),
	}

	if sub.MinimalTimeBetweenNotifications == nil || sub.LastNotifiedAt == nil {
		d.record(ctx, tx, sub, now)
		d.queue.Enqueue(delivery)
		return
	}

	interval := time.Duration(*sub.MinimalTimeBetweenNotifications) * time.Millisecond
	nextAllowed := sub.LastNotifiedAt.Add(interval)
	if !now.Before(nextAllowed) {
		d.record(ctx, tx, sub, now)
		d.queue.Enqueue(delivery)
		return
	}

	wait := nextAllowed.Sub(now)
	if sub.DelayTolerance != nil && time.Duration(*sub.DelayTolerance)*time.Millisecond >= wait {
		// Book the deferred slot now so a burst of mutations cannot schedule
		// more than one delivery per subscriber per interval.
		d.record(ctx, tx, sub, nextAllowed)
		d.queue.EnqueueAfter(wait, delivery)
		return
	}

	logger.Debug("Notification suppressed by rate limit",
		zap.String("subscription", sub.URI),
		zap.String("resource", event.Resource.Base().URI))
}

func (d *Dispatcher) record(ctx context.Context, tx dao.Tx, sub *model.Subscription, at time.Time) {
	sub.LastNotifiedAt = &at
	if err := tx.Update(ctx, sub); err != nil {
		logger.Warn("Failed to record notification time",
			zap.Error(err),
			zap.String("subscription", sub.URI))
	}
}
