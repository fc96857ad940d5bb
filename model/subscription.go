// api/model/subscription.go
package model

import (
	"strings"
	"time"
)

// SubscriptionTypeAsynchronous is the only subscription mode the directory
// supports; it is server-assigned on creation.
const SubscriptionTypeAsynchronous = "ASYNCHRONOUS"

// FilterCriteria narrows which mutation events under the subscribed
// collection produce a notification. Write-once at creation.
type FilterCriteria struct {
	// SearchStrings matches when the mutated resource advertises at least
	// one of the listed search strings.
	SearchStrings []string `json:"searchStrings,omitempty"`
	// CreatedAfter matches resources created strictly after the instant.
	CreatedAfter *time.Time `json:"createdAfter,omitempty"`
}

// Matches evaluates the criteria against a resource snapshot.
func (f *FilterCriteria) Matches(snapshot Entity) bool {
	if f == nil {
		return true
	}
	if f.CreatedAfter != nil {
		created := snapshot.Base().CreationTime
		if created == nil || !created.After(*f.CreatedAfter) {
			return false
		}
	}
	if len(f.SearchStrings) > 0 {
		advertised := searchStringsOf(snapshot)
		matched := false
		for _, want := range f.SearchStrings {
			for _, have := range advertised {
				if strings.EqualFold(want, have) {
					matched = true
					break
				}
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func searchStringsOf(snapshot Entity) []string {
	switch s := snapshot.(type) {
	case *SclBase:
		return s.SearchStrings
	case *Application:
		return s.SearchStrings
	case *ApplicationAnnc:
		return s.SearchStrings
	}
	return nil
}

// Subscription registers a standing interest in mutations under its parent
// collection. Contact is unique (case-insensitive) among sibling
// subscriptions and immutable after creation.
type Subscription struct {
	base
	Contact          *string         `json:"contact,omitempty"`
	FilterCriteria   *FilterCriteria `json:"filterCriteria,omitempty"`
	SubscriptionType *string         `json:"subscriptionType,omitempty"`
	// MinimalTimeBetweenNotifications is a rate limit in milliseconds.
	MinimalTimeBetweenNotifications *int64 `json:"minimalTimeBetweenNotifications,omitempty"`
	// DelayTolerance, in milliseconds, allows a rate-limited notification to
	// be deferred instead of dropped.
	DelayTolerance *int64 `json:"delayTolerance,omitempty"`

	// LastNotifiedAt is rate-limit bookkeeping maintained by the dispatcher.
	// It never appears on the wire.
	LastNotifiedAt *time.Time `json:"-"`
}

func (s *Subscription) TypeName() string { return TypeSubscription }

func (s *Subscription) Base() *Base { return &s.base }

func (s *Subscription) Present(attr string) bool {
	if p, ok := s.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrContact:
		return s.Contact != nil
	case AttrFilterCriteria:
		return s.FilterCriteria != nil
	case AttrSubscriptionType:
		return s.SubscriptionType != nil
	case AttrMinimalTimeBetweenNotifications:
		return s.MinimalTimeBetweenNotifications != nil
	case AttrDelayTolerance:
		return s.DelayTolerance != nil
	}
	return false
}

// Subscriptions have no child collections.
func (s *Subscription) SetReferences() {}

func (s *Subscription) ClearReferences() {}

func (s *Subscription) Clone() Entity {
	c := &Subscription{
		base:                            s.base.clone(),
		Contact:                         cloneStr(s.Contact),
		SubscriptionType:                cloneStr(s.SubscriptionType),
		MinimalTimeBetweenNotifications: cloneInt64(s.MinimalTimeBetweenNotifications),
		DelayTolerance:                  cloneInt64(s.DelayTolerance),
		LastNotifiedAt:                  cloneTime(s.LastNotifiedAt),
	}
	if s.FilterCriteria != nil {
		c.FilterCriteria = &FilterCriteria{
			SearchStrings: cloneStrs(s.FilterCriteria.SearchStrings),
			CreatedAfter:  cloneTime(s.FilterCriteria.CreatedAfter),
		}
	}
	return c
}
