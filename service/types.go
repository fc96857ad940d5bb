// api/service/types.go
package service

import (
	"context"
	"strings"

	"github.com/m2m-works/scld/api/dao"
	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/ids"
	"github.com/m2m-works/scld/api/model"
	"github.com/m2m-works/scld/api/policy"
)

// typeDef is the per-type parametrization of the lifecycle engine: the
// attribute policy table plus the handful of domain hooks that differ
// between resource types. The engine itself is type-agnostic.
type typeDef struct {
	name  string
	table policy.Table

	// collection is the path segment instances live under, e.g.
	// "/subscriptions". Empty for the root descriptor, which is provisioned
	// rather than created.
	collection string

	idPrefix string
	idSuffix string

	// verbs lists the operations allowed for this type; anything else is
	// answered with MethodNotAllowed.
	verbs map[model.Verb]bool

	// carriesAccessRight marks types that hold their own accessRightID;
	// the others are always governed through their ancestors.
	carriesAccessRight bool

	// expires marks types subject to the expiration lifecycle.
	expires bool

	// notifies marks types whose mutations are dispatched to subscribers.
	notifies bool

	// prepare assigns server-side fields at creation (subscription type,
	// channel contact) and rejects values the type cannot provision.
	prepare func(entity model.Entity) error

	// applyUpdate merges the policy-accepted, present fields of delta into
	// the stored entity. Shared attributes (expiration, access right id,
	// timestamps) are handled by the engine.
	applyUpdate func(existing, delta model.Entity)

	// siblingConflict rejects a creation conflicting with a sibling, e.g. a
	// duplicate subscription contact.
	siblingConflict func(ctx context.Context, tx dao.Tx, collectionURI string, delta model.Entity) error

	// eventCollection names the collection a mutation of this entity is
	// scoped to for notification dispatch.
	eventCollection func(entity model.Entity) string
}

func parentCollection(entity model.Entity) string {
	return parentOf(entity.Base().URI)
}

func parentOf(uri string) string {
	i := strings.LastIndex(uri, "/")
	if i < 0 {
		return ""
	}
	return uri[:i]
}

var typeDefs = map[string]*typeDef{
	model.TypeSclBase: {
		name:               model.TypeSclBase,
		table:              policy.SclBase,
		verbs:              map[model.Verb]bool{model.VerbRetrieve: true, model.VerbUpdate: true},
		carriesAccessRight: true,
		notifies:           true,
		applyUpdate: func(existing, delta model.Entity) {
			cur, next := existing.(*model.SclBase), delta.(*model.SclBase)
			if next.SearchStrings != nil {
				cur.SearchStrings = next.SearchStrings
			}
			if next.APocHandling != nil {
				cur.APocHandling = next.APocHandling
			}
		},
		// The root has no owning collection; its subscribers sit directly
		// under it.
		eventCollection: func(entity model.Entity) string { return entity.Base().URI },
	},
	model.TypeApplication: {
		name:               model.TypeApplication,
		table:              policy.Application,
		collection:         model.RefApplications,
		idPrefix:           "APP_",
		verbs:              allVerbs(),
		carriesAccessRight: true,
		expires:            true,
		notifies:           true,
		applyUpdate: func(existing, delta model.Entity) {
			cur, next := existing.(*model.Application), delta.(*model.Application)
			cur.SearchStrings = next.SearchStrings
			if next.APoC != nil {
				cur.APoC = next.APoC
			}
		},
		eventCollection: parentCollection,
	},
	model.TypeApplicationAnnc: {
		name:               model.TypeApplicationAnnc,
		table:              policy.ApplicationAnnc,
		collection:         model.RefApplications,
		idPrefix:           "APP_",
		idSuffix:           "Annc",
		verbs:              allVerbs(),
		carriesAccessRight: true,
		expires:            true,
		notifies:           true,
		applyUpdate: func(existing, delta model.Entity) {
			cur, next := existing.(*model.ApplicationAnnc), delta.(*model.ApplicationAnnc)
			cur.SearchStrings = next.SearchStrings
		},
		eventCollection: parentCollection,
	},
	model.TypeAccessRight: {
		name:       model.TypeAccessRight,
		table:      policy.AccessRight,
		collection: model.RefAccessRights,
		idPrefix:   "AR_",
		verbs:      allVerbs(),
		expires:    true,
		notifies:   true,
		applyUpdate: func(existing, delta model.Entity) {
			cur, next := existing.(*model.AccessRight), delta.(*model.AccessRight)
			if next.Permissions != nil {
				cur.Permissions = next.Permissions
			}
			if next.SelfPermissions != nil {
				cur.SelfPermissions = next.SelfPermissions
			}
		},
		eventCollection: parentCollection,
	},
	model.TypeSubscription: {
		name:       model.TypeSubscription,
		table:      policy.Subscription,
		collection: model.RefSubscriptions,
		idPrefix:   "SUB_",
		verbs:      allVerbs(),
		expires:    true,
		prepare: func(entity model.Entity) error {
			sub := entity.(*model.Subscription)
			subscriptionType := model.SubscriptionTypeAsynchronous
			sub.SubscriptionType = &subscriptionType
			return nil
		},
		applyUpdate: func(existing, delta model.Entity) {
			cur, next := existing.(*model.Subscription), delta.(*model.Subscription)
			if next.MinimalTimeBetweenNotifications != nil {
				cur.MinimalTimeBetweenNotifications = next.MinimalTimeBetweenNotifications
			}
			if next.DelayTolerance != nil {
				cur.DelayTolerance = next.DelayTolerance
			}
		},
		siblingConflict: subscriptionContactConflict,
		eventCollection: parentCollection,
	},
	model.TypeNotificationChannel: {
		name:       model.TypeNotificationChannel,
		table:      policy.NotificationChannel,
		collection: model.RefNotificationChannels,
		idPrefix:   "NC_",
		verbs: map[model.Verb]bool{
			model.VerbCreate:   true,
			model.VerbRetrieve: true,
			model.VerbDelete:   true,
		},
		prepare: func(entity model.Entity) error {
			nc := entity.(*model.NotificationChannel)
			if nc.ChannelType != nil && *nc.ChannelType != model.ChannelTypeLongPolling {
				return scl_errors.BadRequestf("channel type %q is not supported", *nc.ChannelType)
			}
			contact := nc.URI + "/contact"
			data, _ := ids.Generate("", "", nil)
			nc.ContactURI = &contact
			nc.ChannelData = &data
			return nil
		},
		eventCollection: parentCollection,
	},
}

func allVerbs() map[model.Verb]bool {
	return map[model.Verb]bool{
		model.VerbCreate:   true,
		model.VerbRetrieve: true,
		model.VerbUpdate:   true,
		model.VerbDelete:   true,
	}
}

// subscriptionContactConflict enforces case-insensitive contact uniqueness
// among the live subscriptions of one collection.
func subscriptionContactConflict(ctx context.Context, tx dao.Tx, collectionURI string, delta model.Entity) error {
	sub := delta.(*model.Subscription)
	if sub.Contact == nil {
		return nil
	}
	siblings, err := tx.ListChildren(ctx, collectionURI)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		other, ok := sibling.(*model.Subscription)
		if !ok || other.Contact == nil {
			continue
		}
		if strings.EqualFold(*other.Contact, *sub.Contact) {
			return scl_errors.Conflictf("subscription contact %q already exists", *sub.Contact)
		}
	}
	return nil
}
