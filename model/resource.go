// api/model/resource.go
package model

import (
	"time"
)

// Verb is one of the generic operations every resource controller accepts.
type Verb string

const (
	VerbCreate   Verb = "CREATE"
	VerbRetrieve Verb = "RETRIEVE"
	VerbUpdate   Verb = "UPDATE"
	VerbDelete   Verb = "DELETE"
	VerbExecute  Verb = "EXECUTE"
)

// Permission is a single access-right bit.
type Permission uint8

const (
	PermCreate Permission = 1 << iota
	PermRead
	PermWrite
	PermDelete
	PermExecute
	PermNotify
)

var permissionNames = map[string]Permission{
	"CREATE":  PermCreate,
	"READ":    PermRead,
	"WRITE":   PermWrite,
	"DELETE":  PermDelete,
	"EXECUTE": PermExecute,
	"NOTIFY":  PermNotify,
}

// ParsePermissions folds a list of permission names into a bitmask. Unknown
// names are ignored so a malformed entry never widens a grant.
func ParsePermissions(names []string) Permission {
	var mask Permission
	for _, n := range names {
		mask |= permissionNames[n]
	}
	return mask
}

// Resource type names. They double as the JSON wrapper key of the wire
// representation, e.g. {"subscription": {...}}.
const (
	TypeSclBase             = "sclBase"
	TypeApplication         = "application"
	TypeApplicationAnnc     = "applicationAnnc"
	TypeAccessRight         = "accessRight"
	TypeSubscription        = "subscription"
	TypeNotificationChannel = "notificationChannel"
)

// Attribute names referenced by the policy tables.
const (
	AttrID                              = "id"
	AttrLink                            = "link"
	AttrContact                         = "contact"
	AttrChannelType                     = "channelType"
	AttrContactURI                      = "contactURI"
	AttrChannelData                     = "channelData"
	AttrAPoC                            = "aPoC"
	AttrAPocHandling                    = "aPocHandling"
	AttrSearchStrings                   = "searchStrings"
	AttrAccessRightID                   = "accessRightID"
	AttrPermissions                     = "permissions"
	AttrSelfPermissions                 = "selfPermissions"
	AttrExpirationTime                  = "expirationTime"
	AttrCreationTime                    = "creationTime"
	AttrLastModifiedTime                = "lastModifiedTime"
	AttrFilterCriteria                  = "filterCriteria"
	AttrSubscriptionType                = "subscriptionType"
	AttrMinimalTimeBetweenNotifications = "minimalTimeBetweenNotifications"
	AttrDelayTolerance                  = "delayTolerance"
	AttrSclsReference                   = "sclsReference"
	AttrApplicationsReference           = "applicationsReference"
	AttrContainersReference             = "containersReference"
	AttrGroupsReference                 = "groupsReference"
	AttrAccessRightsReference           = "accessRightsReference"
	AttrSubscriptionsReference          = "subscriptionsReference"
	AttrNotificationChannelsReference   = "notificationChannelsReference"
	AttrDiscoveryReference              = "discoveryReference"
)

// Child-collection path segments appended to a resource uri when computing
// derived references.
const (
	RefScls                 = "/scls"
	RefApplications         = "/applications"
	RefContainers           = "/containers"
	RefGroups               = "/groups"
	RefAccessRights         = "/accessRights"
	RefSubscriptions        = "/subscriptions"
	RefNotificationChannels = "/notificationChannels"
	RefDiscovery            = "/discovery"
)

// Base carries the attributes shared by every resource in the tree. Pointer
// fields mark wire presence: nil means the client did not supply the
// attribute. URI is composed by the engine as parentUri/id and is never
// accepted from a representation.
type Base struct {
	ID               *string    `json:"id,omitempty"`
	URI              string     `json:"uri,omitempty"`
	AccessRightID    *string    `json:"accessRightID,omitempty"`
	ExpirationTime   *time.Time `json:"expirationTime,omitempty"`
	CreationTime     *time.Time `json:"creationTime,omitempty"`
	LastModifiedTime *time.Time `json:"lastModifiedTime,omitempty"`
}

// base is how entity structs embed Base without the embedded field name
// colliding with the Entity.Base accessor.
type base = Base

// Expired reports whether the resource's expiration time has passed. A
// resource without an expiration never expires.
func (b *Base) Expired(now time.Time) bool {
	return b.ExpirationTime != nil && !b.ExpirationTime.After(now)
}

// Entity is the closed set of resource types the lifecycle engine operates
// on. Concrete types embed Base and add their domain attributes.
type Entity interface {
	// TypeName returns the resource type name, e.g. "subscription".
	TypeName() string
	// Base exposes the shared attributes for the engine to read and assign.
	Base() *Base
	// Present reports wire presence of the named attribute, used by the
	// attribute policy validator.
	Present(attr string) bool
	// SetReferences recomputes the derived child-collection references from
	// the current uri. References are never persisted.
	SetReferences()
	// ClearReferences drops the derived references before persistence.
	ClearReferences()
	// Clone returns a deep copy, keeping store snapshots and notification
	// payloads independent of the request-scoped instance.
	Clone() Entity
}

func strptr(s string) *string { return &s }

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrs(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func (b *Base) clone() Base {
	return Base{
		ID:               cloneStr(b.ID),
		URI:              b.URI,
		AccessRightID:    cloneStr(b.AccessRightID),
		ExpirationTime:   cloneTime(b.ExpirationTime),
		CreationTime:     cloneTime(b.CreationTime),
		LastModifiedTime: cloneTime(b.LastModifiedTime),
	}
}

// basePresent covers the attributes shared through Base. The second return
// reports whether the attribute belongs to Base at all.
func (b *Base) basePresent(attr string) (bool, bool) {
	switch attr {
	case AttrID:
		return b.ID != nil, true
	case AttrAccessRightID:
		return b.AccessRightID != nil, true
	case AttrExpirationTime:
		return b.ExpirationTime != nil, true
	case AttrCreationTime:
		return b.CreationTime != nil, true
	case AttrLastModifiedTime:
		return b.LastModifiedTime != nil, true
	}
	return false, false
}
