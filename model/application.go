// api/model/application.go
package model

// Application is a registered application resource, child of an
// applications collection.
type Application struct {
	base
	APoC          *string  `json:"aPoC,omitempty"`
	SearchStrings []string `json:"searchStrings,omitempty"`

	ContainersReference           *string `json:"containersReference,omitempty"`
	GroupsReference               *string `json:"groupsReference,omitempty"`
	AccessRightsReference         *string `json:"accessRightsReference,omitempty"`
	SubscriptionsReference        *string `json:"subscriptionsReference,omitempty"`
	NotificationChannelsReference *string `json:"notificationChannelsReference,omitempty"`
}

func (a *Application) TypeName() string { return TypeApplication }

func (a *Application) Base() *Base { return &a.base }

func (a *Application) Present(attr string) bool {
	if p, ok := a.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrAPoC:
		return a.APoC != nil
	case AttrSearchStrings:
		return a.SearchStrings != nil
	case AttrContainersReference:
		return a.ContainersReference != nil
	case AttrGroupsReference:
		return a.GroupsReference != nil
	case AttrAccessRightsReference:
		return a.AccessRightsReference != nil
	case AttrSubscriptionsReference:
		return a.SubscriptionsReference != nil
	case AttrNotificationChannelsReference:
		return a.NotificationChannelsReference != nil
	}
	return false
}

func (a *Application) SetReferences() {
	a.ContainersReference = strptr(a.URI + RefContainers)
	a.GroupsReference = strptr(a.URI + RefGroups)
	a.AccessRightsReference = strptr(a.URI + RefAccessRights)
	a.SubscriptionsReference = strptr(a.URI + RefSubscriptions)
	a.NotificationChannelsReference = strptr(a.URI + RefNotificationChannels)
}

func (a *Application) ClearReferences() {
	a.ContainersReference = nil
	a.GroupsReference = nil
	a.AccessRightsReference = nil
	a.SubscriptionsReference = nil
	a.NotificationChannelsReference = nil
}

func (a *Application) Clone() Entity {
	c := &Application{
		base:          a.base.clone(),
		APoC:          cloneStr(a.APoC),
		SearchStrings: cloneStrs(a.SearchStrings),
	}
	c.ContainersReference = cloneStr(a.ContainersReference)
	c.GroupsReference = cloneStr(a.GroupsReference)
	c.AccessRightsReference = cloneStr(a.AccessRightsReference)
	c.SubscriptionsReference = cloneStr(a.SubscriptionsReference)
	c.NotificationChannelsReference = cloneStr(a.NotificationChannelsReference)
	return c
}

// ApplicationAnnc is an announced application: a pointer to an application
// hosted on another service capability layer. The link to the original
// resource is immutable after creation.
type ApplicationAnnc struct {
	base
	Link          *string  `json:"link,omitempty"`
	SearchStrings []string `json:"searchStrings,omitempty"`

	ContainersReference   *string `json:"containersReference,omitempty"`
	GroupsReference       *string `json:"groupsReference,omitempty"`
	AccessRightsReference *string `json:"accessRightsReference,omitempty"`
}

func (a *ApplicationAnnc) TypeName() string { return TypeApplicationAnnc }

func (a *ApplicationAnnc) Base() *Base { return &a.base }

func (a *ApplicationAnnc) Present(attr string) bool {
	if p, ok := a.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrLink:
		return a.Link != nil
	case AttrSearchStrings:
		return a.SearchStrings != nil
	case AttrContainersReference:
		return a.ContainersReference != nil
	case AttrGroupsReference:
		return a.GroupsReference != nil
	case AttrAccessRightsReference:
		return a.AccessRightsReference != nil
	}
	return false
}

func (a *ApplicationAnnc) SetReferences() {
	a.ContainersReference = strptr(a.URI + RefContainers)
	a.GroupsReference = strptr(a.URI + RefGroups)
	a.AccessRightsReference = strptr(a.URI + RefAccessRights)
}

func (a *ApplicationAnnc) ClearReferences() {
	a.ContainersReference = nil
	a.GroupsReference = nil
	a.AccessRightsReference = nil
}

func (a *ApplicationAnnc) Clone() Entity {
	c := &ApplicationAnnc{
		base:          a.base.clone(),
		Link:          cloneStr(a.Link),
		SearchStrings: cloneStrs(a.SearchStrings),
	}
	c.ContainersReference = cloneStr(a.ContainersReference)
	c.GroupsReference = cloneStr(a.GroupsReference)
	c.AccessRightsReference = cloneStr(a.AccessRightsReference)
	return c
}
