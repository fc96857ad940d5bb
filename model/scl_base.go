// api/model/scl_base.go
package model

// SclBase is the root descriptor of the resource tree. It is provisioned at
// startup; Create and Delete are not allowed through the API.
type SclBase struct {
	base
	SearchStrings []string `json:"searchStrings,omitempty"`
	APocHandling  *string  `json:"aPocHandling,omitempty"`

	SclsReference          *string `json:"sclsReference,omitempty"`
	ApplicationsReference  *string `json:"applicationsReference,omitempty"`
	ContainersReference    *string `json:"containersReference,omitempty"`
	GroupsReference        *string `json:"groupsReference,omitempty"`
	AccessRightsReference  *string `json:"accessRightsReference,omitempty"`
	SubscriptionsReference *string `json:"subscriptionsReference,omitempty"`
	DiscoveryReference     *string `json:"discoveryReference,omitempty"`
}

func (s *SclBase) TypeName() string { return TypeSclBase }

func (s *SclBase) Base() *Base { return &s.base }

func (s *SclBase) Present(attr string) bool {
	if p, ok := s.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrSearchStrings:
		return s.SearchStrings != nil
	case AttrAPocHandling:
		return s.APocHandling != nil
	case AttrSclsReference:
		return s.SclsReference != nil
	case AttrApplicationsReference:
		return s.ApplicationsReference != nil
	case AttrContainersReference:
		return s.ContainersReference != nil
	case AttrGroupsReference:
		return s.GroupsReference != nil
	case AttrAccessRightsReference:
		return s.AccessRightsReference != nil
	case AttrSubscriptionsReference:
		return s.SubscriptionsReference != nil
	case AttrDiscoveryReference:
		return s.DiscoveryReference != nil
	}
	return false
}

func (s *SclBase) SetReferences() {
	s.SclsReference = strptr(s.URI + RefScls)
	s.ApplicationsReference = strptr(s.URI + RefApplications)
	s.ContainersReference = strptr(s.URI + RefContainers)
	s.GroupsReference = strptr(s.URI + RefGroups)
	s.AccessRightsReference = strptr(s.URI + RefAccessRights)
	s.SubscriptionsReference = strptr(s.URI + RefSubscriptions)
	s.DiscoveryReference = strptr(s.URI + RefDiscovery)
}

func (s *SclBase) ClearReferences() {
	s.SclsReference = nil
	s.ApplicationsReference = nil
	s.ContainersReference = nil
	s.GroupsReference = nil
	s.AccessRightsReference = nil
	s.SubscriptionsReference = nil
	s.DiscoveryReference = nil
}

func (s *SclBase) Clone() Entity {
	c := &SclBase{
		base:          s.base.clone(),
		SearchStrings: cloneStrs(s.SearchStrings),
		APocHandling:  cloneStr(s.APocHandling),
	}
	c.SclsReference = cloneStr(s.SclsReference)
	c.ApplicationsReference = cloneStr(s.ApplicationsReference)
	c.ContainersReference = cloneStr(s.ContainersReference)
	c.GroupsReference = cloneStr(s.GroupsReference)
	c.AccessRightsReference = cloneStr(s.AccessRightsReference)
	c.SubscriptionsReference = cloneStr(s.SubscriptionsReference)
	c.DiscoveryReference = cloneStr(s.DiscoveryReference)
	return c
}
