// api/model/access_right.go
package model

// PermissionHolder grants a set of permissions to every identity matching
// Pattern. A pattern is an exact identity or the full wildcard "*".
type PermissionHolder struct {
	Pattern     string   `json:"pattern"`
	Permissions []string `json:"permissions"`
}

// Grants reports whether the holder carries the required permission bit.
func (h PermissionHolder) Grants(p Permission) bool {
	return ParsePermissions(h.Permissions)&p != 0
}

// AccessRight binds an ordered list of permission holders to an id resources
// reference through accessRightID. Entries are evaluated in order; the first
// pattern match decides.
type AccessRight struct {
	base
	Permissions     []PermissionHolder `json:"permissions,omitempty"`
	SelfPermissions []PermissionHolder `json:"selfPermissions,omitempty"`

	SubscriptionsReference *string `json:"subscriptionsReference,omitempty"`
}

func (r *AccessRight) TypeName() string { return TypeAccessRight }

func (r *AccessRight) Base() *Base { return &r.base }

func (r *AccessRight) Present(attr string) bool {
	if p, ok := r.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrPermissions:
		return r.Permissions != nil
	case AttrSelfPermissions:
		return r.SelfPermissions != nil
	case AttrSubscriptionsReference:
		return r.SubscriptionsReference != nil
	}
	return false
}

func (r *AccessRight) SetReferences() {
	r.SubscriptionsReference = strptr(r.URI + RefSubscriptions)
}

func (r *AccessRight) ClearReferences() {
	r.SubscriptionsReference = nil
}

func clonePermissionHolders(hs []PermissionHolder) []PermissionHolder {
	if hs == nil {
		return nil
	}
	out := make([]PermissionHolder, len(hs))
	for i, h := range hs {
		out[i] = PermissionHolder{Pattern: h.Pattern, Permissions: cloneStrs(h.Permissions)}
	}
	return out
}

func (r *AccessRight) Clone() Entity {
	c := &AccessRight{
		base:            r.base.clone(),
		Permissions:     clonePermissionHolders(r.Permissions),
		SelfPermissions: clonePermissionHolders(r.SelfPermissions),
	}
	c.SubscriptionsReference = cloneStr(r.SubscriptionsReference)
	return c
}
