// api/model/notification_channel.go
package model

// ChannelTypeLongPolling is the only channel type the directory provisions.
const ChannelTypeLongPolling = "LONG_POLLING"

// NotificationChannel is a server-provisioned delivery endpoint. The contact
// and channel data are assigned at creation; the resource cannot be updated,
// only deleted and recreated.
type NotificationChannel struct {
	base
	ChannelType *string `json:"channelType,omitempty"`
	ContactURI  *string `json:"contactURI,omitempty"`
	ChannelData *string `json:"channelData,omitempty"`
}

func (n *NotificationChannel) TypeName() string { return TypeNotificationChannel }

func (n *NotificationChannel) Base() *Base { return &n.base }

func (n *NotificationChannel) Present(attr string) bool {
	if p, ok := n.basePresent(attr); ok {
		return p
	}
	switch attr {
	case AttrChannelType:
		return n.ChannelType != nil
	case AttrContactURI:
		return n.ContactURI != nil
	case AttrChannelData:
		return n.ChannelData != nil
	}
	return false
}

// Notification channels have no child collections.
func (n *NotificationChannel) SetReferences() {}

func (n *NotificationChannel) ClearReferences() {}

func (n *NotificationChannel) Clone() Entity {
	return &NotificationChannel{
		base:        n.base.clone(),
		ChannelType: cloneStr(n.ChannelType),
		ContactURI:  cloneStr(n.ContactURI),
		ChannelData: cloneStr(n.ChannelData),
	}
}
