// api/policy/tables.go
package policy

import (
	"github.com/m2m-works/scld/api/model"
)

// Attribute policy tables, one per resource type. Rows are ordered: id,
// structural references, domain attributes, timestamps.

var SclBase = Table{
	{model.AttrID, NotApplicable, NotPermitted},
	{model.AttrSclsReference, NotApplicable, NotPermitted},
	{model.AttrApplicationsReference, NotApplicable, NotPermitted},
	{model.AttrContainersReference, NotApplicable, NotPermitted},
	{model.AttrGroupsReference, NotApplicable, NotPermitted},
	{model.AttrAccessRightsReference, NotApplicable, NotPermitted},
	{model.AttrSubscriptionsReference, NotApplicable, NotPermitted},
	{model.AttrDiscoveryReference, NotApplicable, NotPermitted},
	{model.AttrAccessRightID, NotApplicable, Optional},
	{model.AttrSearchStrings, NotApplicable, Optional},
	{model.AttrAPocHandling, NotApplicable, Optional},
	{model.AttrExpirationTime, NotApplicable, NotPermitted},
	{model.AttrCreationTime, NotApplicable, NotPermitted},
	{model.AttrLastModifiedTime, NotApplicable, NotPermitted},
}

var Application = Table{
	{model.AttrID, Optional, NotPermitted},
	{model.AttrContainersReference, NotPermitted, NotPermitted},
	{model.AttrGroupsReference, NotPermitted, NotPermitted},
	{model.AttrAccessRightsReference, NotPermitted, NotPermitted},
	{model.AttrSubscriptionsReference, NotPermitted, NotPermitted},
	{model.AttrNotificationChannelsReference, NotPermitted, NotPermitted},
	{model.AttrAPoC, Optional, Optional},
	{model.AttrSearchStrings, Mandatory, Mandatory},
	{model.AttrAccessRightID, Optional, Optional},
	{model.AttrExpirationTime, Optional, Optional},
	{model.AttrCreationTime, NotPermitted, NotPermitted},
	{model.AttrLastModifiedTime, NotPermitted, NotPermitted},
}

var ApplicationAnnc = Table{
	{model.AttrID, Optional, NotPermitted},
	{model.AttrContainersReference, NotPermitted, NotPermitted},
	{model.AttrGroupsReference, NotPermitted, NotPermitted},
	{model.AttrAccessRightsReference, NotPermitted, NotPermitted},
	{model.AttrLink, Mandatory, NotPermitted},
	{model.AttrSearchStrings, Mandatory, Mandatory},
	{model.AttrAccessRightID, Optional, Optional},
	{model.AttrExpirationTime, Optional, Optional},
	{model.AttrCreationTime, NotPermitted, NotPermitted},
	{model.AttrLastModifiedTime, NotPermitted, NotPermitted},
}

var AccessRight = Table{
	{model.AttrID, Optional, NotPermitted},
	{model.AttrSubscriptionsReference, NotPermitted, NotPermitted},
	{model.AttrPermissions, Optional, Optional},
	{model.AttrSelfPermissions, Optional, Optional},
	{model.AttrAccessRightID, NotPermitted, NotPermitted},
	{model.AttrExpirationTime, Optional, Optional},
	{model.AttrCreationTime, NotPermitted, NotPermitted},
	{model.AttrLastModifiedTime, NotPermitted, NotPermitted},
}

var Subscription = Table{
	{model.AttrID, Optional, NotPermitted},
	{model.AttrContact, Mandatory, NotPermitted},
	{model.AttrFilterCriteria, Optional, NotPermitted},
	{model.AttrSubscriptionType, NotPermitted, NotPermitted},
	{model.AttrMinimalTimeBetweenNotifications, Optional, Optional},
	{model.AttrDelayTolerance, Optional, Optional},
	{model.AttrAccessRightID, NotPermitted, NotPermitted},
	{model.AttrExpirationTime, Optional, Optional},
	{model.AttrCreationTime, NotPermitted, NotPermitted},
	{model.AttrLastModifiedTime, NotPermitted, NotPermitted},
}

var NotificationChannel = Table{
	{model.AttrID, Optional, NotPermitted},
	{model.AttrChannelType, Mandatory, NotPermitted},
	{model.AttrContactURI, NotPermitted, NotPermitted},
	{model.AttrChannelData, NotPermitted, NotPermitted},
	{model.AttrAccessRightID, NotPermitted, NotPermitted},
	{model.AttrExpirationTime, NotPermitted, NotPermitted},
	{model.AttrCreationTime, NotPermitted, NotPermitted},
	{model.AttrLastModifiedTime, NotPermitted, NotPermitted},
}
