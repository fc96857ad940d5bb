// api/access/resolver.go
package access

import (
	"context"
	"strings"
	"time"

	"github.com/m2m-works/scld/api/dao"
	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/model"
)

// Access-right resolution is recomputed per request against the tree visible
// in the current transaction. Ancestor bindings can change between requests,
// so resolved chains are never cached.

// ResolveAccessRightID walks from targetPath upward through ancestor uris
// until a resource bearing a bound access right id is found. Reaching the
// root without one means the target has no existing, governed ancestor; the
// caller treats that as "parent does not exist".
func ResolveAccessRightID(ctx context.Context, tx dao.Tx, targetPath string) (string, error) {
	uri := targetPath
	for uri != "" {
		entity, err := tx.Find(ctx, uri)
		if err != nil {
			return "", err
		}
		if entity != nil && !entity.Base().Expired(time.Now()) {
			if arid := entity.Base().AccessRightID; arid != nil && *arid != "" {
				return *arid, nil
			}
		}
		i := strings.LastIndex(uri, "/")
		if i < 0 {
			break
		}
		uri = uri[:i]
	}
	return "", scl_errors.NotFoundf("%s does not exist", targetPath)
}

// Authorize evaluates whether the requesting entity holds the required
// permission under the access right identified by accessRightID. Holders are
// evaluated in entry order and the first pattern match decides; the full
// wildcard is a lowest-priority match; no match at all is a denial.
func Authorize(ctx context.Context, tx dao.Tx, accessRightID, requestingEntity string, required model.Permission) error {
	denied := scl_errors.Forbiddenf("%s does not hold %s permission", requestingEntity, permissionName(required))
	if accessRightID == "" {
		return denied
	}
	entity, err := tx.Find(ctx, accessRightID)
	if err != nil {
		return err
	}
	accessRight, ok := entity.(*model.AccessRight)
	if !ok || accessRight.Expired(time.Now()) {
		return denied
	}
	return AuthorizeHolders(accessRight.Permissions, requestingEntity, required)
}

// AuthorizeHolders evaluates a permission-holder list directly. Access rights
// themselves are governed through their own selfPermissions rather than an
// ancestor binding, so the engine calls this without a resolution walk.
func AuthorizeHolders(holders []model.PermissionHolder, requestingEntity string, required model.Permission) error {
	denied := scl_errors.Forbiddenf("%s does not hold %s permission", requestingEntity, permissionName(required))
	var wildcard *model.PermissionHolder
	for i := range holders {
		holder := holders[i]
		if holder.Pattern == "*" {
			if wildcard == nil {
				wildcard = &holders[i]
			}
			continue
		}
		if holder.Pattern == requestingEntity {
			if holder.Grants(required) {
				return nil
			}
			return denied
		}
	}
	if wildcard != nil && wildcard.Grants(required) {
		return nil
	}
	return denied
}

func permissionName(p model.Permission) string {
	switch p {
	case model.PermCreate:
		return "CREATE"
	case model.PermRead:
		return "READ"
	case model.PermWrite:
		return "WRITE"
	case model.PermDelete:
		return "DELETE"
	case model.PermExecute:
		return "EXECUTE"
	case model.PermNotify:
		return "NOTIFY"
	}
	return "UNKNOWN"
}
