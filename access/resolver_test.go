// api/access/resolver_test.go
package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m2m-works/scld/api/access"
	"github.com/m2m-works/scld/api/dao"
	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/model"
)

func strptr(s string) *string { return &s }

func seedApplication(store *dao.MemStore, uri string, arid *string, expiration *time.Time) {
	app := &model.Application{}
	app.URI = uri
	app.AccessRightID = arid
	app.ExpirationTime = expiration
	store.Seed(app)
}

func seedAccessRight(store *dao.MemStore, uri string, holders []model.PermissionHolder, expiration *time.Time) {
	ar := &model.AccessRight{Permissions: holders}
	ar.URI = uri
	ar.ExpirationTime = expiration
	store.Seed(ar)
}

func beginTx(t *testing.T, store *dao.MemStore) dao.Tx {
	t.Helper()
	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { tx.Rollback(context.Background()) })
	return tx
}

func TestResolveAccessRightID(t *testing.T) {
	ctx := context.Background()

	t.Run("NearestAncestorWins", func(t *testing.T) {
		store := dao.NewMemStore()
		seedApplication(store, "nscl", strptr("nscl/accessRights/AR_ROOT"), nil)
		seedApplication(store, "nscl/applications/APP_1", strptr("nscl/accessRights/AR_APP"), nil)
		tx := beginTx(t, store)

		arid, err := access.ResolveAccessRightID(ctx, tx, "nscl/applications/APP_1/subscriptions")
		require.NoError(t, err)
		assert.Equal(t, "nscl/accessRights/AR_APP", arid)
	})

	t.Run("ExpiredAncestorIsSkipped", func(t *testing.T) {
		store := dao.NewMemStore()
		past := time.Now().Add(-time.Hour)
		seedApplication(store, "nscl", strptr("nscl/accessRights/AR_ROOT"), nil)
		seedApplication(store, "nscl/applications/APP_1", strptr("nscl/accessRights/AR_APP"), &past)
		tx := beginTx(t, store)

		arid, err := access.ResolveAccessRightID(ctx, tx, "nscl/applications/APP_1/subscriptions")
		require.NoError(t, err)
		assert.Equal(t, "nscl/accessRights/AR_ROOT", arid)
	})

	t.Run("UngovernedTree", func(t *testing.T) {
		store := dao.NewMemStore()
		tx := beginTx(t, store)

		_, err := access.ResolveAccessRightID(ctx, tx, "nscl/applications/APP_1")
		assert.Equal(t, scl_errors.KindNotFound, scl_errors.KindOf(err))
		assert.EqualError(t, err, "NOT_FOUND: nscl/applications/APP_1 does not exist")
	})
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	holders := []model.PermissionHolder{
		{Pattern: "admin", Permissions: []string{"CREATE", "READ", "WRITE", "DELETE"}},
	}

	t.Run("GrantedPermission", func(t *testing.T) {
		store := dao.NewMemStore()
		seedAccessRight(store, "nscl/accessRights/AR_1", holders, nil)
		tx := beginTx(t, store)

		assert.NoError(t, access.Authorize(ctx, tx, "nscl/accessRights/AR_1", "admin", model.PermWrite))
	})

	t.Run("MissingAccessRightDenies", func(t *testing.T) {
		store := dao.NewMemStore()
		tx := beginTx(t, store)

		err := access.Authorize(ctx, tx, "nscl/accessRights/AR_1", "admin", model.PermRead)
		assert.EqualError(t, err, "FORBIDDEN: admin does not hold READ permission")
	})

	t.Run("ExpiredAccessRightDenies", func(t *testing.T) {
		store := dao.NewMemStore()
		past := time.Now().Add(-time.Minute)
		seedAccessRight(store, "nscl/accessRights/AR_1", holders, &past)
		tx := beginTx(t, store)

		err := access.Authorize(ctx, tx, "nscl/accessRights/AR_1", "admin", model.PermRead)
		assert.Equal(t, scl_errors.KindForbidden, scl_errors.KindOf(err))
	})
}

func TestAuthorizeHolders(t *testing.T) {
	t.Run("FirstMatchingEntryDecides", func(t *testing.T) {
		holders := []model.PermissionHolder{
			{Pattern: "bob", Permissions: []string{"READ"}},
			{Pattern: "bob", Permissions: []string{"READ", "WRITE"}},
		}
		assert.NoError(t, access.AuthorizeHolders(holders, "bob", model.PermRead))
		err := access.AuthorizeHolders(holders, "bob", model.PermWrite)
		assert.EqualError(t, err, "FORBIDDEN: bob does not hold WRITE permission")
	})

	t.Run("WildcardIsLowestPriority", func(t *testing.T) {
		holders := []model.PermissionHolder{
			{Pattern: "*", Permissions: []string{"READ", "WRITE"}},
			{Pattern: "bob", Permissions: []string{"READ"}},
		}
		// The exact entry decides for bob even though the wildcard is listed first.
		err := access.AuthorizeHolders(holders, "bob", model.PermWrite)
		assert.Equal(t, scl_errors.KindForbidden, scl_errors.KindOf(err))
		// Entities without an exact entry fall through to the wildcard.
		assert.NoError(t, access.AuthorizeHolders(holders, "guest", model.PermWrite))
	})

	t.Run("NoMatchDenies", func(t *testing.T) {
		holders := []model.PermissionHolder{
			{Pattern: "alice", Permissions: []string{"READ"}},
		}
		err := access.AuthorizeHolders(holders, "bob", model.PermRead)
		assert.Equal(t, scl_errors.KindForbidden, scl_errors.KindOf(err))
	})

	t.Run("EmptyHolderList", func(t *testing.T) {
		err := access.AuthorizeHolders(nil, "bob", model.PermRead)
		assert.Equal(t, scl_errors.KindForbidden, scl_errors.KindOf(err))
	})
}
