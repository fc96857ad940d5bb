// api/service/provision.go
package service

import (
	"context"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/dao"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
)

const adminAccessRightID = "AR_ADMIN"

// Provision installs the root descriptor and its administrative access right
// on first start. The root is never created through the resource interface,
// so an empty store gets one here; a populated store is left untouched.
func Provision(ctx context.Context, store dao.Store) error {
	baseURI := viper.GetString("scl.baseUri")
	if baseURI == "" {
		baseURI = "nscl"
	}
	adminEntity := viper.GetString("scl.adminEntity")
	if adminEntity == "" {
		adminEntity = "admin"
	}

	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	existing, err := tx.Find(ctx, baseURI)
	if err != nil {
		return err
	}
	if existing != nil {
		return tx.Rollback(ctx)
	}

	now := time.Now()
	adminURI := baseURI + model.RefAccessRights + "/" + adminAccessRightID
	allPermissions := []string{"CREATE", "READ", "WRITE", "DELETE", "EXECUTE", "NOTIFY"}

	root := &model.SclBase{}
	root.ID = &baseURI
	root.URI = baseURI
	root.AccessRightID = &adminURI
	root.CreationTime = &now
	root.LastModifiedTime = &now
	if err := tx.Create(ctx, root); err != nil {
		return err
	}

	adminID := adminAccessRightID
	admin := &model.AccessRight{
		Permissions: []model.PermissionHolder{
			{Pattern: adminEntity, Permissions: allPermissions},
		},
		SelfPermissions: []model.PermissionHolder{
			{Pattern: adminEntity, Permissions: allPermissions},
		},
	}
	admin.ID = &adminID
	admin.URI = adminURI
	admin.CreationTime = &now
	admin.LastModifiedTime = &now
	if err := tx.Create(ctx, admin); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	logger.Info("Provisioned root descriptor",
		zap.String("baseUri", baseURI),
		zap.String("adminEntity", adminEntity))
	return nil
}
