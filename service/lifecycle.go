// api/service/lifecycle.go
package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/access"
	"github.com/m2m-works/scld/api/codec"
	"github.com/m2m-works/scld/api/dao"
	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/ids"
	"github.com/m2m-works/scld/api/lifetime"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
	"github.com/m2m-works/scld/api/notifier"
)

// Cache is the optional read-through snapshot cache consulted on retrieval.
// Entries are encoded response bodies keyed by resource uri.
type Cache interface {
	Get(ctx context.Context, uri string) ([]byte, bool)
	Set(ctx context.Context, uri string, body []byte)
	Invalidate(ctx context.Context, uri string)
}

// Lifecycle is the generic resource engine. Every inbound operation follows
// the same shape regardless of resource type: one transaction, existence
// check, authorization, representation validation, then the mutation with its
// notifications, in that order.
type Lifecycle struct {
	store      dao.Store
	dispatcher *notifier.Dispatcher
	cache      Cache
}

func NewLifecycle(store dao.Store, dispatcher *notifier.Dispatcher, cache Cache) *Lifecycle {
	return &Lifecycle{store: store, dispatcher: dispatcher, cache: cache}
}

// Handle runs one request to completion and maps the outcome to a transport
// response. It never panics the transport layer: unclassified failures come
// back as internal errors.
func (l *Lifecycle) Handle(ctx context.Context, req model.Request) model.Response {
	target := strings.Trim(req.TargetPath, "/")
	if target == "" {
		return failure(scl_errors.BadRequestf("empty target path"))
	}
	req.TargetPath = target

	switch req.Verb {
	case model.VerbCreate:
		return l.doCreate(ctx, req)
	case model.VerbRetrieve:
		return l.doRetrieve(ctx, req)
	case model.VerbUpdate:
		return l.doUpdate(ctx, req)
	case model.VerbDelete:
		return l.doDelete(ctx, req)
	case model.VerbExecute:
		return failure(scl_errors.NotImplementedf("EXECUTE is not supported"))
	}
	return failure(scl_errors.BadRequestf("unknown operation %q", req.Verb))
}

func (l *Lifecycle) doCreate(ctx context.Context, req model.Request) model.Response {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return failure(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	// The target of a creation is the child collection; the resource owning
	// that collection must exist and be live.
	exists, err := l.parentExists(ctx, tx, parentOf(req.TargetPath))
	if err != nil {
		return failure(err)
	}
	if !exists {
		return failure(scl_errors.NotFoundf("%s does not exist", req.TargetPath))
	}

	inheritedARID, err := l.authorize(ctx, tx, req.TargetPath, nil, req.RequestingEntity, model.PermCreate)
	if err != nil {
		return failure(err)
	}

	delta, err := codec.DecodeAny(req.Representation)
	if err != nil {
		return failure(err)
	}
	def := typeDefs[delta.TypeName()]
	if def == nil || !def.verbs[model.VerbCreate] {
		return failure(scl_errors.MethodNotAllowedf("%s does not support CREATE", delta.TypeName()))
	}
	if def.collection != "/"+lastSegment(req.TargetPath) {
		return failure(scl_errors.BadRequestf("incorrect resource type"))
	}
	if err := def.table.Validate(model.VerbCreate, delta); err != nil {
		return failure(err)
	}

	now := time.Now()
	base := delta.Base()
	if base.ExpirationTime != nil && !lifetime.Validate(*base.ExpirationTime) {
		return failure(scl_errors.BadRequestf("expiration time is out of date"))
	}
	if def.expires && base.ExpirationTime == nil {
		expiration := lifetime.DefaultFor(def.name)
		base.ExpirationTime = &expiration
	}

	clientID := ""
	if base.ID != nil {
		clientID = *base.ID
	}
	taken := func(id string) (bool, error) {
		existing, err := tx.Find(ctx, req.TargetPath+"/"+id)
		return existing != nil, err
	}
	id, err := ids.Accept(clientID, def.idPrefix, def.idSuffix, taken)
	if err != nil {
		return failure(err)
	}
	base.ID = &id
	base.URI = req.TargetPath + "/" + id
	base.CreationTime = &now
	base.LastModifiedTime = &now

	// The binding is pinned at creation for types that carry their own: a
	// supplied access right id that does not resolve to a live access right is
	// replaced by the inherited one, and an absent id inherits it outright.
	if def.carriesAccessRight {
		live := false
		if base.AccessRightID != nil {
			var err error
			if live, err = l.liveAccessRight(ctx, tx, *base.AccessRightID); err != nil {
				return failure(err)
			}
		}
		if !live && inheritedARID != "" {
			arid := inheritedARID
			base.AccessRightID = &arid
		}
	}

	if def.prepare != nil {
		if err := def.prepare(delta); err != nil {
			return failure(err)
		}
	}
	if def.siblingConflict != nil {
		if err := def.siblingConflict(ctx, tx, req.TargetPath, delta); err != nil {
			return failure(err)
		}
	}

	delta.SetReferences()
	if def.notifies {
		l.dispatcher.Dispatch(ctx, tx, notifier.Event{
			Verb:          model.VerbCreate,
			Resource:      delta,
			CollectionURI: def.eventCollection(delta),
		})
	}
	if err := tx.Create(ctx, delta); err != nil {
		return failure(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return failure(err)
	}
	committed = true
	return success(http.StatusCreated, delta)
}

func (l *Lifecycle) doRetrieve(ctx context.Context, req model.Request) model.Response {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return failure(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	entity, err := l.resolveTarget(ctx, tx, req.TargetPath)
	if err != nil {
		return failure(err)
	}
	if _, err := l.authorize(ctx, tx, req.TargetPath, entity, req.RequestingEntity, model.PermRead); err != nil {
		return failure(err)
	}

	if l.cache != nil {
		if body, ok := l.cache.Get(ctx, req.TargetPath); ok {
			if err := tx.Commit(ctx); err != nil {
				return failure(err)
			}
			committed = true
			return model.Response{StatusCode: http.StatusOK, Body: body}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return failure(err)
	}
	committed = true

	resp := success(http.StatusOK, entity)
	if l.cache != nil && resp.StatusCode == http.StatusOK {
		l.cache.Set(ctx, req.TargetPath, resp.Body)
	}
	return resp
}

func (l *Lifecycle) doUpdate(ctx context.Context, req model.Request) model.Response {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return failure(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	entity, err := l.resolveTarget(ctx, tx, req.TargetPath)
	if err != nil {
		return failure(err)
	}
	def := typeDefs[entity.TypeName()]
	if !def.verbs[model.VerbUpdate] {
		return failure(scl_errors.MethodNotAllowedf("%s does not support UPDATE", def.name))
	}
	if _, err := l.authorize(ctx, tx, req.TargetPath, entity, req.RequestingEntity, model.PermWrite); err != nil {
		return failure(err)
	}

	delta, err := codec.Decode(def.name, req.Representation)
	if err != nil {
		return failure(err)
	}
	if err := def.table.Validate(model.VerbUpdate, delta); err != nil {
		return failure(err)
	}

	now := time.Now()
	base := entity.Base()
	deltaBase := delta.Base()
	if deltaBase.ExpirationTime != nil {
		if !lifetime.Validate(*deltaBase.ExpirationTime) {
			return failure(scl_errors.BadRequestf("expiration time is out of date"))
		}
		base.ExpirationTime = deltaBase.ExpirationTime
	}
	if deltaBase.AccessRightID != nil {
		if live, err := l.liveAccessRight(ctx, tx, *deltaBase.AccessRightID); err != nil {
			return failure(err)
		} else if live {
			base.AccessRightID = deltaBase.AccessRightID
		}
	}
	if def.applyUpdate != nil {
		def.applyUpdate(entity, delta)
	}
	base.LastModifiedTime = &now

	entity.SetReferences()
	if def.notifies {
		l.dispatcher.Dispatch(ctx, tx, notifier.Event{
			Verb:          model.VerbUpdate,
			Resource:      entity,
			CollectionURI: def.eventCollection(entity),
		})
	}
	if err := tx.Update(ctx, entity); err != nil {
		return failure(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return failure(err)
	}
	committed = true
	if l.cache != nil {
		l.cache.Invalidate(ctx, req.TargetPath)
	}
	return success(http.StatusOK, entity)
}

func (l *Lifecycle) doDelete(ctx context.Context, req model.Request) model.Response {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return failure(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	entity, err := l.resolveTarget(ctx, tx, req.TargetPath)
	if err != nil {
		return failure(err)
	}
	def := typeDefs[entity.TypeName()]
	if !def.verbs[model.VerbDelete] {
		return failure(scl_errors.MethodNotAllowedf("%s does not support DELETE", def.name))
	}
	if _, err := l.authorize(ctx, tx, req.TargetPath, entity, req.RequestingEntity, model.PermDelete); err != nil {
		return failure(err)
	}

	// Subscribers are resolved and notified against the pre-delete tree; the
	// removal below takes the subtree, subscriptions included.
	entity.SetReferences()
	if def.notifies {
		l.dispatcher.Dispatch(ctx, tx, notifier.Event{
			Verb:          model.VerbDelete,
			Resource:      entity,
			CollectionURI: def.eventCollection(entity),
		})
	}
	if err := tx.Delete(ctx, req.TargetPath); err != nil {
		return failure(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return failure(err)
	}
	committed = true
	if l.cache != nil {
		l.cache.Invalidate(ctx, req.TargetPath)
	}
	return model.Response{StatusCode: http.StatusOK}
}

// parentExists reports whether the resource owning a child collection is
// live. Collections themselves are virtual: a path ending in a collection
// segment exists whenever the resource above it does, so subscriptions to a
// collection (e.g. .../applications/subscriptions) have a place to live.
func (l *Lifecycle) parentExists(ctx context.Context, tx dao.Tx, parentURI string) (bool, error) {
	if parentURI == "" {
		return false, nil
	}
	entity, err := tx.Find(ctx, parentURI)
	if err != nil {
		return false, err
	}
	if entity != nil {
		return !entity.Base().Expired(time.Now()), nil
	}
	if !isCollectionSegment(lastSegment(parentURI)) {
		return false, nil
	}
	return l.parentExists(ctx, tx, parentOf(parentURI))
}

func isCollectionSegment(segment string) bool {
	switch "/" + segment {
	case model.RefScls, model.RefApplications, model.RefContainers, model.RefGroups,
		model.RefAccessRights, model.RefSubscriptions, model.RefNotificationChannels:
		return true
	}
	return false
}

// resolveTarget loads the addressed resource. An unknown uri and an expired
// resource are indistinguishable to the caller.
func (l *Lifecycle) resolveTarget(ctx context.Context, tx dao.Tx, targetPath string) (model.Entity, error) {
	entity, err := tx.Find(ctx, targetPath)
	if err != nil {
		return nil, err
	}
	if entity == nil || entity.Base().Expired(time.Now()) {
		return nil, scl_errors.NotFoundf("%s does not exist", targetPath)
	}
	return entity, nil
}

// authorize checks the required permission for an operation on targetPath.
// Access rights are self-governed through their selfPermissions; everything
// else is governed by the nearest bound access right on the ancestor chain.
// The resolved access right id is returned for creations to inherit. A chain
// without any binding is a denial, not a missing resource.
func (l *Lifecycle) authorize(ctx context.Context, tx dao.Tx, targetPath string, entity model.Entity, requestingEntity string, required model.Permission) (string, error) {
	if ar, ok := entity.(*model.AccessRight); ok {
		return "", access.AuthorizeHolders(ar.SelfPermissions, requestingEntity, required)
	}
	arid, err := access.ResolveAccessRightID(ctx, tx, targetPath)
	if err != nil {
		if scl_errors.KindOf(err) == scl_errors.KindNotFound {
			return "", scl_errors.Forbiddenf("%s does not hold %s permission", requestingEntity, requiredName(required))
		}
		return "", err
	}
	return arid, access.Authorize(ctx, tx, arid, requestingEntity, required)
}

func (l *Lifecycle) liveAccessRight(ctx context.Context, tx dao.Tx, uri string) (bool, error) {
	entity, err := tx.Find(ctx, uri)
	if err != nil {
		return false, err
	}
	ar, ok := entity.(*model.AccessRight)
	return ok && !ar.Expired(time.Now()), nil
}

func lastSegment(uri string) string {
	i := strings.LastIndex(uri, "/")
	if i < 0 {
		return uri
	}
	return uri[i+1:]
}

func requiredName(p model.Permission) string {
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

func success(status int, entity model.Entity) model.Response {
	entity.SetReferences()
	body, err := codec.Encode(entity)
	if err != nil {
		return failure(scl_errors.Internalf("encode %s: %v", entity.TypeName(), err))
	}
	return model.Response{StatusCode: status, Body: body}
}

func failure(err error) model.Response {
	kind := scl_errors.KindOf(err)
	detail := err.Error()
	var typed *scl_errors.Error
	if stderrors.As(err, &typed) {
		detail = typed.Detail
	}
	if kind == scl_errors.KindInternal {
		logger.Error("Request failed", zap.Error(err))
		detail = "internal error"
	}
	body, _ := json.Marshal(model.ErrorBody{Kind: kind.String(), Detail: detail})
	return model.Response{StatusCode: kind.HTTPStatus(), Body: body}
}
