// api/service/lifecycle_test.go
package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tmock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m2m-works/scld/api/dao"
	"github.com/m2m-works/scld/api/model"
	"github.com/m2m-works/scld/api/notifier"
	"github.com/m2m-works/scld/api/service"
	"github.com/m2m-works/scld/api/test/mock"
)

type captured struct {
	subscription string
	verb         model.Verb
	resource     string
}

type captureSender struct {
	ch chan captured
}

func (s *captureSender) Deliver(ctx context.Context, sub *model.Subscription, verb model.Verb, snapshot model.Entity) error {
	s.ch <- captured{subscription: sub.URI, verb: verb, resource: snapshot.Base().URI}
	return nil
}

func (s *captureSender) next(t *testing.T) captured {
	t.Helper()
	select {
	case c := <-s.ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification delivery")
		return captured{}
	}
}

type fixture struct {
	lifecycle *service.Lifecycle
	store     *dao.MemStore
	sender    *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := dao.NewMemStore()
	require.NoError(t, service.Provision(context.Background(), store))

	sender := &captureSender{ch: make(chan captured, 16)}
	queue := notifier.NewQueue(sender)
	t.Cleanup(queue.Close)

	return &fixture{
		lifecycle: service.NewLifecycle(store, notifier.NewDispatcher(queue), nil),
		store:     store,
		sender:    sender,
	}
}

func (f *fixture) do(verb model.Verb, path, entity, body string) model.Response {
	return f.lifecycle.Handle(context.Background(), model.Request{
		Verb:             verb,
		TargetPath:       path,
		RequestingEntity: entity,
		Representation:   []byte(body),
	})
}

func (f *fixture) find(t *testing.T, uri string) model.Entity {
	t.Helper()
	ctx := context.Background()
	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	entity, err := tx.Find(ctx, uri)
	require.NoError(t, err)
	return entity
}

func attrs(t *testing.T, resp model.Response, rootKey string) map[string]interface{} {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Body, &wrapper))
	require.Contains(t, wrapper, rootKey)
	var inner map[string]interface{}
	require.NoError(t, json.Unmarshal(wrapper[rootKey], &inner))
	return inner
}

func errorBody(t *testing.T, resp model.Response) model.ErrorBody {
	t.Helper()
	var body model.ErrorBody
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	return body
}

func TestCreateApplication(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"searchStrings": ["lamp"], "aPoC": "http://device.example"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	app := attrs(t, resp, model.TypeApplication)
	id := app["id"].(string)
	assert.True(t, strings.HasPrefix(id, "APP_"))
	assert.Equal(t, "nscl/applications/"+id, app["uri"])
	assert.NotEmpty(t, app["expirationTime"])
	assert.NotEmpty(t, app["creationTime"])
	assert.Equal(t, "nscl/applications/"+id+"/subscriptions", app["subscriptionsReference"])

	// The derived references are composed per response and never persisted.
	stored := f.find(t, "nscl/applications/"+id).(*model.Application)
	assert.Nil(t, stored.SubscriptionsReference)
	assert.Equal(t, []string{"lamp"}, stored.SearchStrings)
}

func TestCreateKeepsClientSuppliedID(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "myLamp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "nscl/applications/myLamp", attrs(t, resp, model.TypeApplication)["uri"])

	t.Run("DuplicateIDConflicts", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/applications", "admin",
			`{"application": {"id": "myLamp", "searchStrings": ["other"]}}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("GrammarViolationIsNotPersisted", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/applications", "admin",
			`{"application": {"id": "not valid!", "searchStrings": ["lamp"]}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, f.find(t, "nscl/applications/not valid!"))
	})
}

func TestCreateApplicationAnnc(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"applicationAnnc": {"link": "coap://remote.example/applications/lamp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id := attrs(t, resp, model.TypeApplicationAnnc)["id"].(string)
	assert.True(t, strings.HasPrefix(id, "APP_"))
	assert.True(t, strings.HasSuffix(id, "Annc"))
}

func TestCreateOrderOfChecks(t *testing.T) {
	f := newFixture(t)

	t.Run("ExistenceBeforeAuthorization", func(t *testing.T) {
		// A guest probing a missing parent learns it is missing, not forbidden.
		resp := f.do(model.VerbCreate, "nscl/applications/APP_missing/subscriptions", "guest",
			`{"subscription": {"contact": "http://x"}}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("AuthorizationBeforeValidation", func(t *testing.T) {
		// A garbage representation from an unauthorized entity is a 403, so the
		// denial leaks nothing about the representation rules.
		resp := f.do(model.VerbCreate, "nscl/applications", "guest", `{"bogus`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "guest does not hold CREATE permission", errorBody(t, resp).Detail)
	})

	t.Run("EmptyTargetPath", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "/", "admin", `{"application": {"searchStrings": ["x"]}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestCreateCollectionMustMatchType(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"subscription": {"contact": "http://subscriber.example/notify"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "incorrect resource type", errorBody(t, resp).Detail)
}

func TestCreateRejectsStaleExpiration(t *testing.T) {
	f := newFixture(t)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"searchStrings": ["lamp"], "expirationTime": "`+past+`"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "expiration time is out of date", errorBody(t, resp).Detail)
}

func TestCreateSubscription(t *testing.T) {
	f := newFixture(t)

	t.Run("ContactIsMandatory", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/subscriptions", "admin", `{"subscription": {}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "attribute contact is mandatory for CREATE", errorBody(t, resp).Detail)
	})

	t.Run("ServerAssignsSubscriptionType", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/subscriptions", "admin",
			`{"subscription": {"contact": "http://subscriber.example/notify"}}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		sub := attrs(t, resp, model.TypeSubscription)
		assert.Equal(t, model.SubscriptionTypeAsynchronous, sub["subscriptionType"])
		assert.NotEmpty(t, sub["expirationTime"])
	})

	t.Run("ContactUniqueCaseInsensitive", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/subscriptions", "admin",
			`{"subscription": {"contact": "HTTP://SUBSCRIBER.EXAMPLE/NOTIFY"}}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("OnACollectionOfALiveResource", func(t *testing.T) {
		// The subscriptions collection under nscl/applications is virtual; it
		// exists because nscl does.
		resp := f.do(model.VerbCreate, "nscl/applications/subscriptions", "admin",
			`{"subscription": {"contact": "http://watcher.example/notify"}}`)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestCreateNotifiesCollectionSubscribers(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications/subscriptions", "admin",
		`{"subscription": {"contact": "http://watcher.example/notify"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	delivered := f.sender.next(t)
	assert.Equal(t, model.VerbCreate, delivered.verb)
	assert.Equal(t, attrs(t, resp, model.TypeApplication)["uri"], delivered.resource)
}

func TestCreateFallsBackToInheritedAccessRight(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"searchStrings": ["lamp"], "accessRightID": "nscl/accessRights/AR_NOPE"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	uri := attrs(t, resp, model.TypeApplication)["uri"].(string)
	stored := f.find(t, uri)
	require.NotNil(t, stored.Base().AccessRightID)
	assert.Equal(t, "nscl/accessRights/AR_ADMIN", *stored.Base().AccessRightID)
}

func TestCreateInheritsAccessRightWhenAbsent(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "freshApp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "nscl/accessRights/AR_ADMIN", attrs(t, resp, model.TypeApplication)["accessRightID"])

	// The binding is pinned in the stored snapshot, not just composed into
	// the response.
	stored := f.find(t, "nscl/applications/freshApp")
	require.NotNil(t, stored.Base().AccessRightID)
	assert.Equal(t, "nscl/accessRights/AR_ADMIN", *stored.Base().AccessRightID)

	t.Run("SubscriptionStaysAncestorGoverned", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/applications/freshApp/subscriptions", "admin",
			`{"subscription": {"contact": "http://watcher.example/notify"}}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		sub := f.find(t, attrs(t, resp, model.TypeSubscription)["uri"].(string))
		assert.Nil(t, sub.Base().AccessRightID)
	})
}

func TestRetrieve(t *testing.T) {
	f := newFixture(t)

	t.Run("RootDescriptor", func(t *testing.T) {
		resp := f.do(model.VerbRetrieve, "nscl", "admin", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		root := attrs(t, resp, model.TypeSclBase)
		assert.Equal(t, "nscl/applications", root["applicationsReference"])
	})

	t.Run("UnauthorizedEntity", func(t *testing.T) {
		resp := f.do(model.VerbRetrieve, "nscl", "guest", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("UnknownResource", func(t *testing.T) {
		resp := f.do(model.VerbRetrieve, "nscl/applications/APP_missing", "admin", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "nscl/applications/APP_missing does not exist", errorBody(t, resp).Detail)
	})

	t.Run("ExpiredResourceIsGone", func(t *testing.T) {
		past := time.Now().Add(-time.Minute)
		app := &model.Application{SearchStrings: []string{"lamp"}}
		app.URI = "nscl/applications/APP_old"
		app.ExpirationTime = &past
		f.store.Seed(app)

		resp := f.do(model.VerbRetrieve, "nscl/applications/APP_old", "admin", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateApplication(t *testing.T) {
	f := newFixture(t)
	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "myLamp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("MandatoryAttributeMissing", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl/applications/myLamp", "admin", `{"application": {}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "attribute searchStrings is mandatory for UPDATE", errorBody(t, resp).Detail)
	})

	t.Run("NotPermittedWhateverTheValue", func(t *testing.T) {
		stored := f.find(t, "nscl/applications/myLamp")
		sameCreation := stored.Base().CreationTime.Format(time.RFC3339Nano)
		resp := f.do(model.VerbUpdate, "nscl/applications/myLamp", "admin",
			`{"application": {"searchStrings": ["lamp"], "creationTime": "`+sameCreation+`"}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "attribute creationTime is not permitted for UPDATE", errorBody(t, resp).Detail)
	})

	t.Run("ExistenceBeforeAuthorization", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl/applications/APP_missing", "guest", `{"bogus`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("AuthorizationBeforeValidation", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl/applications/myLamp", "guest", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("WrongRootKey", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl/applications/myLamp", "admin",
			`{"subscription": {"contact": "http://x"}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "incorrect resource type", errorBody(t, resp).Detail)
	})

	t.Run("AcceptedUpdate", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl/applications/myLamp", "admin",
			`{"application": {"searchStrings": ["lamp", "light"]}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		stored := f.find(t, "nscl/applications/myLamp").(*model.Application)
		assert.Equal(t, []string{"lamp", "light"}, stored.SearchStrings)
		assert.NotNil(t, stored.CreationTime)
		assert.True(t, stored.LastModifiedTime.After(*stored.CreationTime))
	})
}

func TestRootDescriptorVerbs(t *testing.T) {
	f := newFixture(t)

	t.Run("UpdateIsAllowed", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, "nscl", "admin",
			`{"sclBase": {"searchStrings": ["gateway"]}}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stored := f.find(t, "nscl").(*model.SclBase)
		assert.Equal(t, []string{"gateway"}, stored.SearchStrings)
	})

	t.Run("DeleteIsNot", func(t *testing.T) {
		resp := f.do(model.VerbDelete, "nscl", "admin", "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "sclBase does not support DELETE", errorBody(t, resp).Detail)
	})
}

func TestDeleteApplication(t *testing.T) {
	f := newFixture(t)
	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "myLamp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = f.do(model.VerbCreate, "nscl/applications/myLamp/subscriptions", "admin",
		`{"subscription": {"contact": "http://watcher.example/notify"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	subURI := attrs(t, resp, model.TypeSubscription)["uri"].(string)
	resp = f.do(model.VerbCreate, "nscl/applications/subscriptions", "admin",
		`{"subscription": {"contact": "http://collection-watcher.example/notify"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(model.VerbDelete, "nscl/applications/myLamp", "admin", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)

	// The whole subtree goes with the resource.
	assert.Nil(t, f.find(t, "nscl/applications/myLamp"))
	assert.Nil(t, f.find(t, subURI))

	// Subscribers of the owning collection hear about the removal.
	delivered := f.sender.next(t)
	assert.Equal(t, model.VerbDelete, delivered.verb)
	assert.Equal(t, "nscl/applications/myLamp", delivered.resource)
}

func TestNotificationChannel(t *testing.T) {
	f := newFixture(t)
	resp := f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "myLamp", "searchStrings": ["lamp"]}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(model.VerbCreate, "nscl/applications/myLamp/notificationChannels", "admin",
		`{"notificationChannel": {"channelType": "LONG_POLLING"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	nc := attrs(t, resp, model.TypeNotificationChannel)
	uri := nc["uri"].(string)
	assert.Equal(t, uri+"/contact", nc["contactURI"])
	assert.NotEmpty(t, nc["channelData"])

	t.Run("UnsupportedChannelTypeRejected", func(t *testing.T) {
		resp := f.do(model.VerbCreate, "nscl/applications/myLamp/notificationChannels", "admin",
			`{"notificationChannel": {"channelType": "WEBSOCKET"}}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, `channel type "WEBSOCKET" is not supported`, errorBody(t, resp).Detail)
	})

	t.Run("UpdateNotAllowed", func(t *testing.T) {
		resp := f.do(model.VerbUpdate, uri, "admin",
			`{"notificationChannel": {"channelType": "LONG_POLLING"}}`)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "notificationChannel does not support UPDATE", errorBody(t, resp).Detail)
	})

	t.Run("DeleteAllowed", func(t *testing.T) {
		resp := f.do(model.VerbDelete, uri, "admin", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestExecuteIsNotImplemented(t *testing.T) {
	f := newFixture(t)
	resp := f.do(model.VerbExecute, "nscl/applications", "admin", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, "EXECUTE is not supported", errorBody(t, resp).Detail)
}

func TestAccessRightSelfGovernance(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/accessRights", "admin",
		`{"accessRight": {
			"id": "AR_BOB",
			"permissions": [{"pattern": "bob", "permissions": ["READ"]}],
			"selfPermissions": [{"pattern": "bob", "permissions": ["READ", "WRITE", "DELETE"]}]
		}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The creator is not in the selfPermissions list and loses access to the
	// resource it just created.
	resp = f.do(model.VerbRetrieve, "nscl/accessRights/AR_BOB", "admin", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.do(model.VerbRetrieve, "nscl/accessRights/AR_BOB", "bob", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(model.VerbUpdate, "nscl/accessRights/AR_BOB", "bob",
		`{"accessRight": {"permissions": [{"pattern": "bob", "permissions": ["READ", "WRITE"]}]}}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWildcardGrantsAreLastResort(t *testing.T) {
	f := newFixture(t)

	resp := f.do(model.VerbCreate, "nscl/accessRights", "admin",
		`{"accessRight": {
			"id": "AR_PUBLIC",
			"permissions": [{"pattern": "*", "permissions": ["READ"]}],
			"selfPermissions": [{"pattern": "admin", "permissions": ["READ", "WRITE", "DELETE"]}]
		}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(model.VerbCreate, "nscl/applications", "admin",
		`{"application": {"id": "public", "searchStrings": ["lamp"], "accessRightID": "nscl/accessRights/AR_PUBLIC"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(model.VerbRetrieve, "nscl/applications/public", "guest", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(model.VerbDelete, "nscl/applications/public", "guest", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "guest does not hold DELETE permission", errorBody(t, resp).Detail)
}

func TestPersistenceFailureIsMasked(t *testing.T) {
	store := new(mock.MockStore)
	tx := new(mock.MockTx)
	store.On("Begin", tmock.Anything).Return(tx, nil)
	tx.On("Find", tmock.Anything, "nscl").Return(nil, errors.New("connection reset by peer"))
	tx.On("Rollback", tmock.Anything).Return(nil)

	queue := notifier.NewQueue(notifier.LogSender{})
	t.Cleanup(queue.Close)
	lc := service.NewLifecycle(store, notifier.NewDispatcher(queue), nil)

	resp := lc.Handle(context.Background(), model.Request{
		Verb: model.VerbRetrieve, TargetPath: "nscl", RequestingEntity: "admin",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := errorBody(t, resp)
	assert.Equal(t, "INTERNAL", body.Kind)
	// Backend details never reach the response body.
	assert.Equal(t, "internal error", body.Detail)
	tx.AssertCalled(t, "Rollback", tmock.Anything)
}

type fakeCache struct {
	entries map[string][]byte
}

func (c *fakeCache) Get(ctx context.Context, uri string) ([]byte, bool) {
	body, ok := c.entries[uri]
	return body, ok
}

func (c *fakeCache) Set(ctx context.Context, uri string, body []byte) { c.entries[uri] = body }

func (c *fakeCache) Invalidate(ctx context.Context, uri string) { delete(c.entries, uri) }

func TestRetrievalCache(t *testing.T) {
	store := dao.NewMemStore()
	require.NoError(t, service.Provision(context.Background(), store))
	queue := notifier.NewQueue(notifier.LogSender{})
	t.Cleanup(queue.Close)
	cache := &fakeCache{entries: make(map[string][]byte)}
	lc := service.NewLifecycle(store, notifier.NewDispatcher(queue), cache)

	do := func(verb model.Verb, path, body string) model.Response {
		return lc.Handle(context.Background(), model.Request{
			Verb: verb, TargetPath: path, RequestingEntity: "admin", Representation: []byte(body),
		})
	}

	resp := do(model.VerbRetrieve, "nscl", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cached, ok := cache.entries["nscl"]
	require.True(t, ok)
	assert.Equal(t, resp.Body, cached)

	// A cached body is served as-is, authorization still applies.
	cache.entries["nscl"] = []byte(`{"sclBase": {"uri": "nscl", "cached": true}}`)
	resp = do(model.VerbRetrieve, "nscl", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"sclBase": {"uri": "nscl", "cached": true}}`, string(resp.Body))
	guest := lc.Handle(context.Background(), model.Request{Verb: model.VerbRetrieve, TargetPath: "nscl", RequestingEntity: "guest"})
	assert.Equal(t, http.StatusForbidden, guest.StatusCode)

	// Mutation drops the entry.
	resp = do(model.VerbUpdate, "nscl", `{"sclBase": {"searchStrings": ["gateway"]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_, ok = cache.entries["nscl"]
	assert.False(t, ok)
}
