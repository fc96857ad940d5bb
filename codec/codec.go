// api/codec/codec.go
package codec

import (
	"bytes"
	"encoding/json"

	scl_errors "github.com/m2m-works/scld/api/errors"
	"github.com/m2m-works/scld/api/model"
)

// Representations are wrapped in a single root key naming the resource type:
// {"subscription": {...}}. A root key that does not match the targeted type
// is a typed decode failure, not a raised fault.

// Decode parses a client representation into the entity type the target path
// selects. Failures are BadRequest: syntax errors, unknown attributes, and
// representations of the wrong resource type.
func Decode(typeName string, data []byte) (model.Entity, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, scl_errors.BadRequestf("incorrect resource representation syntax")
	}
	raw, ok := wrapper[typeName]
	if !ok {
		return nil, scl_errors.BadRequestf("incorrect resource type")
	}
	entity := newEntity(typeName)
	if entity == nil {
		return nil, scl_errors.BadRequestf("unsupported resource type %q", typeName)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(entity); err != nil {
		return nil, scl_errors.BadRequestf("incorrect resource representation syntax")
	}
	return entity, nil
}

// DecodeAny parses a client representation whose root key selects the entity
// type, for operations where the target path alone does not fix it. Exactly
// one known root key must be present.
func DecodeAny(data []byte) (model.Entity, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, scl_errors.BadRequestf("incorrect resource representation syntax")
	}
	typeName := ""
	for key := range wrapper {
		if newEntity(key) == nil {
			continue
		}
		if typeName != "" {
			return nil, scl_errors.BadRequestf("incorrect resource type")
		}
		typeName = key
	}
	if typeName == "" {
		return nil, scl_errors.BadRequestf("incorrect resource type")
	}
	return Decode(typeName, data)
}

// Encode wraps the entity in its type-named root key.
func Encode(entity model.Entity) ([]byte, error) {
	return json.Marshal(map[string]model.Entity{entity.TypeName(): entity})
}

func newEntity(typeName string) model.Entity {
	switch typeName {
	case model.TypeSclBase:
		return &model.SclBase{}
	case model.TypeApplication:
		return &model.Application{}
	case model.TypeApplicationAnnc:
		return &model.ApplicationAnnc{}
	case model.TypeAccessRight:
		return &model.AccessRight{}
	case model.TypeSubscription:
		return &model.Subscription{}
	case model.TypeNotificationChannel:
		return &model.NotificationChannel{}
	}
	return nil
}
