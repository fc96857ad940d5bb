// api/notifier/sender.go
package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/m2m-works/scld/api/codec"
	logger "github.com/m2m-works/scld/api/logging"
	"github.com/m2m-works/scld/api/model"
)

// Sender is the external delivery collaborator. Deliver is fire-and-forget
// from the engine's perspective; retry and backoff belong to the
// implementation behind it.
type Sender interface {
	Deliver(ctx context.Context, sub *model.Subscription, verb model.Verb, snapshot model.Entity) error
}

// LogSender records notifications in the log stream. Used in development and
// as the fallback when no delivery backend is configured.
type LogSender struct{}

func (LogSender) Deliver(ctx context.Context, sub *model.Subscription, verb model.Verb, snapshot model.Entity) error {
	contact := ""
	if sub.Contact != nil {
		contact = *sub.Contact
	}
	logger.Info("NOTIFICATION",
		zap.String("contact", contact),
		zap.String("verb", string(verb)),
		zap.String("resource", snapshot.Base().URI))
	return nil
}

// RedisSender publishes notifications on the channel named by the
// subscription contact.
type RedisSender struct {
	Client *redis.Client
}

func NewRedisSender(client *redis.Client) *RedisSender {
	return &RedisSender{Client: client}
}

type notificationPayload struct {
	Verb     model.Verb      `json:"verb"`
	Resource json.RawMessage `json:"resource"`
}

func (s *RedisSender) Deliver(ctx context.Context, sub *model.Subscription, verb model.Verb, snapshot model.Entity) error {
	if sub.Contact == nil {
		return nil
	}
	encoded, err := codec.Encode(snapshot)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(notificationPayload{Verb: verb, Resource: encoded})
	if err != nil {
		return err
	}
	return s.Client.Publish(ctx, *sub.Contact, payload).Err()
}
