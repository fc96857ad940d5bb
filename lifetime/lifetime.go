// api/lifetime/lifetime.go
package lifetime

import (
	"time"

	"github.com/spf13/viper"
)

// fallback when no lifetime is configured for a resource type.
const defaultLifetime = 365 * 24 * time.Hour

// Validate reports whether a client-supplied expiration timestamp is usable:
// it must lie strictly in the future. There is no clamping; an out-of-date
// timestamp rejects the whole operation.
func Validate(expiration time.Time) bool {
	return expiration.After(time.Now())
}

// DefaultFor assigns the expiration of a resource created without one:
// now plus the configured lifetime for its type.
func DefaultFor(resourceType string) time.Time {
	d := viper.GetDuration("lifetime." + resourceType)
	if d <= 0 {
		d = viper.GetDuration("lifetime.default")
	}
	if d <= 0 {
		d = defaultLifetime
	}
	return time.Now().Add(d)
}
