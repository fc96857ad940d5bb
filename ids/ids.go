// api/ids/ids.go
package ids

import (
	mathrand "math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	scl_errors "github.com/m2m-works/scld/api/errors"
)

// Identifier grammar for client-supplied ids: alphanumeric plus underscore
// and hyphen.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

func token() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Valid reports whether a client-supplied id matches the identifier grammar.
func Valid(id string) bool {
	return idPattern.MatchString(id)
}

// Generate produces a fresh identifier formatted as prefix + opaque unique
// token + suffix. The taken callback guards against a sibling already holding
// the id at allocation time.
func Generate(prefix, suffix string, taken func(id string) (bool, error)) (string, error) {
	for {
		id := prefix + token() + suffix
		if taken == nil {
			return id, nil
		}
		exists, err := taken(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
}

// Accept resolves the identifier for a resource being created. An absent
// client id delegates to Generate; a supplied one is validated against the
// grammar and checked for uniqueness among siblings. The caller must hold the
// enclosing transaction across this check and the subsequent create.
func Accept(clientID, prefix, suffix string, taken func(id string) (bool, error)) (string, error) {
	if clientID == "" {
		return Generate(prefix, suffix, taken)
	}
	if !Valid(clientID) {
		return "", scl_errors.BadRequestf("id %q does not match the identifier grammar", clientID)
	}
	exists, err := taken(clientID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", scl_errors.Conflictf("identifier %q already exists", clientID)
	}
	return clientID, nil
}
