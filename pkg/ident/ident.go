// Package ident generates entity ids.
package ident

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
	timeNow = func() time.Time { return time.Now().UTC() }
)

// New returns a new lowercase ULID. Ids from one process sort in creation order.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(timeNow()), entropy)
	return strings.ToLower(id.String())
}

// Valid reports whether s is usable as a document id: non-empty, no path
// separators, at most 50 characters.
func Valid(s string) bool {
	if s == "" || len(s) > 50 {
		return false
	}
	return !strings.ContainsAny(s, `/\`) && s != "." && s != ".."
}
