// Package remote is the per-user document store every client syncs against.
// Each user owns the sub-collections tasks, days and dayTasks plus a profile
// document. Documents are JSON objects keyed by their id.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tableflip.dev/newday/pkg/ident"
	"tableflip.dev/newday/pkg/timeutil"
)

var (
	// ErrNotFound is returned for missing documents and unknown API keys.
	ErrNotFound = errors.New("remote: not found")
	// ErrInvalidUser is returned for user ids that cannot name a document path.
	ErrInvalidUser = errors.New("remote: invalid user id")
)

// Collection names a per-user sub-collection.
type Collection string

const (
	Tasks    Collection = "tasks"
	Days     Collection = "days"
	DayTasks Collection = "dayTasks"
)

// Collections lists the synced sub-collections.
func Collections() []Collection {
	return []Collection{Tasks, Days, DayTasks}
}

// Op is a write kind.
type Op int

const (
	// OpSet replaces the whole document.
	OpSet Op = iota
	// OpMerge overwrites only the supplied fields, creating the document when
	// it is absent.
	OpMerge
	// OpDelete removes the document. Deleting a missing document succeeds.
	OpDelete
)

// Write is one document change inside a Commit.
type Write struct {
	Op         Op
	Collection Collection
	ID         string
	// Doc is marshaled as the full document for OpSet.
	Doc interface{}
	// Fields holds the top level fields for OpMerge.
	Fields map[string]interface{}
}

// Set replaces document id with doc.
func Set(c Collection, id string, doc interface{}) Write {
	return Write{Op: OpSet, Collection: c, ID: id, Doc: doc}
}

// Merge overwrites fields of document id.
func Merge(c Collection, id string, fields map[string]interface{}) Write {
	return Write{Op: OpMerge, Collection: c, ID: id, Fields: fields}
}

// Delete removes document id.
func Delete(c Collection, id string) Write {
	return Write{Op: OpDelete, Collection: c, ID: id}
}

// Snapshot is the full contents of a collection at one point in time.
type Snapshot struct {
	Collection Collection
	Docs       []json.RawMessage
}

// Profile is the per-user settings document. Only the hash of an API key is
// ever stored.
type Profile struct {
	Email       string              `json:"email,omitempty" yaml:"email,omitempty"`
	DisplayName string              `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	APIKeyHash  string              `json:"apiKeyHash,omitempty" yaml:"-"`
	HasAPIKey   bool                `json:"hasApiKey,omitempty" yaml:"hasApiKey,omitempty"`
	CreatedAt   *timeutil.Timestamp `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
}

// Store is the remote document store contract.
type Store interface {
	// Commit applies writes in order as one batch.
	Commit(ctx context.Context, userID string, writes ...Write) error
	// Get reads one document.
	Get(ctx context.Context, userID string, c Collection, id string) (json.RawMessage, error)
	// List reads every document of a collection.
	List(ctx context.Context, userID string, c Collection) ([]json.RawMessage, error)
	// Watch emits a full snapshot right away and again after every change
	// until ctx is done, then closes the channel. A slow reader only ever
	// sees the latest snapshot.
	Watch(ctx context.Context, userID string, c Collection) (<-chan Snapshot, error)

	Profile(ctx context.Context, userID string) (Profile, error)
	SaveProfile(ctx context.Context, userID string, p Profile) error
	// UserByAPIKeyHash finds the user whose profile carries hash.
	UserByAPIKeyHash(ctx context.Context, hash string) (string, error)
}

// Decode unmarshals docs into T. Documents that fail to decode are skipped and
// reported in the returned error.
func Decode[T any](docs []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}

func validUser(userID string) error {
	if !ident.Valid(userID) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return nil
}

func validate(userID string, writes []Write) error {
	if err := validUser(userID); err != nil {
		return err
	}
	for _, w := range writes {
		switch w.Collection {
		case Tasks, Days, DayTasks:
		default:
			return fmt.Errorf("remote: unknown collection %q", w.Collection)
		}
		if !ident.Valid(w.ID) {
			return fmt.Errorf("remote: invalid document id %q", w.ID)
		}
	}
	return nil
}

// encode renders w against the current document, if any. It returns nil data
// for deletes.
func encode(w Write, existing []byte) ([]byte, error) {
	switch w.Op {
	case OpSet:
		return json.Marshal(w.Doc)
	case OpMerge:
		doc := map[string]json.RawMessage{}
		if len(existing) > 0 {
			if err := json.Unmarshal(existing, &doc); err != nil {
				return nil, fmt.Errorf("remote: merge into %s/%s: %w", w.Collection, w.ID, err)
			}
		}
		for k, v := range w.Fields {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("remote: merge field %s: %w", k, err)
			}
			doc[k] = b
		}
		return json.Marshal(doc)
	case OpDelete:
		return nil, nil
	}
	return nil, fmt.Errorf("remote: unknown write op %d", w.Op)
}
