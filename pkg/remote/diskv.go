package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const (
	usersRoot   = "users"
	profileName = "profile"
	tempDirName = ".tmp"
)

// Open returns a Store backed by diskv under basePath. Documents live at
// users/<uid>/<collection>/<id>, profiles at users/<uid>/profile.
func Open(basePath string) (Store, error) {
	if basePath == "" {
		return nil, errors.New("remote: base path required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("remote: ensure base path: %w", err)
	}
	return &diskStore{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			TempDir:           filepath.Join(basePath, tempDirName),
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Several processes share the tree; an in-process read cache
			// would serve stale documents.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
	}, nil
}

type diskStore struct {
	d        *diskv.Diskv
	basePath string

	// mu keeps batches from interleaving inside this process.
	mu sync.Mutex
}

func (s *diskStore) Commit(ctx context.Context, userID string, writes ...Write) error {
	if err := validate(userID, writes); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := docKey(userID, w.Collection, w.ID)
		if w.Op == OpDelete {
			if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remote: delete %s: %w", key, err)
			}
			continue
		}
		var existing []byte
		if w.Op == OpMerge {
			var err error
			existing, err = s.d.Read(key)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remote: read %s: %w", key, err)
			}
		}
		data, err := encode(w, existing)
		if err != nil {
			return err
		}
		if err := s.d.Write(key, data); err != nil {
			return fmt.Errorf("remote: write %s: %w", key, err)
		}
	}
	return nil
}

func (s *diskStore) Get(_ context.Context, userID string, c Collection, id string) (json.RawMessage, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	data, err := s.d.Read(docKey(userID, c, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
		}
		return nil, err
	}
	return data, nil
}

func (s *diskStore) List(ctx context.Context, userID string, c Collection) ([]json.RawMessage, error) {
	if err := validUser(userID); err != nil {
		return nil, err
	}
	prefix := collectionPrefix(userID, c)
	var keys []string
	for key := range s.d.KeysPrefix(prefix, ctx.Done()) {
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)

	docs := make([]json.RawMessage, 0, len(keys))
	for _, key := range keys {
		data, err := s.d.Read(key)
		if err != nil {
			// Deleted between the walk and the read.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("remote: read %s: %w", key, err)
		}
		docs = append(docs, data)
	}
	return docs, nil
}

func (s *diskStore) Profile(_ context.Context, userID string) (Profile, error) {
	if err := validUser(userID); err != nil {
		return Profile{}, err
	}
	data, err := s.d.Read(profileKey(userID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
		}
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("remote: decode profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *diskStore) SaveProfile(_ context.Context, userID string, p Profile) error {
	if err := validUser(userID); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.Write(profileKey(userID), data)
}

func (s *diskStore) UserByAPIKeyHash(ctx context.Context, hash string) (string, error) {
	if hash == "" {
		return "", ErrNotFound
	}
	for key := range s.d.KeysPrefix(usersRoot+"/", ctx.Done()) {
		parts := strings.Split(key, "/")
		if len(parts) != 3 || parts[2] != profileName {
			continue
		}
		p, err := s.Profile(ctx, parts[1])
		if err != nil {
			continue
		}
		if p.APIKeyHash == hash {
			return parts[1], nil
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", ErrNotFound
}

func (s *diskStore) collectionDir(userID string, c Collection) string {
	return filepath.Join(s.basePath, usersRoot, userID, string(c))
}

func docKey(userID string, c Collection, id string) string {
	return strings.Join([]string{usersRoot, userID, string(c), id}, "/")
}

func collectionPrefix(userID string, c Collection) string {
	return strings.Join([]string{usersRoot, userID, string(c), ""}, "/")
}

func profileKey(userID string) string {
	return strings.Join([]string{usersRoot, userID, profileName}, "/")
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}
