// Package filetier stores credentials in a JSON file so a remembered session
// survives process restarts.
package filetier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/viteviteapp/credentials"
	apperrors "github.com/jrsteele09/viteviteapp/internal/errors"
)

var _ credentials.Tier = (*FileTier)(nil)

// FileTier keeps one profile's credential fields in a file
type FileTier struct {
	path    string
	profile string
	durable bool
	lock    sync.Mutex
}

// New creates a durable file tier. Profiles share the file; each one owns its own section.
func New(path, profile string) *FileTier {
	return &FileTier{path: path, profile: profile, durable: true}
}

// NewSession creates a file tier for session scoped credentials. The caller
// picks a path that does not outlive the session, such as one keyed by the
// parent shell under the temp directory.
func NewSession(path, profile string) *FileTier {
	return &FileTier{path: path, profile: profile}
}

type fileSnapshot struct {
	Profiles map[string]map[string]string `json:"profiles"`
}

func (f *FileTier) Name() string {
	if !f.durable {
		return "session-file"
	}
	return "file"
}

func (f *FileTier) Durable() bool {
	return f.durable
}

func (f *FileTier) Path() string {
	return f.path
}

func (f *FileTier) Load(_ context.Context) (map[string]string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	snap, err := f.load()
	if err != nil {
		return nil, err
	}
	values := snap.Profiles[f.profile]
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

func (f *FileTier) Replace(_ context.Context, values map[string]string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	snap, err := f.load()
	if err != nil {
		return err
	}
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	snap.Profiles[f.profile] = copied
	return f.save(snap)
}

func (f *FileTier) Clear(_ context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	snap, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := snap.Profiles[f.profile]; !ok {
		return nil
	}
	delete(snap.Profiles, f.profile)
	if len(snap.Profiles) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return unavailable(err)
		}
		return nil
	}
	return f.save(snap)
}

func (f *FileTier) load() (*fileSnapshot, error) {
	snap := &fileSnapshot{Profiles: map[string]map[string]string{}}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return nil, unavailable(err)
	}
	if err = json.Unmarshal(data, snap); err != nil {
		return nil, unavailable(fmt.Errorf("decode %s: %w", f.path, err))
	}
	if snap.Profiles == nil {
		snap.Profiles = map[string]map[string]string{}
	}
	return snap, nil
}

// save writes through a temp file and a rename so readers never see a partial file
func (f *FileTier) save(snap *fileSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return unavailable(err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return unavailable(err)
	}
	tmp := f.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return unavailable(err)
	}
	if err = os.Rename(tmp, f.path); err != nil {
		return unavailable(err)
	}
	return nil
}

func unavailable(err error) error {
	return fmt.Errorf("file tier: %w: %w", apperrors.ErrStorageUnavailable, err)
}
