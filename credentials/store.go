// Package credentials persists API keys saved by the login command.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultProfile is used when no profile is named.
const DefaultProfile = "default"

// ErrNoProfile is returned by Get for a profile without a stored key.
var ErrNoProfile = errors.New("credentials: profile not found")

// Profile is one stored credential.
type Profile struct {
	APIKey string `yaml:"api_key"`
}

// Store is a YAML credentials file. The zero value is not usable; create
// one with New.
type Store struct {
	path     string
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultPath returns the credentials file under the user config
// directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "sdlprint", "credentials.yaml"), nil
}

// New returns an empty store backed by path.
func New(path string) *Store {
	return &Store{path: path, Profiles: make(map[string]Profile)}
}

// Load reads the store at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if s.Profiles == nil {
		s.Profiles = make(map[string]Profile)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Save writes the store, readable by the owner only.
func (s *Store) Save() error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(s.path, 0o600)
}

// Get returns the API key stored for profile.
func (s *Store) Get(profile string) (string, error) {
	p, ok := s.Profiles[profileName(profile)]
	if !ok || p.APIKey == "" {
		return "", fmt.Errorf("%w: %s", ErrNoProfile, profileName(profile))
	}
	return p.APIKey, nil
}

// Set stores key under profile, replacing any previous key.
func (s *Store) Set(profile, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: empty API key")
	}
	s.Profiles[profileName(profile)] = Profile{APIKey: key}
	return nil
}

// Remove deletes profile and reports whether it existed.
func (s *Store) Remove(profile string) bool {
	name := profileName(profile)
	_, ok := s.Profiles[name]
	delete(s.Profiles, name)
	return ok
}

// Names lists the stored profiles in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func profileName(p string) string {
	if p == "" {
		return DefaultProfile
	}
	return p
}
