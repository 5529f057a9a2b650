package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EnvVar overrides the stored active key when set
const EnvVar = "PHOTOROOM_API_KEY"

// EnvKeyID identifies the key taken from EnvVar
const EnvKeyID = "env"

// Type is the API environment a key belongs to
type Type string

const (
	Sandbox Type = "sandbox"
	Live    Type = "live"
)

// Valid reports whether t is a known key type
func (t Type) Valid() bool {
	return t == Sandbox || t == Live
}

// Title returns "Sandbox" or "Live"
func (t Type) Title() string {
	switch t {
	case Sandbox:
		return "Sandbox"
	case Live:
		return "Live"
	}
	return string(t)
}

// TypeOf guesses a key's type from its prefix
func TypeOf(secret string) Type {
	if strings.HasPrefix(secret, "sandbox_") {
		return Sandbox
	}
	return Live
}

// Key is a stored API key
type Key struct {
	ID        string
	Name      string
	Type      Type
	Secret    string
	Active    bool
	CreatedAt time.Time
}

// record is the on-disk form of a Key; Secret is encrypted
type record struct {
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Key       string    `json:"key"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type storeFile struct {
	APIKeys   map[string]record `json:"apiKeys"`
	ActiveKey string            `json:"activeKey,omitempty"`
}

// Store keeps API keys encrypted in a JSON file. Every mutation is saved
// before it returns.
type Store struct {
	file   string
	secret [32]byte
	getenv func(string) string
	log    *slog.Logger

	mu     sync.RWMutex
	keys   map[string]*Key
	active string
}

// DefaultPath returns ~/.config/photoroom-cli/keys.json
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "photoroom-cli", "keys.json"), nil
}

// Open loads the store at file. A missing file is an empty store.
func Open(file string, log *slog.Logger) (*Store, error) {
	secret, err := machineKey()
	if err != nil {
		return nil, err
	}
	return open(file, secret, os.Getenv, log)
}

func open(file string, secret [32]byte, getenv func(string) string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		file:   file,
		secret: secret,
		getenv: getenv,
		log:    log,
		keys:   make(map[string]*Key),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read key store: %w", err)
	}

	var sf storeFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse key store %s: %w", s.file, err)
	}

	for id, rec := range sf.APIKeys {
		secret, err := decrypt(s.secret, rec.Key)
		if err != nil {
			s.log.Warn("skipping unreadable API key", "id", id, "name", rec.Name, "err", err)
			continue
		}
		s.keys[id] = &Key{
			ID:        id,
			Name:      rec.Name,
			Type:      rec.Type,
			Secret:    secret,
			Active:    rec.Active,
			CreatedAt: rec.CreatedAt,
		}
	}
	if _, ok := s.keys[sf.ActiveKey]; ok {
		s.active = sf.ActiveKey
	}
	return nil
}

// save writes the store atomically. Caller holds s.mu.
func (s *Store) save() error {
	sf := storeFile{APIKeys: make(map[string]record, len(s.keys)), ActiveKey: s.active}
	for id, k := range s.keys {
		enc, err := encrypt(s.secret, k.Secret)
		if err != nil {
			return fmt.Errorf("encrypt key %s: %w", id, err)
		}
		sf.APIKeys[id] = record{
			Name:      k.Name,
			Type:      k.Type,
			Key:       enc,
			Active:    k.Active,
			CreatedAt: k.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.file)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create key store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".keys-*.json")
	if err != nil {
		return fmt.Errorf("write key store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write key store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.file)
}

type snapshot struct {
	keys   map[string]*Key
	active string
}

func (s *Store) snapshotLocked() snapshot {
	keys := make(map[string]*Key, len(s.keys))
	for id, k := range s.keys {
		c := *k
		keys[id] = &c
	}
	return snapshot{keys: keys, active: s.active}
}

// commitLocked saves the store, rolling memory back to snap when the
// write fails
func (s *Store) commitLocked(snap snapshot) error {
	if err := s.save(); err != nil {
		s.keys = snap.keys
		s.active = snap.active
		return err
	}
	return nil
}

// Add stores a new key and returns its ID. With activate, every other key
// is deactivated.
func (s *Store) Add(name string, typ Type, secret string, activate bool) (string, error) {
	if !typ.Valid() {
		return "", fmt.Errorf("unknown key type %q", typ)
	}
	if strings.TrimSpace(secret) == "" {
		return "", errors.New("API key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshotLocked()

	id := string(typ) + "-" + uuid.New().String()
	s.keys[id] = &Key{
		ID:        id,
		Name:      name,
		Type:      typ,
		Secret:    secret,
		CreatedAt: time.Now().UTC(),
	}
	if activate {
		s.activateLocked(id)
	}

	if err := s.commitLocked(snap); err != nil {
		return "", err
	}
	return id, nil
}

// List returns all stored keys, oldest first. Secrets are omitted.
func (s *Store) List() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]Key, 0, len(s.keys))
	for _, k := range s.keys {
		c := *k
		c.Secret = ""
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].CreatedAt.Before(keys[j].CreatedAt)
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

// Get returns a stored key with its secret
func (s *Store) Get(id string) (Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[id]
	if !ok {
		return Key{}, false
	}
	return *k, true
}

// Delete removes a key. It reports false when id is unknown.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		return false, nil
	}
	snap := s.snapshotLocked()
	delete(s.keys, id)
	if s.active == id {
		s.active = ""
	}
	return true, s.commitLocked(snap)
}

func (s *Store) activateLocked(id string) {
	for _, k := range s.keys {
		k.Active = false
	}
	s.keys[id].Active = true
	s.active = id
}

// Activate makes id the active key and deactivates all others
func (s *Store) Activate(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[id]; !ok {
		return false, nil
	}
	snap := s.snapshotLocked()
	s.activateLocked(id)
	return true, s.commitLocked(snap)
}

// Deactivate clears the active flag of id
func (s *Store) Deactivate(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keys[id]
	if !ok {
		return false, nil
	}
	snap := s.snapshotLocked()
	k.Active = false
	if s.active == id {
		s.active = ""
	}
	return true, s.commitLocked(snap)
}

// Active returns the key requests should use. PHOTOROOM_API_KEY wins over
// the stored active key.
func (s *Store) Active() (Key, bool) {
	if env := s.getenv(EnvVar); env != "" {
		return Key{
			ID:     EnvKeyID,
			Name:   "Environment Variable",
			Type:   TypeOf(env),
			Secret: env,
			Active: true,
		}, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[s.active]
	if !ok {
		return Key{}, false
	}
	return *k, true
}

// SuggestName returns the first unused "Sandbox Key N" or "Live Key N"
func (s *Store) SuggestName(typ Type) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	used := make(map[string]bool, len(s.keys))
	for _, k := range s.keys {
		used[k.Name] = true
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s Key %d", typ.Title(), n)
		if !used[name] {
			return name
		}
	}
}
