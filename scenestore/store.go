// Package scenestore persists scenes as JSON files in one directory and
// watches that directory so externally edited scenes can be reloaded into
// live sessions.
package scenestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a named scene does not exist.
var ErrNotFound = errors.New("scene not found")

// validName keeps scene names inside the store directory; anything that
// could traverse out is rejected.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._ -]*$`)

// Scene is one saved scene document.
type Scene struct {
	Name      string    `json:"name"`
	HTML      string    `json:"html"`
	CSS       string    `json:"css"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes scenes under one directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("scene directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scene directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a scene atomically (temp file + rename) and stamps its
// update time.
func (s *Store) Save(scene Scene) error {
	if !validName.MatchString(scene.Name) {
		return fmt.Errorf("invalid scene name %q", scene.Name)
	}
	scene.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".scene-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, s.path(scene.Name))
}

// Load reads one scene by name.
func (s *Store) Load(name string) (Scene, error) {
	if !validName.MatchString(name) {
		return Scene{}, fmt.Errorf("invalid scene name %q", name)
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Scene{}, ErrNotFound
		}
		return Scene{}, err
	}
	var scene Scene
	if err := json.Unmarshal(data, &scene); err != nil {
		return Scene{}, fmt.Errorf("corrupt scene file %q: %w", name, err)
	}
	scene.Name = name
	return scene, nil
}

// List returns every stored scene sorted by name.
func (s *Store) List() ([]Scene, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var scenes []Scene
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		scene, err := s.Load(name)
		if err != nil {
			// Corrupt or foreign files do not break listing.
			continue
		}
		scenes = append(scenes, scene)
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Name < scenes[j].Name })
	return scenes, nil
}

// Delete removes one scene.
func (s *Store) Delete(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid scene name %q", name)
	}
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
