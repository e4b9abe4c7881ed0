/*
Copyright The Helm Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package state reads and writes the saved-state file that records which
// collections are mirrored and which plugin versions are installed.
package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"
)

// FileName is the name of the saved-state file inside the output directory.
const FileName = "addons.lst"

// PluginInfo records the installed version of one plugin.
type PluginInfo struct {
	Title       string `json:"title"`
	TimeUpdated int64  `json:"time_updated"`
}

// State represents the addons.lst file
type State struct {
	Collections []string              `json:"collections"`
	Plugins     map[string]PluginInfo `json:"plugins"`
}

// NewState generates an empty state record.
func NewState() *State {
	return &State{
		Collections: []string{},
		Plugins:     map[string]PluginInfo{},
	}
}

// LoadState takes a file at the given path and returns a State object.
//
// A missing file is not an error; it yields the empty state so a first run
// starts from scratch.
func LoadState(path string) (*State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	s := NewState()
	if err := json.Unmarshal(b, s); err != nil {
		return nil, errors.Wrapf(err, "couldn't load saved state (%s)", path)
	}
	if s.Plugins == nil {
		s.Plugins = map[string]PluginInfo{}
	}
	return s, nil
}

// HasCollection returns true if the given id is already a tracked collection.
func (s *State) HasCollection(id string) bool {
	for _, c := range s.Collections {
		if c == id {
			return true
		}
	}
	return false
}

// MergeCollections adds the given collection ids to the tracked set,
// keeping the existing order stable and skipping ids already present.
func (s *State) MergeCollections(ids []string) {
	for _, id := range ids {
		if !s.HasCollection(id) {
			s.Collections = append(s.Collections, id)
		}
	}
}

// MergePlugins folds the given plugin records into the state. Existing
// entries are overwritten; the newest write wins.
func (s *State) MergePlugins(plugins map[string]PluginInfo) {
	for id, info := range plugins {
		s.Plugins[id] = info
	}
}

// RemovePlugin removes the entry from the tracked plugins.
func (s *State) RemovePlugin(id string) bool {
	if _, ok := s.Plugins[id]; !ok {
		return false
	}
	delete(s.Plugins, id)
	return true
}

// WriteFile writes the state to the given path as indented JSON.
//
// The write is guarded by an advisory file lock so two runs sharing an
// output directory do not interleave their state writes.
func (s *State) WriteFile(path string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil && !os.IsExist(err) {
		return err
	}

	fileLock := flock.New(lockPath(path))
	lockCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	locked, err := fileLock.TryLockContext(lockCtx, time.Second)
	if err == nil && locked {
		defer fileLock.Unlock()
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func lockPath(path string) string {
	if ext := filepath.Ext(path); len(ext) > 0 && len(ext) < len(path) {
		return strings.TrimSuffix(path, ext) + ".lock"
	}
	return path + ".lock"
}

// Deprecated returns the tracked plugin ids that are absent from the
// current resolution, sorted for stable output. Those plugins are no
// longer referenced by any collection and should be pruned.
func Deprecated(current []string, plugins map[string]PluginInfo) []string {
	keep := make(map[string]bool, len(current))
	for _, id := range current {
		keep[id] = true
	}

	var deprecated []string
	for id := range plugins {
		if !keep[id] {
			deprecated = append(deprecated, id)
		}
	}
	sort.Strings(deprecated)
	return deprecated
}

// ClonePlugins returns a deep copy of the given plugin map, so a caller
// can rebuild the live map while still consulting the prior versions.
func ClonePlugins(plugins map[string]PluginInfo) (map[string]PluginInfo, error) {
	if len(plugins) == 0 {
		return map[string]PluginInfo{}, nil
	}
	c, err := copystructure.Copy(plugins)
	if err != nil {
		return nil, err
	}
	return c.(map[string]PluginInfo), nil
}
