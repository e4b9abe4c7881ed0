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

package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateMissing(t *testing.T) {
	s, err := LoadState(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Empty(t, s.Collections)
	assert.Empty(t, s.Plugins)
	assert.NotNil(t, s.Plugins, "plugin map must be usable on a fresh state")
}

func TestLoadStateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadState(path)
	require.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	s := NewState()
	s.MergeCollections([]string{"111", "222"})
	s.MergePlugins(map[string]PluginInfo{
		"1001": {Title: "A Plugin", TimeUpdated: 100},
		"1002": {Title: "Another", TimeUpdated: 200},
	})
	require.NoError(t, s.WriteFile(path, 0644))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestMergeCollections(t *testing.T) {
	s := NewState()
	s.MergeCollections([]string{"111", "222"})
	s.MergeCollections([]string{"222", "333"})
	assert.Equal(t, []string{"111", "222", "333"}, s.Collections)
}

func TestMergePluginsLastWriteWins(t *testing.T) {
	s := NewState()
	s.MergePlugins(map[string]PluginInfo{"1001": {Title: "Old", TimeUpdated: 100}})
	s.MergePlugins(map[string]PluginInfo{"1001": {Title: "New", TimeUpdated: 200}})
	assert.Equal(t, PluginInfo{Title: "New", TimeUpdated: 200}, s.Plugins["1001"])
}

func TestRemovePlugin(t *testing.T) {
	s := NewState()
	s.MergePlugins(map[string]PluginInfo{"1001": {Title: "A", TimeUpdated: 100}})
	assert.True(t, s.RemovePlugin("1001"))
	assert.False(t, s.RemovePlugin("1001"))
	assert.Empty(t, s.Plugins)
}

func TestDeprecated(t *testing.T) {
	plugins := map[string]PluginInfo{
		"a": {TimeUpdated: 1},
		"b": {TimeUpdated: 2},
		"c": {TimeUpdated: 3},
	}

	tests := []struct {
		name    string
		current []string
		expect  []string
	}{
		{name: "all still referenced", current: []string{"a", "b", "c", "d"}, expect: nil},
		{name: "one dropped", current: []string{"a", "c"}, expect: []string{"b"}},
		{name: "all dropped", current: []string{}, expect: []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Deprecated(tt.current, plugins))
		})
	}
}

func TestClonePlugins(t *testing.T) {
	orig := map[string]PluginInfo{"1001": {Title: "A", TimeUpdated: 100}}
	clone, err := ClonePlugins(orig)
	require.NoError(t, err)
	assert.Equal(t, orig, clone)

	clone["1001"] = PluginInfo{Title: "B", TimeUpdated: 200}
	assert.Equal(t, PluginInfo{Title: "A", TimeUpdated: 100}, orig["1001"])

	empty, err := ClonePlugins(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
}
