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

// Package action holds the top-level operations the workshop CLI exposes.
package action

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"

	"github.com/gothickitty93/steam-workshop-downloader/pkg/downloader"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/getter"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/resolver"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/state"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/steam"
)

const (
	// DefaultMaxAttempts bounds the download retry loop.
	DefaultMaxAttempts = 5
	// DefaultBackoff is slept between download attempts.
	DefaultBackoff = 15 * time.Second
	// DefaultPause is the per-download politeness pause.
	DefaultPause = 10 * time.Second
)

// ErrNoCollections indicates that no collection ids were given and none
// were found in the saved state.
var ErrNoCollections = errors.New("no collection ids given and none found in the saved state")

// CatalogClient is the part of the Steam client the sync needs.
type CatalogClient interface {
	CollectionDetails(ids []string) ([]steam.CollectionDetails, error)
	FileDetails(ids []string) ([]steam.PublishedFile, error)
}

// Sync mirrors the plugins referenced by a set of Workshop collections
// into a local directory, pruning plugins no collection references
// anymore.
type Sync struct {
	// Out is used to print progress and warnings.
	Out io.Writer
	// Client performs the catalog lookups.
	Client CatalogClient
	// StateFile is the path of the saved-state file.
	StateFile string
	// OutputDir is the directory the packages are written to.
	OutputDir string
	// Limit caps new downloads per attempt. 0 means unlimited.
	Limit int
	// MaxAttempts bounds the download retry loop.
	MaxAttempts int
	// Backoff is slept between download attempts.
	Backoff time.Duration
	// Pause is the per-download politeness pause.
	Pause time.Duration
	// Getter collection handed to the download manager.
	Getters getter.Providers
	// Wait is the sleep function for the backoff. Tests replace it.
	Wait func(time.Duration)
}

// NewSync creates a Sync with the default retry policy.
func NewSync(client CatalogClient, out io.Writer) *Sync {
	return &Sync{
		Out:         out,
		Client:      client,
		MaxAttempts: DefaultMaxAttempts,
		Backoff:     DefaultBackoff,
		Pause:       DefaultPause,
		Getters:     getter.Getters(),
		Wait:        time.Sleep,
	}
}

// Run performs one full synchronization.
//
// The run resolves the collections, reconciles the result against the
// saved state, prunes deprecated plugins, and then downloads in bounded
// retry attempts, persisting the state after every attempt. A catalog
// failure aborts the run; download failures are retried and, once the
// attempts are exhausted, reported as a warning rather than an error.
func (s *Sync) Run(collectionIDs []string) error {
	st, err := state.LoadState(s.StateFile)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(collectionIDs)+len(st.Collections))
	ids = append(ids, collectionIDs...)
	for _, id := range st.Collections {
		found := false
		for _, given := range collectionIDs {
			if given == id {
				found = true
				break
			}
		}
		if !found {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return ErrNoCollections
	}

	r := resolver.New(s.Client)
	r.Log = func(format string, v ...interface{}) {
		fmt.Fprintf(s.Out, format+"\n", v...)
	}
	res, err := r.Resolve(ids)
	if err != nil {
		return errors.Wrap(err, "resolving collections")
	}
	st.MergeCollections(res.ValidCollections)

	prior, err := state.ClonePlugins(st.Plugins)
	if err != nil {
		return err
	}

	if deprecated := state.Deprecated(res.PluginIDs, prior); len(deprecated) > 0 {
		info, err := s.Client.FileDetails(deprecated)
		if err != nil {
			return errors.Wrap(err, "looking up deprecated plugins")
		}
		fmt.Fprintln(s.Out, "Some plugins are no longer in the workshop collection(s). Removing deprecated plugins:")
		fmt.Fprintln(s.Out, formatDeprecated(info))
		for _, id := range deprecated {
			if err := s.removePackage(id); err != nil {
				return err
			}
			st.RemovePlugin(id)
			delete(prior, id)
		}
	}

	// Download everything a collection still references plus everything
	// already tracked, then rebuild the plugin map from what actually
	// lands. A crash mid-run therefore loses at most one batch.
	all := res.PluginIDs
	for id := range prior {
		found := false
		for _, cur := range res.PluginIDs {
			if cur == id {
				found = true
				break
			}
		}
		if !found {
			all = append(all, id)
		}
	}
	st.Plugins = map[string]state.PluginInfo{}

	var pending []steam.PublishedFile
	if len(all) > 0 {
		pending, err = s.Client.FileDetails(all)
		if err != nil {
			return errors.Wrap(err, "looking up plugin details")
		}
	}

	m := &downloader.Manager{
		Out:       s.Out,
		OutputDir: s.OutputDir,
		Limit:     s.Limit,
		Pause:     s.Pause,
		Getters:   s.Getters,
	}

	for attempt := 1; ; attempt++ {
		dl := m.Run(pending, prior)
		st.MergePlugins(dl.Succeeded)
		if err := st.WriteFile(s.StateFile, 0644); err != nil {
			return errors.Wrap(err, "writing saved state")
		}

		if dl.Failed == 0 {
			if len(dl.Remaining) == 0 {
				fmt.Fprintln(s.Out, "Downloaded all plugins successfully")
			}
			return nil
		}
		if attempt >= s.MaxAttempts {
			fmt.Fprintf(s.Out, "Gave up after %d attempts; %d plugins were not synced:\n\t%s\n",
				s.MaxAttempts, len(dl.Remaining), dl.Errors)
			return nil
		}

		fmt.Fprintf(s.Out, "%d plugins failed to download, retrying in %s\n", dl.Failed, s.Backoff)
		s.Wait(s.Backoff)
		fmt.Fprintf(s.Out, "--------------------------------------------------\n")
		fmt.Fprintf(s.Out, "Failed downloads (attempt #%d / %d)\n", attempt+1, s.MaxAttempts)
		pending = dl.Remaining
	}
}

func (s *Sync) removePackage(id string) error {
	path, err := downloader.PackagePath(s.OutputDir, id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing deprecated plugin %s", id)
	}
	return nil
}

func formatDeprecated(info []steam.PublishedFile) string {
	table := uitable.New()
	table.MaxColWidth = 50
	table.AddRow("ID", "TITLE")
	for _, p := range info {
		table.AddRow(p.PublishedFileID, p.Title)
	}
	return table.String()
}
