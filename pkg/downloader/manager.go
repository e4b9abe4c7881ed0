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

// Package downloader fetches plugin packages into the output directory,
// one concurrent worker per package.
package downloader

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/gothickitty93/steam-workshop-downloader/pkg/getter"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/state"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/steam"
)

// PackageExtension is the file extension of a downloaded plugin package.
const PackageExtension = ".vpk"

// Manager handles one download pass over a set of plugins.
type Manager struct {
	// Out is used to print progress and warnings.
	Out io.Writer
	// OutputDir is the directory the packages are written to.
	OutputDir string
	// Limit caps the number of new downloads dispatched in a single pass.
	// 0 means unlimited. Plugins held back by the cap are returned in
	// Result.Remaining untouched so a later pass picks them up.
	Limit int
	// Pause is slept by a worker after its download finishes, as a
	// politeness throttle toward the remote host. It does not delay
	// sibling downloads.
	Pause time.Duration
	// Getter collection for the operation
	Getters getter.Providers
}

// Result reports the outcome of one download pass.
type Result struct {
	// Succeeded maps plugin id to the version now present locally. It
	// includes up-to-date plugins that needed no download.
	Succeeded map[string]state.PluginInfo
	// Remaining holds the plugins this pass did not land: failed
	// downloads plus any held back by the download cap.
	Remaining []steam.PublishedFile
	// Failed counts actual download failures in this pass. Plugins held
	// back by the cap are not failures.
	Failed int
	// Errors accumulates the per-plugin download errors.
	Errors *multierror.Error
}

// Run downloads the given plugins concurrently.
//
// A plugin is skipped without a network call when the catalog exposes no
// download URL for it, or when prior already records it at the same
// time_updated. Everything else is dispatched to its own worker, up to
// Limit new downloads. Workers are joined before Run returns; a failure in
// one worker never disturbs its siblings.
func (m *Manager) Run(plugins []steam.PublishedFile, prior map[string]state.PluginInfo) *Result {
	res := &Result{Succeeded: map[string]state.PluginInfo{}}

	var pending []steam.PublishedFile
	dispatched := 0
	for _, p := range plugins {
		if p.FileURL == "" {
			// The catalog has no download link for this item. Record it as
			// satisfied so it stays tracked instead of failing every pass.
			res.Succeeded[p.PublishedFileID] = state.PluginInfo{Title: p.Title, TimeUpdated: p.TimeUpdated}
			continue
		}
		if old, ok := prior[p.PublishedFileID]; ok && old.TimeUpdated == p.TimeUpdated {
			fmt.Fprintf(m.Out, "Plugin %s already up-to-date\n", displayName(p))
			res.Succeeded[p.PublishedFileID] = state.PluginInfo{Title: p.Title, TimeUpdated: p.TimeUpdated}
			continue
		}
		if m.Limit > 0 && dispatched >= m.Limit {
			res.Remaining = append(res.Remaining, p)
			continue
		}
		dispatched++
		pending = append(pending, p)
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := range pending {
		p := pending[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			fmt.Fprintf(m.Out, "Downloading %s\n", displayName(p))
			mu.Unlock()

			if err := m.download(p); err != nil {
				mu.Lock()
				res.Failed++
				res.Remaining = append(res.Remaining, p)
				res.Errors = multierror.Append(res.Errors, errors.Wrapf(err, "plugin %s", displayName(p)))
				fmt.Fprintf(m.Out, "...Unable to download %s:\n\t%s\n", displayName(p), err)
				mu.Unlock()
				return
			}

			mu.Lock()
			res.Succeeded[p.PublishedFileID] = state.PluginInfo{Title: p.Title, TimeUpdated: p.TimeUpdated}
			fmt.Fprintf(m.Out, "...Successfully downloaded %s\n", displayName(p))
			mu.Unlock()

			if m.Pause > 0 {
				time.Sleep(m.Pause)
			}
		}()
	}
	wg.Wait()

	if m.Limit > 0 && res.Failed == 0 && len(res.Remaining) > 0 {
		fmt.Fprintf(m.Out, "Reached the download cap (%d); %d plugins deferred to the next run\n", m.Limit, len(res.Remaining))
	}

	return res
}

func (m *Manager) download(p steam.PublishedFile) error {
	u, err := url.Parse(p.FileURL)
	if err != nil {
		return errors.Wrapf(err, "invalid download URL %q", p.FileURL)
	}

	g, err := m.Getters.ByScheme(u.Scheme)
	if err != nil {
		return err
	}

	data, err := g.Get(p.FileURL)
	if err != nil {
		return err
	}

	dest, err := PackagePath(m.OutputDir, p.PublishedFileID)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data.Bytes(), 0644)
}

// PackagePath returns the on-disk path for a plugin package. The id comes
// from the remote catalog, so it is joined without letting it escape the
// output directory.
func PackagePath(outputDir, id string) (string, error) {
	return securejoin.SecureJoin(outputDir, id+PackageExtension)
}

func displayName(p steam.PublishedFile) string {
	return fmt.Sprintf("%q (%s%s)", p.Title, p.PublishedFileID, PackageExtension)
}
