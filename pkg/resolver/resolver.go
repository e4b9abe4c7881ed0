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

// Package resolver walks nested Workshop collections into a flat set of
// plugin ids.
package resolver

import (
	"github.com/gothickitty93/steam-workshop-downloader/pkg/steam"
)

// CollectionFetcher is the part of the catalog client the resolver needs.
type CollectionFetcher interface {
	CollectionDetails(ids []string) ([]steam.CollectionDetails, error)
}

// Resolver expands collection ids, level by level, into the plugin ids
// they reference.
type Resolver struct {
	// Fetcher performs the batched collection lookups.
	Fetcher CollectionFetcher

	// The internal logger to use
	Log func(string, ...interface{})
}

// New creates a new Resolver backed by the given fetcher.
func New(f CollectionFetcher) *Resolver {
	return &Resolver{
		Fetcher: f,
		Log:     nopLogger,
	}
}

var nopLogger = func(_ string, _ ...interface{}) {}

// Result is the outcome of a full resolution.
type Result struct {
	// PluginIDs holds every plugin id reachable from the requested
	// collections, without duplicates.
	PluginIDs []string
	// ValidCollections holds the collection ids the catalog recognized,
	// including nested ones. Collections that came back without children
	// are excluded.
	ValidCollections []string
}

// Resolve walks the given collections and every nested sub-collection and
// returns the flattened plugin ids.
//
// The walk is iterative with one batched lookup per nesting level, and a
// visited set spans the whole resolution so a catalog response that
// references a collection as its own descendant cannot loop. Any error
// from the fetcher aborts the whole resolution; partial results are
// discarded.
func (r *Resolver) Resolve(collectionIDs []string) (*Result, error) {
	res := &Result{}
	visited := map[string]bool{}
	seen := map[string]bool{}

	queue := make([]string, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		if !visited[id] {
			visited[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		details, err := r.Fetcher.CollectionDetails(queue)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, col := range details {
			// No children means the catalog did not recognize the id.
			if len(col.Children) == 0 {
				continue
			}
			res.ValidCollections = append(res.ValidCollections, col.PublishedFileID)

			for _, child := range col.Children {
				switch child.FileType {
				case steam.FileTypeFile:
					if !seen[child.PublishedFileID] {
						seen[child.PublishedFileID] = true
						res.PluginIDs = append(res.PluginIDs, child.PublishedFileID)
					}
				case steam.FileTypeCollection:
					if !visited[child.PublishedFileID] {
						visited[child.PublishedFileID] = true
						next = append(next, child.PublishedFileID)
					}
				default:
					r.Log("unrecognized filetype %d on %s", child.FileType, child.PublishedFileID)
				}
			}
		}
		queue = next
	}

	return res, nil
}
