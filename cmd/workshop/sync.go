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

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gothickitty93/steam-workshop-downloader/pkg/action"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/steam"
)

const syncDesc = `
Sync downloads every plugin referenced by the given Workshop collections,
including nested sub-collections, into the output directory.

Collection ids given on the command line are merged with the ids recorded
in the saved state, so a bare 'workshop sync' refreshes everything synced
before. Plugins that disappeared from every collection are removed. Plugins
already present at their current version are not downloaded again.

    $ workshop sync -o /srv/l4d2/addons 2764965248

Download failures are retried a few times before the run gives up; whatever
downloaded successfully is kept either way.
`

type syncOptions struct {
	collectionIDs []string
}

func newSyncCmd(out io.Writer) *cobra.Command {
	o := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync [COLLECTION_ID...]",
		Short: "download every plugin referenced by the given Workshop collections",
		Long:  syncDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.collectionIDs = args
			return o.run(out)
		},
	}

	return cmd
}

func (o *syncOptions) run(out io.Writer) error {
	outputDir, err := filepath.Abs(settings.OutputDir)
	if err != nil {
		return err
	}
	fi, err := os.Stat(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("%s: path doesn't exist", outputDir)
		}
		return err
	}
	if !fi.IsDir() {
		return errors.Errorf("%s is not a directory", outputDir)
	}

	client, err := steam.New(settings.APIHost)
	if err != nil {
		return errors.Wrapf(err, "unable to create connection to %q", settings.APIHost)
	}
	client.Log = debug

	sync := action.NewSync(client, out)
	sync.OutputDir = outputDir
	sync.StateFile = settings.StateFilePath(outputDir)
	sync.Limit = settings.Limit

	return sync.Run(o.collectionIDs)
}
