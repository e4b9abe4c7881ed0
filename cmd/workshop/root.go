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

	"github.com/spf13/cobra"
)

var globalUsage = `The Steam Workshop collection mirror.

Common actions for workshop:

- workshop sync:    mirror one or more Workshop collections locally
- workshop list:    list the collections and plugins in the saved state

Environment variables:

| Name                      | Description                                            |
|---------------------------|--------------------------------------------------------|
| $WORKSHOP_OUTPUT          | set the directory the plugin packages are written to.  |
| $WORKSHOP_STATE_FILE      | set an alternative location for the saved-state file.  |
| $WORKSHOP_API_HOST        | set the base URL of the Steam Web API.                 |
| $WORKSHOP_DOWNLOAD_LIMIT  | cap new downloads per attempt (0 = unlimited).         |
| $WORKSHOP_DEBUG           | indicate whether the CLI is running in Debug mode.     |
`

func newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "workshop",
		Short:        "keep a local plugin directory in sync with Steam Workshop collections",
		Long:         globalUsage,
		SilenceUsage: true,
	}
	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	cmd.AddCommand(
		newSyncCmd(out),
		newListCmd(out),
		newVersionCmd(out),
	)

	return cmd
}
