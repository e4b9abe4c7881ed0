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

/*Package cli describes the operating environment for the workshop CLI.

Defaults come from environment variables so an operator can bake them into
a service unit; flags override them per invocation.
*/
package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/gothickitty93/steam-workshop-downloader/pkg/state"
	"github.com/gothickitty93/steam-workshop-downloader/pkg/steam"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// OutputDir is the directory the plugin packages are mirrored into.
	OutputDir string
	// StateFile is the path of the saved-state file. Empty means
	// <output dir>/addons.lst.
	StateFile string
	// APIHost is the base URL of the Steam Web API.
	APIHost string
	// Limit caps new downloads per attempt. 0 means unlimited.
	Limit int
	// Debug indicates whether the CLI is running in Debug mode.
	Debug bool
}

func New() *EnvSettings {
	env := &EnvSettings{
		OutputDir: envOr("WORKSHOP_OUTPUT", "."),
		StateFile: os.Getenv("WORKSHOP_STATE_FILE"),
		APIHost:   envOr("WORKSHOP_API_HOST", steam.DefaultAPIHost),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("WORKSHOP_DEBUG"))
	env.Limit, _ = strconv.Atoi(os.Getenv("WORKSHOP_DOWNLOAD_LIMIT"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&s.OutputDir, "output", "o", s.OutputDir, "directory the plugin packages are written to")
	fs.StringVar(&s.StateFile, "state-file", s.StateFile, "path to the saved-state file (defaults to addons.lst in the output directory)")
	fs.StringVar(&s.APIHost, "api-host", s.APIHost, "base URL of the Steam Web API")
	fs.IntVar(&s.Limit, "limit", s.Limit, "cap on new downloads per attempt, 0 means unlimited")
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
}

// StateFilePath resolves the saved-state file path against the given
// output directory when no explicit path was configured.
func (s *EnvSettings) StateFilePath(outputDir string) string {
	if s.StateFile != "" {
		return s.StateFile
	}
	return filepath.Join(outputDir, state.FileName)
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
