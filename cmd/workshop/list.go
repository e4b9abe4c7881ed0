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
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gothickitty93/steam-workshop-downloader/pkg/state"
)

type listOptions struct {
	maxColWidth uint
}

func newListCmd(out io.Writer) *cobra.Command {
	o := &listOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list the collections and plugins in the saved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(out)
		},
	}

	f := cmd.Flags()
	f.UintVar(&o.maxColWidth, "max-col-width", 60, "maximum column width for output table")

	return cmd
}

func (o *listOptions) run(out io.Writer) error {
	outputDir, err := filepath.Abs(settings.OutputDir)
	if err != nil {
		return err
	}
	s, err := state.LoadState(settings.StateFilePath(outputDir))
	if err != nil {
		return err
	}
	if len(s.Collections) == 0 && len(s.Plugins) == 0 {
		return errors.New("no plugins to show. Run 'workshop sync' first")
	}

	fmt.Fprintf(out, "Collections: %s\n\n", strings.Join(s.Collections, ", "))

	ids := make([]string, 0, len(s.Plugins))
	for id := range s.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := uitable.New()
	table.MaxColWidth = o.maxColWidth
	table.AddRow("ID", "TITLE", "UPDATED")
	for _, id := range ids {
		info := s.Plugins[id]
		table.AddRow(id, info.Title, time.Unix(info.TimeUpdated, 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(out, table)
	return nil
}
