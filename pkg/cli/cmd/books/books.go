/* Copyright 2025 Shelfsync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package books implements the books command
package books

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/client"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/infra"
	"github.com/spf13/cobra"
)

var format string

// NewCmd returns a new books command
func NewCmd(ctx *context.Ctx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"ls"},
		Short:   "List the books known to the server",
		Args:    cobra.NoArgs,
		RunE:    newRun(ctx),
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func newRun(ctx *context.Ctx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		books, err := client.GetBooks(*ctx)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return outputJSON(cmd.OutOrStdout(), books)
		case "table":
			outputTable(cmd.OutOrStdout(), books)
			return nil
		default:
			return errors.Errorf("invalid format: %s (valid values: table, json)", format)
		}
	}
}

func outputJSON(w io.Writer, books []client.BookResponse) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(books)
}

// summary aggregates the statistics of a book across devices
type summary struct {
	pages      int
	highlights int
	notes      int
	readTime   time.Duration
}

func summarize(b client.BookResponse) summary {
	var ret summary
	var lastOpen int64

	for _, d := range b.Devices {
		ret.highlights += d.Highlights
		ret.notes += d.Notes
		ret.readTime += time.Duration(d.TotalReadTime) * time.Second

		if d.Pages > 0 && d.LastOpen >= lastOpen {
			ret.pages = d.Pages
			lastOpen = d.LastOpen
		}
	}

	if b.ReferencePages != nil {
		ret.pages = *b.ReferencePages
	}

	return ret
}

func outputTable(w io.Writer, books []client.BookResponse) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Authors", "Pages", "Highlights", "Notes", "Read Time", "Devices"})

	for _, b := range books {
		s := summarize(b)

		pages := "-"
		if s.pages > 0 {
			pages = fmt.Sprintf("%d", s.pages)
		}

		t.AppendRow(table.Row{
			b.ID,
			b.Title,
			b.Authors,
			pages,
			s.highlights,
			s.notes,
			s.readTime.String(),
			len(b.Devices),
		})
	}

	t.Render()
}
