/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

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
package tags

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

func NewCmdTags(s *state.State) *cobra.Command {
	var order string
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "tags",
		Short:   "List tags across the library with their model counts",
		Example: "loradex tags --sort name",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			tags := c.Tags()
			if err := sortTags(tags, order); err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tags)
			}

			if len(tags) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags found")
				return nil
			}

			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{tag.Tag, strconv.Itoa(tag.Count)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.Table([]string{"Tag", "Models"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&order, "sort", "desc", "Order by count ('asc', 'desc') or by 'name'")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tags as JSON")

	return cmd
}

func sortTags(tags []catalog.TagCount, order string) error {
	switch order {
	case "name":
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].Tag < tags[j].Tag })
	case "asc":
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count < tags[j].Count })
	case "desc":
		sort.SliceStable(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
	default:
		return fmt.Errorf("invalid sort order %q. Use 'asc', 'desc' or 'name'", order)
	}
	return nil
}
