package basemodels

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

type baseModel struct {
	Name   string `json:"name"`
	Models int    `json:"models"`
}

func NewCmdBaseModels(s *state.State) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "base-models",
		Aliases: []string{"bases"},
		Short:   "List the base models found in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, r := range c.Records() {
				counts[r.BaseModel]++
			}
			names := c.BaseModels()
			out := make([]baseModel, 0, len(names))
			for _, name := range names {
				out = append(out, baseModel{Name: name, Models: counts[name]})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			rows := make([][]string, 0, len(out))
			for _, b := range out {
				rows = append(rows, []string{b.Name, strconv.Itoa(b.Models)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.Table([]string{"Base Model", "Models"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print base models as JSON")

	return cmd
}
