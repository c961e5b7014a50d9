package rename

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/catalog"
	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdRename(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rename [id] [new name]",
		Aliases: []string{"mv-name"},
		Short:   "Rename a model together with its sidecar and preview files",
		Example: "loradex rename ink ink-v2",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			rec, ok := c.Get(args[0])
			if !ok {
				return fmt.Errorf("model %q not found", args[0])
			}

			newPath, err := s.Handler.Rename(rec, args[1])
			if err != nil {
				return err
			}
			s.Catalog.Invalidate()

			id := catalog.ModelName(filepath.Base(newPath))
			s.Logger.Info("model renamed", zap.String("from", rec.ID), zap.String("to", id))
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", rec.ID, id)
			return nil
		},
	}

	return cmd
}
