package move

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdMove(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move [id] [folder]",
		Short: "Move a model and its sidecars into another library folder",
		Long: "Move a model and every file belonging to it into a folder of the library. " +
			"The folder is relative to the models directory; use . for the root.",
		Example: "loradex move ink styles/archive",
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

			target := strings.Trim(strings.TrimSpace(args[1]), "/")
			if target == "." {
				target = ""
			}

			moved, err := s.Handler.Move(rec, target)
			if err != nil {
				return err
			}
			s.Catalog.Invalidate()

			s.Logger.Info("model moved", zap.String("id", rec.ID), zap.String("folder", target), zap.Int("files", moved))
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d file(s) of %s\n", moved, rec.ID)
			return nil
		},
	}

	return cmd
}
