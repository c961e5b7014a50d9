package folders

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdFolders(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List the folders of the library, usable as move targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Library == nil || s.Library.ModelsDir == "" {
				return state.ErrNoLibrary
			}

			folders, err := s.Handler.Folders()
			if err != nil {
				return err
			}

			for _, folder := range folders {
				if folder == "" {
					fmt.Fprintln(cmd.OutOrStdout(), ". (root)")
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), folder)
			}
			return nil
		},
	}

	return cmd
}
