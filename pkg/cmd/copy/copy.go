package copy

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

var writeClipboard = clipboard.WriteAll

func NewCmdCopy(s *state.State) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:     "copy [id]",
		Aliases: []string{"cp", "yank"},
		Short:   "Copy a field of a model to the clipboard",
		Long: heredoc.Docf(`
			Copy one field of a model to the system clipboard. The field
			defaults to the activation text. Available fields: %s.
		`, strings.Join(views.CopyFields, ", ")),
		Example: "loradex copy ink --field negative",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			r, ok := c.Get(args[0])
			if !ok {
				return fmt.Errorf("model %q not found", args[0])
			}

			value, ok := views.CopyValue(r, field)
			if !ok {
				return fmt.Errorf("unknown field %q", field)
			}
			if strings.TrimSpace(value) == "" {
				return fmt.Errorf("%s has no %s value", r.Name, field)
			}

			if err := writeClipboard(value); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s of %s\n", field, r.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "activation", "Field to copy")

	return cmd
}
