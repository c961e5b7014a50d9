package pick

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/fzf"
	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/internal/views"
)

// find and copyText are replaced in tests.
var (
	find = func(records []*record.Record, query string) (*record.Record, error) {
		return fzf.NewFuzzyFinder(records, "Pick a model").Run(query)
	}
	copyText = clipboard.WriteAll
)

func NewCmdPick(s *state.State) *cobra.Command {
	var field string
	var copyValue bool
	var hideNSFW bool

	cmd := &cobra.Command{
		Use:     "pick [query...]",
		Aliases: []string{"p", "fzf"},
		Short:   "Fuzzy find a model and print one of its fields",
		Long: heredoc.Docf(`
			Fuzzy find a model in the active library and print the chosen field.
			Available fields: %s.
		`, strings.Join(views.CopyFields, ", ")),
		Example: heredoc.Doc(`
			loradex pick
			loradex pick ink --field activation --copy
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			hide := hideNSFW
			if !cmd.Flags().Changed("hide-nsfw") && s.Library != nil {
				hide = s.Library.HideNSFW
			}
			records := views.Apply(c.Records(), views.Options{HideNSFW: hide, Sort: views.SortNameAsc})

			r, err := find(records, strings.Join(args, " "))
			if errors.Is(err, fzf.ErrNoSelection) {
				return nil
			}
			if err != nil {
				return err
			}

			value, ok := views.CopyValue(r, field)
			if !ok {
				return fmt.Errorf("unknown field %q", field)
			}
			if copyValue {
				if err := copyText(value); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", "path", "Field to print")
	cmd.Flags().BoolVar(&copyValue, "copy", false, "Also copy the field to the clipboard")
	cmd.Flags().BoolVar(&hideNSFW, "hide-nsfw", false, "Hide models flagged as NSFW")

	return cmd
}
