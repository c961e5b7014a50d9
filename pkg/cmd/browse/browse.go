package browse

import (
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/state"
	browsetui "github.com/Paintersrp/loradex/internal/tui/browse"
)

func NewCmdBrowse(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "browse [query...]",
		Aliases: []string{"b", "tui"},
		Short:   "Browse the library in an interactive table",
		Long: heredoc.Doc(`
			Open the library browser. Type to filter, tab to change the sort,
			ctrl+g to group, ctrl+n to hide NSFW models and ctrl+y to copy
			the activation text of the selected model.

			The library is watched while the browser is open.
		`),
		Example: heredoc.Doc(`
			loradex browse
			loradex browse '<ink | sketch> !nsfw'
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(s, strings.Join(args, " "))
		},
	}

	return cmd
}

// Run opens the browser over the active library.
func Run(s *state.State, query string) error {
	m, err := browsetui.FromState(s, query)
	if err != nil {
		return err
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}
