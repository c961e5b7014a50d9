package settings

import (
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/state"
	settingstui "github.com/Paintersrp/loradex/internal/tui/settings"
	"github.com/Paintersrp/loradex/internal/views"
)

// runEditor is replaced in tests.
var runEditor = settingstui.Run

func NewCmdSettings(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Aliases: []string{"config"},
		Short:   "Show or change the settings of the active library",
		Long: heredoc.Doc(`
			Without a subcommand an interactive editor lists every setting of
			the active library. Changes are validated and saved immediately.
		`),
		Example: heredoc.Doc(`
			loradex settings
			loradex settings set default_sort date-newest
			loradex settings get models_dir
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := runEditor(s.Config)
			if err != nil {
				return err
			}
			if changed {
				return s.Reload()
			}
			return nil
		},
	}

	cmd.AddCommand(
		newCmdShow(s),
		newCmdGet(s),
		newCmdSet(s),
	)

	return cmd
}

func newCmdShow(s *state.State) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every setting of the active library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := s.Config.ActiveLibrary()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(lib)
			}

			rows := make([][]string, 0, len(config.SettingKeys))
			for _, key := range config.SettingKeys {
				value, _ := lib.Value(key)
				rows = append(rows, []string{key, value})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Library %q\n", s.Config.CurrentLibrary)
			fmt.Fprintln(cmd.OutOrStdout(), views.Table([]string{"Setting", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print settings as JSON")

	return cmd
}

func newCmdGet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:       "get [key]",
		Short:     "Print one setting",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.SettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := s.Config.ActiveLibrary()
			if err != nil {
				return err
			}
			value, ok := lib.Value(args[0])
			if !ok {
				return fmt.Errorf("unknown setting %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newCmdSet(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:       "set [key] [value]",
		Short:     "Change one setting",
		Long:      "Change one setting. List settings such as visible_columns take comma separated values.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.SettingKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.SetValue(args[0], args[1]); err != nil {
				return err
			}
			if err := s.Reload(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s for library %q\n", args[0], s.Config.CurrentLibrary)
			return nil
		},
	}
}
