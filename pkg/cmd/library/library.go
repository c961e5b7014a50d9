package library

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/config"
	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdLibrary(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Manage model libraries",
		Long: "A library is a models directory with its own display settings. " +
			"Use --library on any command to work with another library once.",
	}

	cmd.AddCommand(
		newCmdLibraryList(s),
		newCmdLibrarySwitch(s),
		newCmdLibraryAdd(s),
		newCmdLibraryRemove(s),
	)

	return cmd
}

func newCmdLibraryList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured libraries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := s.Config.LibraryNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No libraries configured")
				return nil
			}

			for _, name := range names {
				marker := " "
				if name == s.Config.CurrentLibrary {
					marker = "*"
				}
				dir := s.Config.Libraries[name].ModelsDir
				if dir == "" {
					dir = "(no models directory)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, name, dir)
			}

			return nil
		},
	}
}

func newCmdLibrarySwitch(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "switch [name]",
		Short: "Switch the active library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(args[0])
			if target == "" {
				return fmt.Errorf("library name cannot be empty")
			}

			if err := s.Config.SwitchLibrary(target); err != nil {
				return err
			}
			if err := s.Reload(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to library %q\n", target)
			return nil
		},
	}
}

func newCmdLibraryAdd(s *state.State) *cobra.Command {
	var dir string
	var makeCurrent bool

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a library, copying the display settings of the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("library name is required")
			}
			dir = strings.TrimSpace(dir)
			if dir == "" {
				return fmt.Errorf("models directory is required")
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return fmt.Errorf("models directory %q does not exist", dir)
			}

			lib := cloneLibrarySettings(s.Library)
			lib.ModelsDir = dir

			if err := s.Config.AddLibrary(name, lib, makeCurrent); err != nil {
				return err
			}
			if makeCurrent {
				if err := s.Reload(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added library %q\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Path to the models directory")
	cmd.Flags().BoolVar(&makeCurrent, "current", false, "Switch to the new library after creation")

	return cmd
}

func newCmdLibraryRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove a library from the config; files are not touched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("library name cannot be empty")
			}

			wasCurrent := name == s.Config.CurrentLibrary
			if err := s.Config.RemoveLibrary(name); err != nil {
				return err
			}
			if wasCurrent {
				if err := s.Reload(); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed library %q\n", name)
			return nil
		},
	}
}

func cloneLibrarySettings(src *config.Library) *config.Library {
	if src == nil {
		return &config.Library{}
	}

	clone := *src
	clone.VisibleColumns = append([]string(nil), src.VisibleColumns...)
	clone.IgnoredFolders = append([]string(nil), src.IgnoredFolders...)
	return &clone
}
