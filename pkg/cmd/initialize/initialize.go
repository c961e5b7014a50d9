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
package initialize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/erikgeiser/promptkit/textinput"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/loradex/internal/state"
)

// promptDir asks for the models directory. It is replaced in tests.
var promptDir = func(initial string) (string, error) {
	input := textinput.New("Where are your LoRA models stored?")
	input.InitialValue = initial
	input.Placeholder = "~/stable-diffusion/models/Lora"
	input.Validate = func(value string) error {
		_, err := resolveDir(value)
		return err
	}
	return input.RunPrompt()
}

func NewCmdInit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init [models dir]",
		Aliases: []string{"i", "initialize"},
		Short:   "Point the active library at a models directory",
		Long: heredoc.Doc(`
			Set the models directory of the active library. Without an
			argument you are prompted for it.
		`),
		Example: heredoc.Doc(`
			loradex init ~/stable-diffusion/models/Lora
			loradex init --library sdxl
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw string
			if len(args) == 1 {
				raw = args[0]
			} else {
				current := ""
				if s.Library != nil {
					current = s.Library.ModelsDir
				}
				value, err := promptDir(current)
				if err != nil {
					return err
				}
				raw = value
			}

			dir, err := resolveDir(raw)
			if err != nil {
				return err
			}

			if err := s.Config.SetValue("models_dir", dir); err != nil {
				return err
			}
			if err := s.Reload(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Library %q now uses %s\n", s.Config.CurrentLibrary, dir)
			return nil
		},
	}

	return cmd
}

// resolveDir expands a leading ~ and returns the absolute path of an
// existing directory.
func resolveDir(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("models directory is required")
	}

	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := state.GetHomeDir()
		if err != nil {
			return "", err
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}

	abs, err := filepath.Abs(value)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("models directory %q: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("models directory %q is not a directory", abs)
	}
	return abs, nil
}
