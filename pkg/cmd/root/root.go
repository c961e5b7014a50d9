package root

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/loradex/internal/constants"
	"github.com/Paintersrp/loradex/internal/state"
	"github.com/Paintersrp/loradex/pkg/cmd/basemodels"
	"github.com/Paintersrp/loradex/pkg/cmd/browse"
	"github.com/Paintersrp/loradex/pkg/cmd/civitai"
	copycmd "github.com/Paintersrp/loradex/pkg/cmd/copy"
	"github.com/Paintersrp/loradex/pkg/cmd/folders"
	"github.com/Paintersrp/loradex/pkg/cmd/initialize"
	"github.com/Paintersrp/loradex/pkg/cmd/library"
	"github.com/Paintersrp/loradex/pkg/cmd/move"
	"github.com/Paintersrp/loradex/pkg/cmd/pick"
	"github.com/Paintersrp/loradex/pkg/cmd/rename"
	"github.com/Paintersrp/loradex/pkg/cmd/search"
	"github.com/Paintersrp/loradex/pkg/cmd/serve"
	"github.com/Paintersrp/loradex/pkg/cmd/settings"
	"github.com/Paintersrp/loradex/pkg/cmd/tags"
)

var libraryName string

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:     "loradex",
		Aliases: []string{"ldx"},
		Version: constants.Version,
		Short:   "Browse, search and organize a local LoRA model library.",
		Long: heredoc.Doc(`
			Index a directory of .safetensors models together with their JSON,
			civitai.info and preview sidecars, then browse, search, rename and
			move them from the terminal or over a small JSON API.

			Without a subcommand the interactive browser is opened.

			                query
			  loradex search '<ink | sketch> !nsfw'
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.UseLibrary(viper.GetString("library"))
		},
		RunE: browse.NewCmdBrowse(s).RunE,
	}

	cmd.PersistentFlags().
		StringVarP(
			&libraryName,
			"library",
			"l",
			"",
			"Library to use for this command instead of the active one.",
		)
	viper.BindPFlag("library", cmd.PersistentFlags().Lookup("library"))

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		browse.NewCmdBrowse(s),
		search.NewCmdSearch(s),
		pick.NewCmdPick(s),
		copycmd.NewCmdCopy(s),
		rename.NewCmdRename(s),
		move.NewCmdMove(s),
		civitai.NewCmdCivitai(s),
		tags.NewCmdTags(s),
		basemodels.NewCmdBaseModels(s),
		folders.NewCmdFolders(s),
		serve.NewCmdServe(s),
		settings.NewCmdSettings(s),
		library.NewCmdLibrary(s),
	)

	return cmd, nil
}
