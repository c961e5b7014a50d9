package civitai

import (
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Paintersrp/loradex/internal/handler"
	"github.com/Paintersrp/loradex/internal/record"
	"github.com/Paintersrp/loradex/internal/state"
)

func NewCmdCivitai(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "civitai",
		Short: "Work with downloaded Civitai metadata",
		Long: heredoc.Doc(`
			Tidy up files fetched from Civitai next to your models.

			Nothing here talks to the network; only the .civitai.info files and
			images already on disk are used.
		`),
	}

	cmd.AddCommand(
		newCmdConvert(s),
		newCmdFixThumbnail(s),
	)

	return cmd
}

func newCmdConvert(s *state.State) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "convert [id]",
		Short: "Rebuild a model's JSON sidecar from its .civitai.info file",
		Long: heredoc.Doc(`
			Rebuild the JSON sidecar of a model from its .civitai.info file.

			Fields you already filled in, such as activation text, tags or
			creator, are kept.
		`),
		Example: heredoc.Doc(`
			loradex civitai convert ink
			loradex civitai convert --all
		`),
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			var targets []*record.Record
			if all {
				targets = c.Records()
			} else {
				rec, ok := c.Get(args[0])
				if !ok {
					return fmt.Errorf("model %q not found", args[0])
				}
				targets = []*record.Record{rec}
			}

			converted := 0
			for _, rec := range targets {
				_, err := s.Handler.ConvertCivitaiInfo(rec)
				if all && errors.Is(err, handler.ErrNoCivitaiInfo) {
					continue
				}
				if err != nil {
					if !all {
						return err
					}
					s.Logger.Warn("convert civitai.info", zap.String("id", rec.ID), zap.Error(err))
					fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %s: %v\n", rec.ID, err)
					continue
				}
				converted++
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %s\n", rec.ID)
			}

			if converted > 0 {
				s.Catalog.Invalidate()
			}
			if all {
				fmt.Fprintf(cmd.OutOrStdout(), "%d model(s) converted\n", converted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Convert every model that has a .civitai.info file")

	return cmd
}

func newCmdFixThumbnail(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:     "fix-thumbnail [id]",
		Short:   "Rename a loose image next to a model to its .preview.png name",
		Example: "loradex civitai fix-thumbnail ink",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.Snapshot()
			if err != nil {
				return err
			}

			rec, ok := c.Get(args[0])
			if !ok {
				return fmt.Errorf("model %q not found", args[0])
			}

			renamed, err := s.Handler.FixThumbnail(rec)
			switch {
			case errors.Is(err, handler.ErrExists):
				fmt.Fprintf(cmd.OutOrStdout(), "%s already has a .preview.png\n", rec.ID)
				return nil
			case errors.Is(err, handler.ErrNoImage):
				fmt.Fprintf(cmd.OutOrStdout(), "No image file found for %s\n", rec.ID)
				return nil
			case err != nil:
				return err
			}

			s.Catalog.QueueUpdate(rec.RelPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s.preview.png\n", renamed, rec.Name)
			return nil
		},
	}
}
