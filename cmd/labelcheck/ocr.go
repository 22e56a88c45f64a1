package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-verifier/internal/app"
)

func newOCRCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ocr IMAGE [IMAGE...]",
		Short: "Print the text recognized on label images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := readImageFiles(args)
			if err != nil {
				return err
			}
			a, err := app.New(g.cfg, g.logger)
			if err != nil {
				return err
			}
			if err := a.Engine.Available(cmd.Context()); err != nil {
				return fmt.Errorf("ocr engine %s: %w", a.Engine.Name(), err)
			}

			res := a.Aggregator.Aggregate(cmd.Context(), images)
			out := cmd.OutOrStdout()
			for i, img := range res.Images {
				fmt.Fprintf(out, "== %s (%s, %d lines, %s) ==\n",
					img.ID, humanize.Bytes(uint64(len(images[i].Data))), img.Lines, img.Duration.Round(time.Millisecond))
				for _, w := range img.Warnings {
					fmt.Fprintf(out, "warning: %s\n", w)
				}
				if img.Text != "" {
					fmt.Fprintln(out, img.Text)
				}
			}
			return nil
		},
	}
}
