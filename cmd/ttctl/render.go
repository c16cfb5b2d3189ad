package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yigit/lecturetable/internal/app/repositories"
	"github.com/yigit/lecturetable/internal/app/services"
	"github.com/yigit/lecturetable/internal/pkg/logger"
	"github.com/yigit/lecturetable/internal/pkg/render"
)

type renderOptions struct {
	share      string
	output     string
	xlsx       bool
	fontPath   string
	pixelRatio int
}

// fs is swapped in tests.
var fs = afero.NewOsFs()

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a shared timetable to PNG or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.share, "share", "", "share code of the selection")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default timetable.png or timetable.xlsx)")
	f.BoolVar(&opts.xlsx, "xlsx", false, "write a spreadsheet instead of an image")
	f.StringVar(&opts.fontPath, "font", "", "TTF/OTF font for the image (overrides config)")
	f.IntVar(&opts.pixelRatio, "pixel-ratio", 0, "image scale factor (overrides config)")
	_ = cmd.MarkFlagRequired("share")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	cfg, catalog, err := root.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	fontPath, ratio := cfg.Render.FontPath, cfg.Render.PixelRatio
	if opts.fontPath != "" {
		fontPath = opts.fontPath
	}
	if opts.pixelRatio > 0 {
		ratio = opts.pixelRatio
	}
	renderer, err := render.NewRenderer(fontPath, ratio)
	if err != nil {
		return err
	}

	svc := services.NewTimetableService(catalog, repositories.NewMemorySavedTimetableRepository(), nil, renderer, cfg.Share.BaseURL, logger.Component("ttctl"))
	sel, err := svc.Restore(opts.share)
	if err != nil {
		return err
	}
	for _, s := range sel.Report.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.ID, s.Reason)
	}

	var data []byte
	output := opts.output
	if opts.xlsx {
		data, err = svc.RenderXLSX(sel.Timetable)
		if output == "" {
			output = "timetable.xlsx"
		}
	} else {
		data, err = svc.RenderPNG(sel.Timetable)
		if output == "" {
			output = "timetable.png"
		}
	}
	if err != nil {
		return err
	}

	if err := afero.WriteFile(fs, output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d courses, %d credits\n", output, sel.Timetable.Len(), sel.Timetable.Credits())
	return nil
}
