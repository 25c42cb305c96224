package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/electronjoe/deepframe/internal/layer"
	"github.com/electronjoe/deepframe/internal/thumbnailer"
	"github.com/electronjoe/deepframe/internal/tile"
	"github.com/electronjoe/deepframe/internal/view"
)

type planFlags struct {
	imageW, imageH       float64
	viewportW, viewportH float64
	scale                float64
	offsetX, offsetY     float64
	rotation             int
	maxLevel             int
	photoID              string
	quality              int
	all                  bool
}

func newPlanCmd() *cobra.Command {
	f := planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the tiles a view would load",
		Long: `Prints the pyramid level and the tiles, nearest to the viewport center
first, that the viewer requests for a photo at the given view state.`,
		Example: `  deepframe plan --image-width 6000 --image-height 4000 --scale 4 --offset-x 500 --id 3f2a9c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printPlan(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().Float64Var(&f.imageW, "image-width", 4000, "natural image width")
	cmd.Flags().Float64Var(&f.imageH, "image-height", 3000, "natural image height")
	cmd.Flags().Float64Var(&f.viewportW, "viewport-width", 1920, "viewport width")
	cmd.Flags().Float64Var(&f.viewportH, "viewport-height", 1080, "viewport height")
	cmd.Flags().Float64Var(&f.scale, "scale", 1, "view scale")
	cmd.Flags().Float64Var(&f.offsetX, "offset-x", 0, "view offset x")
	cmd.Flags().Float64Var(&f.offsetY, "offset-y", 0, "view offset y")
	cmd.Flags().IntVar(&f.rotation, "rotation", 0, "display rotation in degrees")
	cmd.Flags().IntVar(&f.maxLevel, "max-level", tile.MaxLevel, "deepest pyramid level")
	cmd.Flags().StringVar(&f.photoID, "id", "", "print tile URLs for this photo id")
	cmd.Flags().IntVar(&f.quality, "quality", thumbnailer.DefaultQuality, "JPEG quality of printed URLs")
	cmd.Flags().BoolVar(&f.all, "all", false, "include tiles outside the viewport")
	return cmd
}

func printPlan(w io.Writer, f planFlags) error {
	rw, rh := layer.Rotated(f.imageW, f.imageH, f.rotation)
	g := view.Geometry{ViewportW: f.viewportW, ViewportH: f.viewportH, ImageW: rw, ImageH: rh}
	s := g.Clamp(view.State{Scale: f.scale, OffsetX: f.offsetX, OffsetY: f.offsetY})
	in := tile.Input{State: s, ImageW: rw, ImageH: rh, ViewportW: f.viewportW, ViewportH: f.viewportH, MaxLevel: f.maxLevel}

	p, ok := tile.NewPlan(in)
	if !ok {
		return fmt.Errorf("nothing to plan for a %gx%g image in a %gx%g viewport", f.imageW, f.imageH, f.viewportW, f.viewportH)
	}
	fmt.Fprintf(w, "state: scale %.3f offset %.1f,%.1f\n", s.Scale, s.OffsetX, s.OffsetY)
	fmt.Fprintf(w, "level %d, grid %.1fpx at %.1f,%.1f, tiles active: %v\n", p.Level, p.GridSize, p.Left, p.Top, tile.Active(s.Scale))
	for _, c := range p.Tiles {
		r := p.Rect(c)
		visible := r.Visible(f.viewportW, f.viewportH)
		if !visible && !f.all {
			continue
		}
		line := fmt.Sprintf("%-9s %8.1f %8.1f %7.1f", c, r.X, r.Y, r.W)
		if !visible {
			line += " hidden"
		}
		if f.photoID != "" {
			line += "  " + thumbnailer.TilePath(f.photoID, c, f.rotation, f.quality)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
