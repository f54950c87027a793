package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/mosaic/sink"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// delaunayCommand creates the delaunay command for inspecting which rendered
// sites are neighbours.
func (c *CLI) delaunayCommand() *cobra.Command {
	var (
		output     string
		shardsPath string
		size       float64
		dotOnly    bool
	)

	cmd := &cobra.Command{
		Use:   "delaunay <points.json>",
		Short: "Render the neighbour graph of a working set (debug tool)",
		Long: `Render the Delaunay neighbour graph of a working set.

The working set is expanded by its rotation count and rendered like the
mosaic; the kept cells become nodes pinned at their sites and every pair of
neighbouring cells is joined by an edge. Output is SVG via Graphviz, or raw
DOT with --dot.`,
		Example: `  reflections delaunay points.json -o graph.svg
  reflections delaunay points.json --dot | neato -Tpng > graph.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			in, err := loadInput(args[0], shardsPath, cfg.Mosaic.RotationMax)
			if err != nil {
				return err
			}
			d, err := mosaic.NewRenderer(cfg.RendererOptions()...).Render(in.Points, viewport.Size{Width: size, Height: size})
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("size must be positive")
			}
			mosaic.Bind(d, in.Shards)

			dot := sink.ToDOT(d)
			if dotOnly {
				return writeArtifact([]byte(dot), output)
			}
			svg, err := sink.RenderDOT(dot)
			if err != nil {
				return fmt.Errorf("render: %w", err)
			}
			return writeArtifact(svg, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&shardsPath, "shards", "", "shards JSON file")
	cmd.Flags().Float64Var(&size, "size", defaultSize, "square container size in pixels")
	cmd.Flags().BoolVar(&dotOnly, "dot", false, "write DOT instead of SVG")

	return cmd
}
