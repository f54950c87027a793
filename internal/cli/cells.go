package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/mosaic/sink"
	"github.com/matzehuels/reflections/pkg/viewport"
)

// cellsCommand creates the cells command, a debugging view of a render pass.
func (c *CLI) cellsCommand() *cobra.Command {
	var (
		shardsPath string
		size       float64
		edgeMode   string
	)

	cmd := &cobra.Command{
		Use:   "cells <points.json>",
		Short: "List the rendered cells of a working set",
		Long: `List the rendered cells of a working set.

Every kept cell is shown with its rendered index, the original point it maps
to, its site in pixels relative to the center and the area of its inset
shape. Cells claimed by a shard show the shard's tint and spark.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.RendererOptions()
			if edgeMode != "" {
				mode, ok := mosaic.ParseEdgeMode(edgeMode)
				if !ok {
					return fmt.Errorf("invalid edge mode: %s (must be reject or clip)", edgeMode)
				}
				opts = append(opts, mosaic.WithEdgeMode(mode))
			}

			in, err := loadInput(args[0], shardsPath, cfg.Mosaic.RotationMax)
			if err != nil {
				return err
			}
			d, err := mosaic.NewRenderer(opts...).Render(in.Points, viewport.Size{Width: size, Height: size})
			if err != nil {
				return err
			}
			if d == nil {
				return fmt.Errorf("size must be positive")
			}
			bound := mosaic.Bind(d, in.Shards)

			fmt.Println(cellsTable(d))
			printStats(len(in.Points.Points), len(d.Cells), bound)
			return nil
		},
	}

	cmd.Flags().StringVar(&shardsPath, "shards", "", "shards JSON file")
	cmd.Flags().Float64Var(&size, "size", defaultSize, "square container size in pixels")
	cmd.Flags().StringVar(&edgeMode, "edge-mode", "", "boundary handling: reject, clip (default from config)")

	return cmd
}

// cellsTable renders the cells of d as a lipgloss table.
func cellsTable(d *mosaic.Diagram) string {
	rows := make([][]string, 0, len(d.Cells))
	for _, cell := range d.Cells {
		spark := "—"
		if cell.Shard != nil {
			spark = cell.Shard.Spark
		}
		rows = append(rows, []string{
			strconv.Itoa(cell.Rendered),
			strconv.Itoa(cell.Original),
			fmt.Sprintf("%7.1f %7.1f", cell.Site.X, cell.Site.Y),
			fmt.Sprintf("%.0f", cell.Inset.Area()),
			spark,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Cell", "Point", "Site", "Area", "Spark").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(d.Cells) {
				return lipgloss.NewStyle()
			}
			cell := d.Cells[row]
			if cell.Shard == nil {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(lipgloss.Color(sink.TintColor(cell.Shard.Tint)))
			}
			return StyleValue
		})

	return t.Render()
}
