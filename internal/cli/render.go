package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/reflections/pkg/cache"
	"github.com/matzehuels/reflections/pkg/config"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/mosaic"
	"github.com/matzehuels/reflections/pkg/mosaic/sink"
	"github.com/matzehuels/reflections/pkg/shard"
	"github.com/matzehuels/reflections/pkg/viewport"
)

const (
	formatSVG  = "svg"
	formatPNG  = "png"
	formatJSON = "json"

	defaultSize = 800 // default square output size in pixels
)

var validFormats = map[string]bool{formatSVG: true, formatPNG: true, formatJSON: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output       string  // output file path (stdout if empty)
	format       string  // svg, png or json
	width        float64 // container width in pixels
	height       float64 // container height in pixels
	shards       string  // shards JSON file
	server       string  // fetch points and shards from this server instead
	serverRender bool    // let the server render the SVG
	edgeMode     string  // reject or clip
	borders      bool    // draw cell borders
	sites        bool    // mark rendered sites
	static       bool    // omit the hover script
	scale        float64 // PNG scale factor
	noCache      bool    // skip the local artifact cache
}

// mosaicInput is everything a render needs besides options.
type mosaicInput struct {
	Points mosaic.WorkingSet `json:"points"`
	Shards []shard.Shard     `json:"shards"`
}

// renderCommand creates the render command for writing a mosaic to a file.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		format: formatSVG,
		width:  defaultSize,
		height: defaultSize,
		scale:  1,
	}

	cmd := &cobra.Command{
		Use:   "render [points.json]",
		Short: "Render a mosaic to SVG, PNG or JSON",
		Long: `Render a mosaic to SVG, PNG or JSON.

The points file holds a working set: {"points": [[x, y], ...], "rotationCount": n}
with coordinates in [-1, 1]. Shards are read from --shards, a JSON array of
shards. With --server the working set and shards of the logged-in user are
fetched from a running server instead (see 'reflections login').

Rendered artifacts are cached locally for faster subsequent runs.`,
		Example: `  reflections render points.json --shards shards.json -o mosaic.svg
  reflections render points.json -f png --width 1200 --height 1200 -o mosaic.png
  reflections render --server http://localhost:8080 -o mine.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be svg, png or json)", opts.format)
			}
			if opts.server == "" && len(args) == 0 {
				return fmt.Errorf("a points file or --server is required")
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return c.runRender(cmd.Context(), path, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, png, json")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "container width in pixels")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "container height in pixels")
	cmd.Flags().StringVar(&opts.shards, "shards", "", "shards JSON file")
	cmd.Flags().StringVar(&opts.server, "server", "", "fetch points and shards from a server")
	cmd.Flags().BoolVar(&opts.serverRender, "server-render", false, "let the server render the SVG (with --server)")
	cmd.Flags().StringVar(&opts.edgeMode, "edge-mode", "", "boundary handling: reject, clip (default from config)")
	cmd.Flags().BoolVar(&opts.borders, "borders", false, "draw cell borders")
	cmd.Flags().BoolVar(&opts.sites, "sites", false, "mark rendered sites")
	cmd.Flags().BoolVar(&opts.static, "static", false, "omit the hover script from SVG output")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the input, renders it and writes the artifact.
func (c *CLI) runRender(ctx context.Context, path string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	rendererOpts := cfg.RendererOptions()
	if opts.edgeMode != "" {
		mode, ok := mosaic.ParseEdgeMode(opts.edgeMode)
		if !ok {
			return fmt.Errorf("invalid edge mode: %s (must be reject or clip)", opts.edgeMode)
		}
		rendererOpts = append(rendererOpts, mosaic.WithEdgeMode(mode))
	}
	size := viewport.Size{Width: opts.width, Height: opts.height}

	var in mosaicInput
	if opts.server != "" {
		client, err := newClient(ctx, opts.server)
		if err != nil {
			return err
		}
		if opts.serverRender {
			if opts.format != formatSVG {
				return fmt.Errorf("--server-render only produces svg")
			}
			sp := startSpinner(ctx, os.Stderr, "Rendering on server...")
			data, err := client.MosaicSVG(ctx, int(opts.width), int(opts.height))
			if err != nil {
				sp.fail("Server render failed")
				return err
			}
			sp.stop()
			return writeArtifact(data, opts.output)
		}
		if in, err = fetchInput(ctx, client); err != nil {
			return err
		}
	} else {
		if in, err = loadInput(path, opts.shards, cfg.Mosaic.RotationMax); err != nil {
			return err
		}
	}
	logger.Infof("Loaded %d points (rotation %d), %d shards", len(in.Points.Points), in.Points.Rotation, len(in.Shards))

	artifacts, err := newCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer artifacts.Close()

	content, err := json.Marshal(in)
	if err != nil {
		return err
	}
	key := cache.NewDefaultKeyer().MosaicKey(cache.Hash(append(content, renderSignature(opts, cfg.Mosaic)...)), cache.MosaicKeyOpts{
		Format:      opts.format,
		Width:       int(opts.width),
		Height:      int(opts.height),
		Interactive: !opts.static,
	})

	prog := newProgress(logger)
	data, hit, err := cache.GetOrCompute(ctx, artifacts, key, 0, func() ([]byte, error) {
		return renderArtifact(in, size, mosaic.NewRenderer(rendererOpts...), opts)
	})
	if err != nil {
		return err
	}
	if hit {
		logger.Debug("cache hit", "key", key)
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.ToUpper(opts.format)))

	return writeArtifact(data, opts.output)
}

// renderSignature folds the renderer settings into the cache key.
func renderSignature(opts *renderOpts, m config.Mosaic) []byte {
	sig, _ := json.Marshal(struct {
		EdgeMode string
		Borders  bool
		Sites    bool
		Scale    float64
		Mosaic   config.Mosaic
	}{opts.edgeMode, opts.borders, opts.sites, opts.scale, m})
	return sig
}

// renderArtifact renders in and encodes it in the requested format.
func renderArtifact(in mosaicInput, size viewport.Size, r *mosaic.Renderer, opts *renderOpts) ([]byte, error) {
	d, err := r.Render(in.Points, size)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "output size must be positive, got %gx%g", size.Width, size.Height)
	}
	mosaic.Bind(d, in.Shards)

	switch opts.format {
	case formatPNG:
		var po []sink.PNGOption
		if opts.scale > 0 {
			po = append(po, sink.WithScale(opts.scale))
		}
		if opts.borders {
			po = append(po, sink.WithPNGBorders())
		}
		return sink.RenderPNG(d, po...)
	case formatJSON:
		return sink.RenderJSON(d)
	default:
		var so []sink.SVGOption
		if opts.static {
			so = append(so, sink.WithoutInteraction())
		}
		if opts.borders {
			so = append(so, sink.WithBorders())
		}
		if opts.sites {
			so = append(so, sink.WithSites())
		}
		return sink.RenderSVG(d, so...), nil
	}
}

// loadInput reads a working set and, if shardsPath is set, a shard list.
// Out-of-range coordinates are clamped the way the server stores them.
func loadInput(pointsPath, shardsPath string, maxRotation int) (mosaicInput, error) {
	var in mosaicInput
	if err := readJSON(pointsPath, &in.Points); err != nil {
		return mosaicInput{}, err
	}
	if err := in.Points.Validate(0, maxRotation); err != nil {
		return mosaicInput{}, fmt.Errorf("%s: %w", pointsPath, err)
	}
	in.Points = in.Points.Clamp()
	if shardsPath != "" {
		if err := readJSON(shardsPath, &in.Shards); err != nil {
			return mosaicInput{}, err
		}
	}
	return in, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", filepath.Base(path))
	}
	return nil
}

// writeArtifact writes data to path, or to stdout when path is empty.
func writeArtifact(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Mosaic written")
	printFile(path)
	return nil
}
