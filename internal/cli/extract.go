package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halfdome/swfkit/pkg/pipeline"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	output      string // output file or base path
	characters  []int  // character ids to extract
	names       []string
	all         bool
	interactive bool
	frame       int
	formatsStr  string
	scale       float64
	supersample int
	background  string
	minStroke   float64
	noCache     bool
	configPath  string
}

// extractCommand creates the extract command, the main entry point of the
// tool: it renders the requested characters (or the main timeline) of a
// movie file as SVG or PNG.
func (c *CLI) extractCommand() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Render characters from a movie file as SVG or PNG",
		Long: `Extract renders characters from a movie file without a player runtime.

With no target flags, the main timeline is rendered. Individual characters
can be selected by id or export name, or all of them at once.

Examples:
  swfkit extract movie.swf                         # main timeline → movie.svg
  swfkit extract movie.swf -c 4 -c 7               # characters 4 and 7
  swfkit extract movie.swf --name logo -f png      # exported character as PNG
  swfkit extract movie.swf --all -o out/frame      # everything under out/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single target) or base path (multiple)")
	cmd.Flags().IntSliceVarP(&opts.characters, "character", "c", nil, "character id to extract (repeatable)")
	cmd.Flags().StringSliceVar(&opts.names, "name", nil, "export name to extract (repeatable)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "extract every defined character plus the main timeline")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick characters interactively")
	cmd.Flags().IntVar(&opts.frame, "frame", pipeline.DefaultFrame, "frame index to render (clamped per timeline)")
	cmd.Flags().StringVarP(&opts.formatsStr, "format", "f", "", "output format(s): svg (default), png (comma-separated)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "raster scale factor (png)")
	cmd.Flags().IntVar(&opts.supersample, "supersample", 0, "raster oversampling factor (png)")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (hex, default transparent)")
	cmd.Flags().Float64Var(&opts.minStroke, "stroke-min-width", 0, "minimum stroke width in pixels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default ./"+configFileName+")")

	return cmd
}

func (c *CLI) runExtract(cmd *cobra.Command, input string, opts *extractOpts) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		Input:          data,
		Names:          opts.names,
		All:            opts.all,
		Frame:          opts.frame,
		Formats:        parseFormats(opts.formatsStr),
		Scale:          opts.scale,
		Supersample:    opts.supersample,
		Background:     opts.background,
		MinStrokeWidth: opts.minStroke,
		NoCache:        opts.noCache,
		Logger:         c.Logger,
	}
	for _, id := range opts.characters {
		if id < 1 || id > 0xFFFF {
			return fmt.Errorf("invalid character id %d", id)
		}
		popts.Characters = append(popts.Characters, uint16(id))
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg.apply(&popts)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if opts.interactive {
		ids, err := pickCharacters(ctx, runner, popts)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			printInfo("Nothing selected")
			return nil
		}
		popts.Characters = ids
		popts.All = false
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d target(s)", len(result.Characters)))

	files, err := writeArtifacts(result, opts.output, input)
	if err != nil {
		return err
	}

	printSummary(result, files)
	return nil
}

// writeArtifacts writes every rendered artifact to disk and returns the
// paths, keyed the same way result.Characters is ordered.
func writeArtifacts(result *pipeline.Result, output, input string) ([][]string, error) {
	base := basePath(output, input)
	single := len(result.Characters) == 1 && len(result.Characters[0].Artifacts) == 1

	files := make([][]string, len(result.Characters))
	for i, cr := range result.Characters {
		for _, format := range sortedFormats(cr.Artifacts) {
			path := artifactPath(base, &cr, format, single)
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return nil, err
				}
			}
			if err := os.WriteFile(path, cr.Artifacts[format], 0644); err != nil {
				return nil, err
			}
			files[i] = append(files[i], path)
		}
	}
	return files, nil
}

// artifactPath names one output file. A lone artifact takes the base path
// directly; multiple targets append the character id or export name.
func artifactPath(base string, cr *pipeline.CharacterResult, format string, single bool) string {
	if single {
		return base + "." + format
	}
	if cr.Root {
		return base + "." + format
	}
	name := fmt.Sprintf("c%d", cr.ID)
	if cr.Name != "" {
		name = cr.Name
	}
	return fmt.Sprintf("%s_%s.%s", base, name, format)
}

// basePath derives the base output path from the output and input file
// paths. A known format extension on the output is stripped so it can serve
// as a base for several files.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// sortedFormats returns artifact formats in a stable order.
func sortedFormats(artifacts map[string][]byte) []string {
	var formats []string
	for _, f := range []string{pipeline.FormatSVG, pipeline.FormatPNG} {
		if _, ok := artifacts[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

// printSummary renders the per-target result table plus written files.
func printSummary(result *pipeline.Result, files [][]string) {
	printNewline()
	fmt.Println(summaryTable(result.Characters))
	printNewline()
	for _, paths := range files {
		for _, path := range paths {
			printFile(path)
		}
	}
	if result.CacheInfo.Hits > 0 {
		printDetail("%d artifact(s) served from cache", result.CacheInfo.Hits)
	}
	for _, cr := range result.Characters {
		if cr.Err != nil {
			printWarning("%v", cr.Err)
		}
	}
}
