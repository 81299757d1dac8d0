package pipeline

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/halfdome/swfkit/pkg/render/raster"
	"github.com/halfdome/swfkit/pkg/render/svg"
	"github.com/halfdome/swfkit/pkg/swf/record"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// renderArtifact draws one frame in one format within the given stage bounds.
func renderArtifact(format string, frame *timeline.Frame, bounds record.Rect, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg.RenderInBounds(frame, bounds, svgOptions(opts)...)
	case FormatPNG:
		return raster.RenderPNGInBounds(frame, bounds, rasterOptions(opts)...)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func svgOptions(opts Options) []svg.Option {
	var svgOpts []svg.Option
	if opts.MinStrokeWidth > 0 {
		svgOpts = append(svgOpts, svg.WithMinStrokeWidth(opts.MinStrokeWidth))
	}
	if opts.Background != "" {
		if col, err := ParseColor(opts.Background); err == nil {
			svgOpts = append(svgOpts, svg.WithBackground(col))
		}
	}
	return svgOpts
}

func rasterOptions(opts Options) []raster.Option {
	var rasterOpts []raster.Option
	if opts.Scale != 0 && opts.Scale != 1 {
		rasterOpts = append(rasterOpts, raster.WithScale(opts.Scale))
	}
	if opts.Supersample > 0 {
		rasterOpts = append(rasterOpts, raster.WithSupersample(opts.Supersample))
	}
	if opts.MinStrokeWidth > 0 {
		rasterOpts = append(rasterOpts, raster.WithMinStrokeWidth(opts.MinStrokeWidth))
	}
	if opts.Background != "" {
		if col, err := ParseColor(opts.Background); err == nil {
			rasterOpts = append(rasterOpts, raster.WithBackground(col))
		}
	}
	return rasterOpts
}

// ParseColor parses "#rrggbb" or "#rrggbbaa" (leading '#' optional) into a
// color. Omitted alpha means opaque.
func ParseColor(s string) (record.Color, error) {
	digits := strings.TrimPrefix(s, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return record.Color{}, fmt.Errorf("invalid color %q: want rrggbb or rrggbbaa", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return record.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	col := record.Color{R: b[0], G: b[1], B: b[2], A: 0xFF}
	if len(b) == 4 {
		col.A = b[3]
	}
	return col, nil
}
