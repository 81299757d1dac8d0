// Package pipeline provides the extraction pipeline shared by the CLI
// commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: decode the container into a document model
//  2. Resolve: replay timelines into per-frame display lists
//  3. Render: draw a chosen frame of each target as SVG or PNG
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   fileBytes,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Characters[0].Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/halfdome/swfkit/pkg/avm"
	"github.com/halfdome/swfkit/pkg/cache"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI Commands
// =============================================================================

const (
	// DefaultScale is the default raster scale factor (pixels per point).
	DefaultScale = 1.0

	// DefaultFrame is the frame index rendered when none is requested.
	DefaultFrame = 0
)

// Format constants for output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the extraction pipeline.
type Options struct {
	// Input is the raw file content. The whole file must be in memory.
	Input []byte `json:"-"`

	// Target selection. With none set, only the main timeline is extracted.
	Characters []uint16 `json:"characters,omitempty"` // character ids
	Names      []string `json:"names,omitempty"`      // export names
	All        bool     `json:"all,omitempty"`        // every defined character plus the main timeline

	// Resolve options
	Frame    int `json:"frame,omitempty"`     // frame index, clamped to each timeline
	MaxDepth int `json:"max_depth,omitempty"` // sprite nesting limit
	MaxSteps int `json:"max_steps,omitempty"` // interpreter step limit

	// Render options
	Formats        []string `json:"formats,omitempty"`
	Scale          float64  `json:"scale,omitempty"`            // raster scale factor
	Supersample    int      `json:"supersample,omitempty"`      // raster oversampling factor
	Background     string   `json:"background,omitempty"`       // hex color, empty = transparent
	MinStrokeWidth float64  `json:"min_stroke_width,omitempty"` // floor for hairline strokes, in pixels

	// NoCache bypasses cache reads and writes for this run.
	NoCache bool `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// JobID identifies this run in logs and summaries.
	JobID string

	// FileHash is the content hash of the input bytes.
	FileHash string

	// Document is the parsed document model.
	Document *swf.Document

	// Characters holds one entry per extracted target, in request order.
	Characters []CharacterResult

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks artifact cache hits.
	CacheInfo CacheInfo
}

// CharacterResult is the outcome of extracting one target.
type CharacterResult struct {
	ID    swf.CharacterID // 0 for the main timeline
	Name  string          // export name, or "main" for the main timeline
	Kind  string          // definition kind ("shape", "sprite", ...)
	Root  bool            // true for the main timeline
	Frame int             // frame index actually rendered, after clamping

	FrameCount int
	Stopped    bool
	Bounds     record.Rect // twip bounds of the rendered frame

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// FromCache reports whether every artifact came from the cache.
	FromCache bool

	// Err records a resolve or render failure for this target. One failed
	// target does not abort the run; the remaining targets still extract.
	Err error
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TagCount       int
	CharacterCount int
	ParseTime      time.Duration
	ResolveTime    time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks artifact cache traffic for one run.
type CacheInfo struct {
	Hits   int
	Misses int
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return fmt.Errorf("input is required")
	}
	if o.Frame < 0 {
		return fmt.Errorf("frame must be non-negative, got %d", o.Frame)
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must be positive, got %g", o.Scale)
	}
	if o.Supersample < 0 {
		return fmt.Errorf("supersample must be positive, got %d", o.Supersample)
	}
	if o.Background != "" {
		if _, err := ParseColor(o.Background); err != nil {
			return err
		}
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults applies default values without validating.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = timeline.DefaultMaxDepth
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = avm.DefaultMaxSteps
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ArtifactKeyOpts returns cache key options for one rendered artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:         format,
		Frame:          o.Frame,
		Scale:          o.Scale,
		Supersample:    o.Supersample,
		Background:     o.Background,
		MinStrokeWidth: o.MinStrokeWidth,
		MaxDepth:       o.MaxDepth,
		MaxSteps:       o.MaxSteps,
	}
}
