// Package pkg provides the core libraries for swfkit movie extraction.
//
// # Overview
//
// Swfkit parses SWF movie containers, reconstructs their character
// timelines, and renders frames as SVG or PNG without a player runtime.
// The pkg directory is organized into five main areas:
//
//  1. [swf] - Container parsing (header, tag stream, definitions, dictionary)
//  2. [timeline] - Display list replay (placements, frames, script effects)
//  3. [shape] - Edge stream to path segment conversion
//  4. [render] - Frame drawing plus the svg, raster, and graphdot backends
//  5. [pipeline] - Orchestration (parse → resolve → render) with caching
//
// # Architecture
//
// The typical data flow through swfkit:
//
//	SWF file bytes
//	         ↓
//	    [swf] package (decompress, decode tags, build the dictionary)
//	         ↓
//	    [timeline] package (replay the display list into frames)
//	         ↓
//	    [shape] + [render] packages (paths, paints, canvas calls)
//	         ↓
//	    SVG/PNG/DOT output
//
// # Quick Start
//
// Parse a movie and render its first frame as SVG:
//
//	import (
//	    "github.com/halfdome/swfkit/pkg/render/svg"
//	    "github.com/halfdome/swfkit/pkg/swf"
//	    "github.com/halfdome/swfkit/pkg/timeline"
//	)
//
//	// 1. Parse the container
//	doc, _ := swf.Parse(data)
//
//	// 2. Replay the main timeline
//	res := timeline.NewResolver(doc)
//	tl, _ := res.Root()
//
//	// 3. Render a frame in the stage bounds
//	out, _ := svg.RenderInBounds(&tl.Frames[0], doc.Header.FrameSize)
//
// The [pipeline] package wraps the same flow with target selection,
// artifact caching, and structured logging for the CLI.
package pkg
