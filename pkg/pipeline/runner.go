package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/halfdome/swfkit/pkg/cache"
	"github.com/halfdome/swfkit/pkg/render"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/timeline"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// target is one timeline to extract.
type target struct {
	id   swf.CharacterID
	root bool
}

// Execute runs the complete parse → resolve → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		JobID:    uuid.NewString(),
		FileHash: cache.Hash(opts.Input),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	doc, err := swf.Parse(opts.Input, swf.WithLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Document = doc
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.TagCount = len(doc.Tags)
	result.Stats.CharacterCount = len(doc.CharacterIDs())

	r.Logger.Info("parsed document",
		"version", doc.Header.Version,
		"characters", result.Stats.CharacterCount,
		"frames", doc.Header.FrameCount,
		"duration", result.Stats.ParseTime)

	targets, err := selectTargets(doc, opts)
	if err != nil {
		return nil, err
	}

	// Stage 2 + 3: Resolve and render each target
	res := timeline.NewResolver(doc,
		timeline.WithLogger(opts.Logger),
		timeline.WithMaxDepth(opts.MaxDepth),
		timeline.WithMaxSteps(opts.MaxSteps))

	for _, tg := range targets {
		cr := r.extractTarget(ctx, doc, res, tg, result.FileHash, opts, &result.Stats, &result.CacheInfo)
		if cr.Err != nil {
			opts.Logger.Warn("target failed", "id", tg.id, "error", cr.Err)
		}
		result.Characters = append(result.Characters, *cr)
	}

	r.Logger.Info("extraction complete",
		"job", result.JobID,
		"targets", len(result.Characters),
		"cache_hits", result.CacheInfo.Hits,
		"duration", result.Stats.ResolveTime+result.Stats.RenderTime)

	return result, nil
}

// Parse decodes the input without resolving or rendering anything.
func (r *Runner) Parse(ctx context.Context, opts Options) (*swf.Document, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	return swf.Parse(opts.Input, swf.WithLogger(opts.Logger))
}

// extractTarget resolves one timeline and renders its requested frame. A
// resolve or render failure lands on the result's Err field so the caller
// can keep going with the remaining targets.
func (r *Runner) extractTarget(ctx context.Context, doc *swf.Document, res *timeline.Resolver, tg target, fileHash string, opts Options, stats *Stats, ci *CacheInfo) *CharacterResult {
	cr := &CharacterResult{
		ID:        tg.id,
		Root:      tg.root,
		Artifacts: make(map[string][]byte),
	}
	if tg.root {
		cr.Name = "main"
		cr.Kind = "timeline"
	} else if def, ok := doc.Character(tg.id); ok {
		cr.Kind = def.Kind()
		if name, ok := doc.ExportName(tg.id); ok {
			cr.Name = name
		}
	}

	resolveStart := time.Now()

	var (
		tl  *timeline.Timeline
		err error
	)
	if tg.root {
		tl, err = res.Root()
	} else {
		tl, err = res.Character(tg.id)
	}
	if err != nil {
		cr.Err = fmt.Errorf("resolve character %d: %w", tg.id, err)
		return cr
	}
	stats.ResolveTime += time.Since(resolveStart)

	cr.FrameCount = tl.FrameCount()
	cr.Stopped = tl.Stopped

	// Clamp the requested frame to the resolved timeline.
	cr.Frame = opts.Frame
	if cr.Frame >= tl.FrameCount() {
		cr.Frame = tl.FrameCount() - 1
	}
	if cr.Frame < 0 {
		return cr // empty timeline, nothing to render
	}
	frame := &tl.Frames[cr.Frame]

	// The main timeline renders in the document's stage rect; characters
	// render in their own content bounds.
	bounds := doc.Header.FrameSize
	if !tg.root {
		if b, ok := render.FrameBounds(frame); ok {
			bounds = b
		}
	}
	cr.Bounds = bounds

	renderStart := time.Now()
	cr.FromCache = true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(fileHash, uint16(tg.id), opts.ArtifactKeyOpts(format))

		if !opts.NoCache {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cr.Artifacts[format] = data
				ci.Hits++
				continue
			}
		}
		cr.FromCache = false
		ci.Misses++

		data, err := renderArtifact(format, frame, bounds, opts)
		if err != nil {
			cr.Err = fmt.Errorf("render character %d as %s: %w", tg.id, format, err)
			return cr
		}
		cr.Artifacts[format] = data

		if !opts.NoCache {
			_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		}
	}
	stats.RenderTime += time.Since(renderStart)

	r.Logger.Debug("extracted target",
		"id", tg.id,
		"kind", cr.Kind,
		"frames", cr.FrameCount,
		"cached", cr.FromCache)

	return cr
}

// selectTargets expands the options into the list of timelines to extract.
func selectTargets(doc *swf.Document, opts Options) ([]target, error) {
	if opts.All {
		targets := []target{{root: true}}
		for _, id := range doc.CharacterIDs() {
			targets = append(targets, target{id: id})
		}
		return targets, nil
	}

	var targets []target
	for _, id := range opts.Characters {
		cid := swf.CharacterID(id)
		if _, ok := doc.Character(cid); !ok {
			return nil, fmt.Errorf("character %d is not defined", id)
		}
		targets = append(targets, target{id: cid})
	}
	for _, name := range opts.Names {
		def, ok := doc.ExportedCharacter(name)
		if !ok {
			return nil, fmt.Errorf("no character exported as %q", name)
		}
		targets = append(targets, target{id: def.CharacterID()})
	}
	if len(targets) == 0 {
		targets = append(targets, target{root: true})
	}
	return targets, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
