// Package cache provides content-addressed caching for pipeline stages.
//
// Cache keys are derived from the input file hash plus the options that
// influence each stage, so a re-run with identical inputs hits the cache
// while any option change misses cleanly.
package cache

import (
	"context"
	"time"
)

// TTL constants per cached kind. Document-derived data is a pure function
// of the input bytes, so it keeps for a long time. Artifacts embed renderer
// options and churn more often.
const (
	TTLDocument = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface used by the pipeline runner.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A zero ttl means no expiry;
	// a negative ttl stores an already-expired entry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// ArtifactKeyOpts are the options that influence artifact rendering.
// Resolver limits are included because they change which frames exist.
type ArtifactKeyOpts struct {
	Format         string  `json:"format"`
	Frame          int     `json:"frame"`
	Scale          float64 `json:"scale,omitempty"`
	Supersample    int     `json:"supersample,omitempty"`
	Background     string  `json:"background,omitempty"`
	MinStrokeWidth float64 `json:"min_stroke_width,omitempty"`
	MaxDepth       int     `json:"max_depth,omitempty"`
	MaxSteps       int     `json:"max_steps,omitempty"`
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// DocumentKey keys per-document derived data (tag census, summaries)
	// by the hash of the input bytes.
	DocumentKey(fileHash string) string

	// ArtifactKey keys one rendered artifact by document hash, character
	// id, and render options.
	ArtifactKey(docHash string, characterID uint16, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates unscoped cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key for document-derived data.
func (k *DefaultKeyer) DocumentKey(fileHash string) string {
	return hashKey("doc", fileHash)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(docHash string, characterID uint16, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, characterID, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
