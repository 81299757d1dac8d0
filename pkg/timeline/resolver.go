package timeline

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/halfdome/swfkit/pkg/avm"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// DefaultMaxDepth bounds sprite nesting. Authored content rarely nests more
// than a handful of levels; the guard turns a crafted cycle into a diagnosed
// error instead of unbounded recursion.
const DefaultMaxDepth = 16

// Diagnostics collects non-fatal events observed while building timelines.
type Diagnostics struct {
	// DanglingRefs are placements and label gotos that resolved to nothing.
	// Each is scoped to one instance or splice; siblings still resolve.
	DanglingRefs []*DanglingRefError
	// PlacementConflicts counts non-move placements that hit an occupied
	// depth. Last write wins.
	PlacementConflicts int
	// UnsupportedOps totals action opcodes outside the control-flow subset.
	UnsupportedOps int
	// ActionErrors counts DoAction bodies that failed to decode or run.
	// Each is skipped; the frame still renders.
	ActionErrors int
}

// Resolver builds timelines against one document's dictionary. Sprite
// timelines are memoized per resolver, so repeated placements of a sprite
// decode its frames once. Not safe for concurrent use.
type Resolver struct {
	doc      *swf.Document
	interp   avm.Interpreter
	maxDepth int
	logger   *log.Logger

	memo map[swf.CharacterID]*Timeline

	// Diag accumulates across all builds on this resolver.
	Diag Diagnostics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger attaches a logger for build diagnostics.
func WithLogger(l *log.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// WithMaxDepth overrides the sprite nesting guard.
func WithMaxDepth(n int) ResolverOption {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

// WithMaxSteps overrides the action interpreter's step budget.
func WithMaxSteps(n int) ResolverOption {
	return func(r *Resolver) { r.interp.MaxSteps = n }
}

// NewResolver creates a resolver over a parsed document.
func NewResolver(doc *swf.Document, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		doc:      doc,
		maxDepth: DefaultMaxDepth,
		memo:     make(map[swf.CharacterID]*Timeline),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root builds the main timeline.
func (r *Resolver) Root() (*Timeline, error) {
	return r.replay(r.doc.Tags, int(r.doc.Header.FrameCount), 0)
}

// Character builds the timeline of one character. Sprites replay their
// nested tag stream; every other definition yields a single frame with the
// character itself placed at depth 1 under an identity transform, so shapes
// and bitmaps export through the same path sprites do.
func (r *Resolver) Character(id swf.CharacterID) (*Timeline, error) {
	def, ok := r.doc.Character(id)
	if !ok {
		err := &DanglingRefError{ID: id}
		r.Diag.DanglingRefs = append(r.Diag.DanglingRefs, err)
		return nil, err
	}
	if sp, ok := def.(*swf.SpriteDef); ok {
		return r.sprite(sp, 0)
	}
	return &Timeline{
		Frames: []Frame{{
			Index: 0,
			Instances: []Instance{{
				Depth:          1,
				CharacterID:    id,
				Def:            def,
				Matrix:         record.IdentityMatrix,
				ColorTransform: record.IdentityColorTransform,
			}},
		}},
		Labels: map[string]int{},
	}, nil
}

// ExportedCharacter builds the timeline for an export name.
func (r *Resolver) ExportedCharacter(name string) (*Timeline, error) {
	def, ok := r.doc.ExportedCharacter(name)
	if !ok {
		return nil, fmt.Errorf("export %q: not in export table", name)
	}
	return r.Character(def.CharacterID())
}

// sprite builds (or recalls) a sprite's timeline at the given nesting level.
func (r *Resolver) sprite(sp *swf.SpriteDef, nesting int) (*Timeline, error) {
	if tl, ok := r.memo[sp.ID]; ok {
		return tl, nil
	}
	if nesting >= r.maxDepth {
		return nil, &DepthLimitError{ID: sp.ID, Limit: r.maxDepth}
	}
	// Reserve the slot before recursing, so a sprite that transitively
	// places itself sees the guard, not infinite recursion. The nil entry
	// is replaced on success.
	r.memo[sp.ID] = nil
	tl, err := r.replay(sp.Tags, int(sp.FrameCount), nesting+1)
	if err != nil {
		delete(r.memo, sp.ID)
		return nil, err
	}
	r.memo[sp.ID] = tl
	return tl, nil
}

// resolveInstance fills in the definition, recursing into sprites. A nil
// return with nil error means the reference dangled and the instance is
// dropped.
func (r *Resolver) resolveInstance(in Instance, frame, nesting int) (*Instance, error) {
	def, ok := r.doc.Character(in.CharacterID)
	if !ok {
		err := &DanglingRefError{ID: in.CharacterID, Depth: in.Depth, Frame: frame}
		r.Diag.DanglingRefs = append(r.Diag.DanglingRefs, err)
		r.note("dangling character reference", "id", in.CharacterID, "depth", in.Depth, "frame", frame)
		return nil, nil
	}
	in.Def = def
	if sp, ok := def.(*swf.SpriteDef); ok {
		child, err := r.sprite(sp, nesting)
		if err != nil {
			return nil, err
		}
		if child == nil {
			// Sprite still being built above us on the stack: a cycle.
			return nil, &DepthLimitError{ID: sp.ID, Limit: r.maxDepth}
		}
		in.Child = child
	}
	return &in, nil
}

func (r *Resolver) note(msg string, kv ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, kv...)
	}
}
