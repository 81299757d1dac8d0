// Package timeline reconstructs per-frame display lists from parsed
// documents. It replays placement, move, and removal edits tag by tag,
// consults the action interpreter for playback control (stop/goto/play),
// and resolves character references through the dictionary, recursing into
// sprites with a configurable depth guard.
package timeline

import (
	"fmt"

	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// Instance is one character occupying a depth in a frame snapshot.
type Instance struct {
	Depth       uint16
	CharacterID swf.CharacterID
	Def         swf.Definition

	Matrix         record.Matrix
	ColorTransform record.ColorTransform
	Ratio          uint16
	Name           string
	ClipDepth      uint16
	BlendMode      uint8

	// Child is the resolved timeline when Def is a sprite. Nil otherwise.
	Child *Timeline
}

// Frame is a snapshot of the display list after one frame's edits.
// Instances are sorted by depth. Frame N is frame N-1 with that frame's
// edits applied; snapshots share no state, mutating one does not affect
// its neighbors.
type Frame struct {
	Index     int
	Label     string
	Instances []Instance
}

// Instance returns the instance at the given depth, or nil.
func (f *Frame) Instance(depth uint16) *Instance {
	for i := range f.Instances {
		if f.Instances[i].Depth == depth {
			return &f.Instances[i]
		}
	}
	return nil
}

// Timeline is the emitted frame sequence of one character.
type Timeline struct {
	Frames []Frame
	// Labels maps frame labels to frame indices, from the full declared
	// range even when playback stops early.
	Labels map[string]int
	// Stopped reports that a stop action halted playback, truncating
	// Frames short of the declared frame count.
	Stopped bool
}

// FrameCount returns the number of emitted frames.
func (t *Timeline) FrameCount() int { return len(t.Frames) }

// DanglingRefError reports a placement referencing a character the
// dictionary never defined, or a goto targeting an unknown label. It is
// scoped to the one instance or splice that raised it.
type DanglingRefError struct {
	ID    swf.CharacterID // zero when Label is set
	Label string
	Depth uint16
	Frame int
}

func (e *DanglingRefError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("frame %d: goto label %q: no such label", e.Frame, e.Label)
	}
	return fmt.Sprintf("frame %d depth %d: character %d not in dictionary", e.Frame, e.Depth, e.ID)
}

// DepthLimitError reports sprite nesting beyond the resolver's guard,
// which in practice means a reference cycle.
type DepthLimitError struct {
	ID    swf.CharacterID
	Limit int
}

func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("character %d: sprite nesting exceeds limit %d", e.ID, e.Limit)
}
