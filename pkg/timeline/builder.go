package timeline

import (
	"slices"

	"github.com/halfdome/swfkit/pkg/avm"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/swf/record"
)

// frameTags is one frame's slice of the tag stream: everything between the
// previous ShowFrame and its own.
type frameTags struct {
	label string
	tags  []swf.Tag
}

// splitFrames buckets a tag stream by ShowFrame boundaries. Tags after the
// last ShowFrame belong to no frame and are dropped; a well-formed stream
// ends each frame with one.
func splitFrames(tags []swf.Tag) []frameTags {
	var frames []frameTags
	cur := frameTags{}
	for _, t := range tags {
		if t.Code == swf.TagShowFrame {
			frames = append(frames, cur)
			cur = frameTags{}
			continue
		}
		if t.Code == swf.TagFrameLabel {
			if label, err := swf.DecodeFrameLabel(t); err == nil {
				cur.label = label
			}
			continue
		}
		cur.tags = append(cur.tags, t)
	}
	return frames
}

// replay runs a tag stream through the display-list state machine and emits
// one snapshot per frame reached. declared is the frame count the header or
// sprite tag promised; the emitted sequence is capped at one full pass of
// that many frames, and a stop action truncates it earlier.
func (r *Resolver) replay(tags []swf.Tag, declared int, nesting int) (*Timeline, error) {
	frames := splitFrames(tags)
	if declared <= 0 || declared > len(frames) {
		declared = len(frames)
	}

	tl := &Timeline{Labels: make(map[string]int)}
	for i := 0; i < declared; i++ {
		if frames[i].label != "" {
			tl.Labels[frames[i].label] = i
		}
	}

	display := make(map[uint16]*Instance)
	idx := 0
	for len(tl.Frames) < declared && idx < declared {
		effect := r.applyFrame(display, frames[idx], idx, nesting)

		snap := Frame{Index: idx, Label: frames[idx].label}
		for _, in := range display {
			snap.Instances = append(snap.Instances, *in)
		}
		slices.SortFunc(snap.Instances, func(a, b Instance) int {
			return int(a.Depth) - int(b.Depth)
		})
		tl.Frames = append(tl.Frames, snap)

		switch effect.Kind {
		case avm.EffectStop:
			tl.Stopped = true
			return tl, nil
		case avm.EffectGotoFrame:
			idx = clampFrame(int(effect.Frame), declared)
		case avm.EffectGotoLabel:
			target, ok := tl.Labels[effect.Label]
			if !ok {
				err := &DanglingRefError{Label: effect.Label, Frame: idx}
				r.Diag.DanglingRefs = append(r.Diag.DanglingRefs, err)
				r.note("goto unknown label", "label", effect.Label, "frame", idx)
				idx++
				break
			}
			idx = target
		default:
			idx++
		}
	}
	return tl, nil
}

func clampFrame(n, declared int) int {
	if n < 0 {
		return 0
	}
	if n >= declared {
		return declared - 1
	}
	return n
}

// applyFrame applies one frame's edits to the display list and returns the
// playback effect of its actions. At most one effect applies per frame;
// with several DoAction tags the last effect wins, mirroring the
// interpreter's own last-wins rule within a program.
func (r *Resolver) applyFrame(display map[uint16]*Instance, ft frameTags, frame, nesting int) avm.Effect {
	var effect avm.Effect
	for _, t := range ft.tags {
		switch t.Code {
		case swf.TagPlaceObject, swf.TagPlaceObject2, swf.TagPlaceObject3:
			r.applyPlace(display, t, frame, nesting)
		case swf.TagRemoveObject, swf.TagRemoveObject2:
			if rm, err := swf.DecodeRemoveObject(t); err == nil {
				delete(display, rm.Depth)
			} else {
				r.note("remove decode failed", "frame", frame, "err", err)
			}
		case swf.TagDoAction, swf.TagDoInitAction:
			if eff, ok := r.runActions(t, frame); ok && eff.Kind != avm.EffectNone {
				effect = eff
			}
		}
	}
	return effect
}

// applyPlace applies one PlaceObject edit. Non-move placements insert a
// fresh instance; a hit on an occupied depth replaces it (last write wins,
// counted). Move edits mutate the existing instance, only the fields the
// tag carries.
func (r *Resolver) applyPlace(display map[uint16]*Instance, t swf.Tag, frame, nesting int) {
	po, err := swf.DecodePlaceObject(t)
	if err != nil {
		r.note("place decode failed", "frame", frame, "err", err)
		return
	}

	existing := display[po.Depth]
	if po.Move && existing == nil {
		r.note("move at empty depth", "depth", po.Depth, "frame", frame)
		return
	}

	if po.Move {
		if po.HasCharacter && po.CharacterID != existing.CharacterID {
			// Character swap at a depth keeps the unmentioned attributes.
			swapped := *existing
			swapped.CharacterID = po.CharacterID
			swapped.Child = nil
			resolved, err := r.resolveInstance(swapped, frame, nesting)
			if err != nil {
				r.note("swap failed", "depth", po.Depth, "frame", frame, "err", err)
				return
			}
			if resolved == nil {
				delete(display, po.Depth)
				return
			}
			*existing = *resolved
		}
		applyOverrides(existing, po)
		return
	}

	if !po.HasCharacter {
		r.note("placement without character", "depth", po.Depth, "frame", frame)
		return
	}
	if existing != nil {
		r.Diag.PlacementConflicts++
		r.note("placement at occupied depth", "depth", po.Depth, "frame", frame)
	}

	in := Instance{
		Depth:          po.Depth,
		CharacterID:    po.CharacterID,
		Matrix:         record.IdentityMatrix,
		ColorTransform: record.IdentityColorTransform,
	}
	applyOverrides(&in, po)
	resolved, err := r.resolveInstance(in, frame, nesting)
	if err != nil {
		r.note("placement failed", "depth", po.Depth, "frame", frame, "err", err)
		return
	}
	if resolved == nil {
		return
	}
	display[po.Depth] = resolved
}

func applyOverrides(in *Instance, po *swf.PlaceObject) {
	if po.HasMatrix {
		in.Matrix = po.Matrix
	}
	if po.HasColorTransform {
		in.ColorTransform = po.ColorTransform
	}
	if po.HasRatio {
		in.Ratio = po.Ratio
	}
	if po.HasName {
		in.Name = po.Name
	}
	if po.HasClipDepth {
		in.ClipDepth = po.ClipDepth
	}
	if po.HasBlendMode {
		in.BlendMode = po.BlendMode
	}
}

// runActions decodes and executes one DoAction body. Decode or run failures
// are counted and the tag skipped.
func (r *Resolver) runActions(t swf.Tag, frame int) (avm.Effect, bool) {
	prog, err := avm.DecodeProgram(t.Body)
	if err != nil {
		r.Diag.ActionErrors++
		r.note("action decode failed", "frame", frame, "err", err)
		return avm.Effect{}, false
	}
	eff, info, err := r.interp.Run(prog)
	r.Diag.UnsupportedOps += info.UnsupportedOps
	if err != nil {
		r.Diag.ActionErrors++
		r.note("action run failed", "frame", frame, "err", err)
		return avm.Effect{}, false
	}
	return eff, true
}
