package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/halfdome/swfkit/internal/swftest"
	"github.com/halfdome/swfkit/pkg/cache"
	"github.com/halfdome/swfkit/pkg/shape"
	"github.com/halfdome/swfkit/pkg/swf"
	"github.com/halfdome/swfkit/pkg/timeline"
)

func TestRunnerExecuteMainTimeline(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Input: swftest.Minimal()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.JobID == "" {
		t.Error("JobID should be set")
	}
	if res.FileHash == "" {
		t.Error("FileHash should be set")
	}
	if len(res.Characters) != 1 {
		t.Fatalf("Characters = %d, want 1", len(res.Characters))
	}

	cr := res.Characters[0]
	if !cr.Root || cr.Name != "main" || cr.Kind != "timeline" {
		t.Errorf("root target = %+v", cr)
	}
	if cr.FrameCount != 1 || cr.Frame != 0 {
		t.Errorf("frames = %d rendered %d, want 1 and 0", cr.FrameCount, cr.Frame)
	}

	svg, ok := cr.Artifacts["svg"]
	if !ok {
		t.Fatal("missing svg artifact")
	}
	// Main timeline renders in the 20x20 px stage rect
	if !strings.Contains(string(svg), `viewBox="0 0 20 20"`) {
		t.Errorf("svg missing stage viewBox:\n%s", svg)
	}
}

func TestRunnerExecuteCharacterTarget(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Input:      swftest.Minimal(),
		Characters: []uint16{1},
		Formats:    []string{FormatSVG, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(res.Characters) != 1 {
		t.Fatalf("Characters = %d, want 1", len(res.Characters))
	}
	cr := res.Characters[0]
	if cr.Root || cr.ID != 1 || cr.Kind != "shape" {
		t.Errorf("target = %+v", cr)
	}
	if len(cr.Artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(cr.Artifacts))
	}
	if !bytes.HasPrefix(cr.Artifacts["png"], []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("png artifact missing magic")
	}
}

func TestRunnerExecuteAllTargets(t *testing.T) {
	input := swftest.Build(1, func(w *swftest.Writer) {
		w.Tag(swftest.TagDefineShape, swftest.ShapeBody(1, 200, [3]byte{0, 0xFF, 0}))
		w.Tag(swftest.TagDefineSprite, swftest.SpriteBody(2, 1, func(sw *swftest.Writer) {
			sw.Tag(swftest.TagPlaceObject2, swftest.PlaceBody(1, 1))
			sw.Tag(swftest.TagShowFrame, nil)
		}))
		w.Tag(swftest.TagPlaceObject2, swftest.PlaceBody(2, 1))
		w.Tag(swftest.TagShowFrame, nil)
	})

	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{Input: input, All: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Main timeline plus two characters
	if len(res.Characters) != 3 {
		t.Fatalf("Characters = %d, want 3", len(res.Characters))
	}
	if !res.Characters[0].Root {
		t.Error("first target should be the main timeline")
	}
	kinds := map[uint16]string{}
	for _, cr := range res.Characters[1:] {
		kinds[uint16(cr.ID)] = cr.Kind
	}
	if kinds[1] != "shape" || kinds[2] != "sprite" {
		t.Errorf("kinds = %v", kinds)
	}
}

func TestRunnerExecuteUnknownCharacterFails(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{
		Input:      swftest.Minimal(),
		Characters: []uint16{99},
	})
	if err == nil {
		t.Fatal("expected error for undefined character")
	}
	if !strings.Contains(err.Error(), "99") {
		t.Errorf("error should name the character: %v", err)
	}
}

func TestRunnerExecuteFrameClamped(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Input: swftest.Minimal(),
		Frame: 10,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := res.Characters[0].Frame; got != 0 {
		t.Errorf("rendered frame = %d, want 0 (clamped)", got)
	}
}

func TestRunnerArtifactCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Input: swftest.Minimal()}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.Hits != 0 || first.CacheInfo.Misses != 1 {
		t.Errorf("first run cache = %+v", first.CacheInfo)
	}
	if first.Characters[0].FromCache {
		t.Error("first run should not be FromCache")
	}

	second, err := r.Execute(context.Background(), Options{Input: swftest.Minimal()})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if second.CacheInfo.Hits != 1 || second.CacheInfo.Misses != 0 {
		t.Errorf("second run cache = %+v", second.CacheInfo)
	}
	if !second.Characters[0].FromCache {
		t.Error("second run should be FromCache")
	}
	if !bytes.Equal(first.Characters[0].Artifacts["svg"], second.Characters[0].Artifacts["svg"]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// NoCache bypasses reads
	third, err := r.Execute(context.Background(), Options{Input: swftest.Minimal(), NoCache: true})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.Hits != 0 {
		t.Errorf("NoCache run should not hit: %+v", third.CacheInfo)
	}
}

func TestRunnerParse(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	doc, err := r.Parse(context.Background(), Options{Input: swftest.Minimal()})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := len(doc.CharacterIDs()); got != 1 {
		t.Errorf("characters = %d, want 1", got)
	}
}

func TestExtractUnitSquareEndToEnd(t *testing.T) {
	// DefineShape plus ShowFrame only: the shape is extractable even
	// though nothing places it on the main timeline.
	input := swftest.Build(1, func(w *swftest.Writer) {
		w.Tag(swftest.TagDefineShape, swftest.ShapeBody(1, 400, [3]byte{0xFF, 0, 0}))
		w.Tag(swftest.TagShowFrame, nil)
	})

	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Input:      input,
		Characters: []uint16{1},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	cr := res.Characters[0]
	if cr.FrameCount != 1 {
		t.Errorf("FrameCount = %d, want 1", cr.FrameCount)
	}
	if got := cr.Bounds.PixelWidth(); got != 20 {
		t.Errorf("bounds width = %v px, want 20", got)
	}
	if got := cr.Bounds.PixelHeight(); got != 20 {
		t.Errorf("bounds height = %v px, want 20", got)
	}

	doc, err := r.Parse(context.Background(), Options{Input: input})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, _ := doc.Character(1)
	d := shape.FromShape(def.(*swf.ShapeDef).Shape())
	if len(d.Fills) != 1 || len(d.Fills[0].Paths) != 1 {
		t.Fatalf("fills = %+v, want one path under one style", d.Fills)
	}
	p := d.Fills[0].Paths[0]
	if len(p.Segments) != 4 {
		t.Errorf("segments = %d, want 4", len(p.Segments))
	}
	if !p.Closed {
		t.Error("square path should be closed")
	}
}

func TestRunnerTargetFailureRecordedNotFatal(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	opts := Options{Input: swftest.Minimal()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options: %v", err)
	}
	doc, err := swf.Parse(opts.Input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := timeline.NewResolver(doc)

	var stats Stats
	var ci CacheInfo
	ctx := context.Background()

	bad := r.extractTarget(ctx, doc, res, target{id: 99}, "hash", opts, &stats, &ci)
	if bad.Err == nil {
		t.Fatal("undefined character should record an error on the result")
	}
	if !strings.Contains(bad.Err.Error(), "99") {
		t.Errorf("Err should name the character, got %v", bad.Err)
	}

	// A failed target leaves the rest of the run intact.
	good := r.extractTarget(ctx, doc, res, target{id: 1}, "hash", opts, &stats, &ci)
	if good.Err != nil {
		t.Fatalf("good target errored: %v", good.Err)
	}
	if len(good.Artifacts) == 0 {
		t.Error("good target should still render artifacts")
	}
}
