package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/halfdome/swfkit/internal/swftest"
)

func TestInfoCommand(t *testing.T) {
	input := writeFixture(t, swftest.Minimal())

	if err := runCommand(t, "info", input, "--no-cache"); err != nil {
		t.Fatalf("info failed: %v", err)
	}
}

func TestInfoMissingFile(t *testing.T) {
	if err := runCommand(t, "info", "/nonexistent/movie.swf"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCensusCached(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)
	data := swftest.Minimal()
	ctx := context.Background()

	first, err := c.census(ctx, data, false)
	if err != nil {
		t.Fatalf("census: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("census returned no entries")
	}

	// Second call is served from the document cache and must match.
	second, err := c.census(ctx, data, false)
	if err != nil {
		t.Fatalf("cached census: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached census has %d entries, want %d", len(second), len(first))
	}
	for i := range first {
		if second[i] != first[i] {
			t.Errorf("entry %d = %+v, want %+v", i, second[i], first[i])
		}
	}
}

func TestCensusNoCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	c := New(&buf, log.InfoLevel)

	entries, err := c.census(context.Background(), swftest.Minimal(), true)
	if err != nil {
		t.Fatalf("census: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("census returned no entries")
	}
}
