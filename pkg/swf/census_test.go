package swf

import "testing"

func TestCensusCountsByCode(t *testing.T) {
	raw := buildSWF(2, func(w *bitWriter) {
		writeTag(w, TagDefineShape, unitSquareShapeBody(1))
		writeTag(w, TagDefineShape, unitSquareShapeBody(2))
		writeTag(w, TagPlaceObject2, place2Body(1, 1))
		writeTag(w, TagShowFrame, nil)
		writeTag(w, TagPlaceObject2, place2Body(2, 2))
		writeTag(w, TagShowFrame, nil)
	})

	entries, err := Census(raw)
	if err != nil {
		t.Fatalf("Census() error: %v", err)
	}

	byCode := make(map[TagCode]CensusEntry)
	for _, e := range entries {
		byCode[e.Code] = e
	}

	if got := byCode[TagDefineShape].Count; got != 2 {
		t.Errorf("DefineShape count = %d, want 2", got)
	}
	if got := byCode[TagPlaceObject2].Count; got != 2 {
		t.Errorf("PlaceObject2 count = %d, want 2", got)
	}
	if got := byCode[TagShowFrame].Count; got != 2 {
		t.Errorf("ShowFrame count = %d, want 2", got)
	}
	if _, ok := byCode[TagEnd]; ok {
		t.Error("terminating End tag should not be counted")
	}

	shapeBytes := 2 * len(unitSquareShapeBody(1))
	if got := byCode[TagDefineShape].Bytes; got != shapeBytes {
		t.Errorf("DefineShape bytes = %d, want %d", got, shapeBytes)
	}
	if byCode[TagDefineShape].Name != "DefineShape" {
		t.Errorf("Name = %q, want DefineShape", byCode[TagDefineShape].Name)
	}
}

func TestCensusSortedByCode(t *testing.T) {
	entries, err := Census(minimalSWF())
	if err != nil {
		t.Fatalf("Census() error: %v", err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Code >= entries[i].Code {
			t.Fatalf("entries not sorted: %v before %v", entries[i-1].Code, entries[i].Code)
		}
	}
}

func TestCensusCompressed(t *testing.T) {
	entries, err := Census(buildCompressedSWF(minimalSWF()))
	if err != nil {
		t.Fatalf("Census() error: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("compressed movie should yield entries")
	}
}

func TestCensusTruncated(t *testing.T) {
	raw := minimalSWF()
	entries, err := Census(raw[:len(raw)-3])
	if err != nil {
		t.Fatalf("truncated tail should not fail the census: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("truncated movie should still yield leading entries")
	}
}

func TestCensusBadHeader(t *testing.T) {
	if _, err := Census([]byte("not a movie")); err == nil {
		t.Fatal("expected error for invalid header")
	}
}
