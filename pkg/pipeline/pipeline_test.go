package pipeline

import (
	"testing"

	"github.com/halfdome/swfkit/pkg/swf/record"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{Input: []byte{1}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %g, want %g", opts.Scale, DefaultScale)
	}
	if opts.MaxDepth == 0 || opts.MaxSteps == 0 {
		t.Error("resolver limits should default to non-zero")
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no input", Options{}},
		{"negative frame", Options{Input: []byte{1}, Frame: -1}},
		{"negative scale", Options{Input: []byte{1}, Scale: -2}},
		{"bad format", Options{Input: []byte{1}, Formats: []string{"bmp"}}},
		{"bad background", Options{Input: []byte{1}, Background: "red"}},
	}

	for _, tt := range tests {
		if err := tt.opts.ValidateAndSetDefaults(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    record.Color
		wantErr bool
	}{
		{"#ff0000", record.Color{R: 0xFF, A: 0xFF}, false},
		{"0a141e", record.Color{R: 0x0A, G: 0x14, B: 0x1E, A: 0xFF}, false},
		{"#00ff0080", record.Color{G: 0xFF, A: 0x80}, false},
		{"#fff", record.Color{}, true},
		{"#zzzzzz", record.Color{}, true},
		{"", record.Color{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestArtifactKeyOptsCarriesRenderSettings(t *testing.T) {
	opts := Options{
		Frame:          3,
		Scale:          2,
		Background:     "#ffffff",
		MinStrokeWidth: 0.5,
		MaxDepth:       8,
		MaxSteps:       100,
	}

	ko := opts.ArtifactKeyOpts(FormatPNG)
	if ko.Format != FormatPNG || ko.Frame != 3 || ko.Scale != 2 {
		t.Errorf("key opts = %+v", ko)
	}
	if ko.MaxDepth != 8 || ko.MaxSteps != 100 {
		t.Errorf("resolver limits not carried: %+v", ko)
	}
}
