// Package record implements the fixed and variable-width structure decoders
// shared by every SWF tag: rectangles, matrices, color transforms, gradients,
// fill and line styles, and the shape edge record stream.
//
// Decoders are pure functions from a [bitio.Cursor] to a value; they hold no
// shared state and never write. Coordinates stay in twips (1/20 px) until a
// caller converts them with [Twips].
package record

// twipsPerPixel is the SWF coordinate scale.
const twipsPerPixel = 20.0

// Twips converts a twip coordinate to pixels.
func Twips(t int32) float64 { return float64(t) / twipsPerPixel }

// Point is a position in twips.
type Point struct {
	X, Y int32
}

// Rect is an axis-aligned bounding box in twips.
type Rect struct {
	XMin, XMax, YMin, YMax int32
}

// Width returns the width in twips.
func (r Rect) Width() int32 { return r.XMax - r.XMin }

// Height returns the height in twips.
func (r Rect) Height() int32 { return r.YMax - r.YMin }

// PixelWidth returns the width in pixels.
func (r Rect) PixelWidth() float64 { return Twips(r.Width()) }

// PixelHeight returns the height in pixels.
func (r Rect) PixelHeight() float64 { return Twips(r.Height()) }

// Union returns the smallest rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	if o.XMin < r.XMin {
		r.XMin = o.XMin
	}
	if o.YMin < r.YMin {
		r.YMin = o.YMin
	}
	if o.XMax > r.XMax {
		r.XMax = o.XMax
	}
	if o.YMax > r.YMax {
		r.YMax = o.YMax
	}
	return r
}

// Color is an 8-bit RGBA color. Records without an alpha channel decode with
// A = 255.
type Color struct {
	R, G, B, A uint8
}

// Matrix is the SWF 2x3 affine transform. Scale and rotate terms are 16.16
// fixed point in the file; translation is in twips.
//
//	x' = x*ScaleX + y*RotateSkew1 + TranslateX
//	y' = x*RotateSkew0 + y*ScaleY + TranslateY
type Matrix struct {
	ScaleX, ScaleY           float64
	RotateSkew0, RotateSkew1 float64
	TranslateX, TranslateY   int32
}

// IdentityMatrix is the transform a matrix record with all presence bits
// cleared decodes to.
var IdentityMatrix = Matrix{ScaleX: 1, ScaleY: 1}

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool { return m == IdentityMatrix }

// Apply transforms a point in twips.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return x*m.ScaleX + y*m.RotateSkew1 + float64(m.TranslateX),
		x*m.RotateSkew0 + y*m.ScaleY + float64(m.TranslateY)
}

// Multiply composes two transforms; applying the result is equivalent to
// applying m after inner.
func (m Matrix) Multiply(inner Matrix) Matrix {
	tx, ty := m.Apply(float64(inner.TranslateX), float64(inner.TranslateY))
	return Matrix{
		ScaleX:      inner.ScaleX*m.ScaleX + inner.RotateSkew0*m.RotateSkew1,
		RotateSkew0: inner.ScaleX*m.RotateSkew0 + inner.RotateSkew0*m.ScaleY,
		RotateSkew1: inner.RotateSkew1*m.ScaleX + inner.ScaleY*m.RotateSkew1,
		ScaleY:      inner.RotateSkew1*m.RotateSkew0 + inner.ScaleY*m.ScaleY,
		TranslateX:  int32(tx),
		TranslateY:  int32(ty),
	}
}

// ColorTransform scales then offsets each channel:
//
//	out = clamp(in * Mult/256 + Add)
//
// Mult terms are 8.8 fixed point stored as integers; the identity transform
// has all Mult = 256 and all Add = 0.
type ColorTransform struct {
	MultR, MultG, MultB, MultA int16
	AddR, AddG, AddB, AddA     int16
}

// IdentityColorTransform leaves colors unchanged.
var IdentityColorTransform = ColorTransform{MultR: 256, MultG: 256, MultB: 256, MultA: 256}

// IsIdentity reports whether the transform leaves all colors unchanged.
func (t ColorTransform) IsIdentity() bool { return t == IdentityColorTransform }

// Apply transforms a color, clamping each channel to [0,255].
func (t ColorTransform) Apply(c Color) Color {
	ch := func(v uint8, mult, add int16) uint8 {
		x := int32(v)*int32(mult)/256 + int32(add)
		if x < 0 {
			return 0
		}
		if x > 255 {
			return 255
		}
		return uint8(x)
	}
	return Color{
		R: ch(c.R, t.MultR, t.AddR),
		G: ch(c.G, t.MultG, t.AddG),
		B: ch(c.B, t.MultB, t.AddB),
		A: ch(c.A, t.MultA, t.AddA),
	}
}

// Compose returns the transform equivalent to applying t after inner.
func (t ColorTransform) Compose(inner ColorTransform) ColorTransform {
	mul := func(a, b int16) int16 { return int16(int32(a) * int32(b) / 256) }
	add := func(m, a, b int16) int16 { return int16(int32(b)*int32(m)/256 + int32(a)) }
	return ColorTransform{
		MultR: mul(t.MultR, inner.MultR), MultG: mul(t.MultG, inner.MultG),
		MultB: mul(t.MultB, inner.MultB), MultA: mul(t.MultA, inner.MultA),
		AddR: add(t.MultR, t.AddR, inner.AddR), AddG: add(t.MultG, t.AddG, inner.AddG),
		AddB: add(t.MultB, t.AddB, inner.AddB), AddA: add(t.MultA, t.AddA, inner.AddA),
	}
}

// GradRecord is one color stop. Stops keep file order; the format does not
// guarantee they are sorted by ratio.
type GradRecord struct {
	Ratio uint8 // position along the gradient, 0..255
	Color Color
}

// Gradient is a linear, radial, or focal radial gradient fill.
type Gradient struct {
	Spread        uint8 // 0 pad, 1 reflect, 2 repeat
	Interpolation uint8 // 0 normal RGB, 1 linear RGB
	Records       []GradRecord
	FocalPoint    float64 // signed 8.8 fixed; only set for focal gradients
}

// FillType identifies the fill style variant. Values match the on-disk type
// byte.
type FillType uint8

const (
	FillSolid                FillType = 0x00
	FillLinearGradient       FillType = 0x10
	FillRadialGradient       FillType = 0x12
	FillFocalGradient        FillType = 0x13
	FillRepeatingBitmap      FillType = 0x40
	FillClippedBitmap        FillType = 0x41
	FillNonSmoothedRepeating FillType = 0x42
	FillNonSmoothedClipped   FillType = 0x43
)

// IsGradient reports whether the type carries a gradient payload.
func (t FillType) IsGradient() bool {
	return t == FillLinearGradient || t == FillRadialGradient || t == FillFocalGradient
}

// IsBitmap reports whether the type carries a bitmap reference.
func (t FillType) IsBitmap() bool { return t >= FillRepeatingBitmap && t <= FillNonSmoothedClipped }

// FillStyle is the tagged union of fill variants. Type selects which of the
// payload fields are meaningful.
type FillStyle struct {
	Type     FillType
	Color    Color     // solid fills
	Matrix   Matrix    // gradient and bitmap fills
	Gradient *Gradient // gradient fills
	BitmapID uint16    // bitmap fills: character id of the bitmap
}

// LineStyle is a stroke style. Shape4 line styles carry the extended cap,
// join, and fill fields; earlier versions leave them zero.
type LineStyle struct {
	Width uint16 // twips
	Color Color

	// DefineShape4 extensions.
	StartCap, EndCap uint8 // 0 round, 1 none, 2 square
	Join             uint8 // 0 round, 1 bevel, 2 miter
	MiterLimit       float64
	NoClose          bool
	Fill             *FillStyle // set when the stroke is painted with a fill style
}

// Edge is one decoded shape edge in absolute twips, annotated with the style
// indices active while it was emitted. Indices are 1-based into the owning
// [StyleGroup]; 0 means no style on that side.
type Edge struct {
	Start, End Point
	Control    Point // quadratic control point; meaningful when Curved
	Curved     bool

	Fill0, Fill1, Line int
}

// StyleGroup is one generation of style arrays plus the edges drawn under it.
// A style-change record that supplies new style arrays closes the current
// group and starts a new one with numbering reset to 1.
type StyleGroup struct {
	FillStyles []FillStyle
	LineStyles []LineStyle
	Edges      []Edge
}

// Shape is a fully decoded shape definition.
type Shape struct {
	Bounds Rect
	Groups []StyleGroup
}
