package bitio

import (
	"errors"
	"testing"
)

func TestReadUB_SingleBits(t *testing.T) {
	c := New([]byte{0b1010_1100})
	want := []uint32{1, 0, 1, 0, 1, 1, 0, 0}
	for i, w := range want {
		got, err := c.ReadUB(1)
		if err != nil {
			t.Fatalf("bit %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestReadUB_CrossesByteBoundary(t *testing.T) {
	// 12-bit value 0xABC spread over two bytes: 1010 1011 | 1100 0000
	c := New([]byte{0xAB, 0xC0})
	got, err := c.ReadUB(12)
	if err != nil {
		t.Fatalf("ReadUB(12): %v", err)
	}
	if got != 0xABC {
		t.Errorf("ReadUB(12) = %#x, want 0xabc", got)
	}
}

func TestReadUB_RoundTripAllWidths(t *testing.T) {
	// For each width, pack a representative value MSB-first and read it back.
	for n := uint(1); n <= 32; n++ {
		values := []uint32{0, 1, 1<<n - 1, 1 << (n - 1)}
		for _, v := range values {
			v &= uint32((uint64(1) << n) - 1)
			buf := packBits(v, n)
			c := New(buf)
			got, err := c.ReadUB(n)
			if err != nil {
				t.Fatalf("width %d value %d: %v", n, v, err)
			}
			if got != v {
				t.Errorf("width %d: ReadUB = %d, want %d", n, got, v)
			}
		}
	}
}

func TestReadSB_SignExtension(t *testing.T) {
	tests := []struct {
		name string
		bits uint
		raw  uint32
		want int32
	}{
		{"positive", 5, 0b01010, 10},
		{"negative one", 5, 0b11111, -1},
		{"min", 5, 0b10000, -16},
		{"zero width five", 5, 0, 0},
		{"full width", 32, 0xFFFFFFFF, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(packBits(tt.raw, tt.bits))
			got, err := c.ReadSB(tt.bits)
			if err != nil {
				t.Fatalf("ReadSB: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadSB(%d) = %d, want %d", tt.bits, got, tt.want)
			}
		})
	}
}

func TestReadUB_ZeroWidth(t *testing.T) {
	c := New(nil)
	got, err := c.ReadUB(0)
	if err != nil || got != 0 {
		t.Errorf("ReadUB(0) = %d, %v, want 0, nil", got, err)
	}
}

func TestAlign_DiscardsPartialByte(t *testing.T) {
	c := New([]byte{0xFF, 0x42})
	if _, err := c.ReadUB(3); err != nil {
		t.Fatal(err)
	}
	c.Align()
	got, err := c.ReadU8()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x42 {
		t.Errorf("ReadU8 after Align = %#x, want 0x42", got)
	}
}

func TestReadU16_LittleEndian(t *testing.T) {
	c := New([]byte{0x34, 0x12})
	got, err := c.ReadU16()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1234 {
		t.Errorf("ReadU16 = %#x, want 0x1234", got)
	}
}

func TestReadU32_LittleEndian(t *testing.T) {
	c := New([]byte{0x78, 0x56, 0x34, 0x12})
	got, err := c.ReadU32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x12345678 {
		t.Errorf("ReadU32 = %#x, want 0x12345678", got)
	}
}

func TestReadFixed8(t *testing.T) {
	// 8.8 fixed: 0x0180 = 1.5
	c := New([]byte{0x80, 0x01})
	got, err := c.ReadFixed8()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.5 {
		t.Errorf("ReadFixed8 = %v, want 1.5", got)
	}
}

func TestReadFixed(t *testing.T) {
	// 16.16 fixed: 0x00018000 = 1.5
	c := New([]byte{0x00, 0x80, 0x01, 0x00})
	got, err := c.ReadFixed()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1.5 {
		t.Errorf("ReadFixed = %v, want 1.5", got)
	}
}

func TestReadString(t *testing.T) {
	c := New([]byte{'h', 'i', 0, 0x7F})
	got, err := c.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi" {
		t.Errorf("ReadString = %q, want %q", got, "hi")
	}
	b, err := c.ReadU8()
	if err != nil || b != 0x7F {
		t.Errorf("byte after string = %#x, %v, want 0x7f, nil", b, err)
	}
}

func TestReadString_Unterminated(t *testing.T) {
	c := New([]byte{'h', 'i'})
	if _, err := c.ReadString(); !errors.Is(err, ErrBounds) {
		t.Errorf("ReadString on unterminated data = %v, want ErrBounds", err)
	}
}

func TestBoundsError(t *testing.T) {
	c := New([]byte{0x00})
	if _, err := c.ReadU16(); !errors.Is(err, ErrBounds) {
		t.Errorf("ReadU16 past end = %v, want ErrBounds", err)
	}
	c = New([]byte{0x00})
	if _, err := c.ReadUB(9); !errors.Is(err, ErrBounds) {
		t.Errorf("ReadUB(9) of 8 bits = %v, want ErrBounds", err)
	}
	var be *BoundsError
	_, err := New(nil).ReadU8()
	if !errors.As(err, &be) {
		t.Fatalf("error %v is not a *BoundsError", err)
	}
	if be.Need != 8 || be.Have != 0 {
		t.Errorf("BoundsError = need %d have %d, want need 8 have 0", be.Need, be.Have)
	}
}

func TestSubCursor(t *testing.T) {
	c := New([]byte{1, 2, 3, 4, 5})
	sub, err := c.SubCursor(1, 3)
	if err != nil {
		t.Fatal(err)
	}
	got, err := sub.ReadU8()
	if err != nil || got != 2 {
		t.Errorf("sub ReadU8 = %d, %v, want 2, nil", got, err)
	}
	if sub.Remaining() != 2 {
		t.Errorf("sub Remaining = %d, want 2", sub.Remaining())
	}
	if _, err := c.SubCursor(4, 3); !errors.Is(err, ErrBounds) {
		t.Errorf("out of range SubCursor = %v, want ErrBounds", err)
	}
}

func TestRemaining_CountsPartialByteAsUsed(t *testing.T) {
	c := New([]byte{0xFF, 0xFF})
	if _, err := c.ReadUB(1); err != nil {
		t.Fatal(err)
	}
	if got := c.Remaining(); got != 1 {
		t.Errorf("Remaining after 1 bit = %d, want 1", got)
	}
}

// packBits packs the low n bits of v into a byte slice, MSB-first, exactly as
// SWF encoders do.
func packBits(v uint32, n uint) []byte {
	buf := make([]byte, (n+7)/8)
	for i := uint(0); i < n; i++ {
		bit := (v >> (n - 1 - i)) & 1
		buf[i/8] |= byte(bit) << (7 - i%8)
	}
	return buf
}
