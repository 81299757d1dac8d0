package avm

import (
	"fmt"
	"math"

	"github.com/halfdome/swfkit/pkg/swf/bitio"
)

// Opcode is an action code byte. Codes at 0x80 and above carry a 16-bit
// length-prefixed payload.
type Opcode uint8

// The control-flow subset. Everything else decodes into an [Instr] with the
// payload retained raw and executes as a no-op.
const (
	OpEnd          Opcode = 0x00
	OpNextFrame    Opcode = 0x04
	OpPrevFrame    Opcode = 0x05
	OpPlay         Opcode = 0x06
	OpStop         Opcode = 0x07
	OpPop          Opcode = 0x17
	OpGotoFrame    Opcode = 0x81
	OpConstantPool Opcode = 0x88
	OpGotoLabel    Opcode = 0x8C
	OpPush         Opcode = 0x96
	OpJump         Opcode = 0x99
	OpIf           Opcode = 0x9D
	OpGotoFrame2   Opcode = 0x9F
)

func (o Opcode) String() string {
	switch o {
	case OpEnd:
		return "End"
	case OpNextFrame:
		return "NextFrame"
	case OpPrevFrame:
		return "PrevFrame"
	case OpPlay:
		return "Play"
	case OpStop:
		return "Stop"
	case OpPop:
		return "Pop"
	case OpGotoFrame:
		return "GotoFrame"
	case OpConstantPool:
		return "ConstantPool"
	case OpGotoLabel:
		return "GotoLabel"
	case OpPush:
		return "Push"
	case OpJump:
		return "Jump"
	case OpIf:
		return "If"
	case OpGotoFrame2:
		return "GotoFrame2"
	}
	return fmt.Sprintf("Op(0x%02x)", uint8(o))
}

// hasPayload reports whether the opcode carries a length-prefixed body.
func (o Opcode) hasPayload() bool { return o >= 0x80 }

// Instr is one decoded action. Operand fields are populated per opcode;
// unsupported long actions keep their payload in Raw.
type Instr struct {
	Op     Opcode
	Offset int // byte offset of the action record in the program

	Frame      uint16  // GotoFrame
	Label      string  // GotoLabel
	Branch     int16   // Jump/If: offset relative to the following action
	Pool       []string
	PushValues []Value
	SceneBias  uint16 // GotoFrame2
	PlayAfter  bool   // GotoFrame2 play flag
	Raw        []byte
}

// Program is a decoded action sequence with a byte-offset index so relative
// branch targets resolve to instruction indices.
type Program struct {
	Instrs []Instr

	// byOffset maps an action record's byte offset to its index in Instrs.
	// The offset one past the last action is also mapped, so a branch to the
	// very end of the program terminates cleanly.
	byOffset map[int]int
	end      int
}

// indexAt resolves a byte offset to an instruction index. ok is false when
// the offset does not land on an action boundary.
func (p *Program) indexAt(off int) (int, bool) {
	i, ok := p.byOffset[off]
	return i, ok
}

// DecodeProgram decodes one DoAction/DoInitAction body into a Program.
// Decoding stops at the End action or when the body runs out.
func DecodeProgram(body []byte) (*Program, error) {
	c := bitio.New(body)
	p := &Program{byOffset: make(map[int]int)}
	for c.Remaining() > 0 {
		off := c.Offset()
		code, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		op := Opcode(code)
		if op == OpEnd {
			// A branch landing on the End record terminates. Map its
			// offset rather than the one past it.
			p.end = off
			p.byOffset[p.end] = len(p.Instrs)
			return p, nil
		}
		in := Instr{Op: op, Offset: off}
		if op.hasPayload() {
			n, err := c.ReadU16()
			if err != nil {
				return nil, fmt.Errorf("%s at %d: length: %w", op, off, err)
			}
			payload, err := c.ReadBytes(int(n))
			if err != nil {
				return nil, fmt.Errorf("%s at %d: payload: %w", op, off, err)
			}
			if err := decodeOperands(&in, payload); err != nil {
				return nil, fmt.Errorf("%s at %d: %w", op, off, err)
			}
		}
		p.byOffset[off] = len(p.Instrs)
		p.Instrs = append(p.Instrs, in)
	}
	p.end = c.Offset()
	p.byOffset[p.end] = len(p.Instrs)
	return p, nil
}

func decodeOperands(in *Instr, payload []byte) error {
	c := bitio.New(payload)
	var err error
	switch in.Op {
	case OpGotoFrame:
		in.Frame, err = c.ReadU16()
		return err
	case OpGotoLabel:
		in.Label, err = c.ReadString()
		return err
	case OpJump, OpIf:
		in.Branch, err = c.ReadS16()
		return err
	case OpConstantPool:
		count, err := c.ReadU16()
		if err != nil {
			return err
		}
		in.Pool = make([]string, 0, count)
		for i := 0; i < int(count); i++ {
			s, err := c.ReadString()
			if err != nil {
				return fmt.Errorf("constant %d: %w", i, err)
			}
			in.Pool = append(in.Pool, s)
		}
		return nil
	case OpGotoFrame2:
		flags, err := c.ReadU8()
		if err != nil {
			return err
		}
		in.PlayAfter = flags&0x01 != 0
		if flags&0x02 != 0 {
			if in.SceneBias, err = c.ReadU16(); err != nil {
				return err
			}
		}
		return nil
	case OpPush:
		return decodePushValues(in, c)
	default:
		in.Raw = payload
		return nil
	}
}

// decodePushValues decodes the packed typed literals of a Push action. A
// single Push can carry several values back to back.
func decodePushValues(in *Instr, c *bitio.Cursor) error {
	for c.Remaining() > 0 {
		tb, err := c.ReadU8()
		if err != nil {
			return err
		}
		var v Value
		switch tb {
		case 0: // string
			s, err := c.ReadString()
			if err != nil {
				return err
			}
			v = String(s)
		case 1: // float32
			bits, err := c.ReadU32()
			if err != nil {
				return err
			}
			v = Number(float64(math.Float32frombits(bits)))
		case 2:
			v = Value{Kind: KindNull}
		case 3:
			v = Undefined
		case 4: // register reference; outside the subset
			if _, err := c.ReadU8(); err != nil {
				return err
			}
			v = Undefined
		case 5:
			b, err := c.ReadU8()
			if err != nil {
				return err
			}
			v = Bool(b != 0)
		case 6: // double, stored with its 32-bit halves swapped
			hi, err := c.ReadU32()
			if err != nil {
				return err
			}
			lo, err := c.ReadU32()
			if err != nil {
				return err
			}
			v = Number(math.Float64frombits(uint64(hi)<<32 | uint64(lo)))
		case 7: // int32
			bits, err := c.ReadU32()
			if err != nil {
				return err
			}
			v = Number(float64(int32(bits)))
		case 8: // constant pool index, 8-bit
			idx, err := c.ReadU8()
			if err != nil {
				return err
			}
			v = constantRef(int(idx))
		case 9: // constant pool index, 16-bit
			idx, err := c.ReadU16()
			if err != nil {
				return err
			}
			v = constantRef(int(idx))
		default:
			return fmt.Errorf("push value type %d: unknown", tb)
		}
		in.PushValues = append(in.PushValues, v)
	}
	return nil
}

// kindConstRef marks a pool reference for resolution at execution time,
// when the active pool is known. The index rides in Num. Never escapes the
// interpreter.
const kindConstRef Kind = 0xFF

func constantRef(idx int) Value {
	return Value{Kind: kindConstRef, Num: float64(idx)}
}
