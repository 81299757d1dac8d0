package avm

import (
	"encoding/binary"
	"errors"
	"math"
	"reflect"
	"testing"
)

// actionWriter assembles action bytecode for fixtures.
type actionWriter struct {
	buf []byte
}

func (w *actionWriter) short(op Opcode) *actionWriter {
	w.buf = append(w.buf, byte(op))
	return w
}

func (w *actionWriter) long(op Opcode, payload ...byte) *actionWriter {
	w.buf = append(w.buf, byte(op))
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(len(payload)))
	w.buf = append(w.buf, payload...)
	return w
}

func (w *actionWriter) end() []byte {
	return append(w.buf, byte(OpEnd))
}

func u16le(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func mustDecode(t *testing.T, body []byte) *Program {
	t.Helper()
	p, err := DecodeProgram(body)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	return p
}

func run(t *testing.T, p *Program) (Effect, RunInfo) {
	t.Helper()
	var it Interpreter
	eff, info, err := it.Run(p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return eff, info
}

func TestDecodeProgram_PushTypes(t *testing.T) {
	var payload []byte
	payload = append(payload, 0)
	payload = append(payload, "hi"...)
	payload = append(payload, 0)
	payload = append(payload, 1)
	payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(1.5))
	payload = append(payload, 5, 1)
	payload = append(payload, 7)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(0xFFFFFFFF)) // int32 -1

	// Doubles store their 32-bit halves swapped.
	bits := math.Float64bits(2.25)
	payload = append(payload, 6)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(bits>>32))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(bits))

	w := &actionWriter{}
	body := w.long(OpPush, payload...).end()
	p := mustDecode(t, body)

	if len(p.Instrs) != 1 {
		t.Fatalf("instrs = %d, want 1", len(p.Instrs))
	}
	got := p.Instrs[0].PushValues
	want := []Value{String("hi"), Number(1.5), Bool(true), Number(-1), Number(2.25)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("push values = %#v, want %#v", got, want)
	}
}

func TestRun_StopThenPlayLastWins(t *testing.T) {
	w := &actionWriter{}
	body := w.short(OpStop).short(OpPlay).end()
	eff, _ := run(t, mustDecode(t, body))
	if eff.Kind != EffectPlay {
		t.Errorf("effect = %v, want play", eff.Kind)
	}
}

func TestRun_GotoFrame(t *testing.T) {
	w := &actionWriter{}
	body := w.long(OpGotoFrame, u16le(7)...).end()
	eff, _ := run(t, mustDecode(t, body))
	if eff.Kind != EffectGotoFrame || eff.Frame != 7 {
		t.Errorf("effect = %+v, want goto frame 7", eff)
	}
}

func TestRun_GotoLabel(t *testing.T) {
	w := &actionWriter{}
	body := w.long(OpGotoLabel, append([]byte("intro"), 0)...).end()
	eff, _ := run(t, mustDecode(t, body))
	if eff.Kind != EffectGotoLabel || eff.Label != "intro" {
		t.Errorf("effect = %+v, want goto label intro", eff)
	}
}

func TestRun_JumpSkipsStop(t *testing.T) {
	// 0: Jump +1     (over the Stop; jump record is 5 bytes, next at 5)
	// 5: Stop
	// 6: Play
	w := &actionWriter{}
	body := w.long(OpJump, u16le(1)...).short(OpStop).short(OpPlay).end()
	eff, info := run(t, mustDecode(t, body))
	if eff.Kind != EffectPlay {
		t.Errorf("effect = %v, want play", eff.Kind)
	}
	if info.Steps != 2 {
		t.Errorf("steps = %d, want 2", info.Steps)
	}
}

func TestRun_JumpToMisalignedOffsetFails(t *testing.T) {
	// Branch -1 lands inside the jump's own payload.
	w := &actionWriter{}
	body := w.long(OpJump, u16le(0xFFFF)...).short(OpStop).short(OpPlay).end()
	var it Interpreter
	_, _, err := it.Run(mustDecode(t, body))
	if err == nil {
		t.Fatal("expected error for branch off an action boundary")
	}
}

func TestRun_IfTakenAndNotTaken(t *testing.T) {
	// Push cond, If +1 over Stop, land on Play.
	build := func(cond byte) []byte {
		w := &actionWriter{}
		return w.long(OpPush, 5, cond).
			long(OpIf, u16le(1)...).
			short(OpStop).
			short(OpPlay).
			end()
	}

	eff, _ := run(t, mustDecode(t, build(1)))
	if eff.Kind != EffectPlay {
		t.Errorf("taken: effect = %v, want play", eff.Kind)
	}

	eff, _ = run(t, mustDecode(t, build(0)))
	if eff.Kind != EffectPlay {
		t.Errorf("not taken: effect = %v, want play (stop then play)", eff.Kind)
	}
	// Distinguish the paths by step count: not-taken executes the Stop too.
	_, takenInfo := run(t, mustDecode(t, build(1)))
	_, fallInfo := run(t, mustDecode(t, build(0)))
	if takenInfo.Steps != 3 || fallInfo.Steps != 4 {
		t.Errorf("steps = %d/%d, want 3/4", takenInfo.Steps, fallInfo.Steps)
	}
}

func TestRun_ConstantPoolResolution(t *testing.T) {
	var pool []byte
	pool = binary.LittleEndian.AppendUint16(pool, 2)
	pool = append(pool, "zero"...)
	pool = append(pool, 0)
	pool = append(pool, "one"...)
	pool = append(pool, 0)

	w := &actionWriter{}
	body := w.long(OpConstantPool, pool...).
		long(OpPush, 8, 1). // constant8 -> "one"
		long(OpPush, 8, 9). // out of range -> undefined
		end()
	_, info := run(t, mustDecode(t, body))
	want := []Value{String("one"), Undefined}
	if !reflect.DeepEqual(info.Stack, want) {
		t.Errorf("stack = %#v, want %#v", info.Stack, want)
	}
}

func TestRun_GotoFrame2(t *testing.T) {
	w := &actionWriter{}
	w.long(OpPush, 7, 3, 0, 0, 0) // int32 3
	w.long(OpGotoFrame2, 0x01)    // play flag
	body := w.end()
	eff, _ := run(t, mustDecode(t, body))
	if eff.Kind != EffectGotoFrame || eff.Frame != 2 || !eff.Play {
		t.Errorf("effect = %+v, want goto frame 2 with play", eff)
	}

	w = &actionWriter{}
	body = w.long(OpPush, 0, 'o', 'u', 't', 'r', 'o', 0).
		long(OpGotoFrame2, 0x00).
		end()
	eff, _ = run(t, mustDecode(t, body))
	if eff.Kind != EffectGotoLabel || eff.Label != "outro" || eff.Play {
		t.Errorf("effect = %+v, want goto label outro without play", eff)
	}
}

func TestRun_UnsupportedOpsCounted(t *testing.T) {
	w := &actionWriter{}
	body := w.short(0x0A).short(0x0B).long(0x83, 'x', 0, 0).short(OpStop).end()
	eff, info := run(t, mustDecode(t, body))
	if eff.Kind != EffectStop {
		t.Errorf("effect = %v, want stop", eff.Kind)
	}
	if info.UnsupportedOps != 3 {
		t.Errorf("unsupported = %d, want 3", info.UnsupportedOps)
	}
}

func TestRun_StepLimitOnLoop(t *testing.T) {
	// 0: Jump -5 (back to itself)
	w := &actionWriter{}
	body := w.long(OpJump, u16le(0xFFFB)...).end()
	it := Interpreter{MaxSteps: 50}
	_, info, err := it.Run(mustDecode(t, body))
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("err = %v, want ErrStepLimit", err)
	}
	if info.Steps != 50 {
		t.Errorf("steps = %d, want 50", info.Steps)
	}
}

func TestRun_Deterministic(t *testing.T) {
	var pool []byte
	pool = binary.LittleEndian.AppendUint16(pool, 1)
	pool = append(pool, "label"...)
	pool = append(pool, 0)

	w := &actionWriter{}
	body := w.long(OpConstantPool, pool...).
		long(OpPush, 8, 0).
		long(OpPush, 5, 1).
		long(OpIf, u16le(1)...).
		short(OpStop).
		long(OpGotoFrame, u16le(4)...).
		end()

	p := mustDecode(t, body)
	effA, infoA := run(t, p)
	effB, infoB := run(t, p)
	if !reflect.DeepEqual(effA, effB) {
		t.Errorf("effects differ: %+v vs %+v", effA, effB)
	}
	if !reflect.DeepEqual(infoA, infoB) {
		t.Errorf("run info differs: %+v vs %+v", infoA, infoB)
	}
}
