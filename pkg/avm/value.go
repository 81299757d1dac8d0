// Package avm decodes action bytecode and interprets the playback-control
// subset: stack literals, branches, and the goto/stop/play family. It is a
// bounded stack machine, not a general VM — any opcode outside the subset
// executes as a stack-neutral no-op and is counted, never guessed at.
package avm

import (
	"fmt"
	"strconv"
)

// Kind tags a stack value. The legacy action language is loosely typed;
// every coercion rule lives on [Value] so the rest of the interpreter can
// stay strict.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	}
	return "undefined"
}

// Value is a dynamically typed stack slot.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

// Undefined is the value pushed for anything the subset cannot represent.
var Undefined = Value{Kind: KindUndefined}

// Number wraps a float64.
func Number(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// String wraps a string.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// ToNumber applies the legacy numeric coercion: bools become 0/1, numeric
// strings parse, everything else is 0.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindString:
		if n, err := strconv.ParseFloat(v.Str, 64); err == nil {
			return n
		}
	}
	return 0
}

// ToBool applies the legacy truthiness rules: nonzero numbers and non-empty
// strings are true; null and undefined are false.
func (v Value) ToBool() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindString:
		return v.Str != ""
	}
	return false
}

// ToString renders the value the way the player's trace output would.
func (v Value) ToString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNull:
		return "null"
	}
	return "undefined"
}

func (v Value) String() string {
	return fmt.Sprintf("%s(%s)", v.Kind, v.ToString())
}
