package core

import (
	"math"
	"strconv"

	"github.com/vuuvv/errors"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindEnum
)

var kindNames = [...]string{"invalid", "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64", "f32", "f64", "enum"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func (k Kind) IsFloat() bool {
	return k == KindF32 || k == KindF64
}

func (k Kind) IsSigned() bool {
	return k >= KindI8 && k <= KindI64 || k == KindEnum
}

// Value is a decoded scalar. Integers and enum codes are kept in bits as two's
// complement, floats as their IEEE-754 pattern. Value is comparable with ==.
type Value struct {
	Kind Kind
	bits uint64
	name string
}

func U8(v uint8) Value   { return Value{Kind: KindU8, bits: uint64(v)} }
func U16(v uint16) Value { return Value{Kind: KindU16, bits: uint64(v)} }
func U32(v uint32) Value { return Value{Kind: KindU32, bits: uint64(v)} }
func U64(v uint64) Value { return Value{Kind: KindU64, bits: v} }
func I8(v int8) Value    { return Value{Kind: KindI8, bits: uint64(int64(v))} }
func I16(v int16) Value  { return Value{Kind: KindI16, bits: uint64(int64(v))} }
func I32(v int32) Value  { return Value{Kind: KindI32, bits: uint64(int64(v))} }
func I64(v int64) Value  { return Value{Kind: KindI64, bits: uint64(v)} }
func F32(v float32) Value {
	return Value{Kind: KindF32, bits: uint64(math.Float32bits(v))}
}
func F64(v float64) Value {
	return Value{Kind: KindF64, bits: math.Float64bits(v)}
}
func EnumValue(name string, code int64) Value {
	return Value{Kind: KindEnum, bits: uint64(code), name: name}
}

func (v Value) IsValid() bool {
	return v.Kind != KindInvalid
}

// Name is the symbolic name of an enum value, empty for other kinds.
func (v Value) Name() string {
	return v.name
}

// AsInt converts integer and enum values. Floats fail, and so do u64 values
// that do not fit in an int64.
func (v Value) AsInt() (int64, error) {
	switch v.Kind {
	case KindU8, KindU16, KindU32, KindI8, KindI16, KindI32, KindI64, KindEnum:
		return int64(v.bits), nil
	case KindU64:
		if v.bits > math.MaxInt64 {
			return 0, errors.Wrapf(ErrNotInteger, "u64 %d overflows int64", v.bits)
		}
		return int64(v.bits), nil
	}
	return 0, errors.Wrapf(ErrNotInteger, "%s value", v.Kind)
}

func (v Value) AsUint() uint64 {
	return v.bits
}

func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindF32:
		return float64(math.Float32frombits(uint32(v.bits)))
	case KindF64:
		return math.Float64frombits(v.bits)
	case KindU8, KindU16, KindU32, KindU64:
		return float64(v.bits)
	}
	return float64(int64(v.bits))
}

// Native returns an int64, uint64 or float64 suitable for expression inputs.
func (v Value) Native() any {
	switch v.Kind {
	case KindU8, KindU16, KindU32, KindU64:
		return v.bits
	case KindF32, KindF64:
		return v.AsFloat()
	case KindInvalid:
		return nil
	}
	return int64(v.bits)
}

// Matches reports whether two values select the same branch: integer-valued
// values compare by numeric value regardless of width, everything else by ==.
func (v Value) Matches(other Value) bool {
	if v == other {
		return true
	}
	a, errA := v.AsInt()
	b, errB := other.AsInt()
	if errA != nil || errB != nil {
		return false
	}
	return a == b
}

// String is the canonical text form: integers in decimal, floats with three
// decimals, enums as their integer code.
func (v Value) String() string {
	return string(v.AppendText(nil))
}

func (v Value) AppendText(dst []byte) []byte {
	switch v.Kind {
	case KindU8, KindU16, KindU32, KindU64:
		return strconv.AppendUint(dst, v.bits, 10)
	case KindI8, KindI16, KindI32, KindI64, KindEnum:
		return strconv.AppendInt(dst, int64(v.bits), 10)
	case KindF32:
		return strconv.AppendFloat(dst, v.AsFloat(), 'f', 3, 32)
	case KindF64:
		return strconv.AppendFloat(dst, v.AsFloat(), 'f', 3, 64)
	}
	return append(dst, "<invalid>"...)
}

// Point is one flattened decode result.
type Point struct {
	Name  string
	Value Value
}
