package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/vuuvv/errors"
	"golang.org/x/exp/constraints"
)

type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

func (e Endian) ByteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (e Endian) String() string {
	if e == LittleEndian {
		return "le"
	}
	return "be"
}

// Prim is a scalar wire format.
type Prim interface {
	NumBytes() uint64
	Decode(ctx *Context) (Value, error)
	String() string
}

type IntPrim struct {
	Bits   int
	Signed bool
	Endian Endian
}

func NewIntPrim(bits int, signed bool, endian Endian) (IntPrim, error) {
	switch bits {
	case 8, 16, 32, 64:
		return IntPrim{Bits: bits, Signed: signed, Endian: endian}, nil
	}
	return IntPrim{}, errors.Errorf("invalid int width %d, expect 8/16/32/64", bits)
}

func (p IntPrim) NumBytes() uint64 {
	return uint64(p.Bits / 8)
}

func (p IntPrim) String() string {
	sign := "u"
	if p.Signed {
		sign = "i"
	}
	return fmt.Sprintf("%s%d%s", sign, p.Bits, p.Endian)
}

func (p IntPrim) Decode(ctx *Context) (Value, error) {
	raw, err := ctx.ReadBytes(int(p.NumBytes()))
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	order := p.Endian.ByteOrder()
	switch p.Bits {
	case 8:
		if p.Signed {
			return I8(int8(raw[0])), nil
		}
		return U8(raw[0]), nil
	case 16:
		v := order.Uint16(raw)
		if p.Signed {
			return I16(int16(v)), nil
		}
		return U16(v), nil
	case 32:
		v := order.Uint32(raw)
		if p.Signed {
			return I32(int32(v)), nil
		}
		return U32(v), nil
	case 64:
		v := order.Uint64(raw)
		if p.Signed {
			return I64(int64(v)), nil
		}
		return U64(v), nil
	}
	return Value{}, errors.Errorf("invalid int width %d", p.Bits)
}

// fromBits builds a value of this prim's kind from the low n bits of raw.
func (p IntPrim) fromBits(raw uint64, n int) Value {
	switch p.Bits {
	case 8:
		if p.Signed {
			return I8(signExtend[int8](raw, n))
		}
		return U8(uint8(raw))
	case 16:
		if p.Signed {
			return I16(signExtend[int16](raw, n))
		}
		return U16(uint16(raw))
	case 32:
		if p.Signed {
			return I32(signExtend[int32](raw, n))
		}
		return U32(uint32(raw))
	default:
		if p.Signed {
			return I64(signExtend[int64](raw, n))
		}
		return U64(raw)
	}
}

func signExtend[T constraints.Signed](raw uint64, n int) T {
	if n <= 0 || n >= 64 {
		return T(int64(raw))
	}
	shift := uint(64 - n)
	return T(int64(raw<<shift) >> shift)
}

type FloatPrim struct {
	Bits   int
	Endian Endian
}

func (p FloatPrim) NumBytes() uint64 {
	return uint64(p.Bits / 8)
}

func (p FloatPrim) String() string {
	return fmt.Sprintf("f%d%s", p.Bits, p.Endian)
}

func (p FloatPrim) Decode(ctx *Context) (Value, error) {
	raw, err := ctx.ReadBytes(int(p.NumBytes()))
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	order := p.Endian.ByteOrder()
	switch p.Bits {
	case 32:
		return F32(math.Float32frombits(order.Uint32(raw))), nil
	case 64:
		return F64(math.Float64frombits(order.Uint64(raw))), nil
	}
	return Value{}, errors.Errorf("invalid float width %d", p.Bits)
}

// EnumPrim maps the integer read by Base onto a symbolic name.
type EnumPrim struct {
	Base    IntPrim
	Mapping *orderedmap.OrderedMap[int64, string]
}

func NewEnumPrim(base IntPrim, pairs ...EnumPair) EnumPrim {
	m := orderedmap.NewOrderedMapWithCapacity[int64, string](len(pairs))
	for _, p := range pairs {
		m.Set(p.Code, p.Name)
	}
	return EnumPrim{Base: base, Mapping: m}
}

type EnumPair struct {
	Code int64
	Name string
}

func (p EnumPrim) NumBytes() uint64 {
	return p.Base.NumBytes()
}

func (p EnumPrim) String() string {
	return "enum(" + p.Base.String() + ")"
}

func (p EnumPrim) Decode(ctx *Context) (Value, error) {
	raw, err := p.Base.Decode(ctx)
	if err != nil {
		return Value{}, err
	}
	code, err := raw.AsInt()
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	if p.Mapping == nil {
		return Value{}, &UnknownEnumValueError{Code: code}
	}
	name, ok := p.Mapping.Get(code)
	if !ok {
		return Value{}, &UnknownEnumValueError{Code: code}
	}
	return EnumValue(name, code), nil
}

// BitEntry is one field packed into a Bits span.
type BitEntry struct {
	Name  string
	Width int
	Type  IntPrim
}

func (e BitEntry) validate() error {
	if e.Width <= 0 || e.Width > e.Type.Bits {
		return errors.Errorf("bit field %s: width %d does not fit %s", e.Name, e.Width, e.Type)
	}
	return nil
}

// BitFieldPrim reads Width bits starting BitOffset bits into the current byte.
// The location compiler produces it for each entry of a Bits node.
type BitFieldPrim struct {
	BitOffset int
	Width     int
	Type      IntPrim
	SpanBytes uint64
}

func (p BitFieldPrim) NumBytes() uint64 {
	return uint64((p.BitOffset + p.Width + 7) / 8)
}

func (p BitFieldPrim) String() string {
	return fmt.Sprintf("bits[%d:%d]%s", p.BitOffset, p.BitOffset+p.Width, p.Type)
}

func (p BitFieldPrim) Decode(ctx *Context) (Value, error) {
	ctx.BytePos += p.BitOffset / 8
	ctx.BitPos = p.BitOffset % 8
	raw, err := ctx.ReadBits(p.Width)
	if err != nil {
		return Value{}, errors.WithStack(err)
	}
	return p.Type.fromBits(raw, p.Width), nil
}

// DecodeBits reads the entries of a packed span in order and then moves the
// cursor exactly span bytes past its start, skipping any padding bits.
func DecodeBits(entries []BitEntry, span uint64, ctx *Context, fn func(entry BitEntry, v Value)) error {
	start := ctx.BytePos
	if start+int(span) > len(ctx.Data) {
		return errors.WithStack(&TruncatedError{Offset: start, Need: int(span), Have: ctx.Remaining()})
	}
	used := 0
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return err
		}
		used += e.Width
		if used > int(span)*8 {
			return errors.Errorf("bit field %s overflows %d byte span", e.Name, span)
		}
		raw, err := ctx.ReadBits(e.Width)
		if err != nil {
			return errors.WithStack(err)
		}
		fn(e, e.Type.fromBits(raw, e.Width))
	}
	ctx.BitPos = 0
	ctx.BytePos = start + int(span)
	return nil
}
