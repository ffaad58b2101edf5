package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

type BitsNode struct {
	BaseNode
	Span    int
	Entries []core.BitEntry
}

func (n *BitsNode) Compile(yf *core.YamlField) error {
	n.Name = yf.Name
	n.Span = yf.Span
	if n.Span <= 0 {
		return errors.Errorf("bits '%s' requires a positive 'span'", n.Name)
	}

	used := 0
	for _, f := range yf.Fields {
		if f.Bits <= 0 {
			return errors.Errorf("bit field '%s' requires 'bits'", f.Name)
		}
		typ := f.Type
		if typ == "" {
			typ = widthType(f.Bits)
		}
		ip, err := core.ParseIntPrim(typ, "")
		if err != nil {
			return errors.Wrapf(err, "bit field '%s'", f.Name)
		}
		if f.Bits > ip.Bits {
			return errors.Errorf("bit field '%s': %d bits do not fit %s", f.Name, f.Bits, ip)
		}
		used += f.Bits
		n.Entries = append(n.Entries, core.BitField(f.Name, f.Bits, ip))
	}
	if used > n.Span*8 {
		return errors.Errorf("bits '%s': %d bits overflow %d byte span", n.Name, used, n.Span)
	}
	n.def = core.Bits(n.Name, uint64(n.Span), n.Entries...)
	return nil
}

// widthType 能容纳该位宽的最小无符号类型
func widthType(bits int) string {
	switch {
	case bits <= 8:
		return "u8"
	case bits <= 16:
		return "u16"
	case bits <= 32:
		return "u32"
	}
	return "u64"
}

func registerBits() {
	core.RegisterNodeCompilerFactory[BitsNode](core.NodeTypeBits, false)
}
