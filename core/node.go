package core

import (
	"strings"

	"github.com/vuuvv/errors"
)

const (
	NodeTypeSeq    = "seq"
	NodeTypeArray  = "array"
	NodeTypeSubcom = "subcom"
	NodeTypeEnum   = "enum"
	NodeTypeBits   = "bits"
	NodeTypePrim   = "prim" // 默认类型, u8 ~ f64le
)

// Node compiles one yaml field into a definition subtree.
type Node interface {
	Compile(yf *YamlField) error
	Def() PacketDef
}

var nodeCompilers = make(map[string]NodeCompileFunc)
var defaultNodeCompiler NodeCompileFunc = nil

type NodeCompileFunc func(yf *YamlField) (PacketDef, error)

func RegisterNodeCompilerFactory[T any](name string, isDefault bool) {
	fn := func(yf *YamlField) (PacketDef, error) {
		var v T
		node, ok := any(&v).(Node)
		if !ok {
			return nil, errors.Errorf("Node type [%s] not match: %T", name, &v)
		}
		err := node.Compile(yf)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return node.Def(), nil
	}
	nodeCompilers[name] = fn
	if isDefault {
		defaultNodeCompiler = fn
	}
}

func NodeCompileOne(yf *YamlField) (PacketDef, error) {
	if yf == nil {
		return nil, errors.New("empty field definition")
	}
	fn, ok := nodeCompilers[strings.ToLower(yf.Type)]
	if !ok {
		fn = defaultNodeCompiler
	}
	if fn == nil {
		return nil, errors.Errorf("Node type [%s] not match, and not set default compiler", yf.Type)
	}
	def, err := fn(yf)
	if err != nil {
		return nil, errors.Wrapf(err, "Field '%s' compile failed", yf.Name)
	}
	return def, nil
}

func NodeCompile(fields []*YamlField) ([]PacketDef, error) {
	var defs []PacketDef
	for _, yf := range fields {
		def, err := NodeCompileOne(yf)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ParsePrim resolves a primitive type name such as u16, i32le or f64be. The
// endian suffix wins over the endian argument, which defaults to big.
func ParsePrim(name string, endian string) (Prim, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	e, err := ParseEndian(endian)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(name, "le"):
		e, name = LittleEndian, strings.TrimSuffix(name, "le")
	case strings.HasSuffix(name, "be"):
		e, name = BigEndian, strings.TrimSuffix(name, "be")
	}
	switch name {
	case "u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64":
		bits := 8
		switch name[1:] {
		case "16":
			bits = 16
		case "32":
			bits = 32
		case "64":
			bits = 64
		}
		return NewIntPrim(bits, name[0] == 'i', e)
	case "f32":
		return Float(32, e), nil
	case "f64":
		return Float(64, e), nil
	}
	return nil, errors.Errorf("unknown primitive type '%s'", name)
}

func ParseIntPrim(name string, endian string) (IntPrim, error) {
	p, err := ParsePrim(name, endian)
	if err != nil {
		return IntPrim{}, err
	}
	ip, ok := p.(IntPrim)
	if !ok {
		return IntPrim{}, errors.Errorf("'%s' is not an integer type", name)
	}
	return ip, nil
}

func ParseEndian(s string) (Endian, error) {
	switch strings.ToLower(s) {
	case "", "big", "be":
		return BigEndian, nil
	case "little", "le":
		return LittleEndian, nil
	}
	return BigEndian, errors.Errorf("unknown endian '%s'", s)
}
