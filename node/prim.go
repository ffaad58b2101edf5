package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

// PrimNode is a scalar leaf, the type name is the primitive itself (u16, f32le...).
type PrimNode struct {
	BaseNode
	Prim core.Prim
}

func (n *PrimNode) Compile(yf *core.YamlField) (err error) {
	n.Name = yf.Name
	if n.Name == "" {
		return errors.New("field name should not be empty")
	}
	n.Prim, err = core.ParsePrim(yf.Type, yf.Endian)
	if err != nil {
		return errors.WithStack(err)
	}
	n.def = core.Leaf(core.NewItem(n.Name, n.Prim))
	return nil
}

func registerPrim() {
	core.RegisterNodeCompilerFactory[PrimNode](core.NodeTypePrim, true)
}
