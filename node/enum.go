package node

import (
	"cmp"
	"slices"

	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

type EnumNode struct {
	BaseNode
	Prim core.EnumPrim
}

func (n *EnumNode) Compile(yf *core.YamlField) error {
	n.Name = yf.Name
	base := yf.Base
	if base == "" {
		base = "u8"
	}
	ip, err := core.ParseIntPrim(base, yf.Endian)
	if err != nil {
		return errors.Wrapf(err, "enum '%s' base", n.Name)
	}
	if len(yf.Values) == 0 {
		return errors.Errorf("enum '%s' has no values", n.Name)
	}

	pairs := make([]core.EnumPair, 0, len(yf.Values))
	for k, name := range yf.Values {
		code, err := cast.ToInt64E(k)
		if err != nil {
			return errors.Wrapf(err, "enum '%s' code %v", n.Name, k)
		}
		pairs = append(pairs, core.EnumPair{Code: code, Name: name})
	}
	// yaml map 无序, 按编码排序
	slices.SortFunc(pairs, func(a, b core.EnumPair) int {
		return cmp.Compare(a.Code, b.Code)
	})

	n.Prim = core.NewEnumPrim(ip, pairs...)
	n.def = core.Leaf(core.NewItem(n.Name, n.Prim))
	return nil
}

func registerEnum() {
	core.RegisterNodeCompilerFactory[EnumNode](core.NodeTypeEnum, false)
}
