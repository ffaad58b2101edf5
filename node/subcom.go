package node

import (
	"github.com/spf13/cast"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

type SubcomNode struct {
	BaseNode
	Discriminant core.Item
}

func (n *SubcomNode) Compile(yf *core.YamlField) error {
	n.Name = yf.Name
	if yf.Discriminant == nil {
		return errors.Errorf("subcom '%s' requires 'discriminant'", n.Name)
	}
	disc, err := core.NodeCompileOne(yf.Discriminant)
	if err != nil {
		return errors.Wrapf(err, "compile 'discriminant' failed: %s", err.Error())
	}
	leaf, ok := disc.(*core.LeafDef[core.Item])
	if !ok {
		return errors.Errorf("subcom '%s': discriminant must be a scalar field", n.Name)
	}
	n.Discriminant = leaf.Item

	var branches []core.Branch[core.Item]
	for _, c := range yf.Cases {
		match, err := n.caseValue(c.Value)
		if err != nil {
			return err
		}
		if len(c.Fields) == 0 {
			return errors.Errorf("subcom case for value %v requires 'fields'", c.Value)
		}
		children, err := core.NodeCompile(c.Fields)
		if err != nil {
			return errors.WithStack(err)
		}
		var body core.PacketDef
		if len(children) == 1 {
			body = children[0]
		} else {
			body = core.Seq("case_"+cast.ToString(c.Value), children...)
		}
		branches = append(branches, core.Case(match, body))
	}
	n.def = core.Subcom(n.Name, n.Discriminant, branches...)
	return nil
}

// caseValue 把 case 的值转换为与判别字段同类的值, 枚举可以写名称
func (n *SubcomNode) caseValue(raw any) (core.Value, error) {
	if enum, ok := n.Discriminant.Type.(core.EnumPrim); ok {
		if name, isName := raw.(string); isName {
			for code, v := range enum.Mapping.AllFromFront() {
				if v == name {
					return core.EnumValue(name, code), nil
				}
			}
			return core.Value{}, errors.Errorf("subcom '%s': enum has no value named '%s'", n.Name, name)
		}
	}
	if fp, ok := n.Discriminant.Type.(core.FloatPrim); ok {
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return core.Value{}, errors.Wrapf(err, "subcom '%s' case %v", n.Name, raw)
		}
		if fp.Bits == 32 {
			return core.F32(float32(f)), nil
		}
		return core.F64(f), nil
	}
	code, err := cast.ToInt64E(raw)
	if err != nil {
		u, uerr := cast.ToUint64E(raw)
		if uerr != nil {
			return core.Value{}, errors.Wrapf(err, "subcom '%s' case %v", n.Name, raw)
		}
		return core.U64(u), nil
	}
	return core.I64(code), nil
}

func registerSubcom() {
	core.RegisterNodeCompilerFactory[SubcomNode](core.NodeTypeSubcom, false)
}
