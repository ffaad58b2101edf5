package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

type ArrayNode struct {
	BaseNode
	Size    int
	SizeRef string
}

func (n *ArrayNode) Compile(yf *core.YamlField) error {
	n.Name = yf.Name
	n.Size = yf.Size
	n.SizeRef = yf.SizeRef

	if n.SizeRef == "" && n.Size <= 0 {
		return errors.Errorf("array '%s' requires either 'size' or 'size_ref'", n.Name)
	}
	if n.SizeRef != "" && n.Size > 0 {
		return errors.Errorf("array '%s': 'size' and 'size_ref' are exclusive", n.Name)
	}
	if yf.Item == nil {
		return errors.Errorf("array '%s' requires 'item'", n.Name)
	}

	item, err := core.NodeCompileOne(yf.Item)
	if err != nil {
		return errors.Wrapf(err, "compile 'item' failed: %s", err.Error())
	}
	if n.SizeRef != "" {
		n.def = core.ArrayVar(n.Name, n.SizeRef, item)
	} else {
		n.def = core.ArrayFixed(n.Name, n.Size, item)
	}
	return nil
}

func registerArray() {
	core.RegisterNodeCompilerFactory[ArrayNode](core.NodeTypeArray, false)
}
