package node

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

type SeqNode struct {
	BaseNode
}

func (n *SeqNode) Compile(yf *core.YamlField) error {
	n.Name = yf.Name
	if len(yf.Fields) == 0 {
		return errors.Errorf("seq '%s' has no fields", n.Name)
	}
	children, err := core.NodeCompile(yf.Fields)
	if err != nil {
		return errors.Wrapf(err, "seq fields compile failed: %s", err.Error())
	}
	n.def = core.Seq(n.Name, children...)
	return nil
}

func registerSeq() {
	core.RegisterNodeCompilerFactory[SeqNode](core.NodeTypeSeq, false)
}
