package node

import "github.com/vuuvv/vrecord/core"

func Register() {
	registerPrim()
	registerSeq()
	registerArray()
	registerSubcom()
	registerEnum()
	registerBits()
}

type BaseNode struct {
	Name string
	def  core.PacketDef
}

func (n *BaseNode) Def() core.PacketDef {
	return n.def
}
