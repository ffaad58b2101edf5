package framing

import (
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
)

// DynamicStream decodes back-to-back records whose size is only known after
// decoding, each record consuming exactly the bytes its definition reads.
type DynamicStream struct {
	def    core.PacketDef
	policy core.Policy
	ctx    *core.Context
	count  int
}

func NewDynamicStream(def core.PacketDef, data []byte, policy core.Policy) *DynamicStream {
	return &DynamicStream{def: def, policy: policy, ctx: core.NewContext(data)}
}

// Next decodes the next record and returns its bytes, ok is false at the end
// of the buffer. A decode error is terminal since the start of the following
// record is lost. It is returned as is so callers still see the failing field.
func (s *DynamicStream) Next() (index int, record []byte, decoded *core.Decoded, ok bool, err error) {
	if s.ctx.Remaining() == 0 {
		return 0, nil, nil, false, nil
	}
	start := s.ctx.BytePos
	decoded, err = core.DecodeContext(s.def, s.ctx, s.policy)
	if err != nil {
		// 回到记录起点, Remainder 包含失败的记录
		_ = s.ctx.Seek(start)
		return s.count, nil, nil, false, err
	}
	if decoded.Consumed == 0 {
		return s.count, nil, nil, false, errors.Errorf("record %d at offset %d consumed no bytes", s.count, start)
	}
	index = s.count
	s.count++
	return index, s.ctx.Data[start:s.ctx.BytePos], decoded, true, nil
}

func (s *DynamicStream) Count() int {
	return s.count
}

// Remainder is the number of bytes not yet consumed.
func (s *DynamicStream) Remainder() int {
	return s.ctx.Remaining()
}
