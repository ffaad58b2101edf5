package core

import "github.com/vuuvv/errors"

// Context is a byte/bit cursor over one record.
type Context struct {
	Data    []byte
	BytePos int
	BitPos  int
}

func NewContext(data []byte) *Context {
	return &Context{Data: data}
}

// Seek moves to an absolute byte position and drops any bit offset.
func (c *Context) Seek(pos int) error {
	if pos < 0 || pos > len(c.Data) {
		return errors.WithStack(&TruncatedError{Offset: pos, Need: 0, Have: len(c.Data) - pos})
	}
	c.BytePos = pos
	c.BitPos = 0
	return nil
}

func (c *Context) Remaining() int {
	return len(c.Data) - c.BytePos
}

// ReadBits reads n bits MSB first starting at the current bit position.
func (c *Context) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, errors.Errorf("cannot read %d bits", n)
	}
	if n == 0 {
		return 0, nil
	}

	// 需要覆盖的字节数
	total := c.BitPos + n
	need := (total + 7) / 8
	if c.BytePos+need > len(c.Data) {
		return 0, errors.WithStack(&TruncatedError{Offset: c.BytePos, Need: need, Have: c.Remaining()})
	}

	var value uint64
	for n > 0 {
		avail := 8 - c.BitPos
		take := avail
		if n < take {
			take = n
		}
		b := c.Data[c.BytePos]
		shift := avail - take
		mask := uint64(1)<<uint(take) - 1
		value = value<<uint(take) | uint64(b>>uint(shift))&mask

		n -= take
		c.BitPos += take
		if c.BitPos == 8 {
			c.BitPos = 0
			c.BytePos++
		}
	}
	return value, nil
}

func (c *Context) ReadBytes(n int) ([]byte, error) {
	if c.BitPos != 0 {
		return nil, errors.New("read bytes must be aligned")
	}
	if n < 0 || c.BytePos+n > len(c.Data) {
		return nil, errors.WithStack(&TruncatedError{Offset: c.BytePos, Need: n, Have: c.Remaining()})
	}
	ret := c.Data[c.BytePos : c.BytePos+n]
	c.BytePos += n
	return ret, nil
}
