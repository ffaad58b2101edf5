package crc16

import (
	"hash"

	"github.com/vuuvv/errors"
)

// Params describes a CRC-16 variant in the usual catalogue form. Init is given
// unreflected, Check is the checksum of "123456789".
type Params struct {
	Name   string
	Poly   uint16
	Init   uint16
	RefIn  bool
	XorOut uint16
	Check  uint16
}

var catalog = []Params{
	{Name: "arc", Poly: 0x8005, Init: 0x0000, RefIn: true, XorOut: 0x0000, Check: 0xbb3d},
	{Name: "aug_ccitt", Poly: 0x1021, Init: 0x1d0f, XorOut: 0x0000, Check: 0xe5cc},
	{Name: "buypass", Poly: 0x8005, Init: 0x0000, XorOut: 0x0000, Check: 0xfee8},
	{Name: "ccitt_false", Poly: 0x1021, Init: 0xffff, XorOut: 0x0000, Check: 0x29b1},
	{Name: "cdma2000", Poly: 0xc867, Init: 0xffff, XorOut: 0x0000, Check: 0x4c06},
	{Name: "dds_110", Poly: 0x8005, Init: 0x800d, XorOut: 0x0000, Check: 0x9ecf},
	{Name: "dect_r", Poly: 0x0589, Init: 0x0000, XorOut: 0x0001, Check: 0x007e},
	{Name: "dect_x", Poly: 0x0589, Init: 0x0000, XorOut: 0x0000, Check: 0x007f},
	{Name: "dnp", Poly: 0x3d65, Init: 0x0000, RefIn: true, XorOut: 0xffff, Check: 0xea82},
	{Name: "en_13757", Poly: 0x3d65, Init: 0x0000, XorOut: 0xffff, Check: 0xc2b7},
	{Name: "genibus", Poly: 0x1021, Init: 0xffff, XorOut: 0xffff, Check: 0xd64e},
	{Name: "maxim", Poly: 0x8005, Init: 0x0000, RefIn: true, XorOut: 0xffff, Check: 0x44c2},
	{Name: "mcrf4xx", Poly: 0x1021, Init: 0xffff, RefIn: true, XorOut: 0x0000, Check: 0x6f91},
	{Name: "riello", Poly: 0x1021, Init: 0xb2aa, RefIn: true, XorOut: 0x0000, Check: 0x63d0},
	{Name: "t10_dif", Poly: 0x8bb7, Init: 0x0000, XorOut: 0x0000, Check: 0xd0db},
	{Name: "teledisk", Poly: 0xa097, Init: 0x0000, XorOut: 0x0000, Check: 0x0fb3},
	{Name: "tms37157", Poly: 0x1021, Init: 0x89ec, RefIn: true, XorOut: 0x0000, Check: 0x26b1},
	{Name: "usb", Poly: 0x8005, Init: 0xffff, RefIn: true, XorOut: 0xffff, Check: 0xb4c8},
	{Name: "crc_a", Poly: 0x1021, Init: 0xc6c6, RefIn: true, XorOut: 0x0000, Check: 0xbf05},
	{Name: "kermit", Poly: 0x1021, Init: 0x0000, RefIn: true, XorOut: 0x0000, Check: 0x2189},
	{Name: "modbus", Poly: 0x8005, Init: 0xffff, RefIn: true, XorOut: 0x0000, Check: 0x4b37},
	{Name: "x_25", Poly: 0x1021, Init: 0xffff, RefIn: true, XorOut: 0xffff, Check: 0x906e},
	{Name: "xmodem", Poly: 0x1021, Init: 0x0000, XorOut: 0x0000, Check: 0x31c3},
}

// Table is a byte-wise lookup table for one variant.
type Table struct {
	params Params
	init   uint16
	data   [256]uint16
}

func MakeTable(p Params) *Table {
	t := &Table{params: p, init: p.Init}
	if p.RefIn {
		poly := reflect(p.Poly)
		t.init = reflect(p.Init)
		for i := 0; i < 256; i++ {
			crc := uint16(i)
			for j := 0; j < 8; j++ {
				if crc&1 == 1 {
					crc = crc>>1 ^ poly
				} else {
					crc >>= 1
				}
			}
			t.data[i] = crc
		}
		return t
	}
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ p.Poly
			} else {
				crc <<= 1
			}
		}
		t.data[i] = crc
	}
	return t
}

func (t *Table) Params() Params {
	return t.params
}

// Update feeds data into a running crc that started at Init of the table.
func Update(crc uint16, data []byte, t *Table) uint16 {
	if t.params.RefIn {
		for _, b := range data {
			crc = t.data[byte(crc)^b] ^ crc>>8
		}
		return crc
	}
	for _, b := range data {
		crc = t.data[byte(crc>>8)^b] ^ crc<<8
	}
	return crc
}

func Complete(crc uint16, t *Table) uint16 {
	return crc ^ t.params.XorOut
}

func Checksum(data []byte, t *Table) uint16 {
	return Complete(Update(t.init, data, t), t)
}

func reflect(v uint16) uint16 {
	var r uint16
	for i := 0; i < 16; i++ {
		if v&(1<<i) != 0 {
			r |= 1 << (15 - i)
		}
	}
	return r
}

var tables = func() map[string]*Table {
	m := make(map[string]*Table, len(catalog))
	for _, p := range catalog {
		m[p.Name] = MakeTable(p)
	}
	return m
}()

// Lookup returns the table of a catalogue variant such as "modbus" or "x_25".
func Lookup(name string) (*Table, error) {
	t, ok := tables[name]
	if !ok {
		return nil, errors.Errorf("crc16: unsupported crc type '%s'", name)
	}
	return t, nil
}

func Names() []string {
	names := make([]string, len(catalog))
	for i, p := range catalog {
		names[i] = p.Name
	}
	return names
}

// Hash16 is a hash.Hash computing a CRC-16.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	sum uint16
	t   *Table
}

func New(t *Table) Hash16 {
	h := &digest{t: t}
	h.Reset()
	return h
}

func (h *digest) Write(data []byte) (int, error) {
	h.sum = Update(h.sum, data, h.t)
	return len(data), nil
}

// Sum appends the checksum big-endian.
func (h *digest) Sum(b []byte) []byte {
	s := h.Sum16()
	return append(b, byte(s>>8), byte(s))
}

func (h *digest) Reset()         { h.sum = h.t.init }
func (h *digest) Size() int      { return 2 }
func (h *digest) BlockSize() int { return 1 }
func (h *digest) Sum16() uint16  { return Complete(h.sum, h.t) }
