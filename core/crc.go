package core

import (
	"fmt"
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/crc16"
)

// CrcCheck verifies a checksum stored in a record field against the bytes
// [Start, End) of the record. A zero or negative End counts from the record end.
type CrcCheck struct {
	Name      string
	Algorithm string
	Field     string
	Start     int
	End       int
	table     *crc16.Table
}

// NewCrcCheck 算法名称格式为 crc16_xxx, 如 crc16_modbus
func NewCrcCheck(name, algorithm, field string, start, end int) (*CrcCheck, error) {
	parts := strings.SplitN(strings.ToLower(algorithm), "_", 2)
	if len(parts) < 2 {
		return nil, errors.Errorf("invalid crc name: %s", algorithm)
	}
	if parts[0] != "crc16" {
		return nil, errors.Errorf("unsupport crc bits: %s", parts[0])
	}
	table, err := crc16.Lookup(parts[1])
	if err != nil {
		return nil, err
	}
	if field == "" {
		return nil, errors.Errorf("crc check '%s' requires 'field'", name)
	}
	return &CrcCheck{Name: name, Algorithm: algorithm, Field: field, Start: start, End: end, table: table}, nil
}

func (c *CrcCheck) bounds(n int) (int, int, error) {
	start, end := c.Start, c.End
	if end <= 0 {
		end = n + end
	}
	if start < 0 || start > end || end > n {
		return 0, 0, errors.Errorf("crc check '%s': range [%d,%d) outside record of %d bytes", c.Name, c.Start, c.End, n)
	}
	return start, end, nil
}

func (c *CrcCheck) Compute(record []byte) (uint16, error) {
	start, end, err := c.bounds(len(record))
	if err != nil {
		return 0, err
	}
	return crc16.Checksum(record[start:end], c.table), nil
}

func (c *CrcCheck) Verify(record []byte, stored Value) error {
	got, err := c.Compute(record)
	if err != nil {
		return err
	}
	want, err := stored.AsInt()
	if err != nil {
		return errors.Wrapf(err, "crc check '%s' field %s", c.Name, c.Field)
	}
	if uint64(want) != uint64(got) {
		return &CrcMismatchError{Check: c.Name, Stored: uint64(want), Computed: uint64(got)}
	}
	return nil
}

type CrcMismatchError struct {
	Check    string
	Stored   uint64
	Computed uint64
}

func (e *CrcMismatchError) Error() string {
	return fmt.Sprintf("crc check %s: stored 0x%04x, computed 0x%04x", e.Check, e.Stored, e.Computed)
}

// BoundCheck is a check whose field has been located in a layout.
type BoundCheck struct {
	Check *CrcCheck
	Item  LocItem
}

func (b BoundCheck) Verify(record []byte) error {
	ctx := Context{Data: record}
	if err := ctx.Seek(int(b.Item.Offset)); err != nil {
		return fieldError(b.Item.PathString(), err)
	}
	stored, err := b.Item.Type.Decode(&ctx)
	if err != nil {
		return fieldError(b.Item.PathString(), err)
	}
	if err = b.Check.Verify(record, stored); err != nil {
		return &FieldError{Field: b.Item.PathString(), Err: err}
	}
	return nil
}

// BindChecks locates the field of every check in layout.
func BindChecks(layout *LocatedLayout, checks []*CrcCheck) ([]BoundCheck, error) {
	bound := make([]BoundCheck, 0, len(checks))
	for _, c := range checks {
		item, ok := layout.Find(c.Field)
		if !ok {
			return nil, errors.Errorf("crc check '%s': field '%s' not in layout", c.Name, c.Field)
		}
		bound = append(bound, BoundCheck{Check: c, Item: item})
	}
	return bound, nil
}
