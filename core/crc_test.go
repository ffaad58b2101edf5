package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func crcRecord() []byte {
	return append([]byte("123456789"), 0x4b, 0x37)
}

func TestCrcCheck(t *testing.T) {
	check, err := NewCrcCheck("body", "crc16_modbus", "crc", 0, -2)
	require.NoError(t, err)

	sum, err := check.Compute(crcRecord())
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4b37), sum)

	require.NoError(t, check.Verify(crcRecord(), U16(0x4b37)))

	err = check.Verify(crcRecord(), U16(0x4b38))
	var mismatch *CrcMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, uint64(0x4b37), mismatch.Computed)

	_, err = check.Compute([]byte{1})
	require.Error(t, err)
}

func TestNewCrcCheckErrors(t *testing.T) {
	for _, alg := range []string{"modbus", "crc32_ieee", "crc16_nope"} {
		_, err := NewCrcCheck("c", alg, "crc", 0, 0)
		assert.Error(t, err, alg)
	}
	_, err := NewCrcCheck("c", "CRC16_XMODEM", "", 0, 0)
	assert.Error(t, err)
}

func TestBindChecks(t *testing.T) {
	layout, err := Locate(Seq("rec", U64BE("a"), U8BE("b"), U16BE("crc")))
	require.NoError(t, err)
	check, err := NewCrcCheck("body", "crc16_modbus", "crc", 0, -2)
	require.NoError(t, err)

	bound, err := BindChecks(layout, []*CrcCheck{check})
	require.NoError(t, err)
	require.Len(t, bound, 1)
	assert.Equal(t, uint64(9), bound[0].Item.Offset)
	require.NoError(t, bound[0].Verify(crcRecord()))

	bad := crcRecord()
	bad[0] = '0'
	err = bound[0].Verify(bad)
	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "rec.crc", fieldErr.Field)

	other, err := NewCrcCheck("x", "crc16_modbus", "zz", 0, 0)
	require.NoError(t, err)
	_, err = BindChecks(layout, []*CrcCheck{other})
	require.Error(t, err)
}
