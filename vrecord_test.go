package vrecord

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/vrecord/sink"
)

const gpsScheme = `
name: gps
fields:
  - {name: week, type: u16le}
  - {name: tow, type: u32le}
  - name: fix
    type: enum
    values: {0: none, 2: "2d", 3: "3d"}
  - name: sats
    type: array
    size: 2
    item:
      name: sat
      type: seq
      fields:
        - {name: prn, type: u8}
        - {name: snr, type: f32le}
derived:
  - name: tow_s
    formula: double(fields.tow) / 1000.0
`

func TestEndToEnd(t *testing.T) {
	require.NoError(t, Setup("warn"))

	scheme, err := NewScheme([]byte(gpsScheme))
	require.NoError(t, err)
	layout, err := Locate(scheme.ParsedDef)
	require.NoError(t, err)
	require.Equal(t, uint64(2+4+1+2*5), layout.Size)

	record := []byte{
		0x2c, 0x08, // week 2092
		0xe8, 0x03, 0x00, 0x00, // tow 1000
		0x03,                         // fix 3d
		0x07, 0x00, 0x00, 0x20, 0x41, // prn 7 snr 10
		0x0c, 0x00, 0x00, 0xc0, 0x3f, // prn 12 snr 1.5
	}
	points, err := DecodeLocated(layout, record)
	require.NoError(t, err)
	require.Len(t, points, 7)
	assert.Equal(t, "3d", points[2].Value.Name())

	out := sink.NewMemory()
	stats, err := Execute(context.Background(), scheme.ParsedDef, append(record, record...), out, Options{
		Workers: 2,
		Derived: scheme.ParsedDerived,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Records)
	assert.Equal(t, []string{"week", "tow", "fix", "prn", "snr", "prn", "snr", "tow_s"}, out.Header)
	assert.Equal(t, "2092,1000,3,7,10.000,12,1.500,1.000", out.Lines[0])
	assert.Equal(t, out.Lines[0], out.Lines[1])
}
