package framing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/vrecord/core"
)

func TestDynamicStream(t *testing.T) {
	def := core.Seq("rec", core.U8BE("n"), core.ArrayVar("xs", "n", core.U8BE("x")))
	data := []byte{0x01, 0xaa, 0x00, 0x02, 0xbb, 0xcc, 0x03, 0x01}
	s := NewDynamicStream(def, data, core.Policy{})

	var records [][]byte
	for {
		i, record, decoded, ok, err := s.Next()
		if !ok {
			require.ErrorIs(t, err, core.ErrTruncated)
			assert.Equal(t, 3, i)
			break
		}
		require.NoError(t, err)
		assert.Equal(t, len(record), decoded.Consumed)
		records = append(records, record)
	}
	assert.Equal(t, [][]byte{{0x01, 0xaa}, {0x00}, {0x02, 0xbb, 0xcc}}, records)
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, 2, s.Remainder())
}

func TestDynamicStreamEnd(t *testing.T) {
	s := NewDynamicStream(core.Seq("rec", core.U16BE("a")), []byte{0, 1, 0, 2}, core.Policy{})
	n := 0
	for {
		_, _, _, ok, err := s.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, s.Remainder())
}

func TestDynamicStreamZeroConsumed(t *testing.T) {
	def := core.Seq("rec", core.ArrayVar("xs", "missing", core.U8BE("x")))
	s := NewDynamicStream(def, []byte{1, 2}, core.Policy{})
	_, _, _, ok, err := s.Next()
	assert.False(t, ok)
	require.Error(t, err)
}
