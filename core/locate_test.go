package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePacket() PacketDef {
	return Seq("pkt",
		U16BE("hdr"),
		ArrayFixed("samples", 3, Seq("s", U8BE("a"), I32LE("b"))),
		F32BE("tail"),
	)
}

func TestLocateFixedArray(t *testing.T) {
	layout, err := Locate(samplePacket())
	require.NoError(t, err)

	u8, i32, u16 := Uint(8, BigEndian), Int(32, LittleEndian), Uint(16, BigEndian)
	want := []LocItem{
		{Path: []string{"pkt", "hdr"}, Type: u16, Offset: 0},
		{Path: []string{"pkt", "samples[0]", "s", "a"}, Type: u8, Offset: 2},
		{Path: []string{"pkt", "samples[0]", "s", "b"}, Type: i32, Offset: 3},
		{Path: []string{"pkt", "samples[1]", "s", "a"}, Type: u8, Offset: 7},
		{Path: []string{"pkt", "samples[1]", "s", "b"}, Type: i32, Offset: 8},
		{Path: []string{"pkt", "samples[2]", "s", "a"}, Type: u8, Offset: 12},
		{Path: []string{"pkt", "samples[2]", "s", "b"}, Type: i32, Offset: 13},
		{Path: []string{"pkt", "tail"}, Type: Float(32, BigEndian), Offset: 17},
	}
	if diff := cmp.Diff(want, layout.Items); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(21), layout.Size)
	assert.Equal(t, []string{"hdr", "a", "b", "a", "b", "a", "b", "tail"}, layout.Header())

	size, err := NumBytes[Item](samplePacket())
	require.NoError(t, err)
	assert.Equal(t, layout.Size, size)
}

func TestLocateOffsetLinearity(t *testing.T) {
	element := Seq("e", U16LE("x"), U8BE("pad"), F64LE("y"))
	k, err := NumBytes[Item](element)
	require.NoError(t, err)

	const n, base = 5, 4
	layout, err := Locate(Seq("pkt", U32BE("head"), ArrayFixed("arr", n, element)))
	require.NoError(t, err)

	inner, err := Locate(element)
	require.NoError(t, err)
	perElement := len(inner.Items)
	for i := 0; i < n; i++ {
		for j, leaf := range inner.Items {
			item := layout.Items[1+i*perElement+j]
			assert.Equal(t, uint64(base)+uint64(i)*k+leaf.Offset, item.Offset, item.PathString())
		}
	}
}

func TestLocateNotLocatable(t *testing.T) {
	varArray := Seq("pkt", U8BE("n"), Seq("body", ArrayVar("xs", "n", U8BE("x"))))
	_, err := Locate(varArray)
	require.ErrorIs(t, err, ErrNotLocatable)
	nl, ok := AsNotLocatable(err)
	require.True(t, ok)
	assert.Equal(t, []string{"pkt", "body", "xs"}, nl.Path)
	assert.Equal(t, "variable array", nl.Kind)

	subcom := Seq("pkt", Subcom("body", NewItem("kind", Uint(8, BigEndian)), Case(U8(1), U8BE("a"))))
	_, err = Locate(subcom)
	nl, ok = AsNotLocatable(err)
	require.True(t, ok)
	assert.Equal(t, "subcom", nl.Kind)
	assert.Contains(t, err.Error(), "pkt.body")

	_, err = NumBytes[Item](varArray)
	require.ErrorIs(t, err, ErrVariableSize)
}

func TestLocateBits(t *testing.T) {
	def := Seq("pkt",
		U8BE("id"),
		Bits("status", 4,
			BitField("a", 4, Uint(8, BigEndian)),
			BitField("b", 12, Uint(16, BigEndian)),
			BitField("c", 2, Uint(8, BigEndian)),
			BitField("d", 14, Uint(16, BigEndian)),
		),
		U8BE("tail"),
	)
	layout, err := Locate(def)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), layout.Size)

	var offsets []uint64
	for _, item := range layout.Items {
		offsets = append(offsets, item.Offset)
	}
	assert.Equal(t, []uint64{0, 1, 1, 3, 3, 5}, offsets)
	assert.Equal(t, []string{"pkt", "status", "b"}, layout.Items[2].Path)

	points, err := DecodeLocated(layout, []byte{0x07, 0x12, 0x34, 0x56, 0x78, 0x09})
	require.NoError(t, err)
	assert.Equal(t, []Point{
		{Name: "id", Value: U8(7)},
		{Name: "a", Value: U8(0x1)},
		{Name: "b", Value: U16(0x234)},
		{Name: "c", Value: U8(0x1)},
		{Name: "d", Value: U16(0x1678)},
		{Name: "tail", Value: U8(9)},
	}, points)
}

func TestLayoutFilter(t *testing.T) {
	layout, err := Locate(samplePacket())
	require.NoError(t, err)

	filtered, err := layout.Filter([]string{"tail", "pkt.samples[1].s.b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "tail"}, filtered.Header())
	assert.Equal(t, layout.Size, filtered.Size)
	assert.Equal(t, uint64(8), filtered.Items[0].Offset)

	filtered, err = layout.Filter([]string{"a"})
	require.NoError(t, err)
	assert.Len(t, filtered.Items, 3)

	_, err = layout.Filter([]string{"tail", "nope", "zzz"})
	require.ErrorContains(t, err, "nope,zzz")

	same, err := layout.Filter(nil)
	require.NoError(t, err)
	assert.Same(t, layout, same)
}

func TestLocateTree(t *testing.T) {
	tree, size, err := LocateTree(samplePacket())
	require.NoError(t, err)
	assert.Equal(t, uint64(21), size)

	seq, ok := tree.(*SeqDef[LocItem])
	require.True(t, ok)
	arr, ok := seq.Children[1].(*SeqDef[LocItem])
	require.True(t, ok)
	assert.Equal(t, "samples", arr.Name)
	assert.Len(t, arr.Children, 3)
	assert.Equal(t, "samples[2]", arr.Children[2].DefName())
}

func TestNames(t *testing.T) {
	def := Seq("pkt",
		U8BE("kind"),
		Bits("flags", 1, BitField("x", 1, Uint(8, BigEndian)), BitField("y", 7, Uint(8, BigEndian))),
		ArrayVar("xs", "kind", U16BE("v")),
		Subcom("body", NewItem("sel", Uint(8, BigEndian)), Case(U8(1), U8BE("a")), Case(U8(2), U8BE("b"))),
	)
	assert.Equal(t, []string{"kind", "x", "y", "v", "sel", "a", "b"}, Names[Item](def))
}

func TestNumBytesSubcom(t *testing.T) {
	def := Subcom("body", NewItem("sel", Uint(8, BigEndian)),
		Case(U8(1), U16BE("a")),
		Case(U8(2), Seq("big", U32BE("b"), U32BE("c"))),
	)
	size, err := NumBytes[Item](def)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), size)
}
