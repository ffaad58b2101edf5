package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vuuvv/vrecord/config"
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/crc16"
	"github.com/vuuvv/vrecord/sink"
)

func telemetryDef() core.PacketDef {
	return core.Seq("rec",
		core.U16BE("id"),
		core.Enum("mode", core.Uint(8, core.BigEndian), core.EnumPair{Code: 0, Name: "idle"}, core.EnumPair{Code: 1, Name: "run"}),
		core.I32LE("v"),
	)
}

// telemetryData 生成 n 条 7 字节记录, bad 中的记录 mode 非法
func telemetryData(n int, trailing int, bad func(i int) bool) []byte {
	data := make([]byte, 0, n*7+trailing)
	for i := 0; i < n; i++ {
		mode := byte(i % 2)
		if bad(i) {
			mode = 7
		}
		data = binary.BigEndian.AppendUint16(data, uint16(i))
		data = append(data, mode)
		data = binary.LittleEndian.AppendUint32(data, uint32(int32(-3*i)))
	}
	return append(data, make([]byte, trailing)...)
}

func telemetryLine(i int) string {
	return fmt.Sprintf("%d,%d,%d", i, i%2, -3*i)
}

func every17(i int) bool { return i%17 == 0 }

func TestRunMatchesSequential(t *testing.T) {
	layout, err := core.Locate(telemetryDef())
	require.NoError(t, err)
	data := telemetryData(200, 3, every17)

	want := sink.NewMemory()
	seqStats, err := RunSequential(context.Background(), layout, data, want, Options{})
	require.NoError(t, err)
	assert.Equal(t, 188, seqStats.Records)
	assert.Equal(t, 12, seqStats.Skipped)
	assert.Equal(t, 3, seqStats.DroppedBytes)
	assert.Equal(t, []string{"id", "mode", "v"}, want.Header)
	assert.Equal(t, telemetryLine(1), want.Lines[0])
	require.Len(t, seqStats.Errors, 12)
	assert.Equal(t, 17, seqStats.Errors[1].Index)
	assert.Equal(t, "rec.mode", seqStats.Errors[1].Field)

	for _, workers := range []int{1, 2, 4, 8} {
		for _, queue := range []int{1, 16} {
			t.Run(fmt.Sprintf("workers=%d/queue=%d", workers, queue), func(t *testing.T) {
				got := sink.NewMemory()
				opts := Options{
					Workers:    workers,
					SliceQueue: queue,
					LineQueue:  queue,
					beforeDecode: func(worker int, seq int) {
						// 打乱完成顺序
						time.Sleep(time.Duration((seq*7919+worker)%5) * 50 * time.Microsecond)
					},
				}
				stats, err := Run(context.Background(), layout, data, got, opts)
				require.NoError(t, err)
				if diff := cmp.Diff(want.Lines, got.Lines); diff != "" {
					t.Fatalf("lines differ (-sequential +concurrent):\n%s", diff)
				}
				assert.Equal(t, want.Seqs, got.Seqs)
				assert.Equal(t, want.Header, got.Header)
				assert.Equal(t, seqStats.Records, stats.Records)
				assert.Equal(t, seqStats.Skipped, stats.Skipped)
				assert.Equal(t, seqStats.DroppedBytes, stats.DroppedBytes)
				assert.NotEqual(t, seqStats.RunID, stats.RunID)
			})
		}
	}
}

func TestRunAbort(t *testing.T) {
	layout, err := core.Locate(telemetryDef())
	require.NoError(t, err)
	data := telemetryData(100, 0, func(i int) bool { return i == 5 || i == 60 })

	for _, run := range []struct {
		name string
		fn   func(context.Context, *core.LocatedLayout, []byte, sink.Sink, Options) (*Stats, error)
	}{
		{"concurrent", Run},
		{"sequential", RunSequential},
	} {
		t.Run(run.name, func(t *testing.T) {
			out := sink.NewMemory()
			stats, err := run.fn(context.Background(), layout, data, out, Options{Workers: 4, OnError: config.OnErrorAbort})
			var rerr *RecordError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, 5, rerr.Index)
			assert.Equal(t, "rec.mode", rerr.Field)
			var enumErr *core.UnknownEnumValueError
			require.ErrorAs(t, err, &enumErr)
			assert.Equal(t, int64(7), enumErr.Code)

			assert.Equal(t, 5, stats.Records)
			assert.Equal(t, []int{0, 1, 2, 3, 4}, out.Seqs)
		})
	}
}

func TestRunCanceled(t *testing.T) {
	layout, err := core.Locate(telemetryDef())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, layout, telemetryData(1000, 0, func(int) bool { return false }), sink.NewMemory(), Options{Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInput(t *testing.T) {
	layout, err := core.Locate(telemetryDef())
	require.NoError(t, err)

	out := sink.NewMemory()
	stats, err := Run(context.Background(), layout, []byte{1, 2}, out, Options{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)
	assert.Equal(t, 2, stats.DroppedBytes)
	assert.Equal(t, []string{"id", "mode", "v"}, out.Header)
	assert.Empty(t, out.Lines)
}

func TestExecuteFilterAndDerived(t *testing.T) {
	double, err := core.CompileDerived("double", "fields.v * 2")
	require.NoError(t, err)
	data := telemetryData(4, 0, func(int) bool { return false })

	for _, sequential := range []bool{false, true} {
		out := sink.NewMemory()
		stats, err := Execute(context.Background(), telemetryDef(), data, out, Options{
			Workers:    2,
			Sequential: sequential,
			Fields:     []string{"v", "rec.id"},
			Derived:    []*core.Derived{double},
		})
		require.NoError(t, err)
		assert.Equal(t, 4, stats.Records)
		assert.True(t, out.Closed)
		assert.Equal(t, []string{"id", "v", "double"}, out.Header)
		assert.Equal(t, []string{"0,0,0", "1,-3,-6", "2,-6,-12", "3,-9,-18"}, out.Lines)
	}

	_, err = Execute(context.Background(), telemetryDef(), data, sink.NewMemory(), Options{Fields: []string{"nope"}})
	require.Error(t, err)
}

func crcData(t *testing.T, payloads ...byte) []byte {
	table, err := crc16.Lookup("xmodem")
	require.NoError(t, err)
	var data []byte
	for _, p := range payloads {
		record := []byte{p, 0x55}
		data = binary.BigEndian.AppendUint16(append(data, record...), crc16.Checksum(record, table))
	}
	return data
}

func TestExecuteCrcChecks(t *testing.T) {
	def := core.Seq("rec", core.U8BE("a"), core.U8BE("b"), core.U16BE("crc"))
	check, err := core.NewCrcCheck("body", "crc16_xmodem", "crc", 0, -2)
	require.NoError(t, err)

	data := crcData(t, 1, 2, 3)
	data[4] ^= 0xff

	out := sink.NewMemory()
	stats, err := Execute(context.Background(), def, data, out, Options{
		Workers: 2,
		Fields:  []string{"a"},
		Checks:  []*core.CrcCheck{check},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, out.Lines)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, 1, stats.Errors[0].Index)
	assert.Equal(t, "rec.crc", stats.Errors[0].Field)
	var mismatch *core.CrcMismatchError
	require.ErrorAs(t, stats.Errors[0], &mismatch)
}

func varDef() core.PacketDef {
	return core.Seq("rec", core.U8BE("n"), core.ArrayVar("xs", "n", core.U8BE("x")))
}

func TestExecuteDynamic(t *testing.T) {
	data := []byte{0x01, 0xaa, 0x01, 0xbb, 0x01, 0xcc}
	sum, err := core.CompileDerived("sum", "fields.n + 1u")
	require.NoError(t, err)

	out := sink.NewMemory()
	stats, err := Execute(context.Background(), varDef(), data, out, Options{Sequential: true, Derived: []*core.Derived{sum}})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, []string{"n", "x", "sum"}, out.Header)
	assert.Equal(t, []string{"1,170,2", "1,187,2", "1,204,2"}, out.Lines)
	assert.True(t, out.Closed)

	_, err = Execute(context.Background(), varDef(), data, sink.NewMemory(), Options{})
	require.ErrorIs(t, err, core.ErrNotLocatable)

	_, err = Execute(context.Background(), varDef(), data, sink.NewMemory(), Options{Sequential: true, Fields: []string{"n"}})
	require.Error(t, err)
}

func TestRunDynamicHeaderFollowsFirstRecord(t *testing.T) {
	data := []byte{0x03, 0x01, 0x02, 0x03, 0x00, 0x03, 0x04, 0x05, 0x06}

	out := sink.NewMemory()
	stats, err := RunDynamic(context.Background(), varDef(), data, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "x", "x", "x"}, out.Header)
	assert.Equal(t, []string{"3,1,2,3", "3,4,5,6"}, out.Lines)
	assert.Equal(t, []int{0, 2}, out.Seqs)
	assert.Equal(t, 1, stats.Skipped)
	require.Len(t, stats.Errors, 1)
	assert.Equal(t, 1, stats.Errors[0].Index)
	for _, line := range out.Lines {
		assert.Len(t, strings.Split(line, ","), len(out.Header))
	}

	_, err = RunDynamic(context.Background(), varDef(), data, sink.NewMemory(), Options{OnError: config.OnErrorAbort})
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Index)
}

func TestRunDynamicSubcomBranches(t *testing.T) {
	def := core.Seq("rec", core.Subcom("body", core.NewItem("kind", core.Uint(8, core.BigEndian)),
		core.Case(core.U8(1), core.U8BE("a")),
		core.Case(core.U8(2), core.U16BE("b")),
	))
	out := sink.NewMemory()
	stats, err := RunDynamic(context.Background(), def, []byte{0x01, 0x07, 0x02, 0x00, 0x09, 0x01, 0x08}, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kind", "a"}, out.Header)
	assert.Equal(t, []string{"1,7", "1,8"}, out.Lines)
	assert.Equal(t, 1, stats.Skipped)
}

func TestRunDynamicEmpty(t *testing.T) {
	out := sink.NewMemory()
	stats, err := RunDynamic(context.Background(), varDef(), nil, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Records)
	assert.Equal(t, []string{"n", "x"}, out.Header)
}

func TestRunDynamicTerminalError(t *testing.T) {
	data := []byte{0x01, 0xaa, 0x03, 0xbb}
	out := sink.NewMemory()
	stats, err := RunDynamic(context.Background(), varDef(), data, out, Options{})
	var rerr *RecordError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, rerr.Index)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, 2, stats.DroppedBytes)
	assert.Equal(t, []string{"1,170"}, out.Lines)
}

func TestStatsMaxErrors(t *testing.T) {
	layout, err := core.Locate(telemetryDef())
	require.NoError(t, err)
	data := telemetryData(20, 0, func(int) bool { return true })

	stats, err := RunSequential(context.Background(), layout, data, sink.NewMemory(), Options{MaxErrors: 3})
	require.NoError(t, err)
	assert.Equal(t, 20, stats.Skipped)
	assert.Len(t, stats.Errors, 3)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Workers = 3
	cfg.StrictArrays = true
	cfg.Fields = []string{"a"}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 3, opts.Workers)
	assert.True(t, opts.Policy.StrictArrays)
	assert.False(t, opts.Policy.StrictSubcom)
	assert.Equal(t, []string{"a"}, opts.Fields)
	assert.Equal(t, config.OnErrorSkip, opts.OnError)
}
