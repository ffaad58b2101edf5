package pipeline

import (
	"context"
	"slices"
	"strings"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/framing"
	"github.com/vuuvv/vrecord/log"
	"github.com/vuuvv/vrecord/sink"
	"go.uber.org/zap"
)

// RunSequential is the single goroutine form of Run and produces the same
// output.
func RunSequential(ctx context.Context, layout *core.LocatedLayout, data []byte, out sink.Sink, opts Options) (*Stats, error) {
	opts = opts.withDefaults()
	stats := newStats()

	stream, err := framing.NewRecordStream(data, layout.Size)
	if err != nil {
		return nil, err
	}
	if opts.bound, err = opts.bindChecks(layout); err != nil {
		return nil, err
	}
	stats.DroppedBytes = stream.Remainder()
	log.Info("Sequential decode start",
		zap.String("run", stats.RunID.String()),
		zap.Uint64("record_size", layout.Size),
		zap.Int("records", stream.Total()),
	)
	if stats.DroppedBytes > 0 {
		log.Warn("Trailing bytes do not form a whole record", zap.String("run", stats.RunID.String()), zap.Int("dropped_bytes", stats.DroppedBytes))
	}
	if err = out.WriteHeader(header(layout.Header(), opts.Derived)); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	points := make([]core.Point, 0, len(layout.Items))
	var line []byte
	for seq, record := range stream.All() {
		if err = ctx.Err(); err != nil {
			return stats, errors.WithStack(err)
		}
		points, err = decodeRecord(points[:0], layout, record, opts)
		if err == nil {
			line, err = appendLine(line[:0], points, opts.Derived)
		}
		if err != nil {
			if err = stats.skip(newRecordError(seq, err), opts); err != nil {
				return stats, err
			}
			continue
		}
		if err = out.Write(seq, line); err != nil {
			return stats, errors.Wrapf(err, "write record %d", seq)
		}
		stats.Records++
	}
	stats.logDone()
	return stats, nil
}

// RunDynamic decodes variable size records back to back with the dynamic
// decoder. A record error cannot be skipped here because the start of the next
// record is unknown, so the run stops at the first one.
//
// The header is taken from the points of the first record. A later record with
// a different column list (another array length or subcom branch) is a record
// error handled by opts.OnError, so every line matches the header.
func RunDynamic(ctx context.Context, def core.PacketDef, data []byte, out sink.Sink, opts Options) (*Stats, error) {
	opts = opts.withDefaults()
	stats := newStats()
	log.Info("Dynamic decode start", zap.String("run", stats.RunID.String()), zap.Int("bytes", len(data)))

	stream := framing.NewDynamicStream(def, data, opts.Policy)
	var columns []string
	var line []byte
	for {
		if err := ctx.Err(); err != nil {
			return stats, errors.WithStack(err)
		}
		seq, record, decoded, ok, err := stream.Next()
		if err != nil {
			stats.DroppedBytes = stream.Remainder()
			if columns == nil {
				_ = out.WriteHeader(header(core.Names[core.Item](def), opts.Derived))
			}
			return stats, newRecordError(seq, err)
		}
		if !ok {
			break
		}
		for _, issue := range decoded.Issues {
			log.Debug("Permissive decode", zap.Int("record", seq), zap.String("path", issue.Path), zap.String("reason", issue.Reason))
		}
		points := decoded.Values.Points()
		if columns == nil {
			columns = pointNames(points)
			if err = out.WriteHeader(header(columns, opts.Derived)); err != nil {
				return stats, errors.Wrap(err, "write header")
			}
		}
		err = sameColumns(columns, points)
		if err == nil {
			err = verifyDynamic(record, decoded.Values, opts.Checks)
		}
		if err == nil {
			line, err = appendLine(line[:0], points, opts.Derived)
		}
		if err != nil {
			if err = stats.skip(newRecordError(seq, err), opts); err != nil {
				return stats, err
			}
			continue
		}
		if err = out.Write(seq, line); err != nil {
			return stats, errors.Wrapf(err, "write record %d", seq)
		}
		stats.Records++
	}
	if columns == nil {
		// 没有任何记录时按定义输出表头
		if err := out.WriteHeader(header(core.Names[core.Item](def), opts.Derived)); err != nil {
			return stats, errors.Wrap(err, "write header")
		}
	}
	stats.logDone()
	return stats, nil
}

func pointNames(points []core.Point) []string {
	names := make([]string, len(points))
	for i, p := range points {
		names[i] = p.Name
	}
	return names
}

func sameColumns(columns []string, points []core.Point) error {
	names := pointNames(points)
	if slices.Equal(columns, names) {
		return nil
	}
	return errors.Errorf("columns [%s] do not match header [%s]", strings.Join(names, ","), strings.Join(columns, ","))
}

func verifyDynamic(record []byte, values *core.ValueMap, checks []*core.CrcCheck) error {
	for _, check := range checks {
		stored, ok := values.Lookup(check.Field)
		if !ok {
			return &core.FieldError{Field: check.Field, Err: errors.Errorf("crc check '%s': field not decoded", check.Name)}
		}
		if err := check.Verify(record, stored); err != nil {
			return &core.FieldError{Field: check.Field, Err: err}
		}
	}
	return nil
}
