package pipeline

import (
	"context"
	"sync"

	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/framing"
	"github.com/vuuvv/vrecord/log"
	"github.com/vuuvv/vrecord/sink"
	"github.com/vuuvv/vrecord/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type job struct {
	seq  int
	data []byte
}

// Run decodes every whole record of data on a pool of workers and writes the
// lines to out in record order. The layout is shared read only by all workers.
func Run(ctx context.Context, layout *core.LocatedLayout, data []byte, out sink.Sink, opts Options) (*Stats, error) {
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
	log.Info("Decode start",
		zap.String("run", stats.RunID.String()),
		zap.Int("workers", opts.Workers),
		zap.Int("slice_queue", opts.SliceQueue),
		zap.Int("line_queue", opts.LineQueue),
		zap.Uint64("record_size", layout.Size),
		zap.Int("records", stream.Total()),
	)
	if stats.DroppedBytes > 0 {
		log.Warn("Trailing bytes do not form a whole record", zap.String("run", stats.RunID.String()), zap.Int("dropped_bytes", stats.DroppedBytes))
	}

	if err = out.WriteHeader(header(layout.Header(), opts.Derived)); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, opts.SliceQueue)
	results := make(chan result, opts.LineQueue)

	// 生产者
	g.Go(func() error {
		defer close(jobs)
		for seq, record := range stream.All() {
			select {
			case jobs <- job{seq: seq, data: record}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return work(gctx, w, layout, jobs, results, opts)
		})
	}
	// 所有 worker 退出后关闭结果队列, 写入端据此结束
	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	// 写入端
	g.Go(func() error {
		buf := &reorderBuffer{}
		for r := range results {
			buf.push(r)
			if err := drain(buf, out, stats, opts); err != nil {
				return err
			}
		}
		if buf.Len() > 0 && gctx.Err() == nil {
			return errors.Errorf("%d results left in reorder buffer, next expected %d", buf.Len(), buf.next)
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		return stats, err
	}
	stats.logDone()
	return stats, nil
}

func work(ctx context.Context, worker int, layout *core.LocatedLayout, jobs <-chan job, results chan<- result, opts Options) error {
	points := make([]core.Point, 0, len(layout.Items))
	for j := range jobs {
		if opts.beforeDecode != nil {
			opts.beforeDecode(worker, j.seq)
		}
		r := result{seq: j.seq}
		err := utils.CallWithError(func() error {
			var err error
			points, err = decodeRecord(points[:0], layout, j.data, opts)
			if err != nil {
				return err
			}
			r.line, err = appendLine(nil, points, opts.Derived)
			return err
		})
		if err != nil {
			r.err = newRecordError(j.seq, err)
		}
		select {
		case results <- r:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func decodeRecord(dst []core.Point, layout *core.LocatedLayout, record []byte, opts Options) ([]core.Point, error) {
	for _, check := range opts.bound {
		if err := check.Verify(record); err != nil {
			return dst, err
		}
	}
	return core.DecodeLocatedInto(dst, layout, record)
}

// drain writes every result that is next in order.
func drain(buf *reorderBuffer, out sink.Sink, stats *Stats, opts Options) error {
	for {
		r, ok := buf.pop()
		if !ok {
			return nil
		}
		if r.err != nil {
			if err := stats.skip(r.err, opts); err != nil {
				return err
			}
			continue
		}
		if err := out.Write(r.seq, r.line); err != nil {
			return errors.Wrapf(err, "write record %d", r.seq)
		}
		stats.Records++
	}
}
