package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vuuvv/errors"
	"github.com/vuuvv/vrecord/config"
	"github.com/vuuvv/vrecord/core"
	"github.com/vuuvv/vrecord/log"
	"github.com/vuuvv/vrecord/sink"
	"go.uber.org/zap"
)

const defaultMaxErrors = 100

type Options struct {
	Workers    int
	SliceQueue int
	LineQueue  int
	Sequential bool
	OnError    string
	Policy     core.Policy
	Fields     []string
	Derived    []*core.Derived
	Checks     []*core.CrcCheck
	// MaxErrors caps Stats.Errors, the Skipped counter is not capped.
	MaxErrors int

	bound []core.BoundCheck

	// 测试用, 在 worker 解码前调用
	beforeDecode func(worker int, seq int)
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers:    cfg.Workers,
		SliceQueue: cfg.SliceQueue,
		LineQueue:  cfg.LineQueue,
		Sequential: cfg.Sequential,
		OnError:    cfg.OnError,
		Policy:     core.Policy{StrictSubcom: cfg.StrictSubcom, StrictArrays: cfg.StrictArrays},
		Fields:     cfg.Fields,
	}
}

// bindChecks locates the crc fields, Execute binds them before filtering.
func (o Options) bindChecks(layout *core.LocatedLayout) ([]core.BoundCheck, error) {
	if o.bound != nil || len(o.Checks) == 0 {
		return o.bound, nil
	}
	return core.BindChecks(layout, o.Checks)
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.SliceQueue < 1 {
		o.SliceQueue = 1
	}
	if o.LineQueue < 1 {
		o.LineQueue = 1
	}
	if o.OnError == "" {
		o.OnError = config.OnErrorSkip
	}
	if o.MaxErrors == 0 {
		o.MaxErrors = defaultMaxErrors
	}
	return o
}

// RecordError is a decode failure scoped to one record.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Err.Error())
	}
	return fmt.Sprintf("record %d field %s: %s", e.Index, e.Field, e.Err.Error())
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func newRecordError(index int, err error) *RecordError {
	re := &RecordError{Index: index, Err: err}
	if fe, ok := err.(*core.FieldError); ok {
		re.Field = fe.Field
		re.Err = fe.Err
	}
	return re
}

type Stats struct {
	RunID        uuid.UUID
	Records      int // 写出的记录数
	Skipped      int
	DroppedBytes int
	Errors       []*RecordError
}

func newStats() *Stats {
	return &Stats{RunID: uuid.New()}
}

// skip records a failed record, the returned error is non nil when the run
// must abort.
func (s *Stats) skip(rerr *RecordError, opts Options) error {
	if opts.OnError == config.OnErrorAbort {
		return errors.WithStack(rerr)
	}
	s.Skipped++
	if len(s.Errors) < opts.MaxErrors {
		s.Errors = append(s.Errors, rerr)
	}
	log.Warn(rerr, zap.String("run", s.RunID.String()), zap.Int("record", rerr.Index), zap.String("field", rerr.Field))
	return nil
}

func (s *Stats) logDone() {
	log.Info("Decode finished",
		zap.String("run", s.RunID.String()),
		zap.Int("records", s.Records),
		zap.Int("skipped", s.Skipped),
		zap.Int("dropped_bytes", s.DroppedBytes),
	)
}

// Execute decodes data with def into out and closes out. Statically locatable
// definitions run on the located path, concurrently unless opts.Sequential.
// Other definitions need opts.Sequential and are decoded record by record with
// the dynamic decoder.
func Execute(ctx context.Context, def core.PacketDef, data []byte, out sink.Sink, opts Options) (stats *Stats, err error) {
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close sink")
		}
	}()

	layout, err := core.Locate(def)
	if err != nil {
		nl, ok := core.AsNotLocatable(err)
		if !ok {
			return nil, err
		}
		if !opts.Sequential {
			return nil, errors.Wrapf(err, "concurrent decode needs a static layout, use sequential mode")
		}
		if len(opts.Fields) > 0 {
			return nil, errors.New("field filter needs a static layout")
		}
		log.Info("Definition is not locatable, decoding dynamically", zap.Strings("path", nl.Path), zap.String("kind", nl.Kind))
		return RunDynamic(ctx, def, data, out, opts)
	}

	if opts.bound, err = core.BindChecks(layout, opts.Checks); err != nil {
		return nil, err
	}
	layout, err = layout.Filter(opts.Fields)
	if err != nil {
		return nil, err
	}
	if opts.Sequential {
		return RunSequential(ctx, layout, data, out, opts)
	}
	return Run(ctx, layout, data, out, opts)
}
